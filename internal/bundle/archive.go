/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/passfoundry/passforge/internal/util"
)

// Archive entry names. The container must hold exactly the required set,
// optionally extended by the strip images.
const (
	DescriptorName = "pass.json"
	ManifestName   = "manifest.json"
	SignatureName  = "signature"

	IconName   = "icon.png"
	Icon2xName = "icon@2x.png"
	LogoName   = "logo.png"
	Logo2xName = "logo@2x.png"

	StripName   = "strip.png"
	Strip2xName = "strip@2x.png"
	// Strip3xName is a tolerated extra, not part of the required pair.
	Strip3xName = "strip@3x.png"
)

// archiveEpoch is the fixed modification time stamped on every entry so the
// archive bytes are reproducible.
var archiveEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func requiredSet() util.Set[string] {
	return util.NewSet(
		DescriptorName, ManifestName, SignatureName,
		IconName, Icon2xName, LogoName, Logo2xName,
	)
}

// VerifyFileSet is the pre-flight packaging check: the names must be the
// required set, plus either no strip files or the full strip pair
// (strip@3x.png allowed alongside the pair). Any other deviation is a
// FileSetError.
func VerifyFileSet(names []string) error {
	required := requiredSet()
	got := util.NewSet(names...)

	missing := required.Minus(got)

	var extra []string
	for _, n := range names {
		if required.Has(n) {
			continue
		}
		switch n {
		case StripName, Strip2xName, Strip3xName:
			// checked as a group below
		default:
			extra = append(extra, n)
		}
	}

	hasStrip := got.Has(StripName)
	hasStrip2x := got.Has(Strip2xName)
	hasStrip3x := got.Has(Strip3xName)
	if hasStrip != hasStrip2x {
		// density variants ship together or not at all
		if hasStrip {
			missing = append(missing, Strip2xName)
		} else {
			missing = append(missing, StripName)
		}
	}
	if hasStrip3x && !(hasStrip && hasStrip2x) {
		extra = append(extra, Strip3xName)
	}

	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return &FileSetError{Missing: missing, Extra: extra}
}

// WriteArchive assembles the container. Entries are written in sorted name
// order with a fixed timestamp; JSON and the signature deflate, images are
// stored verbatim so the packaged bytes are exactly the hashed bytes.
func WriteArchive(w io.Writer, files map[string][]byte) error {
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	if err := VerifyFileSet(names); err != nil {
		return err
	}
	sort.Strings(names)

	zw := zip.NewWriter(w)
	for _, name := range names {
		method := zip.Deflate
		if strings.HasSuffix(name, ".png") {
			method = zip.Store
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   method,
			Modified: archiveEpoch,
		})
		if err != nil {
			zw.Close()
			return fmt.Errorf("create archive entry %q: %w", name, err)
		}
		if _, err := fw.Write(files[name]); err != nil {
			zw.Close()
			return fmt.Errorf("write archive entry %q: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

// ReadArchive loads every entry of a pass container back into memory.
func ReadArchive(data []byte) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	files := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open archive entry %q: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read archive entry %q: %w", f.Name, err)
		}
		files[f.Name] = data
	}
	return files, nil
}

/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// passinspect prints the contents of a .pkpass archive, recomputes every
// manifest digest and checks the detached signature.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/smallstep/pkcs7"

	"github.com/passfoundry/passforge/internal/bundle"
	"github.com/passfoundry/passforge/internal/signature"
)

func main() {
	alg := flag.String("alg", string(bundle.DigestSHA256), "manifest digest algorithm (sha256 or sha1)")
	format := flag.String("format", string(signature.FormatPKCS7), "signature format (pkcs7 or cose)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: passinspect [-alg sha256|sha1] [-format pkcs7|cose] <file.pkpass>")
		os.Exit(2)
	}
	if err := run(flag.Arg(0), bundle.DigestAlgorithm(*alg), signature.Format(*format)); err != nil {
		fmt.Fprintln(os.Stderr, "passinspect:", err)
		os.Exit(1)
	}
}

func run(path string, alg bundle.DigestAlgorithm, format signature.Format) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	files, err := bundle.ReadArchive(data)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Printf("%s: %d entries\n", path, len(names))
	for _, n := range names {
		fmt.Printf("  %-16s %7d bytes\n", n, len(files[n]))
	}

	if err := bundle.VerifyFileSet(names); err != nil {
		fmt.Printf("file set: %v\n", err)
	} else {
		fmt.Println("file set: OK")
	}

	manifestBytes, ok := files[bundle.ManifestName]
	if !ok {
		return fmt.Errorf("archive has no %s", bundle.ManifestName)
	}
	var manifest bundle.Manifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	bad := 0
	for _, n := range names {
		if n == bundle.ManifestName || n == bundle.SignatureName {
			continue
		}
		if err := manifest.Verify(n, files[n], alg); err != nil {
			fmt.Printf("digest %s: %v\n", n, err)
			bad++
			continue
		}
		fmt.Printf("digest %s: OK\n", n)
	}

	sig, ok := files[bundle.SignatureName]
	if !ok {
		return fmt.Errorf("archive has no %s", bundle.SignatureName)
	}
	if err := describeSignature(sig, format); err != nil {
		fmt.Printf("signature structure: %v\n", err)
		bad++
	}
	if err := signature.Verify(format, sig, manifestBytes); err != nil {
		fmt.Printf("signature: %v\n", err)
		bad++
	} else {
		fmt.Println("signature: OK")
	}

	if bad > 0 {
		return fmt.Errorf("%d check(s) failed", bad)
	}
	return nil
}

func describeSignature(sig []byte, format signature.Format) error {
	switch format {
	case signature.FormatCOSE:
		diag, err := cbor.Diagnose(sig)
		if err != nil {
			return fmt.Errorf("cbor diagnostic: %w", err)
		}
		fmt.Printf("COSE_Sign1: %s\n", diag)
	case signature.FormatPKCS7:
		p7, err := pkcs7.Parse(sig)
		if err != nil {
			return fmt.Errorf("parse CMS: %w", err)
		}
		for _, cert := range p7.Certificates {
			fmt.Printf("CMS certificate: %s (issuer %s)\n", cert.Subject, cert.Issuer)
		}
	default:
		return fmt.Errorf("unknown signature format %q", format)
	}
	return nil
}

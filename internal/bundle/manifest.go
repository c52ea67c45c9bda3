/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package bundle

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
)

// DigestAlgorithm pins the manifest hash. It is an explicit versioned
// choice, never inherited from a library default.
type DigestAlgorithm string

const (
	// DigestSHA256 is the default.
	DigestSHA256 DigestAlgorithm = "sha256"
	// DigestSHA1 remains selectable for wallet platforms that verify the
	// legacy manifest format.
	DigestSHA1 DigestAlgorithm = "sha1"
)

func (a DigestAlgorithm) newHash() (hash.Hash, error) {
	switch a {
	case DigestSHA256:
		return sha256.New(), nil
	case DigestSHA1:
		return sha1.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDigestAlgorithm, a)
	}
}

// Manifest maps archive-relative file names to hex content digests.
// It is always rebuilt whole; a partially updated manifest is invalid by
// construction.
type Manifest map[string]string

// BuildManifest digests every file destined for the archive. The digest is
// a pure function of the file bytes, so upstream rendering must be
// byte-stable for the manifest to be.
func BuildManifest(files map[string][]byte, alg DigestAlgorithm) (Manifest, error) {
	m := make(Manifest, len(files))
	for name, data := range files {
		h, err := alg.newHash()
		if err != nil {
			return nil, err
		}
		h.Write(data)
		m[name] = hex.EncodeToString(h.Sum(nil))
	}
	return m, nil
}

// MarshalCanonical serializes the manifest with sorted keys. These exact
// bytes are what gets signed and what lands in the archive; re-serializing
// between the two would invalidate the signature.
func (m Manifest) MarshalCanonical() ([]byte, error) {
	// encoding/json sorts map keys, which is the canonical order we want
	return json.MarshalIndent(m, "", "  ")
}

// Verify recomputes the digest of data and compares it with the manifest
// entry for name.
func (m Manifest) Verify(name string, data []byte, alg DigestAlgorithm) error {
	want, ok := m[name]
	if !ok {
		return fmt.Errorf("manifest has no entry for %q", name)
	}
	h, err := alg.newHash()
	if err != nil {
		return err
	}
	h.Write(data)
	if got := hex.EncodeToString(h.Sum(nil)); got != want {
		return fmt.Errorf("digest mismatch for %q: manifest %s, content %s", name, want, got)
	}
	return nil
}

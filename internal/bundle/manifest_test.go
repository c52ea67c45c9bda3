/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package bundle

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuildManifest_SHA256KnownDigest(t *testing.T) {
	m, err := BuildManifest(map[string][]byte{"pass.json": []byte("abc")}, DigestSHA256)
	if err != nil {
		t.Fatalf("BuildManifest: %v", err)
	}
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if m["pass.json"] != want {
		t.Fatalf("digest = %s, want %s", m["pass.json"], want)
	}
}

func TestBuildManifest_SHA1KnownDigest(t *testing.T) {
	m, err := BuildManifest(map[string][]byte{"pass.json": []byte("abc")}, DigestSHA1)
	if err != nil {
		t.Fatalf("BuildManifest: %v", err)
	}
	const want = "a9993e364706816aba3e25717850c26c9cd0d89d"
	if m["pass.json"] != want {
		t.Fatalf("digest = %s, want %s", m["pass.json"], want)
	}
}

func TestBuildManifest_UnknownAlgorithm(t *testing.T) {
	if _, err := BuildManifest(map[string][]byte{"a": nil}, "md5"); !errors.Is(err, ErrUnknownDigestAlgorithm) {
		t.Fatalf("expected ErrUnknownDigestAlgorithm, got %v", err)
	}
}

func TestManifest_MarshalCanonicalStable(t *testing.T) {
	files := map[string][]byte{
		"pass.json":   []byte(`{"a":1}`),
		"icon.png":    {0x89, 0x50, 0x4e, 0x47},
		"logo.png":    {0x89, 0x50},
		"strip.png":   {0x01, 0x02, 0x03},
		"icon@2x.png": {0x04},
	}
	var prev []byte
	for i := 0; i < 5; i++ {
		m, err := BuildManifest(files, DigestSHA256)
		if err != nil {
			t.Fatalf("BuildManifest: %v", err)
		}
		raw, err := m.MarshalCanonical()
		if err != nil {
			t.Fatalf("MarshalCanonical: %v", err)
		}
		if prev != nil && !bytes.Equal(prev, raw) {
			t.Fatalf("manifest bytes not stable across builds")
		}
		prev = raw
	}
}

func TestManifest_Verify(t *testing.T) {
	files := map[string][]byte{"icon.png": {1, 2, 3}}
	m, err := BuildManifest(files, DigestSHA256)
	if err != nil {
		t.Fatalf("BuildManifest: %v", err)
	}
	if err := m.Verify("icon.png", []byte{1, 2, 3}, DigestSHA256); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := m.Verify("icon.png", []byte{1, 2, 4}, DigestSHA256); err == nil {
		t.Fatalf("expected mismatch error")
	}
	if err := m.Verify("logo.png", []byte{1}, DigestSHA256); err == nil {
		t.Fatalf("expected missing entry error")
	}
}

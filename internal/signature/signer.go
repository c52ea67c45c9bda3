/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package signature

import "fmt"

// Format pins the detached signature structure written into the archive.
// Like the digest algorithm, it is an explicit versioned choice.
type Format string

const (
	// FormatPKCS7 is the wallet-compatible default: a detached CMS
	// SignedData blob embedding the signer chain.
	FormatPKCS7 Format = "pkcs7"
	// FormatCOSE is a detached COSE_Sign1 with the chain in x5chain.
	FormatCOSE Format = "cose"
)

// Signer produces a detached signature over the exact manifest bytes that
// will be written to the archive. Signature and manifest are always
// regenerated together; a signature has no life of its own.
type Signer interface {
	Sign(manifest []byte) ([]byte, error)
	Format() Format
}

// NewSigner selects the engine for the configured format.
func NewSigner(format Format, id *Identity) (Signer, error) {
	switch format {
	case FormatPKCS7:
		return &PKCS7Signer{id: id}, nil
	case FormatCOSE:
		return &COSESigner{id: id}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Verify checks a detached signature against the manifest bytes using the
// certificate chain embedded in the blob.
func Verify(format Format, sig, manifest []byte) error {
	switch format {
	case FormatPKCS7:
		return VerifyPKCS7(sig, manifest)
	case FormatCOSE:
		return VerifyCOSE(sig, manifest)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

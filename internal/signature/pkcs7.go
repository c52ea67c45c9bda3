/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package signature

import (
	"fmt"

	"github.com/smallstep/pkcs7"
)

// PKCS7Signer produces detached CMS SignedData blobs.
type PKCS7Signer struct {
	id *Identity
}

func (s *PKCS7Signer) Format() Format { return FormatPKCS7 }

func (s *PKCS7Signer) Sign(manifest []byte) ([]byte, error) {
	sd, err := pkcs7.NewSignedData(manifest)
	if err != nil {
		return nil, fmt.Errorf("%w: init signed data: %v", ErrSignature, err)
	}
	sd.SetDigestAlgorithm(pkcs7.OIDDigestAlgorithmSHA256)
	if err := sd.AddSignerChain(s.id.Certificate, s.id.PrivateKey, s.id.Chain, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, fmt.Errorf("%w: add signer chain: %v", ErrSignature, err)
	}
	// the manifest travels in the archive, not inside the signature
	sd.Detach()
	sig, err := sd.Finish()
	if err != nil {
		return nil, fmt.Errorf("%w: finish: %v", ErrSignature, err)
	}
	return sig, nil
}

// VerifyPKCS7 validates a detached CMS signature over manifest using the
// embedded certificates.
func VerifyPKCS7(sig, manifest []byte) error {
	p7, err := pkcs7.Parse(sig)
	if err != nil {
		return fmt.Errorf("%w: parse: %v", ErrVerification, err)
	}
	p7.Content = manifest
	if err := p7.Verify(); err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	return nil
}

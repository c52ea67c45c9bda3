/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package signature

import (
	"crypto"
	"crypto/x509"
	"fmt"
	"os"

	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

// Identity is the signer: certificate, private key and trust chain. It is
// loaded once at process start, never mutated afterwards, and safe for
// concurrent reads. Key material never appears in generated output.
type Identity struct {
	Certificate *x509.Certificate
	PrivateKey  crypto.Signer
	Chain       []*x509.Certificate
}

// NewIdentity wraps already-parsed key material.
func NewIdentity(cert *x509.Certificate, key crypto.Signer, chain []*x509.Certificate) *Identity {
	return &Identity{Certificate: cert, PrivateKey: key, Chain: chain}
}

// LoadIdentity reads a password-protected PKCS#12 keystore. Failures are
// wrapped in ErrIdentityLoad; there is no retry, a bad keystore should
// alarm, not fail one request.
func LoadIdentity(path, password string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrIdentityLoad, path, err)
	}
	key, cert, chain, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return nil, fmt.Errorf("%w: decode keystore: %v", ErrIdentityLoad, err)
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("%w: private key type %T cannot sign", ErrIdentityLoad, key)
	}
	return &Identity{Certificate: cert, PrivateKey: signer, Chain: chain}, nil
}

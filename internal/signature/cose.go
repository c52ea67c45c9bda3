/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package signature

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"

	cose "github.com/veraison/go-cose"
)

// COSESigner produces detached COSE_Sign1 blobs carrying the signer chain
// in the x5chain header.
type COSESigner struct {
	id *Identity
}

func (s *COSESigner) Format() Format { return FormatCOSE }

func (s *COSESigner) Sign(manifest []byte) ([]byte, error) {
	alg, err := algorithmFor(s.id.PrivateKey.Public())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignature, err)
	}
	signer, err := cose.NewSigner(alg, s.id.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: init signer: %v", ErrSignature, err)
	}

	chain := make([]any, 0, 1+len(s.id.Chain))
	chain = append(chain, s.id.Certificate.Raw)
	for _, c := range s.id.Chain {
		chain = append(chain, c.Raw)
	}

	msg := cose.Sign1Message{
		Headers: cose.Headers{
			Protected:   cose.ProtectedHeader{cose.HeaderLabelAlgorithm: alg},
			Unprotected: cose.UnprotectedHeader{cose.HeaderLabelX5Chain: chain},
		},
		Payload: manifest,
	}
	if err := msg.Sign(rand.Reader, nil, signer); err != nil {
		return nil, fmt.Errorf("%w: cose sign: %v", ErrSignature, err)
	}
	// ship detached: the manifest is an archive entry of its own
	msg.Payload = nil
	sig, err := msg.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("%w: marshal: %v", ErrSignature, err)
	}
	return sig, nil
}

// VerifyCOSE validates a detached COSE_Sign1 over manifest using the leaf
// certificate from its x5chain header.
func VerifyCOSE(sig, manifest []byte) error {
	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(sig); err != nil {
		return fmt.Errorf("%w: parse: %v", ErrVerification, err)
	}
	alg, err := msg.Headers.Protected.Algorithm()
	if err != nil {
		return fmt.Errorf("%w: algorithm header: %v", ErrVerification, err)
	}
	ders, err := x5chainDER(msg.Headers.Unprotected[cose.HeaderLabelX5Chain])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	leaf, err := x509.ParseCertificate(ders[0])
	if err != nil {
		return fmt.Errorf("%w: leaf certificate: %v", ErrVerification, err)
	}
	verifier, err := cose.NewVerifier(alg, leaf.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: init verifier: %v", ErrVerification, err)
	}
	msg.Payload = manifest
	if err := msg.Verify(nil, verifier); err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	return nil
}

// x5chainDER normalizes the x5chain header value: a single bstr or an
// array of bstrs, per RFC 9360.
func x5chainDER(v any) ([][]byte, error) {
	switch chain := v.(type) {
	case []byte:
		return [][]byte{chain}, nil
	case []any:
		if len(chain) == 0 {
			return nil, fmt.Errorf("empty x5chain header")
		}
		out := make([][]byte, len(chain))
		for i, e := range chain {
			der, ok := e.([]byte)
			if !ok {
				return nil, fmt.Errorf("x5chain element %d is %T, not bytes", i, e)
			}
			out[i] = der
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("missing x5chain header")
	default:
		return nil, fmt.Errorf("unexpected x5chain type %T", v)
	}
}

func algorithmFor(pub crypto.PublicKey) (cose.Algorithm, error) {
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		switch k.Curve {
		case elliptic.P256():
			return cose.AlgorithmES256, nil
		case elliptic.P384():
			return cose.AlgorithmES384, nil
		case elliptic.P521():
			return cose.AlgorithmES512, nil
		}
		return 0, fmt.Errorf("unsupported ECDSA curve %v", k.Curve.Params().Name)
	case ed25519.PublicKey:
		return cose.AlgorithmEdDSA, nil
	case *rsa.PublicKey:
		return cose.AlgorithmPS256, nil
	default:
		return 0, fmt.Errorf("unsupported key type %T", pub)
	}
}

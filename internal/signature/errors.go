/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package signature

import "errors"

var (
	// ErrIdentityLoad is fatal and process-level: bad password or corrupt
	// key material means no pass can be signed until the operator fixes it.
	ErrIdentityLoad  = errors.New("failed to load signing identity")
	ErrSignature     = errors.New("signing operation failed")
	ErrVerification  = errors.New("signature verification failed")
	ErrUnknownFormat = errors.New("unknown signature format")
)

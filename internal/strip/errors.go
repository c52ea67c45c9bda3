/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package strip

import "errors"

var (
	ErrNegativeCount = errors.New("stamp count must not be negative")
	ErrTooManyStamps = errors.New("stamp count exceeds grid capacity")
	ErrInvalidScale  = errors.New("scale must be 1, 2 or 3")
	ErrAssetMissing  = errors.New("required image asset is missing")
	ErrAssetInvalid  = errors.New("image asset is unreadable or malformed")
)

/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package resources

import (
	_ "embed"
)

// Default pass art, used whenever a campaign supplies no custom assets.
var (
	//go:embed default_stamp.png
	DefaultStampIcon []byte

	//go:embed icon.png
	Icon []byte

	//go:embed icon@2x.png
	Icon2x []byte

	//go:embed logo.png
	Logo []byte

	//go:embed logo@2x.png
	Logo2x []byte
)

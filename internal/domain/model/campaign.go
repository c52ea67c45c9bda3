/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package model

import "time"

// Campaign is a loyalty campaign: the declarative template plus stamp rules
// every pass issued under it shares.
type Campaign struct {
	ID             string
	TenantID       string
	Name           string
	StampsRequired int
	RewardText     string

	// Colors in "rgb(r,g,b)" form, as they appear in the descriptor.
	ForegroundColor string
	BackgroundColor string
	LabelColor      string

	// TemplateJSON is the serialized field-slot template. Empty means the
	// stock storeCard layout.
	TemplateJSON []byte

	// Optional custom art. Empty paths fall back to the embedded defaults.
	StampIconPath       string
	BackgroundImagePath string

	CreatedAt time.Time
}

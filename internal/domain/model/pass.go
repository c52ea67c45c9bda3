/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package model

import "time"

// Pass is one issued pass. The serial number is unique across all issued
// passes; the archive on disk is the signed container last generated for it.
type Pass struct {
	SerialNumber string
	CampaignID   string
	PartnerID    string
	CustomerName string
	StampsEarned int
	ArchivePath  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

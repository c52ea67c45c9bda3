/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package model

import "time"

// Redemption records one stamp-count change applied to an issued pass.
type Redemption struct {
	ID           int64
	SerialNumber string
	CampaignID   string
	StampsBefore int
	StampsAfter  int
	CreatedAt    time.Time
}

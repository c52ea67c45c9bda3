/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package pass

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DefaultPartnerID marks a pass not bound to a specific redemption partner.
const DefaultPartnerID = "default"

// BarcodePayload is the colon-delimited tagged tuple scanned at redemption:
//
//	PASS_ID:<uuid>:CAMPAIGN_ID:<uuid>[:PARTNER_ID:<uuid-or-"default">]
type BarcodePayload struct {
	PassID     uuid.UUID
	CampaignID uuid.UUID
	PartnerID  string
}

func (p BarcodePayload) Encode() string {
	s := fmt.Sprintf("PASS_ID:%s:CAMPAIGN_ID:%s", p.PassID, p.CampaignID)
	if p.PartnerID != "" {
		s += ":PARTNER_ID:" + p.PartnerID
	}
	return s
}

// ParseBarcodePayload decodes a scanned payload. The trailing partner
// segment is optional and defaults when absent.
func ParseBarcodePayload(s string) (BarcodePayload, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 && len(parts) != 6 {
		return BarcodePayload{}, fmt.Errorf("%w: %d segments", ErrInvalidBarcode, len(parts))
	}
	if parts[0] != "PASS_ID" || parts[2] != "CAMPAIGN_ID" {
		return BarcodePayload{}, fmt.Errorf("%w: bad tags", ErrInvalidBarcode)
	}
	passID, err := uuid.Parse(parts[1])
	if err != nil {
		return BarcodePayload{}, fmt.Errorf("%w: pass id: %v", ErrInvalidBarcode, err)
	}
	campaignID, err := uuid.Parse(parts[3])
	if err != nil {
		return BarcodePayload{}, fmt.Errorf("%w: campaign id: %v", ErrInvalidBarcode, err)
	}
	p := BarcodePayload{PassID: passID, CampaignID: campaignID, PartnerID: DefaultPartnerID}
	if len(parts) == 6 {
		if parts[4] != "PARTNER_ID" || parts[5] == "" {
			return BarcodePayload{}, fmt.Errorf("%w: bad partner segment", ErrInvalidBarcode)
		}
		p.PartnerID = parts[5]
	}
	return p, nil
}

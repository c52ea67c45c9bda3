/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/passfoundry/passforge/internal/domain/model"
)

// RedemptionRepository handles redemption-history persistence.
type RedemptionRepository struct {
	db *sql.DB
}

func NewRedemptionRepository(db *sql.DB) *RedemptionRepository {
	return &RedemptionRepository{db: db}
}

// Create inserts a redemption record and returns the inserted id.
func (r *RedemptionRepository) Create(ctx context.Context, red *model.Redemption) (int64, error) {
	const q = `
		INSERT INTO redemptions (serial_number, campaign_id, stamps_before, stamps_after, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, q,
		red.SerialNumber, red.CampaignID, red.StampsBefore, red.StampsAfter, red.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert redemption: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListBySerial returns the redemption history of a pass, oldest first.
func (r *RedemptionRepository) ListBySerial(ctx context.Context, serial string) ([]*model.Redemption, error) {
	const q = `
		SELECT id, serial_number, campaign_id, stamps_before, stamps_after, created_at
		FROM redemptions
		WHERE serial_number = ?
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, serial)
	if err != nil {
		return nil, fmt.Errorf("query redemptions: %w", err)
	}
	defer rows.Close()

	var out []*model.Redemption
	for rows.Next() {
		var red model.Redemption
		if err := rows.Scan(&red.ID, &red.SerialNumber, &red.CampaignID,
			&red.StampsBefore, &red.StampsAfter, &red.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		out = append(out, &red)
	}
	return out, rows.Err()
}

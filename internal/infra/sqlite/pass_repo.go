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
	"time"

	"github.com/passfoundry/passforge/internal/domain/model"
)

// PassRepository handles issued-pass persistence.
type PassRepository struct {
	db *sql.DB
}

func NewPassRepository(db *sql.DB) *PassRepository {
	return &PassRepository{db: db}
}

// Create inserts a newly issued pass.
func (r *PassRepository) Create(ctx context.Context, p *model.Pass) error {
	const q = `
		INSERT INTO passes (serial_number, campaign_id, partner_id, customer_name,
			stamps_earned, archive_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, q,
		p.SerialNumber, p.CampaignID, p.PartnerID, p.CustomerName,
		p.StampsEarned, p.ArchivePath, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert pass: %w", err)
	}
	return nil
}

// FindBySerial returns an issued pass, or nil when no row matches.
func (r *PassRepository) FindBySerial(ctx context.Context, serial string) (*model.Pass, error) {
	const q = `
		SELECT serial_number, campaign_id, partner_id, customer_name,
			stamps_earned, archive_path, created_at, updated_at
		FROM passes
		WHERE serial_number = ?
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, q, serial)
	var p model.Pass
	if err := row.Scan(&p.SerialNumber, &p.CampaignID, &p.PartnerID, &p.CustomerName,
		&p.StampsEarned, &p.ArchivePath, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan pass: %w", err)
	}
	return &p, nil
}

// UpdateStamps sets the earned count and archive path after a regeneration.
func (r *PassRepository) UpdateStamps(ctx context.Context, serial string, earned int, archivePath string, updatedAt time.Time) error {
	const q = `
		UPDATE passes
		SET stamps_earned = ?, archive_path = ?, updated_at = ?
		WHERE serial_number = ?
	`
	res, err := r.db.ExecContext(ctx, q, earned, archivePath, updatedAt, serial)
	if err != nil {
		return fmt.Errorf("update pass: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

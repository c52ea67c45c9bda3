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

// CampaignRepository handles campaign persistence.
type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create inserts a new campaign.
func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	const q = `
		INSERT INTO campaigns (id, tenant_id, name, stamps_required, reward_text,
			foreground_color, background_color, label_color, template_json,
			stamp_icon_path, background_image_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.TenantID, c.Name, c.StampsRequired, c.RewardText,
		c.ForegroundColor, c.BackgroundColor, c.LabelColor, c.TemplateJSON,
		c.StampIconPath, c.BackgroundImagePath, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

// FindByID returns a campaign, or nil when no row matches.
func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*model.Campaign, error) {
	const q = `
		SELECT id, tenant_id, name, stamps_required, reward_text,
			foreground_color, background_color, label_color, template_json,
			stamp_icon_path, background_image_path, created_at
		FROM campaigns
		WHERE id = ?
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var c model.Campaign
	if err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.StampsRequired, &c.RewardText,
		&c.ForegroundColor, &c.BackgroundColor, &c.LabelColor, &c.TemplateJSON,
		&c.StampIconPath, &c.BackgroundImagePath, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	return &c, nil
}

// ListByTenant returns every campaign owned by a tenant, newest first.
func (r *CampaignRepository) ListByTenant(ctx context.Context, tenantID string) ([]*model.Campaign, error) {
	const q = `
		SELECT id, tenant_id, name, stamps_required, reward_text,
			foreground_color, background_color, label_color, template_json,
			stamp_icon_path, background_image_path, created_at
		FROM campaigns
		WHERE tenant_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer rows.Close()

	var out []*model.Campaign
	for rows.Next() {
		var c model.Campaign
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.StampsRequired, &c.RewardText,
			&c.ForegroundColor, &c.BackgroundColor, &c.LabelColor, &c.TemplateJSON,
			&c.StampIconPath, &c.BackgroundImagePath, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package pipeline

import (
	"context"
	"time"

	"github.com/passfoundry/passforge/internal/domain/model"
)

// Repository ports. The pipeline depends only on these interfaces so the
// sqlite implementations (or a future database) can be swapped without
// touching generation logic.

type CampaignRepository interface {
	FindByID(ctx context.Context, id string) (*model.Campaign, error)
}

type PassRepository interface {
	Create(ctx context.Context, p *model.Pass) error
	FindBySerial(ctx context.Context, serial string) (*model.Pass, error)
	UpdateStamps(ctx context.Context, serial string, earned int, archivePath string, updatedAt time.Time) error
}

type RedemptionRepository interface {
	Create(ctx context.Context, r *model.Redemption) (int64, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

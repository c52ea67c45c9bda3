/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/passfoundry/passforge/internal/domain/model"
)

func testCampaign(id string) *model.Campaign {
	return &model.Campaign{
		ID:              id,
		TenantID:        "tenant-1",
		Name:            "Coffee Club",
		StampsRequired:  10,
		RewardText:      "Free coffee",
		ForegroundColor: "rgb(255,255,255)",
		BackgroundColor: "rgb(139,69,19)",
		LabelColor:      "rgb(255,255,255)",
		CreatedAt:       time.Now().UTC().Truncate(time.Second),
	}
}

func TestCampaign_CreateFindByID_OK(t *testing.T) {
	ctx := context.Background()
	db, err := InitDB(ctx, ":memory:")
	if err != nil {
		t.Fatalf("InitDB error: %v", err)
	}
	defer CloseDB(db)

	repo := NewCampaignRepository(db)
	c := testCampaign("camp-1")
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := repo.FindByID(ctx, "camp-1")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got == nil {
		t.Fatalf("expected campaign, got nil")
	}
	if got.Name != c.Name || got.StampsRequired != c.StampsRequired {
		t.Fatalf("campaign mismatch: %+v", got)
	}
	if got.BackgroundColor != "rgb(139,69,19)" {
		t.Fatalf("background color mismatch: %q", got.BackgroundColor)
	}
}

func TestCampaign_FindByID_NotFound(t *testing.T) {
	ctx := context.Background()
	db, err := InitDB(ctx, ":memory:")
	if err != nil {
		t.Fatalf("InitDB error: %v", err)
	}
	defer CloseDB(db)

	repo := NewCampaignRepository(db)
	got, err := repo.FindByID(ctx, "missing")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestCampaign_ListByTenant(t *testing.T) {
	ctx := context.Background()
	db, err := InitDB(ctx, ":memory:")
	if err != nil {
		t.Fatalf("InitDB error: %v", err)
	}
	defer CloseDB(db)

	repo := NewCampaignRepository(db)
	for _, id := range []string{"camp-1", "camp-2"} {
		if err := repo.Create(ctx, testCampaign(id)); err != nil {
			t.Fatalf("Create %s error: %v", id, err)
		}
	}
	other := testCampaign("camp-3")
	other.TenantID = "tenant-2"
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := repo.ListByTenant(ctx, "tenant-1")
	if err != nil {
		t.Fatalf("ListByTenant error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 campaigns, got %d", len(got))
	}
}

/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package pipeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passfoundry/passforge/internal/bundle"
	"github.com/passfoundry/passforge/internal/infra/sqlite"
	"github.com/passfoundry/passforge/internal/pass"
	"github.com/passfoundry/passforge/internal/signature"
)

func manifestOf(t *testing.T, archive []byte) (bundle.Manifest, map[string][]byte) {
	t.Helper()
	files, err := bundle.ReadArchive(archive)
	require.NoError(t, err)
	var m bundle.Manifest
	require.NoError(t, json.Unmarshal(files[bundle.ManifestName], &m))
	return m, files
}

func TestUpdateStamps_OnlyStripAndDescriptorChange(t *testing.T) {
	p, db, _ := newTestPipeline(t)
	seedCampaign(t, db, nil)
	ctx := context.Background()

	issued, err := p.Generate(ctx, Request{
		CampaignID:   testCampaignID,
		CustomerName: "Dana",
		StampsEarned: 4,
	})
	require.NoError(t, err)
	before, beforeFiles := manifestOf(t, issued.Archive)

	updated, err := p.UpdateStamps(ctx, issued.SerialNumber, 6)
	require.NoError(t, err)
	require.Equal(t, issued.SerialNumber, updated.SerialNumber)
	require.Equal(t, issued.ArchivePath, updated.ArchivePath)
	after, afterFiles := manifestOf(t, updated.Archive)

	// untouched assets keep their digests, so byte-identical entries
	for _, name := range []string{bundle.IconName, bundle.Icon2xName, bundle.LogoName, bundle.Logo2xName} {
		assert.Equal(t, before[name], after[name], name)
		assert.Equal(t, beforeFiles[name], afterFiles[name], name)
	}
	// the regenerated pair must differ
	for _, name := range []string{bundle.DescriptorName, bundle.StripName, bundle.Strip2xName} {
		assert.NotEqual(t, before[name], after[name], name)
	}

	// signature binds the new manifest
	require.NoError(t, signature.Verify(signature.FormatPKCS7,
		afterFiles[bundle.SignatureName], afterFiles[bundle.ManifestName]))

	var d pass.Descriptor
	require.NoError(t, json.Unmarshal(afterFiles[bundle.DescriptorName], &d))
	assert.Equal(t, "6 of 10", d.StoreCard.HeaderFields[0].Value)
	assert.Equal(t, issued.SerialNumber, d.SerialNumber)

	rec, err := sqlite.NewPassRepository(db).FindBySerial(ctx, issued.SerialNumber)
	require.NoError(t, err)
	assert.Equal(t, 6, rec.StampsEarned)

	reds, err := sqlite.NewRedemptionRepository(db).ListBySerial(ctx, issued.SerialNumber)
	require.NoError(t, err)
	require.Len(t, reds, 1)
	assert.Equal(t, 4, reds[0].StampsBefore)
	assert.Equal(t, 6, reds[0].StampsAfter)
}

func TestUpdateStamps_IssueDateStableAcrossDays(t *testing.T) {
	p, db, _ := newTestPipeline(t)
	seedCampaign(t, db, nil)
	ctx := context.Background()

	issued, err := p.Generate(ctx, Request{
		CampaignID:   testCampaignID,
		CustomerName: "Dana",
		StampsEarned: 4,
	})
	require.NoError(t, err)
	before, beforeFiles := manifestOf(t, issued.Archive)

	// the customer collects stamps three days later
	p.clock = fixedClock{t: time.Date(2026, time.March, 17, 12, 0, 0, 0, time.UTC)}

	updated, err := p.UpdateStamps(ctx, issued.SerialNumber, 6)
	require.NoError(t, err)
	after, afterFiles := manifestOf(t, updated.Archive)

	var origD, newD pass.Descriptor
	require.NoError(t, json.Unmarshal(beforeFiles[bundle.DescriptorName], &origD))
	require.NoError(t, json.Unmarshal(afterFiles[bundle.DescriptorName], &newD))

	// the descriptor changes in progress text only; the issue date keeps the
	// original issue day, not the update day
	assert.Equal(t, "Mar 14, 2026", newD.StoreCard.SecondaryFields[1].Value)
	assert.Equal(t, origD.StoreCard.SecondaryFields, newD.StoreCard.SecondaryFields)
	assert.Equal(t, origD.StoreCard.BackFields, newD.StoreCard.BackFields)
	assert.Equal(t, "6 of 10", newD.StoreCard.HeaderFields[0].Value)
	assert.Equal(t, "4", newD.StoreCard.PrimaryFields[1].Value)

	for _, name := range []string{bundle.IconName, bundle.Icon2xName, bundle.LogoName, bundle.Logo2xName} {
		assert.Equal(t, before[name], after[name], name)
		assert.Equal(t, beforeFiles[name], afterFiles[name], name)
	}
}

func TestUpdateStamps_Deterministic(t *testing.T) {
	p, db, _ := newTestPipeline(t)
	seedCampaign(t, db, nil)
	ctx := context.Background()

	issued, err := p.Generate(ctx, Request{
		CampaignID:   testCampaignID,
		CustomerName: "Dana",
		StampsEarned: 4,
	})
	require.NoError(t, err)

	first, err := p.UpdateStamps(ctx, issued.SerialNumber, 6)
	require.NoError(t, err)
	second, err := p.UpdateStamps(ctx, issued.SerialNumber, 6)
	require.NoError(t, err)

	// same serial, same count, fixed clock: identical content and manifest.
	// Only the signature may differ, ECDSA signing is randomized.
	firstManifest, firstFiles := manifestOf(t, first.Archive)
	secondManifest, secondFiles := manifestOf(t, second.Archive)
	assert.Equal(t, firstManifest, secondManifest)
	require.Len(t, secondFiles, len(firstFiles))
	for name, data := range firstFiles {
		if name == bundle.SignatureName {
			continue
		}
		assert.Equal(t, data, secondFiles[name], name)
	}
}

func TestUpdateStamps_ClampsToRequired(t *testing.T) {
	p, db, _ := newTestPipeline(t)
	seedCampaign(t, db, nil)
	ctx := context.Background()

	issued, err := p.Generate(ctx, Request{
		CampaignID:   testCampaignID,
		CustomerName: "Dana",
		StampsEarned: 9,
	})
	require.NoError(t, err)

	updated, err := p.UpdateStamps(ctx, issued.SerialNumber, 15)
	require.NoError(t, err)

	_, files := manifestOf(t, updated.Archive)
	var d pass.Descriptor
	require.NoError(t, json.Unmarshal(files[bundle.DescriptorName], &d))
	assert.Equal(t, "10 of 10", d.StoreCard.HeaderFields[0].Value)

	rec, err := sqlite.NewPassRepository(db).FindBySerial(ctx, issued.SerialNumber)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.StampsEarned)
}

func TestUpdateStamps_Keeps3xVariant(t *testing.T) {
	p, db, _ := newTestPipeline(t)
	seedCampaign(t, db, nil)
	p.cfg.EmbedStrip3x = true
	ctx := context.Background()

	issued, err := p.Generate(ctx, Request{
		CampaignID:   testCampaignID,
		CustomerName: "Dana",
		StampsEarned: 4,
	})
	require.NoError(t, err)

	// even with the knob off, an archive that shipped 3x keeps it
	p.cfg.EmbedStrip3x = false
	updated, err := p.UpdateStamps(ctx, issued.SerialNumber, 5)
	require.NoError(t, err)

	files, err := bundle.ReadArchive(updated.Archive)
	require.NoError(t, err)
	assert.Contains(t, files, bundle.Strip3xName)
}

func TestUpdateStamps_PassNotFound(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	_, err := p.UpdateStamps(context.Background(), "missing-serial", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPassNotFound)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageResolvingFields, stageErr.Stage)
}

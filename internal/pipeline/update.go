/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/passfoundry/passforge/internal/bundle"
	"github.com/passfoundry/passforge/internal/domain/model"
	"github.com/passfoundry/passforge/internal/strip"
)

// UpdateStamps regenerates an issued pass in place after its stamp count
// changes. Only the strip images and the descriptor are rebuilt; the icon and
// logo bytes are carried over from the existing archive so their manifest
// digests stay identical. The manifest and signature are always rebuilt
// whole.
func (p *Pipeline) UpdateStamps(ctx context.Context, serial string, earned int) (*Result, error) {
	if earned < 0 {
		return p.fail(StageResolvingFields, fmt.Errorf("stamps earned: %w", strip.ErrNegativeCount))
	}

	rec, err := p.passes.FindBySerial(ctx, serial)
	if err != nil {
		return p.fail(StageResolvingFields, fmt.Errorf("find pass: %w", err))
	}
	if rec == nil {
		return p.fail(StageResolvingFields, fmt.Errorf("%q: %w", serial, ErrPassNotFound))
	}
	campaign, err := p.campaigns.FindByID(ctx, rec.CampaignID)
	if err != nil {
		return p.fail(StageResolvingFields, fmt.Errorf("find campaign: %w", err))
	}
	if campaign == nil {
		return p.fail(StageResolvingFields, fmt.Errorf("%q: %w", rec.CampaignID, ErrCampaignNotFound))
	}
	if earned > campaign.StampsRequired {
		earned = campaign.StampsRequired
	}

	existing, err := os.ReadFile(rec.ArchivePath)
	if err != nil {
		return p.fail(StageResolvingFields, fmt.Errorf("read archive %q: %w", rec.ArchivePath, err))
	}
	files, err := bundle.ReadArchive(existing)
	if err != nil {
		return p.fail(StageResolvingFields, err)
	}

	rr, err := p.resolve(campaign, serial, rec.CustomerName, rec.PartnerID, earned, rec.CreatedAt)
	if err != nil {
		return p.fail(StageResolvingFields, err)
	}
	descriptor, err := rr.Descriptor.Marshal()
	if err != nil {
		return p.fail(StageResolvingFields, err)
	}

	// keep the 3x variant if the pass shipped with one
	_, had3x := files[bundle.Strip3xName]
	rendered, err := p.renderImages(ctx, campaign, earned, had3x || p.cfg.EmbedStrip3x)
	if err != nil {
		return p.fail(StageRenderingImages, err)
	}

	files[bundle.DescriptorName] = descriptor
	files[bundle.StripName] = rendered[bundle.StripName]
	files[bundle.Strip2xName] = rendered[bundle.Strip2xName]
	if data, ok := rendered[bundle.Strip3xName]; ok {
		files[bundle.Strip3xName] = data
	}
	delete(files, bundle.ManifestName)
	delete(files, bundle.SignatureName)

	manifest, err := bundle.BuildManifest(files, p.cfg.DigestAlgorithm)
	if err != nil {
		return p.fail(StageBuildingManifest, err)
	}
	manifestBytes, err := manifest.MarshalCanonical()
	if err != nil {
		return p.fail(StageBuildingManifest, err)
	}
	sig, err := p.signer.Sign(manifestBytes)
	if err != nil {
		return p.fail(StageSigning, err)
	}
	files[bundle.ManifestName] = manifestBytes
	files[bundle.SignatureName] = sig

	archivePath, archive, err := p.packageArchive(serial, files)
	if err != nil {
		return p.fail(StagePackaging, err)
	}

	now := p.clock.Now().UTC()
	if err := p.passes.UpdateStamps(ctx, serial, earned, archivePath, now); err != nil {
		return p.fail(StagePackaging, fmt.Errorf("persist stamp update: %w", err))
	}
	if _, err := p.redemptions.Create(ctx, &model.Redemption{
		SerialNumber: serial,
		CampaignID:   campaign.ID,
		StampsBefore: rec.StampsEarned,
		StampsAfter:  earned,
		CreatedAt:    now,
	}); err != nil {
		return p.fail(StagePackaging, fmt.Errorf("record redemption: %w", err))
	}

	p.logger.Printf("pipeline %s: pass %s updated %d -> %d stamps",
		StageDone, serial, rec.StampsEarned, earned)
	return &Result{
		SerialNumber: serial,
		ArchivePath:  archivePath,
		Archive:      archive,
		Unresolved:   rr.Unresolved,
	}, nil
}

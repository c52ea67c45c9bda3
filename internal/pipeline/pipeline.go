/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/passfoundry/passforge/internal/bundle"
	"github.com/passfoundry/passforge/internal/domain/model"
	"github.com/passfoundry/passforge/internal/pass"
	"github.com/passfoundry/passforge/internal/signature"
	"github.com/passfoundry/passforge/internal/strip"
	"github.com/passfoundry/passforge/internal/util"
	"github.com/passfoundry/passforge/resources"
)

// Config carries the issuer identity stamped into every descriptor and the
// packaging knobs.
type Config struct {
	PassTypeIdentifier string
	TeamIdentifier     string
	OrganizationName   string
	WebServiceURL      string

	// DigestAlgorithm defaults to SHA-256.
	DigestAlgorithm bundle.DigestAlgorithm
	// OutputDir is where finished .pkpass archives land.
	OutputDir string
	// EmbedStrip3x adds strip@3x.png alongside the required 1x/2x pair.
	EmbedStrip3x bool
}

// Request describes one pass to issue.
type Request struct {
	CampaignID   string
	CustomerName string
	PartnerID    string
	StampsEarned int
}

// Result is a finished, signed, persisted pass.
type Result struct {
	SerialNumber string
	ArchivePath  string
	Archive      []byte
	// Unresolved lists template placeholders that had no value; the archive
	// is still produced with the tokens left literal.
	Unresolved []string
}

// Pipeline turns a Request into a signed .pkpass archive. Each call runs the
// stages in order and stops at the first failure; a pass is either fully
// generated and persisted or absent.
type Pipeline struct {
	cfg         Config
	signer      signature.Signer
	campaigns   CampaignRepository
	passes      PassRepository
	redemptions RedemptionRepository
	clock       Clock
	logger      *log.Logger
}

func New(cfg Config, signer signature.Signer, campaigns CampaignRepository,
	passes PassRepository, redemptions RedemptionRepository, logger *log.Logger) *Pipeline {
	if cfg.DigestAlgorithm == "" {
		cfg.DigestAlgorithm = bundle.DigestSHA256
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "passes"
	}
	return &Pipeline{
		cfg:         cfg,
		signer:      signer,
		campaigns:   campaigns,
		passes:      passes,
		redemptions: redemptions,
		clock:       systemClock{},
		logger:      logger,
	}
}

// Generate issues a new pass under the campaign in req.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*Result, error) {
	campaign, err := p.campaigns.FindByID(ctx, req.CampaignID)
	if err != nil {
		return p.fail(StageResolvingFields, fmt.Errorf("find campaign: %w", err))
	}
	if campaign == nil {
		return p.fail(StageResolvingFields, fmt.Errorf("%q: %w", req.CampaignID, ErrCampaignNotFound))
	}

	serial := uuid.New()
	if req.PartnerID == "" {
		req.PartnerID = pass.DefaultPartnerID
	}
	if req.StampsEarned > campaign.StampsRequired {
		req.StampsEarned = campaign.StampsRequired
	}
	now := p.clock.Now().UTC()

	rr, err := p.resolve(campaign, serial.String(), req.CustomerName, req.PartnerID, req.StampsEarned, now)
	if err != nil {
		return p.fail(StageResolvingFields, err)
	}
	descriptor, err := rr.Descriptor.Marshal()
	if err != nil {
		return p.fail(StageResolvingFields, err)
	}
	for _, key := range rr.Unresolved {
		p.logger.Printf("pass %s: unresolved placeholder {%s}", serial, key)
	}

	files, err := p.renderImages(ctx, campaign, req.StampsEarned, p.cfg.EmbedStrip3x)
	if err != nil {
		return p.fail(StageRenderingImages, err)
	}
	files[bundle.DescriptorName] = descriptor

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

	archivePath, archive, err := p.packageArchive(serial.String(), files)
	if err != nil {
		return p.fail(StagePackaging, err)
	}

	rec := &model.Pass{
		SerialNumber: serial.String(),
		CampaignID:   campaign.ID,
		PartnerID:    req.PartnerID,
		CustomerName: req.CustomerName,
		StampsEarned: req.StampsEarned,
		ArchivePath:  archivePath,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.passes.Create(ctx, rec); err != nil {
		// the archive without its record is unusable, remove it
		os.Remove(archivePath)
		return p.fail(StagePackaging, fmt.Errorf("persist pass record: %w", err))
	}

	p.logger.Printf("pipeline %s: pass %s, campaign %s, %d/%d stamps",
		StageDone, serial, campaign.ID, req.StampsEarned, campaign.StampsRequired)
	return &Result{
		SerialNumber: serial.String(),
		ArchivePath:  archivePath,
		Archive:      archive,
		Unresolved:   rr.Unresolved,
	}, nil
}

func (p *Pipeline) fail(stage Stage, err error) (*Result, error) {
	p.logger.Printf("pipeline %s at %s: %v", StageFailed, stage, err)
	return nil, &StageError{Stage: stage, Err: err}
}

// resolve builds and validates the descriptor for one pass. issued is the
// pass's original issue time, not the current clock: a later stamp update
// must reproduce the same issue-date text.
func (p *Pipeline) resolve(c *model.Campaign, serial, customerName, partnerID string, earned int, issued time.Time) (*pass.ResolveResult, error) {
	if earned < 0 {
		return nil, fmt.Errorf("stamps earned: %w", strip.ErrNegativeCount)
	}
	if c.StampsRequired < 1 {
		return nil, fmt.Errorf("campaign %s requires %d stamps, want at least 1", c.ID, c.StampsRequired)
	}
	if c.StampsRequired > strip.MaxStamps {
		return nil, fmt.Errorf("campaign %s requires %d stamps: %w", c.ID, c.StampsRequired, strip.ErrTooManyStamps)
	}

	tpl := defaultTemplate(c)
	if len(c.TemplateJSON) > 0 {
		tpl = pass.Template{}
		if err := json.Unmarshal(c.TemplateJSON, &tpl); err != nil {
			return nil, fmt.Errorf("campaign %s template: %w", c.ID, err)
		}
		if tpl.OrganizationName == "" {
			tpl.OrganizationName = c.Name
		}
		if tpl.Description == "" {
			tpl.Description = c.Name + " loyalty card"
		}
	}
	if p.cfg.OrganizationName != "" {
		tpl.OrganizationName = p.cfg.OrganizationName
	}

	var err error
	if tpl.Foreground, err = pass.ParseRGB(c.ForegroundColor); err != nil {
		return nil, fmt.Errorf("campaign %s foreground: %w", c.ID, err)
	}
	if tpl.Background, err = pass.ParseRGB(c.BackgroundColor); err != nil {
		return nil, fmt.Errorf("campaign %s background: %w", c.ID, err)
	}
	if tpl.Label, err = pass.ParseRGB(c.LabelColor); err != nil {
		return nil, fmt.Errorf("campaign %s label: %w", c.ID, err)
	}

	serialUUID, err := uuid.Parse(serial)
	if err != nil {
		return nil, fmt.Errorf("serial number: %w", err)
	}
	campaignUUID, err := uuid.Parse(c.ID)
	if err != nil {
		return nil, fmt.Errorf("campaign id %q: %w", c.ID, err)
	}
	payload := pass.BarcodePayload{
		PassID:     serialUUID,
		CampaignID: campaignUUID,
		PartnerID:  partnerID,
	}

	info := pass.Info{
		PassTypeIdentifier: p.cfg.PassTypeIdentifier,
		TeamIdentifier:     p.cfg.TeamIdentifier,
		SerialNumber:       serial,
		WebServiceURL:      p.cfg.WebServiceURL,
		// derived, so regeneration of the same pass keeps the same token
		AuthenticationToken: uuid.NewSHA1(campaignUUID, []byte(serial)).String(),
		Barcode: &pass.Barcode{
			Message:         payload.Encode(),
			Format:          pass.BarcodeFormatQR,
			MessageEncoding: pass.BarcodeEncodingASCII,
		},
	}
	if p.cfg.WebServiceURL == "" {
		info.AuthenticationToken = ""
	}

	return pass.Resolve(tpl, info, buildContext(c, customerName, earned, issued))
}

// renderImages produces every PNG for the archive: the static icon and logo
// pair plus one freshly composited strip per density, rendered concurrently.
func (p *Pipeline) renderImages(ctx context.Context, c *model.Campaign, earned int, with3x bool) (map[string][]byte, error) {
	assets, err := p.loadStripAssets(c)
	if err != nil {
		return nil, err
	}
	comp := strip.NewCompositor(p.styleFor(c))

	scales := []int{1, 2}
	if with3x {
		scales = append(scales, 3)
	}
	names := map[int]string{1: bundle.StripName, 2: bundle.Strip2xName, 3: bundle.Strip3xName}

	files := map[string][]byte{
		bundle.IconName:   resources.Icon,
		bundle.Icon2xName: resources.Icon2x,
		bundle.LogoName:   resources.Logo,
		bundle.Logo2xName: resources.Logo2x,
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for _, scale := range scales {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := comp.Render(assets, earned, c.StampsRequired, scale)
			if err != nil {
				return fmt.Errorf("strip %dx: %w", scale, err)
			}
			data, err := strip.EncodePNG(img)
			if err != nil {
				return fmt.Errorf("strip %dx: %w", scale, err)
			}
			mu.Lock()
			files[names[scale]] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// loadStripAssets reads the campaign's custom art, falling back to the
// embedded defaults.
func (p *Pipeline) loadStripAssets(c *model.Campaign) (strip.Assets, error) {
	icon := resources.DefaultStampIcon
	if c.StampIconPath != "" {
		data, err := os.ReadFile(c.StampIconPath)
		if err != nil {
			return strip.Assets{}, fmt.Errorf("stamp icon %q: %w: %v", c.StampIconPath, strip.ErrAssetMissing, err)
		}
		icon = data
	}
	var background []byte
	if c.BackgroundImagePath != "" {
		data, err := os.ReadFile(c.BackgroundImagePath)
		if err != nil {
			return strip.Assets{}, fmt.Errorf("background %q: %w: %v", c.BackgroundImagePath, strip.ErrAssetMissing, err)
		}
		background = data
	}
	return strip.LoadAssets(icon, background)
}

func (p *Pipeline) styleFor(c *model.Campaign) strip.Style {
	style := strip.DefaultStyle()
	if rgb, err := pass.ParseRGB(c.BackgroundColor); err == nil {
		style.PanelColor = rgb.NRGBA()
	}
	return style
}

// packageArchive assembles the container in memory, then lands it in the
// output directory with an atomic rename. No partial archive is ever visible
// under its final name.
func (p *Pipeline) packageArchive(serial string, files map[string][]byte) (string, []byte, error) {
	var buf bytes.Buffer
	if err := bundle.WriteArchive(&buf, files); err != nil {
		return "", nil, err
	}
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(p.cfg.OutputDir, serial+".pkpass")
	if err := util.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", nil, err
	}
	return path, buf.Bytes(), nil
}

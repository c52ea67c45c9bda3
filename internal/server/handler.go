/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/passfoundry/passforge/internal/domain/model"
	"github.com/passfoundry/passforge/internal/infra/sqlite"
	"github.com/passfoundry/passforge/internal/pass"
	"github.com/passfoundry/passforge/internal/pipeline"
	"github.com/passfoundry/passforge/internal/strip"
)

const (
	maxRequestBodyBytes = 1 << 20 // campaign templates stay well under 1 MiB

	passContentType = "application/vnd.apple.pkpass"
	jsonContentType = "application/json"
)

type handler struct {
	pipe      *pipeline.Pipeline
	campaigns *sqlite.CampaignRepository
	passes    *sqlite.PassRepository
	logger    *log.Logger
	mux       *http.ServeMux
}

type responseSpec struct {
	status      int
	body        []byte
	contentType string
	disposition string
}

func newHandler(pipe *pipeline.Pipeline, campaigns *sqlite.CampaignRepository,
	passes *sqlite.PassRepository, logger *log.Logger) *handler {
	h := &handler{
		pipe:      pipe,
		campaigns: campaigns,
		passes:    passes,
		logger:    logger,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/campaigns", h.createCampaign)
	mux.HandleFunc("GET /v1/campaigns", h.listCampaigns)
	mux.HandleFunc("GET /v1/campaigns/{id}", h.getCampaign)
	mux.HandleFunc("POST /v1/passes", h.issuePass)
	mux.HandleFunc("GET /v1/passes/{serial}", h.getPass)
	mux.HandleFunc("POST /v1/passes/{serial}/stamps", h.addStamps)
	h.mux = mux
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type campaignRequest struct {
	Name                string          `json:"name"`
	TenantID            string          `json:"tenantId"`
	StampsRequired      int             `json:"stampsRequired"`
	RewardText          string          `json:"rewardText"`
	ForegroundColor     string          `json:"foregroundColor"`
	BackgroundColor     string          `json:"backgroundColor"`
	LabelColor          string          `json:"labelColor"`
	Template            json.RawMessage `json:"template,omitempty"`
	StampIconPath       string          `json:"stampIconPath,omitempty"`
	BackgroundImagePath string          `json:"backgroundImagePath,omitempty"`
}

type campaignResponse struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenantId"`
	Name           string    `json:"name"`
	StampsRequired int       `json:"stampsRequired"`
	RewardText     string    `json:"rewardText"`
	CreatedAt      time.Time `json:"createdAt"`
}

func campaignToResponse(c *model.Campaign) campaignResponse {
	return campaignResponse{
		ID:             c.ID,
		TenantID:       c.TenantID,
		Name:           c.Name,
		StampsRequired: c.StampsRequired,
		RewardText:     c.RewardText,
		CreatedAt:      c.CreatedAt,
	}
}

func (h *handler) createCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		h.writeErrorMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.StampsRequired < 1 || req.StampsRequired > strip.MaxStamps {
		h.writeErrorMessage(w, http.StatusBadRequest,
			fmt.Sprintf("stampsRequired must be between 1 and %d", strip.MaxStamps))
		return
	}
	for _, color := range []string{req.ForegroundColor, req.BackgroundColor, req.LabelColor} {
		if color == "" {
			continue
		}
		if _, err := pass.ParseRGB(color); err != nil {
			h.writeErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	c := &model.Campaign{
		ID:                  uuid.NewString(),
		TenantID:            orDefault(req.TenantID, "default"),
		Name:                req.Name,
		StampsRequired:      req.StampsRequired,
		RewardText:          req.RewardText,
		ForegroundColor:     orDefault(req.ForegroundColor, "rgb(255,255,255)"),
		BackgroundColor:     orDefault(req.BackgroundColor, "rgb(139,69,19)"),
		LabelColor:          orDefault(req.LabelColor, "rgb(255,255,255)"),
		TemplateJSON:        req.Template,
		StampIconPath:       req.StampIconPath,
		BackgroundImagePath: req.BackgroundImagePath,
		CreatedAt:           time.Now().UTC(),
	}
	if err := h.campaigns.Create(r.Context(), c); err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Printf("campaign %s created: %q, %d stamps", c.ID, c.Name, c.StampsRequired)
	h.writeJSON(w, http.StatusCreated, campaignToResponse(c))
}

func (h *handler) getCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if c == nil {
		http.NotFound(w, r)
		return
	}
	h.writeJSON(w, http.StatusOK, campaignToResponse(c))
}

func (h *handler) listCampaigns(w http.ResponseWriter, r *http.Request) {
	tenant := r.URL.Query().Get("tenant")
	if tenant == "" {
		tenant = "default"
	}
	cs, err := h.campaigns.ListByTenant(r.Context(), tenant)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]campaignResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, campaignToResponse(c))
	}
	h.writeJSON(w, http.StatusOK, out)
}

type issuePassRequest struct {
	CampaignID   string `json:"campaignId"`
	CustomerName string `json:"customerName"`
	PartnerID    string `json:"partnerId,omitempty"`
	StampsEarned int    `json:"stampsEarned"`
}

func (h *handler) issuePass(w http.ResponseWriter, r *http.Request) {
	var req issuePassRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.CampaignID == "" {
		h.writeErrorMessage(w, http.StatusBadRequest, "campaignId is required")
		return
	}

	res, err := h.pipe.Generate(r.Context(), pipeline.Request{
		CampaignID:   req.CampaignID,
		CustomerName: req.CustomerName,
		PartnerID:    req.PartnerID,
		StampsEarned: req.StampsEarned,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeResponse(w, responseSpec{
		status:      http.StatusCreated,
		body:        res.Archive,
		contentType: passContentType,
		disposition: fmt.Sprintf("attachment; filename=%q", res.SerialNumber+".pkpass"),
	})
}

type passResponse struct {
	SerialNumber string    `json:"serialNumber"`
	CampaignID   string    `json:"campaignId"`
	PartnerID    string    `json:"partnerId"`
	CustomerName string    `json:"customerName"`
	StampsEarned int       `json:"stampsEarned"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (h *handler) getPass(w http.ResponseWriter, r *http.Request) {
	p, err := h.passes.FindBySerial(r.Context(), r.PathValue("serial"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}
	h.writeJSON(w, http.StatusOK, passResponse{
		SerialNumber: p.SerialNumber,
		CampaignID:   p.CampaignID,
		PartnerID:    p.PartnerID,
		CustomerName: p.CustomerName,
		StampsEarned: p.StampsEarned,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	})
}

type addStampsRequest struct {
	StampsEarned int `json:"stampsEarned"`
}

func (h *handler) addStamps(w http.ResponseWriter, r *http.Request) {
	var req addStampsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	serial := r.PathValue("serial")

	res, err := h.pipe.UpdateStamps(r.Context(), serial, req.StampsEarned)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeResponse(w, responseSpec{
		status:      http.StatusOK,
		body:        res.Archive,
		contentType: passContentType,
		disposition: fmt.Sprintf("attachment; filename=%q", serial+".pkpass"),
	})
}

// decodeJSON enforces the content type and body limit, then decodes into v.
// A false return means the response has already been written.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if ct := r.Header.Get("Content-Type"); ct != jsonContentType {
		h.logger.Printf("content type mismatch: expected %s, actual %v", jsonContentType, ct)
		http.Error(w, "This endpoint only accepts Content-Type: application/json", http.StatusUnsupportedMediaType)
		return false
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		h.logger.Printf("failed reading request body: %v", err)
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := r.Body.Close(); err != nil {
		h.logger.Printf("failed closing request body: %v", err)
		http.Error(w, "failed to close request body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		h.logger.Printf("failed decoding request body: %v", err)
		http.Error(w, "failed to decode request body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps component failures onto HTTP statuses. Validation and asset
// problems are the client's campaign data; everything else is ours.
func (h *handler) writeError(w http.ResponseWriter, err error) {
	h.logger.Printf("request failed: %v", err)

	var v *pass.ValidationError
	switch {
	case errors.As(err, &v):
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "validation failed",
			"violations": violationMessages(v),
		})
	case errors.Is(err, pipeline.ErrCampaignNotFound),
		errors.Is(err, pipeline.ErrPassNotFound):
		h.writeErrorMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, strip.ErrAssetMissing),
		errors.Is(err, strip.ErrAssetInvalid):
		h.writeErrorMessage(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, strip.ErrNegativeCount),
		errors.Is(err, strip.ErrTooManyStamps),
		errors.Is(err, pass.ErrInvalidColor):
		h.writeErrorMessage(w, http.StatusBadRequest, err.Error())
	default:
		h.writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func violationMessages(v *pass.ValidationError) []string {
	out := make([]string, len(v.Violations))
	for i, violation := range v.Violations {
		out[i] = violation.Error()
	}
	return out
}

func (h *handler) writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Printf("failed encoding response body: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeResponse(w, responseSpec{
		status:      status,
		body:        body,
		contentType: jsonContentType,
	})
}

func (h *handler) writeResponse(w http.ResponseWriter, spec responseSpec) {
	if len(spec.body) > 0 {
		for k, v := range defaultHeaders {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", spec.contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(spec.body)))
		if spec.disposition != "" {
			w.Header().Set("Content-Disposition", spec.disposition)
		}
		w.WriteHeader(spec.status)
		if _, err := w.Write(spec.body); err != nil {
			h.logger.Printf("failed writing response body: %v", err)
		}
		return
	}

	w.WriteHeader(spec.status)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

var defaultHeaders = map[string]string{
	"Cache-Control":           "no-store",
	"X-Content-Type-Options":  "nosniff",
	"Content-Security-Policy": "default-src 'none'",
	"Referrer-Policy":         "no-referrer",
}

/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"io"
	"log"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passfoundry/passforge/internal/bundle"
	"github.com/passfoundry/passforge/internal/infra/sqlite"
	"github.com/passfoundry/passforge/internal/pass"
	"github.com/passfoundry/passforge/internal/pipeline"
	"github.com/passfoundry/passforge/internal/signature"
)

func testIdentity(t *testing.T) *signature.Identity {
	t.Helper()

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	caTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Passforge Test CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		IsCA:                  true,
		BasicConstraintsValid: true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTmpl, caTmpl, &caKey.PublicKey, caKey)
	require.NoError(t, err)
	caCert, err := x509.ParseCertificate(caDER)
	require.NoError(t, err)

	leafKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	leafTmpl := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "Passforge Test Signing"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTmpl, caCert, &leafKey.PublicKey, caKey)
	require.NoError(t, err)
	leafCert, err := x509.ParseCertificate(leafDER)
	require.NoError(t, err)

	return signature.NewIdentity(leafCert, leafKey, []*x509.Certificate{caCert})
}

func newTestHandler(t *testing.T) *handler {
	t.Helper()

	db, err := sqlite.InitDB(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.CloseDB(db) })

	signer, err := signature.NewSigner(signature.FormatPKCS7, testIdentity(t))
	require.NoError(t, err)

	logger := log.New(io.Discard, "", 0)
	campaigns := sqlite.NewCampaignRepository(db)
	passes := sqlite.NewPassRepository(db)
	pipe := pipeline.New(pipeline.Config{
		PassTypeIdentifier: "pass.com.passfoundry.coffee",
		TeamIdentifier:     "PF123456",
		OutputDir:          t.TempDir(),
	}, signer, campaigns, passes, sqlite.NewRedemptionRepository(db), logger)

	return newHandler(pipe, campaigns, passes, logger)
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", jsonContentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createTestCampaign(t *testing.T, h *handler) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/v1/campaigns", campaignRequest{
		Name:           "Coffee Club",
		StampsRequired: 10,
		RewardText:     "Free coffee",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var c campaignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	require.NotEmpty(t, c.ID)
	return c.ID
}

func TestHandler_CampaignLifecycle(t *testing.T) {
	h := newTestHandler(t)
	id := createTestCampaign(t, h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/campaigns/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var c campaignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "Coffee Club", c.Name)
	assert.Equal(t, 10, c.StampsRequired)
	assert.Equal(t, "default", c.TenantID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/campaigns", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []campaignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/campaigns/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_CreateCampaignValidation(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/campaigns", campaignRequest{
		Name:           "Too Big",
		StampsRequired: 31,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/campaigns", campaignRequest{
		StampsRequired: 10,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/campaigns", campaignRequest{
		Name:            "Bad Color",
		StampsRequired:  10,
		BackgroundColor: "blurple",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_IssuePass(t *testing.T) {
	h := newTestHandler(t)
	id := createTestCampaign(t, h)

	rec := doJSON(t, h, http.MethodPost, "/v1/passes", issuePassRequest{
		CampaignID:   id,
		CustomerName: "Dana",
		StampsEarned: 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, passContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".pkpass")

	files, err := bundle.ReadArchive(rec.Body.Bytes())
	require.NoError(t, err)
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	require.NoError(t, bundle.VerifyFileSet(names))

	var d pass.Descriptor
	require.NoError(t, json.Unmarshal(files[bundle.DescriptorName], &d))
	assert.Equal(t, "4 of 10", d.StoreCard.HeaderFields[0].Value)
}

func TestHandler_IssuePass_UnknownCampaign(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/passes", issuePassRequest{
		CampaignID:   "119f6fc1-f273-4efb-a4c8-9f0e21f0c5d6",
		CustomerName: "Dana",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_IssuePass_FieldLimitViolation(t *testing.T) {
	h := newTestHandler(t)

	tpl := pass.Template{
		Header: []pass.Field{
			{Key: "a", Value: "1"}, {Key: "b", Value: "2"}, {Key: "c", Value: "3"},
		},
	}
	tplJSON, err := json.Marshal(tpl)
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodPost, "/v1/campaigns", campaignRequest{
		Name:           "Crowded Header",
		StampsRequired: 10,
		Template:       tplJSON,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var c campaignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))

	rec = doJSON(t, h, http.MethodPost, "/v1/passes", issuePassRequest{
		CampaignID:   c.ID,
		CustomerName: "Dana",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Error      string   `json:"error"`
		Violations []string `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Violations, 1)
	assert.Contains(t, body.Violations[0], "header")
}

func TestHandler_AddStampsAndLookup(t *testing.T) {
	h := newTestHandler(t)
	id := createTestCampaign(t, h)

	rec := doJSON(t, h, http.MethodPost, "/v1/passes", issuePassRequest{
		CampaignID:   id,
		CustomerName: "Dana",
		StampsEarned: 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	files, err := bundle.ReadArchive(rec.Body.Bytes())
	require.NoError(t, err)
	var d pass.Descriptor
	require.NoError(t, json.Unmarshal(files[bundle.DescriptorName], &d))
	serial := d.SerialNumber

	rec = doJSON(t, h, http.MethodPost, "/v1/passes/"+serial+"/stamps", addStampsRequest{StampsEarned: 6})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, passContentType, rec.Header().Get("Content-Type"))

	files, err = bundle.ReadArchive(rec.Body.Bytes())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(files[bundle.DescriptorName], &d))
	assert.Equal(t, "6 of 10", d.StoreCard.HeaderFields[0].Value)

	lookup := httptest.NewRecorder()
	h.ServeHTTP(lookup, httptest.NewRequest(http.MethodGet, "/v1/passes/"+serial, nil))
	require.Equal(t, http.StatusOK, lookup.Code)
	var p passResponse
	require.NoError(t, json.Unmarshal(lookup.Body.Bytes(), &p))
	assert.Equal(t, 6, p.StampsEarned)
	assert.Equal(t, id, p.CampaignID)
}

func TestHandler_AddStamps_UnknownSerial(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/passes/missing/stamps", addStampsRequest{StampsEarned: 6})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_RejectsWrongContentType(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/passes", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

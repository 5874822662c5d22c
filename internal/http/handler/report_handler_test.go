package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/auth"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/opsboard/report-api/internal/http/handler"
	"github.com/opsboard/report-api/internal/report"
	"github.com/opsboard/report-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var orgID = uuid.MustParse("7b7c8c56-1f0e-4b8e-9d5a-3c2f1e0d9a8b")

type fakeGenerator struct {
	err      error
	requests []domain.ReportRequest
	exports  int
}

func (f *fakeGenerator) Generate(ctx context.Context, req domain.ReportRequest) (*report.Report, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &report.Report{Clients: report.ClientsSection{Total: 7}}, nil
}

func (f *fakeGenerator) GenerateExport(ctx context.Context, req domain.ReportRequest) (*report.ExportDocument, error) {
	f.requests = append(f.requests, req)
	f.exports++
	if f.err != nil {
		return nil, f.err
	}
	return &report.ExportDocument{Sections: []report.ExportSection{{Key: "summary", Title: "Resumo Executivo"}}}, nil
}

func withUser(r *http.Request) *http.Request {
	ctx := auth.WithUserContext(r.Context(), &auth.UserContext{
		UserID:         uuid.New(),
		Roles:          []domain.UserRoleType{domain.RoleManager},
		OrganizationID: orgID,
	})
	return r.WithContext(ctx)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) domain.APIError {
	t.Helper()
	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr
}

func TestReportHandler_GetPeriodReport(t *testing.T) {
	gen := &fakeGenerator{}
	h := handler.NewReportHandler(gen, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/reports/period?startDate=2024-03-01&endDate=2024-03-31", nil)
	rec := httptest.NewRecorder()
	h.GetPeriodReport(rec, withUser(req))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Len(t, gen.requests, 1)
	assert.Equal(t, "2024-03-01", gen.requests[0].StartDate)
	assert.Equal(t, "2024-03-31", gen.requests[0].EndDate)
	assert.Equal(t, orgID, gen.requests[0].OrganizationID)
	assert.Zero(t, gen.exports)
	assert.Contains(t, rec.Body.String(), `"total":7`)
}

func TestReportHandler_ExportableFormat(t *testing.T) {
	gen := &fakeGenerator{}
	h := handler.NewReportHandler(gen, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet,
		"/reports/period?startDate=2024-03-01&endDate=2024-03-31&format=exportable", nil)
	rec := httptest.NewRecorder()
	h.GetPeriodReport(rec, withUser(req))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, gen.exports)
	assert.Contains(t, rec.Body.String(), "Resumo Executivo")
}

func TestReportHandler_PostPeriodReport(t *testing.T) {
	gen := &fakeGenerator{}
	h := handler.NewReportHandler(gen, zap.NewNop())

	body := `{"startDate":"2024-03-01","endDate":"2024-03-07","format":"structured"}`
	req := httptest.NewRequest(http.MethodPost, "/reports/period", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.PostPeriodReport(rec, withUser(req))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, gen.requests, 1)
	assert.Equal(t, "2024-03-07", gen.requests[0].EndDate)
	assert.Equal(t, orgID, gen.requests[0].OrganizationID)
}

func TestReportHandler_PostRejectsMalformedBody(t *testing.T) {
	gen := &fakeGenerator{}
	h := handler.NewReportHandler(gen, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/reports/period", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.PostPeriodReport(rec, withUser(req))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.ErrorTypeBadRequest, decodeError(t, rec).Type)
	assert.Empty(t, gen.requests)
}

func TestReportHandler_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"missing start", "endDate=2024-03-31", "startDate"},
		{"malformed end", "startDate=2024-03-01&endDate=31/03/2024", "endDate"},
		{"unknown format", "startDate=2024-03-01&endDate=2024-03-31&format=pdf", "format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			h := handler.NewReportHandler(gen, zap.NewNop())

			req := httptest.NewRequest(http.MethodGet, "/reports/period?"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.GetPeriodReport(rec, withUser(req))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			apiErr := decodeError(t, rec)
			assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
			assert.Contains(t, apiErr.Errors, tt.field)
			assert.Empty(t, gen.requests)
		})
	}
}

func TestReportHandler_RequiresUser(t *testing.T) {
	gen := &fakeGenerator{}
	h := handler.NewReportHandler(gen, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/reports/period?startDate=2024-03-01&endDate=2024-03-31", nil)
	rec := httptest.NewRecorder()
	h.GetPeriodReport(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, gen.requests)
}

func TestReportHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		errType  string
		inDetail string
	}{
		{"invalid range", fmt.Errorf("%w: %w", service.ErrInvalidInput, report.ErrInvalidRange), http.StatusBadRequest, domain.ErrorTypeBadRequest, "invalid"},
		{"unauthorized", service.ErrUnauthorized, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, "Authentication"},
		{"forbidden", service.ErrPermissionDenied, http.StatusForbidden, domain.ErrorTypeForbidden, "permission"},
		{"unavailable", fmt.Errorf("%w: boom", service.ErrSnapshotUnavailable), http.StatusInternalServerError, domain.ErrorTypeInternal, "Failed to generate report"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, domain.ErrorTypeInternal, "Failed to generate report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewReportHandler(&fakeGenerator{err: tt.err}, zap.NewNop())

			req := httptest.NewRequest(http.MethodGet, "/reports/period?startDate=2024-03-01&endDate=2024-03-31", nil)
			rec := httptest.NewRecorder()
			h.GetPeriodReport(rec, withUser(req))

			require.Equal(t, tt.status, rec.Code)
			apiErr := decodeError(t, rec)
			assert.Equal(t, tt.errType, apiErr.Type)
			assert.Contains(t, apiErr.Detail, tt.inDetail)
			assert.NotContains(t, apiErr.Detail, "boom")
		})
	}
}

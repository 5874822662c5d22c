package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/opsboard/report-api/internal/auth"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/opsboard/report-api/internal/logger"
	"github.com/opsboard/report-api/internal/report"
	"github.com/opsboard/report-api/internal/service"
	"go.uber.org/zap"
)

// ReportGenerator is the subset of service.ReportService used by the handler
type ReportGenerator interface {
	Generate(ctx context.Context, req domain.ReportRequest) (*report.Report, error)
	GenerateExport(ctx context.Context, req domain.ReportRequest) (*report.ExportDocument, error)
}

type ReportHandler struct {
	reportService ReportGenerator
	logger        *zap.Logger
}

func NewReportHandler(reportService ReportGenerator, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// @Summary Get period report
// @Description Builds the management report for the caller's organization over [startDate, endDate].
// @Description Trends compare the period with the preceding period of equal length and with the same
// @Description dates one month earlier. Dates are calendar days in the configured report timezone.
// @Description
// @Description `format=exportable` regroups the same numbers into titled sections ready for rendering
// @Description and requires the reports:export permission.
// @Tags Reports
// @Produce json
// @Param startDate query string true "First day of the period (YYYY-MM-DD)"
// @Param endDate query string true "Last day of the period (YYYY-MM-DD)"
// @Param format query string false "structured (default) or exportable" Enums(structured, exportable)
// @Success 200 {object} report.Report
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/period [get]
func (h *ReportHandler) GetPeriodReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := domain.ReportRequest{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Format:    domain.ReportFormat(q.Get("format")),
	}
	h.serve(w, r, req)
}

// @Summary Generate period report
// @Description Same as GET /reports/period with the parameters in a JSON body.
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body domain.ReportRequest true "Report period"
// @Success 200 {object} report.Report
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/period [post]
func (h *ReportHandler) PostPeriodReport(w http.ResponseWriter, r *http.Request) {
	var req domain.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.serve(w, r, req)
}

func (h *ReportHandler) serve(w http.ResponseWriter, r *http.Request, req domain.ReportRequest) {
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	req.OrganizationID = user.OrganizationID

	var (
		body interface{}
		err  error
	)
	if req.EffectiveFormat() == domain.ReportFormatExportable {
		body, err = h.reportService.GenerateExport(r.Context(), req)
	} else {
		body, err = h.reportService.Generate(r.Context(), req)
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, body)
}

func (h *ReportHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "You do not have permission to view this report")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		log := logger.WithRequest(h.logger, r.Method, r.URL.Path, r.Header.Get("X-Request-ID"))
		log.Error("failed to generate report", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to generate report")
	}
}

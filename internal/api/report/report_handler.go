package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/FACorreiaa/tripwise/internal/api"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

func yearParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y <= 0 {
		return 0, fmt.Errorf("invalid year")
	}
	return y, nil
}

// GetReport godoc
// @Summary      Admin summary report
// @Tags         admin
// @Produce      json
// @Param        year query int false "Calendar year (default current)"
// @Success      200 {object} types.AdminReport
// @Security     BearerAuth
// @Router       /admin/reports [get]
func (h *HandlerImpl) GetReport(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.service.Summary(r.Context(), year)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to build report")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, report)
}

// ExportReport godoc
// @Summary      Admin summary report as an XLSX workbook
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        year query int false "Calendar year (default current)"
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /admin/reports/export [get]
func (h *HandlerImpl) ExportReport(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.service.Summary(r.Context(), year)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to build report")
		return
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, report); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render report workbook", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to export report")
		return
	}
	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tripwise-report-%d.xlsx"`, report.Year))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to send report workbook", slog.Any("error", err))
	}
}

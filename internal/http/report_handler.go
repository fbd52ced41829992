package http

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/coop-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/internal/service"
)

type reportHandler struct {
	reportSvc service.ReportService
}

func newReportHandler(reportSvc service.ReportService) *reportHandler {
	return &reportHandler{
		reportSvc: reportSvc,
	}
}

func (h *reportHandler) GetDashboard(w http.ResponseWriter, r *http.Request) error {
	dashboard, err := h.reportSvc.DashboardMetrics(r.Context())
	if err != nil {
		return fmt.Errorf("report service dashboard metrics: %w", err)
	}

	return writeData(w, dashboard)
}

func (h *reportHandler) GetReport(w http.ResponseWriter, r *http.Request) error {
	var asOf model.Date
	if err := runtime.BindQueryParameter("form", true, false, "asOf", r.URL.Query(), &asOf); err != nil {
		return apperr.ValidationErr.WrapParent(&runtime.InvalidParamFormatError{ParamName: "asOf", Err: err})
	}

	rep, err := h.reportSvc.ReportMetrics(r.Context(), asOf)
	if err != nil {
		return fmt.Errorf("report service report metrics: %w", err)
	}

	return writeData(w, rep)
}

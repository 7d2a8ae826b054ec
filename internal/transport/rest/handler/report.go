package handler

import (
	"net/http"

	"classpulse/internal/service"
	"classpulse/internal/transport/rest/middleware"
)

// ReportHandler handles report endpoints
type ReportHandler struct {
	reportSvc *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportSvc *service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Daily handles POST /v1/reports/daily. The aggregate is returned to the
// caller and mailed to them; a delivery failure does not fail the request.
func (h *ReportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	report := h.reportSvc.RunDailyFor(r.Context(), middleware.GetEmail(r.Context()))
	writeJSON(w, http.StatusOK, map[string]interface{}{"report": report})
}

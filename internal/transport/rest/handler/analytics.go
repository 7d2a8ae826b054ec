package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"classpulse/internal/service"
)

// AnalyticsHandler handles the durable snapshot path and the aggregation
// endpoints.
type AnalyticsHandler struct {
	snapshotSvc  *service.SnapshotService
	analyticsSvc *service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(snapshotSvc *service.SnapshotService, analyticsSvc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		snapshotSvc:  snapshotSvc,
		analyticsSvc: analyticsSvc,
	}
}

// AppendEvent handles POST /v1/analytics/events
func (h *AnalyticsHandler) AppendEvent(w http.ResponseWriter, r *http.Request) {
	var req service.AppendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.snapshotSvc.Append(r.Context(), &req); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// AttendanceRequest is the request body for an attendance snapshot
type AttendanceRequest struct {
	SessionID string     `json:"sessionId"`
	StudentID string     `json:"studentId"`
	Status    string     `json:"status"`
	TS        *time.Time `json:"ts,omitempty"`
}

// Attendance handles POST /v1/attendance/snapshot
func (h *AnalyticsHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	var req AttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.snapshotSvc.RecordAttendance(r.Context(), req.SessionID, req.StudentID, req.Status, req.TS); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Summary handles GET /v1/sessions/{id}/summary
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	summary, err := h.analyticsSvc.Summarize(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Leaderboard handles GET /v1/sessions/{id}/leaderboard
func (h *AnalyticsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	top := 20
	if topStr := r.URL.Query().Get("top"); topStr != "" {
		if n, err := strconv.Atoi(topStr); err == nil && n > 0 {
			top = n
		}
	}

	entries, err := h.analyticsSvc.Leaderboard(r.Context(), id, top)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

// Rank handles GET /v1/sessions/{id}/leaderboard/{studentId}
func (h *AnalyticsHandler) Rank(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	rank, err := h.analyticsSvc.Rank(r.Context(), vars["id"], vars["studentId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"studentId": vars["studentId"],
		"rank":      rank,
	})
}

// Alert handles GET /v1/analytics/alert
func (h *AnalyticsHandler) Alert(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"alert": h.analyticsSvc.Alert()})
}

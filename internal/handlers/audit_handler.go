package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"crisp/interview/internal/audit"
	"crisp/interview/internal/models"
	"crisp/interview/internal/utils"
)

type AuditHandler struct {
	auditManager *audit.Manager
}

func NewAuditHandler(auditManager *audit.Manager) *AuditHandler {
	return &AuditHandler{auditManager: auditManager}
}

// SessionRecords handles GET /api/v1/interview/audit/session/{session_id}
func (ah *AuditHandler) SessionRecords(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	if sessionID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_session_id",
			Message: "session_id is required",
		})
		return
	}

	records, err := ah.auditManager.GetBySession(sessionID)
	if err != nil {
		log.Printf("Failed to fetch audit records: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "audit_error",
			Message: "failed to fetch audit records",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"total":      len(records),
		"records":    records,
	})
}

// Export handles GET /api/v1/interview/audit/export
// Query params:
// - days: number of days to look back (default: 7)
// - limit: maximum number of records (optional)
func (ah *AuditHandler) Export(w http.ResponseWriter, r *http.Request) {
	days := 7
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		if d, err := strconv.Atoi(daysParam); err == nil && d > 0 {
			days = d
		}
	}

	limit := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 {
			limit = l
		}
	}

	since := time.Now().AddDate(0, 0, -days)
	records, err := ah.auditManager.GetSince(since, limit)
	if err != nil {
		log.Printf("Failed to fetch audit records: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "audit_error",
			Message: "failed to fetch audit records",
		})
		return
	}

	jsonl, err := ah.auditManager.ExportToJSONL(records)
	if err != nil {
		log.Printf("Failed to serialize audit records: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "audit_error",
			Message: "failed to serialize audit records",
		})
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=score_audit.jsonl")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonl)
}

// Stats handles GET /api/v1/interview/audit/stats
func (ah *AuditHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := ah.auditManager.Stats()
	if err != nil {
		log.Printf("Failed to compute audit stats: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "audit_error",
			Message: "failed to compute audit stats",
		})
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

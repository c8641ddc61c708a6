package routers

import (
	"crisp/interview/internal/handlers"
	"crisp/interview/internal/middleware"
	"crisp/interview/internal/models"

	"github.com/go-chi/chi/v5"
)

// RecruiterRoutes registers the interviewer dashboard surface. All
// routes sit behind bearer auth; handlers may be nil when their
// backing store is not configured.
func RecruiterRoutes(router *chi.Mux, jwtSecret string, candidateHandler *handlers.CandidateHandler, interviewHandler *handlers.InterviewHandler, auditHandler *handlers.AuditHandler) {
	router.Route("/api/v1/recruiter", func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwtSecret))

		if candidateHandler != nil {
			r.Route("/candidates", func(r chi.Router) {
				r.With(middleware.ValidateRequest[*models.CreateCandidateRequest]()).Post("/", candidateHandler.CreateHandler)
				r.Get("/", candidateHandler.ListHandler)
				r.Get("/stats", candidateHandler.StatsHandler)
				r.Get("/{id}", candidateHandler.GetHandler)
				r.Post("/{id}/complete", candidateHandler.CompleteHandler)
				r.Delete("/{id}", candidateHandler.DeleteHandler)
			})
		}

		if interviewHandler != nil {
			r.Route("/interviews", func(r chi.Router) {
				r.With(middleware.ValidateRequest[*models.CreateInterviewRequest]()).Post("/", interviewHandler.CreateHandler)
				r.Get("/{id}", interviewHandler.GetHandler)
				r.Get("/candidate/{candidateId}", interviewHandler.ListByCandidateHandler)
				r.Put("/{id}/status/{status}", interviewHandler.StatusHandler)
			})
		}

		if auditHandler != nil {
			r.Route("/audit", func(r chi.Router) {
				r.Get("/session/{session_id}", auditHandler.SessionRecords)
				r.Get("/export", auditHandler.Export)
				r.Get("/stats", auditHandler.Stats)
			})
		}
	})
}

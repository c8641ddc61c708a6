package routers

import (
	"crisp/interview/internal/handlers"
	"crisp/interview/internal/middleware"
	"crisp/interview/internal/models"

	"github.com/go-chi/chi/v5"
)

// InterviewRoutes registers the interviewee-facing session surface and
// the standalone AI endpoints.
func InterviewRoutes(router *chi.Mux, sessionHandler *handlers.SessionHandler, aiHandler *handlers.AIHandler) {
	router.Route("/api/v1/interview", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.With(middleware.ValidateRequest[*models.StartSessionRequest]()).Post("/", sessionHandler.StartHandler)
			r.Get("/{id}", sessionHandler.GetHandler)
			r.Get("/{id}/remaining", sessionHandler.RemainingHandler)
			r.With(middleware.ValidateRequest[*models.SubmitAnswerRequest]()).Post("/{id}/answers", sessionHandler.SubmitHandler)
			r.Post("/{id}/skip", sessionHandler.SkipHandler)
			r.Post("/{id}/advance", sessionHandler.AdvanceHandler)
			r.Post("/{id}/pause", sessionHandler.PauseHandler)
			r.Post("/{id}/resume", sessionHandler.ResumeHandler)
			r.Post("/{id}/complete", sessionHandler.CompleteHandler)
			r.Post("/{id}/reset", sessionHandler.ResetHandler)
			r.With(middleware.ValidateRequest[*models.JumpRequest]()).Post("/{id}/jump", sessionHandler.JumpHandler)
			r.Post("/{id}/resume-check", sessionHandler.ResumeCheckHandler)
			r.Post("/{id}/resume-accept", sessionHandler.ResumeAcceptHandler)
			r.Post("/{id}/start-fresh", sessionHandler.StartFreshHandler)
		})

		r.With(middleware.ValidateRequest[*models.ScoreRequest]()).Post("/score", aiHandler.ScoreHandler)
		r.With(middleware.ValidateRequest[*models.GenerateQuestionsRequest]()).Post("/questions", aiHandler.QuestionsHandler)
		r.With(middleware.ValidateRequest[*models.SummarizeRequest]()).Post("/summary", aiHandler.SummaryHandler)
	})
}

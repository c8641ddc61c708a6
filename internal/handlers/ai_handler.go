package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crisp/interview/internal/middleware"
	"crisp/interview/internal/models"
	"crisp/interview/internal/questions"
	"crisp/interview/internal/scoring"
	"crisp/interview/internal/utils"
)

type AIHandler struct {
	scorer    *scoring.Scorer
	questions *questions.Service
	logger    *zap.Logger
}

func NewAIHandler(scorer *scoring.Scorer, questionSvc *questions.Service, logger *zap.Logger) *AIHandler {
	return &AIHandler{
		scorer:    scorer,
		questions: questionSvc,
		logger:    logger,
	}
}

// ScoreHandler evaluates one answer outside of a live session, for the
// dashboard's re-score path. Scoring never fails: the deterministic
// heuristic covers provider outages.
func (h *AIHandler) ScoreHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.ScoreRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	resp := h.scorer.Score(r.Context(), req, false)

	h.logger.Info("Answer scored",
		zap.String("request_id", req.RequestID),
		zap.Int("score", resp.Result.Score),
		zap.String("source", resp.Metadata.Source),
		zap.Int("processing_time_ms", resp.Metadata.ProcessingTime))

	utils.JSON(w, http.StatusOK, resp)
}

// QuestionsHandler generates an interview question set from a
// candidate profile, falling back to the static set when generation
// is unavailable.
func (h *AIHandler) QuestionsHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.GenerateQuestionsRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	resp := h.questions.Generate(r.Context(), &req.Profile, req.Count, req.RequestID)

	h.logger.Info("Questions generated",
		zap.String("request_id", req.RequestID),
		zap.Int("count", resp.Total),
		zap.String("source", resp.Source))

	utils.JSON(w, http.StatusOK, resp)
}

// SummaryHandler produces the overall interview summary from scored
// answers.
func (h *AIHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SummarizeRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	resp := h.scorer.Summarize(r.Context(), req.CandidateName, req.Answers, req.OverallScore, req.RequestID)

	h.logger.Info("Summary generated",
		zap.String("request_id", req.RequestID),
		zap.String("source", resp.Metadata.Source))

	utils.JSON(w, http.StatusOK, resp)
}

func generateRequestID() string {
	return uuid.New().String()
}

// ensureRequestID generates a request ID if one is not provided
func ensureRequestID(requestID string) string {
	if requestID == "" {
		return generateRequestID()
	}
	return requestID
}

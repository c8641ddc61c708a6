package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"crisp/interview/internal/middleware"
	"crisp/interview/internal/models"
	"crisp/interview/internal/repositories/mongo"
	"crisp/interview/internal/utils"
)

type InterviewHandler struct {
	repo   *mongo.InterviewRepo
	logger *zap.Logger
}

func NewInterviewHandler(repo *mongo.InterviewRepo, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{repo: repo, logger: logger}
}

func (h *InterviewHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateInterviewRequest](r)

	interview, err := h.repo.Create(r.Context(), &models.Interview{
		CandidateID: req.CandidateID,
		QuestionIDs: req.QuestionIDs,
	})
	if err != nil {
		h.logger.Error("Failed to create interview", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "create_failed",
			Message: "Failed to create interview",
		})
		return
	}

	utils.JSON(w, http.StatusCreated, interview)
}

func (h *InterviewHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	interview, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, interview)
}

func (h *InterviewHandler) ListByCandidateHandler(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateId")
	interviews, err := h.repo.ListByCandidate(r.Context(), candidateID)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, interviews)
}

// StatusHandler transitions an interview between scheduled,
// in-progress, completed, and cancelled.
func (h *InterviewHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := utils.NormalizeStatus(chi.URLParam(r, "status"))

	if !models.ValidInterviewStatuses[status] {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_status",
			Message: "Status must be one of: scheduled, in-progress, completed, cancelled",
		})
		return
	}

	interview, err := h.repo.SetStatus(r.Context(), id, status)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, interview)
}

func (h *InterviewHandler) writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, mongo.ErrNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "interview_not_found",
			Message: "Interview does not exist",
		})
		return
	}
	h.logger.Error("Interview operation failed", zap.Error(err))
	utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Code:    "interview_error",
		Message: "Interview operation failed",
	})
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"crisp/interview/internal/middleware"
	"crisp/interview/internal/models"
	"crisp/interview/internal/repositories/mongo"
	"crisp/interview/internal/scoring"
	"crisp/interview/internal/utils"
)

type CandidateHandler struct {
	repo   *mongo.CandidateRepo
	scorer *scoring.Scorer
	logger *zap.Logger
}

func NewCandidateHandler(repo *mongo.CandidateRepo, scorer *scoring.Scorer, logger *zap.Logger) *CandidateHandler {
	return &CandidateHandler{
		repo:   repo,
		scorer: scorer,
		logger: logger,
	}
}

func (h *CandidateHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateCandidateRequest](r)

	candidate, err := h.repo.Create(r.Context(), &models.Candidate{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Position:   req.Position,
		Experience: req.Experience,
		Skills:     req.Skills,
	})
	if err != nil {
		h.logger.Error("Failed to create candidate", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "create_failed",
			Message: "Failed to create candidate",
		})
		return
	}

	utils.JSON(w, http.StatusCreated, candidate)
}

func (h *CandidateHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	candidate, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, candidate)
}

// ListHandler supports ?status= and ?limit= filters.
func (h *CandidateHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	status := utils.NormalizeStatus(r.URL.Query().Get("status"))

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	candidates, err := h.repo.List(r.Context(), status, limit)
	if err != nil {
		h.logger.Error("Failed to list candidates", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "list_failed",
			Message: "Failed to list candidates",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.CandidatesResponse{
		Total: len(candidates),
		Items: candidates,
	})
}

// CompleteHandler finalizes a candidate: generates the overall summary
// from their scored answers and marks the record completed.
func (h *CandidateHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	candidate, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	summary := h.scorer.Summarize(r.Context(), candidate.Name, candidate.Answers, candidate.Score, generateRequestID())

	updated, err := h.repo.Complete(r.Context(), id, summary.Summary)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	h.logger.Info("Candidate completed",
		zap.String("candidate_id", id),
		zap.Int("score", updated.Score),
		zap.String("summary_source", summary.Metadata.Source))

	utils.JSON(w, http.StatusOK, updated)
}

func (h *CandidateHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CandidateHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute candidate stats", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "stats_failed",
			Message: "Failed to compute candidate statistics",
		})
		return
	}
	utils.JSON(w, http.StatusOK, stats)
}

func (h *CandidateHandler) writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, mongo.ErrNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "candidate_not_found",
			Message: "Candidate does not exist",
		})
		return
	}
	h.logger.Error("Candidate operation failed", zap.Error(err))
	utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Code:    "candidate_error",
		Message: "Candidate operation failed",
	})
}

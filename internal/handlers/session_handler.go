package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"crisp/interview/internal/middleware"
	"crisp/interview/internal/models"
	"crisp/interview/internal/questions"
	"crisp/interview/internal/session"
	"crisp/interview/internal/utils"
)

// resumeReplyWindow bounds how long a resume check waits for its
// debounced decision before treating the call as superseded.
const resumeReplyWindow = 2 * time.Second

type SessionHandler struct {
	sessions  *session.Manager
	resume    *session.ResumePolicy
	questions *questions.Service
	logger    *zap.Logger
}

func NewSessionHandler(sessions *session.Manager, resume *session.ResumePolicy, questionSvc *questions.Service, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:  sessions,
		resume:    resume,
		questions: questionSvc,
		logger:    logger,
	}
}

// StartHandler creates a session. Questions come from the request
// body when supplied, otherwise they are generated from the profile.
func (h *SessionHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartSessionRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	qs := req.Questions
	if len(qs) == 0 {
		profile := req.Profile
		if profile == nil {
			profile = &models.CandidateProfile{Name: req.CandidateID, Role: "Software Engineer"}
		}
		generated := h.questions.Generate(r.Context(), profile, req.Count, req.RequestID)
		qs = generated.Items
	}

	state, err := h.sessions.Start(r.Context(), req.CandidateID, qs)
	if err != nil {
		h.writeSessionError(w, err, req.RequestID)
		return
	}

	h.logger.Info("Session started",
		zap.String("request_id", req.RequestID),
		zap.String("session_id", state.ID),
		zap.String("candidate_id", req.CandidateID),
		zap.Int("questions", len(state.Questions)))

	utils.JSON(w, http.StatusCreated, state)
}

func (h *SessionHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, state)
}

// RemainingHandler reports the live countdown value for the current
// question.
func (h *SessionHandler) RemainingHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	remaining, err := h.sessions.RemainingNow(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]int{"remaining": remaining})
}

func (h *SessionHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req := middleware.GetValidatedRequest[*models.SubmitAnswerRequest](r)

	state, err := h.sessions.SubmitAnswer(r.Context(), id, req.QuestionID, req.Text, req.TimeTaken, req.AutoSubmit)
	if err != nil {
		h.writeSessionError(w, err, req.RequestID)
		return
	}
	utils.JSON(w, http.StatusOK, state)
}

func (h *SessionHandler) SkipHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := h.sessions.Skip(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, state)
}

func (h *SessionHandler) AdvanceHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := h.sessions.Advance(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, state)
}

func (h *SessionHandler) PauseHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := h.sessions.Pause(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, state)
}

func (h *SessionHandler) ResumeHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := h.sessions.Resume(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, state)
}

func (h *SessionHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := h.sessions.Complete(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, state)
}

func (h *SessionHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := h.sessions.Reset(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, state)
}

// JumpHandler moves to an arbitrary question index. Review path only.
func (h *SessionHandler) JumpHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req := middleware.GetValidatedRequest[*models.JumpRequest](r)

	state, err := h.sessions.Jump(r.Context(), id, req.Index)
	if err != nil {
		h.writeSessionError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, state)
}

// ResumeCheckHandler runs the welcome-back policy for a loading
// client. Rapid repeated checks collapse; a superseded call answers
// "none".
func (h *SessionHandler) ResumeCheckHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	decisions := make(chan session.Decision, 1)
	err := h.resume.Evaluate(r.Context(), id, func(d session.Decision) {
		decisions <- d
	})
	if err != nil {
		h.writeSessionError(w, err, "")
		return
	}

	select {
	case d := <-decisions:
		utils.JSON(w, http.StatusOK, map[string]string{"decision": string(d)})
	case <-time.After(resumeReplyWindow):
		utils.JSON(w, http.StatusOK, map[string]string{"decision": string(session.DecisionNone)})
	case <-r.Context().Done():
		utils.JSON(w, http.StatusOK, map[string]string{"decision": string(session.DecisionNone)})
	}
}

// ResumeAcceptHandler continues the session where it left off.
func (h *SessionHandler) ResumeAcceptHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := h.resume.Resume(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, state)
}

// StartFreshHandler discards progress after a declined resume prompt.
func (h *SessionHandler) StartFreshHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := h.resume.StartFresh(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, err, "")
		return
	}
	utils.JSON(w, http.StatusOK, state)
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "session_not_found",
			Message: "Session does not exist",
		})
	case errors.Is(err, session.ErrCompleted):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "session_completed",
			Message: "Session is already complete",
		})
	case errors.Is(err, session.ErrLastQuestion):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "last_question",
			Message: "Already at the final question",
		})
	case errors.Is(err, session.ErrIndexOutOfRange):
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_index",
			Message: "Question index is out of range",
		})
	case errors.Is(err, session.ErrNoQuestions):
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "no_questions",
			Message: "Cannot start a session without questions",
		})
	default:
		h.logger.Error("Session operation failed", zap.Error(err), zap.String("request_id", requestID))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "session_error",
			Message: "Session operation failed",
		})
	}
}

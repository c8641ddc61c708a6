package scoring

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crisp/interview/internal/metrics"
	"crisp/interview/internal/models"
	"crisp/interview/internal/session"
)

// CandidateStore folds scored answers into the candidate record.
type CandidateStore interface {
	AppendScoredAnswer(ctx context.Context, id string, answer models.ScoredAnswer) (*models.Candidate, error)
}

// AuditSink receives the audit trail of scoring runs.
type AuditSink interface {
	StorePendingContext(ctx *models.ScoreContext)
	RecordScore(record *models.ScoreRecord) error
	DiscardPendingContext(requestID string)
}

// Dispatcher runs the scoring pipeline for answer events: normalize,
// score (AI or heuristic), verify the session has not moved on, then
// fold the result into the candidate record and the audit trail.
// Scoring runs asynchronously so submissions return immediately.
type Dispatcher struct {
	scorer     *Scorer
	sessions   *session.Manager
	candidates CandidateStore // nil disables candidate folding
	audit      AuditSink      // nil disables the audit trail
	logger     *zap.Logger
	timeout    time.Duration

	wg sync.WaitGroup
}

func NewDispatcher(scorer *Scorer, sessions *session.Manager, candidates CandidateStore, audit AuditSink, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		scorer:     scorer,
		sessions:   sessions,
		candidates: candidates,
		audit:      audit,
		logger:     logger,
		timeout:    30 * time.Second,
	}
}

// HandleAnswer is the session manager's answer sink. It must not
// block: the pipeline runs in its own goroutine.
func (d *Dispatcher) HandleAnswer(ev session.AnswerEvent) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.process(ev)
	}()
}

// Wait blocks until all in-flight scoring runs finish. Used on
// shutdown and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) process(ev session.AnswerEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	requestID := uuid.New().String()
	if d.audit != nil {
		d.audit.StorePendingContext(&models.ScoreContext{
			RequestID:   requestID,
			SessionID:   ev.SessionID,
			CandidateID: ev.CandidateID,
			QuestionID:  ev.Question.ID,
			Answer:      ev.Answer.Text,
			AutoSubmit:  ev.AutoSubmit,
			StartedAt:   time.Now(),
		})
	}

	req := &models.ScoreRequest{
		Question:   ev.Question.Text,
		Answer:     ev.Answer.Text,
		Difficulty: ev.Question.Difficulty,
		TimeLimit:  ev.Question.TimeLimit,
		TimeTaken:  ev.Answer.TimeTaken,
		RequestID:  requestID,
	}
	resp := d.scorer.Score(ctx, req, ev.AutoSubmit)

	if d.isStale(ctx, ev) {
		// The session was reset or the answer replaced while scoring
		// was in flight; the result no longer belongs anywhere.
		if d.audit != nil {
			d.audit.DiscardPendingContext(requestID)
		}
		d.logger.Debug("discarding stale scoring result",
			zap.String("session_id", ev.SessionID),
			zap.String("question_id", ev.Question.ID))
		return
	}

	if d.candidates != nil && ev.CandidateID != "" {
		scored := models.ScoredAnswer{
			Question:    ev.Question.Text,
			Answer:      ev.Answer.Text,
			Score:       resp.Result.Score,
			TimeTaken:   ev.Answer.TimeTaken,
			TimeAllowed: ev.Question.TimeLimit,
			Difficulty:  ev.Question.Difficulty,
			Feedback:    resp.Result.Feedback,
		}
		if _, err := d.candidates.AppendScoredAnswer(ctx, ev.CandidateID, scored); err != nil {
			d.logger.Error("failed to record scored answer",
				zap.String("candidate_id", ev.CandidateID),
				zap.Error(err))
		}
	}

	if d.audit != nil {
		record := &models.ScoreRecord{
			RequestID:   requestID,
			SessionID:   ev.SessionID,
			CandidateID: ev.CandidateID,
			QuestionID:  ev.Question.ID,
			Question:    ev.Question.Text,
			Answer:      ev.Answer.Text,
			Difficulty:  ev.Question.Difficulty,
			Score:       resp.Result.Score,
			Source:      resp.Metadata.Source,
			Provider:    resp.Metadata.Provider,
			Model:       resp.Metadata.Model,
			AutoSubmit:  ev.AutoSubmit,
			TimeTaken:   ev.Answer.TimeTaken,
			TimeLimit:   ev.Question.TimeLimit,
		}
		if err := d.audit.RecordScore(record); err != nil {
			d.logger.Error("failed to write score audit record",
				zap.String("request_id", requestID),
				zap.Error(err))
		}
	}

	metrics.ObserveScore(resp.Metadata.Source, ev.AutoSubmit, resp.Result.Score)
	d.logger.Info("answer scored",
		zap.String("session_id", ev.SessionID),
		zap.String("question_id", ev.Question.ID),
		zap.Int("score", resp.Result.Score),
		zap.String("source", resp.Metadata.Source),
		zap.Bool("auto_submit", ev.AutoSubmit))
}

// isStale reports whether the session state no longer matches the
// event: the session was reset, restarted for another candidate, or
// the answer was replaced while scoring ran.
func (d *Dispatcher) isStale(ctx context.Context, ev session.AnswerEvent) bool {
	state, err := d.sessions.Get(ctx, ev.SessionID)
	if err != nil {
		return true
	}
	if state.CandidateID != ev.CandidateID {
		return true
	}
	answer, ok := state.AnswerFor(ev.Question.ID)
	if !ok {
		return true
	}
	return answer.Text != ev.Answer.Text
}

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crisp/interview/internal/models"
)

// EventType labels session lifecycle events published to observers.
type EventType string

const (
	EventStarted   EventType = "session_started"
	EventAnswered  EventType = "answer_submitted"
	EventAdvanced  EventType = "question_advanced"
	EventSkipped   EventType = "question_skipped"
	EventPaused    EventType = "session_paused"
	EventResumed   EventType = "session_resumed"
	EventCompleted EventType = "session_completed"
	EventReset     EventType = "session_reset"
	EventWarning   EventType = "time_warning"
	EventTimeUp    EventType = "time_up"
)

// Event is a lifecycle notification. Recruiters watching a live
// session receive these over the monitor hub.
type Event struct {
	Type          EventType `json:"type"`
	SessionID     string    `json:"sessionId"`
	CandidateID   string    `json:"candidateId,omitempty"`
	QuestionIndex int       `json:"questionIndex"`
	Remaining     int       `json:"remaining,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// AnswerEvent is emitted exactly once per answered question, on either
// the manual-submit or the expiry path, never both.
type AnswerEvent struct {
	SessionID   string
	CandidateID string
	Question    models.InterviewQuestion
	Answer      models.InterviewAnswer
	AutoSubmit  bool
}

// Manager owns the session lifecycle: every transition loads the
// snapshot, applies the state machine, and persists the result under a
// single mutex so concurrent requests for the same session serialize.
type Manager struct {
	mu      sync.Mutex
	store   Store
	markers MarkerStore
	timers  *TimerManager
	logger  *zap.Logger
	now     func() time.Time

	// onAnswer receives the exactly-once scoring trigger.
	onAnswer func(AnswerEvent)
	// events receives lifecycle notifications; may be nil.
	events func(Event)
}

// ManagerOption configures optional Manager collaborators.
type ManagerOption func(*Manager)

// WithAnswerSink registers the scoring trigger.
func WithAnswerSink(fn func(AnswerEvent)) ManagerOption {
	return func(m *Manager) { m.onAnswer = fn }
}

// WithEventSink registers the lifecycle event observer.
func WithEventSink(fn func(Event)) ManagerOption {
	return func(m *Manager) { m.events = fn }
}

// WithClock overrides the time source for tests.
func WithClock(fn func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = fn }
}

func NewManager(store Store, markers MarkerStore, timerCfg TimerConfig, logger *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:   store,
		markers: markers,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.timers = NewTimerManager(timerCfg, TimerCallbacks{
		OnWarning: m.handleWarning,
		OnPersist: m.handlePersist,
		OnTimeUp:  m.handleTimeUp,
	}, logger)
	return m
}

// Timers exposes the countdown engine, mainly for shutdown.
func (m *Manager) Timers() *TimerManager { return m.timers }

// Start creates a session at question zero with the timer armed and
// the session-active marker set for the starting client.
func (m *Manager) Start(ctx context.Context, candidateID string, questions []models.InterviewQuestion) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	state := &State{ID: uuid.New().String()}
	if err := state.Start(candidateID, questions, now); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}
	if err := m.markers.SetActive(ctx, state.ID); err != nil {
		m.logger.Warn("failed to set session-active marker", zap.Error(err))
	}

	m.armCurrent(state)
	m.publish(EventStarted, state, 0)
	m.logger.Info("interview session started",
		zap.String("session_id", state.ID),
		zap.String("candidate_id", candidateID),
		zap.Int("questions", len(questions)))
	return state, nil
}

// Get loads a session snapshot.
func (m *Manager) Get(ctx context.Context, id string) (*State, error) {
	return m.store.Load(ctx, id)
}

// RemainingNow reports the current countdown value for a session.
func (m *Manager) RemainingNow(ctx context.Context, id string) (int, error) {
	state, err := m.store.Load(ctx, id)
	if err != nil {
		return 0, err
	}
	q, ok := state.Current()
	if !ok {
		return 0, nil
	}
	return Remaining(q.TimeLimit, state.TimeSpentOnCurrentQuestion, state.CurrentQuestionStartTime, m.now()), nil
}

// SubmitAnswer records a client-side submission. It disarms the
// countdown first; when the timer already fired for the question the
// submission updates the stored answer but does not trigger a second
// scoring run. auto marks a client-reported expiry so the scoring path
// phrases empty answers accordingly.
func (m *Manager) SubmitAnswer(ctx context.Context, id, questionID, text string, timeTaken int, auto bool) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	armed := m.timers.Disarm(id)
	_, hadAnswer := state.AnswerFor(questionID)
	if err := state.SubmitAnswer(questionID, text, timeTaken); err != nil {
		return nil, err
	}
	state.PauseTimer(m.now())
	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}

	if armed || !hadAnswer {
		m.emitAnswer(state, questionID, auto)
	}
	m.publish(EventAnswered, state, 0)
	return state, nil
}

// Skip records an empty answer with zero time and advances, or
// completes when already at the last question.
func (m *Manager) Skip(ctx context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	q, ok := state.Current()
	if !ok {
		return nil, ErrIndexOutOfRange
	}

	m.timers.Disarm(id)
	if err := state.Skip(q.ID); err != nil {
		return nil, err
	}

	now := m.now()
	if state.AtLastQuestion() {
		if err := state.Complete(now); err != nil {
			return nil, err
		}
	} else if err := state.Advance(now); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}

	if !state.IsComplete {
		m.armCurrent(state)
	}
	m.publish(EventSkipped, state, 0)
	return state, nil
}

// Advance moves to the next question and arms its timer.
func (m *Manager) Advance(ctx context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	m.timers.Disarm(id)
	if err := state.Advance(m.now()); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}

	m.armCurrent(state)
	m.publish(EventAdvanced, state, 0)
	return state, nil
}

// Pause suspends the interview and freezes the countdown.
func (m *Manager) Pause(ctx context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	m.timers.Disarm(id)
	if err := state.Pause(m.now()); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}

	m.publish(EventPaused, state, 0)
	return state, nil
}

// Resume clears the paused flag and restarts the countdown from the
// accumulated position.
func (m *Manager) Resume(ctx context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := state.Resume(m.now()); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}

	m.armCurrent(state)
	m.publish(EventResumed, state, 0)
	return state, nil
}

// Complete marks the session terminal and stops its countdown.
func (m *Manager) Complete(ctx context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	m.timers.Disarm(id)
	if err := state.Complete(m.now()); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}

	m.publish(EventCompleted, state, 0)
	m.logger.Info("interview session completed",
		zap.String("session_id", id),
		zap.Int("answers", len(state.Answers)))
	return state, nil
}

// Reset zeroes the session and clears its session-active marker so
// the next load counts as fresh.
func (m *Manager) Reset(ctx context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	m.timers.Disarm(id)
	state.Reset(m.now())
	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}
	if err := m.markers.Clear(ctx, id); err != nil {
		m.logger.Warn("failed to clear session-active marker", zap.Error(err))
	}

	m.publish(EventReset, state, 0)
	return state, nil
}

// Jump moves to an arbitrary question index.
func (m *Manager) Jump(ctx context.Context, id string, index int) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	m.timers.Disarm(id)
	if err := state.JumpTo(index, m.now()); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}

	m.armCurrent(state)
	m.publish(EventAdvanced, state, 0)
	return state, nil
}

// armCurrent starts the countdown for the state's current question.
// Caller holds m.mu.
func (m *Manager) armCurrent(state *State) {
	if state.IsComplete || state.IsPaused {
		return
	}
	q, ok := state.Current()
	if !ok || state.CurrentQuestionStartTime == nil {
		return
	}
	m.timers.Arm(state.ID, q.ID, q.TimeLimit, state.TimeSpentOnCurrentQuestion, *state.CurrentQuestionStartTime)
}

// handleTimeUp records the forced submission when a countdown expires.
// The timer has already disarmed itself, so a racing manual submit
// cannot double-trigger scoring.
func (m *Manager) handleTimeUp(sessionID, questionID string) {
	ctx := context.Background()

	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx, sessionID)
	if err != nil {
		m.logger.Warn("time-up for unknown session", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	q, ok := state.Current()
	if !ok || q.ID != questionID || state.IsComplete {
		// Session moved on while the expiry was in flight.
		return
	}
	if _, answered := state.AnswerFor(questionID); answered {
		// A manual submission landed between the expiry claim and this
		// callback; that submission owns the question.
		return
	}

	if err := state.SubmitAnswer(questionID, "", q.TimeLimit); err != nil {
		m.logger.Warn("time-up submit failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	state.TimeSpentOnCurrentQuestion = q.TimeLimit
	state.CurrentQuestionStartTime = nil
	state.UpdatedAt = m.now()
	if err := m.store.Save(ctx, state); err != nil {
		m.logger.Error("failed to persist time-up state", zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	m.emitAnswer(state, questionID, true)
	m.publish(EventTimeUp, state, 0)
	m.logger.Info("question time expired, auto-submitting",
		zap.String("session_id", sessionID),
		zap.String("question_id", questionID))
}

// handlePersist writes the coalesced elapsed counter so a reload
// mid-question loses at most one persistence interval.
func (m *Manager) handlePersist(sessionID string, elapsed int) {
	ctx := context.Background()

	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return
	}
	if state.IsComplete || state.CurrentQuestionStartTime == nil {
		return
	}

	now := m.now()
	state.TimeSpentOnCurrentQuestion = elapsed
	state.CurrentQuestionStartTime = &now
	state.UpdatedAt = now
	if err := m.store.Save(ctx, state); err != nil {
		m.logger.Warn("failed to persist elapsed time", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (m *Manager) handleWarning(sessionID string, remaining int) {
	if m.events == nil {
		return
	}
	m.events(Event{
		Type:      EventWarning,
		SessionID: sessionID,
		Remaining: remaining,
		Timestamp: m.now(),
	})
}

// emitAnswer fires the scoring trigger. Caller holds m.mu; the sink
// must hand off to its own goroutine.
func (m *Manager) emitAnswer(state *State, questionID string, auto bool) {
	if m.onAnswer == nil {
		return
	}
	var question models.InterviewQuestion
	for _, q := range state.Questions {
		if q.ID == questionID {
			question = q
			break
		}
	}
	answer, ok := state.AnswerFor(questionID)
	if !ok {
		return
	}
	m.onAnswer(AnswerEvent{
		SessionID:   state.ID,
		CandidateID: state.CandidateID,
		Question:    question,
		Answer:      *answer,
		AutoSubmit:  auto,
	})
}

func (m *Manager) publish(t EventType, state *State, remaining int) {
	if m.events == nil {
		return
	}
	m.events(Event{
		Type:          t,
		SessionID:     state.ID,
		CandidateID:   state.CandidateID,
		QuestionIndex: state.CurrentQuestion,
		Remaining:     remaining,
		Timestamp:     m.now(),
	})
}

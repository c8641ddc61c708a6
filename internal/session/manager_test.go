package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type answerRecorder struct {
	mu     sync.Mutex
	events []AnswerEvent
}

func (r *answerRecorder) record(ev AnswerEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *answerRecorder) all() []AnswerEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AnswerEvent(nil), r.events...)
}

func newTestManager(t *testing.T, opts ...ManagerOption) (*Manager, *answerRecorder) {
	t.Helper()
	rec := &answerRecorder{}
	opts = append([]ManagerOption{WithAnswerSink(rec.record)}, opts...)
	m := NewManager(
		NewMemoryStore(),
		NewMemoryMarkerStore(time.Hour),
		TimerConfig{Tick: 10 * time.Millisecond, PersistEvery: time.Hour},
		zap.NewNop(),
		opts...,
	)
	t.Cleanup(m.Timers().Stop)
	return m, rec
}

func TestManagerStartSetsMarkerAndTimer(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)
	assert.NotEmpty(t, state.ID)
	assert.True(t, m.Timers().Armed(state.ID))

	active, err := m.markers.Active(ctx, state.ID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestManagerStartRejectsEmptyQuestions(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Start(context.Background(), "cand-1", nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestManagerSubmitAnswerEmitsOnce(t *testing.T) {
	m, rec := newTestManager(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)

	state, err = m.SubmitAnswer(ctx, state.ID, "q1", "closures capture their lexical scope", 12, false)
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentQuestion, "submit never advances")
	assert.False(t, m.Timers().Armed(state.ID), "submit disarms the countdown")

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, "q1", events[0].Answer.QuestionID)
	assert.False(t, events[0].AutoSubmit)
	assert.Equal(t, "cand-1", events[0].CandidateID)
}

func TestManagerResubmitDoesNotRescore(t *testing.T) {
	m, rec := newTestManager(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)

	_, err = m.SubmitAnswer(ctx, state.ID, "q1", "first", 10, false)
	require.NoError(t, err)
	state, err = m.SubmitAnswer(ctx, state.ID, "q1", "second", 15, false)
	require.NoError(t, err)

	require.Len(t, state.Answers, 1)
	assert.Equal(t, "second", state.Answers[0].Text)
	assert.Len(t, rec.all(), 1, "resubmission with no armed timer is an update, not a new scoring run")
}

// The happy-path walkthrough: answer, advance, skip, complete.
func TestManagerFullSessionFlow(t *testing.T) {
	m, rec := newTestManager(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)
	id := state.ID

	_, err = m.SubmitAnswer(ctx, id, "q1", "a solid answer about closures", 14, false)
	require.NoError(t, err)
	state, err = m.Advance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentQuestion)
	assert.True(t, m.Timers().Armed(id))

	// Skipping the middle question records an empty answer and moves on.
	state, err = m.Skip(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentQuestion)
	skipped, ok := state.AnswerFor("q2")
	require.True(t, ok)
	assert.Equal(t, "", skipped.Text)
	assert.Equal(t, 0, skipped.TimeTaken)

	_, err = m.SubmitAnswer(ctx, id, "q3", "token bucket with a redis counter", 90, false)
	require.NoError(t, err)
	state, err = m.Complete(ctx, id)
	require.NoError(t, err)
	assert.True(t, state.IsComplete)
	assert.False(t, m.Timers().Armed(id))

	assert.Len(t, rec.all(), 2, "skip does not trigger scoring")

	_, err = m.Advance(ctx, id)
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestManagerSkipAtLastQuestionCompletes(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)
	_, err = m.Jump(ctx, state.ID, 2)
	require.NoError(t, err)

	state, err = m.Skip(ctx, state.ID)
	require.NoError(t, err)
	assert.True(t, state.IsComplete)
	assert.False(t, m.Timers().Armed(state.ID))
}

func TestManagerPauseFreezesCountdown(t *testing.T) {
	base := time.Now()
	clock := base
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}
	advanceClock := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(d)
	}

	m, _ := newTestManager(t, WithClock(now))
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)
	id := state.ID

	advanceClock(8 * time.Second)
	state, err = m.Pause(ctx, id)
	require.NoError(t, err)
	assert.True(t, state.IsPaused)
	assert.Equal(t, 8, state.TimeSpentOnCurrentQuestion)
	assert.False(t, m.Timers().Armed(id))

	// Wall-clock time during the pause must not count.
	advanceClock(time.Hour)
	remaining, err := m.RemainingNow(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 12, remaining)

	state, err = m.Resume(ctx, id)
	require.NoError(t, err)
	assert.False(t, state.IsPaused)
	assert.True(t, m.Timers().Armed(id))

	advanceClock(5 * time.Second)
	remaining, err = m.RemainingNow(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 7, remaining)
}

func TestManagerTimeUpAutoSubmits(t *testing.T) {
	m, rec := newTestManager(t)
	ctx := context.Background()

	questions := testQuestions()
	questions[0].TimeLimit = 1
	state, err := m.Start(ctx, "cand-1", questions)
	require.NoError(t, err)
	id := state.ID

	require.Eventually(t, func() bool {
		return len(rec.all()) == 1
	}, 3*time.Second, 20*time.Millisecond)

	events := rec.all()
	require.Len(t, events, 1)
	assert.True(t, events[0].AutoSubmit)
	assert.Equal(t, "q1", events[0].Answer.QuestionID)
	assert.Equal(t, "", events[0].Answer.Text)
	assert.Equal(t, 1, events[0].Answer.TimeTaken, "auto-submit records the full limit")

	state, err = m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, state.TimeSpentOnCurrentQuestion)
	assert.Nil(t, state.CurrentQuestionStartTime)

	// A late manual submit updates the answer without re-triggering.
	_, err = m.SubmitAnswer(ctx, id, "q1", "late answer", 1, false)
	require.NoError(t, err)
	assert.Len(t, rec.all(), 1)
}

// A manual submit can land between the timer claiming expiry and the
// time-up callback acquiring the manager lock. The submission owns the
// question: the late callback must neither overwrite the answer nor
// trigger a second scoring run.
func TestManagerSubmitDuringExpiryWindowWins(t *testing.T) {
	m, rec := newTestManager(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)
	id := state.ID

	// The expiring timer removes its registration before invoking the
	// callback, so the racing submit sees no armed countdown.
	require.True(t, m.Timers().Disarm(id))
	state, err = m.SubmitAnswer(ctx, id, "q1", "finished just in time", 19, false)
	require.NoError(t, err)
	answer, ok := state.AnswerFor("q1")
	require.True(t, ok)
	assert.Equal(t, "finished just in time", answer.Text)

	// Late time-up callback for the same question.
	m.handleTimeUp(id, "q1")

	state, err = m.Get(ctx, id)
	require.NoError(t, err)
	answer, ok = state.AnswerFor("q1")
	require.True(t, ok)
	assert.Equal(t, "finished just in time", answer.Text, "expiry must not erase the accepted answer")
	assert.Equal(t, 19, answer.TimeTaken)

	events := rec.all()
	require.Len(t, events, 1, "exactly one scoring run per question")
	assert.False(t, events[0].AutoSubmit)
	assert.Equal(t, "finished just in time", events[0].Answer.Text)
}

func TestManagerExpiryAfterMoveOnIsIgnored(t *testing.T) {
	m, rec := newTestManager(t)
	ctx := context.Background()

	questions := testQuestions()
	questions[0].TimeLimit = 1
	state, err := m.Start(ctx, "cand-1", questions)
	require.NoError(t, err)

	// Jump away before the countdown can expire; the stale timer is
	// disarmed and no auto-submission lands on q1.
	_, err = m.Jump(ctx, state.ID, 1)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	for _, ev := range rec.all() {
		assert.NotEqual(t, "q1", ev.Answer.QuestionID)
	}
}

func TestManagerResetClearsMarker(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)
	_, err = m.SubmitAnswer(ctx, state.ID, "q1", "answer", 5, false)
	require.NoError(t, err)

	state, err = m.Reset(ctx, state.ID)
	require.NoError(t, err)
	assert.Empty(t, state.Questions)
	assert.Empty(t, state.Answers)
	assert.False(t, m.Timers().Armed(state.ID))

	active, err := m.markers.Active(ctx, state.ID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestManagerJumpBounds(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)

	_, err = m.Jump(ctx, state.ID, 5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	state, err = m.Jump(ctx, state.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentQuestion)
	assert.Equal(t, 0, state.TimeSpentOnCurrentQuestion)
}

func TestManagerUnknownSession(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.SubmitAnswer(context.Background(), "missing", "q1", "x", 1, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Reload mid-question: a fresh manager over the same store resumes the
// countdown from the persisted position.
func TestManagerStatePersistsAcrossManagers(t *testing.T) {
	store := NewMemoryStore()
	markers := NewMemoryMarkerStore(time.Hour)
	ctx := context.Background()

	m1 := NewManager(store, markers, TimerConfig{Tick: 10 * time.Millisecond, PersistEvery: time.Hour}, zap.NewNop())
	state, err := m1.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)
	_, err = m1.SubmitAnswer(ctx, state.ID, "q1", "answer before the crash", 6, false)
	require.NoError(t, err)
	_, err = m1.Advance(ctx, state.ID)
	require.NoError(t, err)
	m1.Timers().Stop()

	m2 := NewManager(store, markers, TimerConfig{Tick: 10 * time.Millisecond, PersistEvery: time.Hour}, zap.NewNop())
	defer m2.Timers().Stop()

	restored, err := m2.Get(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, restored.CurrentQuestion)
	require.Len(t, restored.Answers, 1)
	assert.Equal(t, "answer before the crash", restored.Answers[0].Text)
}

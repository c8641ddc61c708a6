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

type decisionRecorder struct {
	mu        sync.Mutex
	decisions []Decision
}

func (r *decisionRecorder) notify(d Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, d)
}

func (r *decisionRecorder) all() []Decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Decision(nil), r.decisions...)
}

func newTestResumePolicy(t *testing.T) (*ResumePolicy, *Manager, MarkerStore) {
	t.Helper()
	markers := NewMemoryMarkerStore(time.Hour)
	m := NewManager(
		NewMemoryStore(),
		markers,
		TimerConfig{Tick: 10 * time.Millisecond, PersistEvery: time.Hour},
		zap.NewNop(),
	)
	t.Cleanup(m.Timers().Stop)
	return NewResumePolicy(m, markers, 20*time.Millisecond, zap.NewNop()), m, markers
}

// A fresh client loading a session with progress gets exactly one
// prompt; the marker then suppresses any further prompting.
func TestResumePromptOnFreshLoadWithProgress(t *testing.T) {
	p, m, markers := newTestResumePolicy(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)
	_, err = m.SubmitAnswer(ctx, state.ID, "q1", "progress exists", 5, false)
	require.NoError(t, err)

	// Simulate a new client lifetime: the marker is gone.
	require.NoError(t, markers.Clear(ctx, state.ID))

	rec := &decisionRecorder{}
	require.NoError(t, p.Evaluate(ctx, state.ID, rec.notify))

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, DecisionPrompt, rec.all()[0])

	// The same client checking again is not prompted twice.
	require.NoError(t, p.Evaluate(ctx, state.ID, rec.notify))
	require.Eventually(t, func() bool { return len(rec.all()) == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, DecisionNone, rec.all()[1])
}

func TestResumeNoPromptWithoutProgress(t *testing.T) {
	p, m, markers := newTestResumePolicy(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)
	require.NoError(t, markers.Clear(ctx, state.ID))

	rec := &decisionRecorder{}
	require.NoError(t, p.Evaluate(ctx, state.ID, rec.notify))

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, DecisionNone, rec.all()[0])

	// The evaluation still sets the marker.
	active, err := markers.Active(ctx, state.ID)
	require.NoError(t, err)
	assert.True(t, active)
}

// Progress means answers: moving past a question without answering it
// is not enough to warrant the welcome-back prompt.
func TestResumeNoPromptWhenAdvancedWithoutAnswers(t *testing.T) {
	p, m, markers := newTestResumePolicy(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)
	_, err = m.Jump(ctx, state.ID, 1)
	require.NoError(t, err)
	require.NoError(t, markers.Clear(ctx, state.ID))

	rec := &decisionRecorder{}
	require.NoError(t, p.Evaluate(ctx, state.ID, rec.notify))

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, DecisionNone, rec.all()[0])
}

func TestResumeNoPromptWhenMarkerPresent(t *testing.T) {
	p, m, _ := newTestResumePolicy(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)
	_, err = m.SubmitAnswer(ctx, state.ID, "q1", "progress exists", 5, false)
	require.NoError(t, err)

	// Start left the marker in place: same client lifetime.
	rec := &decisionRecorder{}
	require.NoError(t, p.Evaluate(ctx, state.ID, rec.notify))

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, DecisionNone, rec.all()[0])
}

func TestResumeDebounceCollapsesRapidChecks(t *testing.T) {
	p, m, markers := newTestResumePolicy(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)
	_, err = m.SubmitAnswer(ctx, state.ID, "q1", "progress exists", 5, false)
	require.NoError(t, err)
	require.NoError(t, markers.Clear(ctx, state.ID))

	rec := &decisionRecorder{}
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Evaluate(ctx, state.ID, rec.notify))
	}

	time.Sleep(200 * time.Millisecond)
	decisions := rec.all()
	require.Len(t, decisions, 1, "rapid evaluations collapse into one notification")
}

func TestResumeKeepsState(t *testing.T) {
	p, m, _ := newTestResumePolicy(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)
	_, err = m.SubmitAnswer(ctx, state.ID, "q1", "kept answer", 5, false)
	require.NoError(t, err)
	_, err = m.Advance(ctx, state.ID)
	require.NoError(t, err)

	resumed, err := p.Resume(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resumed.CurrentQuestion)
	require.Len(t, resumed.Answers, 1)
	assert.Equal(t, "kept answer", resumed.Answers[0].Text)
}

func TestResumeStartFreshResetsAndRemarks(t *testing.T) {
	p, m, markers := newTestResumePolicy(t)
	ctx := context.Background()

	state, err := m.Start(ctx, "cand-1", testQuestions())
	require.NoError(t, err)
	_, err = m.SubmitAnswer(ctx, state.ID, "q1", "discarded answer", 5, false)
	require.NoError(t, err)

	fresh, err := p.StartFresh(ctx, state.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.Answers)
	assert.Empty(t, fresh.Questions)

	// The marker is re-set so this client is not asked again.
	active, err := markers.Active(ctx, state.ID)
	require.NoError(t, err)
	assert.True(t, active)
}

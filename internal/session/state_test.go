package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crisp/interview/internal/models"
)

func testQuestions() []models.InterviewQuestion {
	return []models.InterviewQuestion{
		{ID: "q1", Text: "Explain closures in JavaScript.", Difficulty: "easy", TimeLimit: 20},
		{ID: "q2", Text: "How does React reconcile the virtual DOM?", Difficulty: "medium", TimeLimit: 60},
		{ID: "q3", Text: "Design a rate limiter for an API gateway.", Difficulty: "hard", TimeLimit: 120},
	}
}

func startedState(t *testing.T, now time.Time) *State {
	t.Helper()
	s := &State{ID: "sess-1"}
	require.NoError(t, s.Start("cand-1", testQuestions(), now))
	return s
}

func TestStateStart(t *testing.T) {
	now := time.Now()
	s := startedState(t, now)

	assert.Equal(t, 0, s.CurrentQuestion)
	assert.Len(t, s.Questions, 3)
	assert.Empty(t, s.Answers)
	assert.False(t, s.IsPaused)
	assert.False(t, s.IsComplete)
	require.NotNil(t, s.CurrentQuestionStartTime)
	assert.Equal(t, 0, s.TimeSpentOnCurrentQuestion)
}

func TestStateStartRejectsEmptyQuestions(t *testing.T) {
	s := &State{ID: "sess-1"}
	err := s.Start("cand-1", nil, time.Now())
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestStateStartResetsPriorProgress(t *testing.T) {
	now := time.Now()
	s := startedState(t, now)
	require.NoError(t, s.SubmitAnswer("q1", "an answer", 12))
	require.NoError(t, s.Advance(now))

	require.NoError(t, s.Start("cand-1", testQuestions(), now))
	assert.Equal(t, 0, s.CurrentQuestion)
	assert.Empty(t, s.Answers)
}

func TestStateSubmitAnswerUpserts(t *testing.T) {
	now := time.Now()
	s := startedState(t, now)

	require.NoError(t, s.SubmitAnswer("q1", "first attempt", 10))
	require.NoError(t, s.SubmitAnswer("q1", "revised attempt", 15))

	require.Len(t, s.Answers, 1)
	assert.Equal(t, "revised attempt", s.Answers[0].Text)
	assert.Equal(t, 15, s.Answers[0].TimeTaken)
	assert.Equal(t, 0, s.CurrentQuestion, "submit must not advance")
}

func TestStateAdvance(t *testing.T) {
	now := time.Now()
	s := startedState(t, now)
	s.TimeSpentOnCurrentQuestion = 9

	later := now.Add(30 * time.Second)
	require.NoError(t, s.Advance(later))

	assert.Equal(t, 1, s.CurrentQuestion)
	assert.Equal(t, 0, s.TimeSpentOnCurrentQuestion)
	require.NotNil(t, s.CurrentQuestionStartTime)
	assert.Equal(t, later, *s.CurrentQuestionStartTime)
}

func TestStateAdvanceAtLastQuestion(t *testing.T) {
	now := time.Now()
	s := startedState(t, now)
	require.NoError(t, s.Advance(now))
	require.NoError(t, s.Advance(now))

	assert.True(t, s.AtLastQuestion())
	assert.ErrorIs(t, s.Advance(now), ErrLastQuestion)
	assert.Equal(t, 2, s.CurrentQuestion)
}

func TestStateSkipRecordsEmptyAnswer(t *testing.T) {
	now := time.Now()
	s := startedState(t, now)

	require.NoError(t, s.Skip("q1"))
	require.Len(t, s.Answers, 1)
	assert.Equal(t, "", s.Answers[0].Text)
	assert.Equal(t, 0, s.Answers[0].TimeTaken)
}

func TestStatePauseResumeTimer(t *testing.T) {
	now := time.Now()
	s := startedState(t, now)

	paused := now.Add(8 * time.Second)
	s.PauseTimer(paused)
	assert.Equal(t, 8, s.TimeSpentOnCurrentQuestion)
	assert.Nil(t, s.CurrentQuestionStartTime)

	// Pausing again must not double-count.
	s.PauseTimer(paused.Add(5 * time.Second))
	assert.Equal(t, 8, s.TimeSpentOnCurrentQuestion)

	resumed := paused.Add(time.Minute)
	s.ResumeTimer(resumed)
	require.NotNil(t, s.CurrentQuestionStartTime)
	assert.Equal(t, resumed, *s.CurrentQuestionStartTime)

	// Resuming a running timer keeps the original start.
	s.ResumeTimer(resumed.Add(3 * time.Second))
	assert.Equal(t, resumed, *s.CurrentQuestionStartTime)
}

func TestStateElapsedCombinesSpentAndRunning(t *testing.T) {
	now := time.Now()
	s := startedState(t, now)
	s.TimeSpentOnCurrentQuestion = 7

	assert.Equal(t, 12, s.Elapsed(now.Add(5*time.Second)))

	s.CurrentQuestionStartTime = nil
	assert.Equal(t, 7, s.Elapsed(now.Add(time.Hour)))
}

func TestStateInterviewPauseOrthogonalToPosition(t *testing.T) {
	now := time.Now()
	s := startedState(t, now)
	require.NoError(t, s.Advance(now))

	require.NoError(t, s.Pause(now.Add(10*time.Second)))
	assert.True(t, s.IsPaused)
	assert.Equal(t, 1, s.CurrentQuestion)
	assert.Nil(t, s.CurrentQuestionStartTime)
	assert.Equal(t, 10, s.TimeSpentOnCurrentQuestion)

	require.NoError(t, s.Resume(now.Add(time.Minute)))
	assert.False(t, s.IsPaused)
	assert.Equal(t, 1, s.CurrentQuestion)
	require.NotNil(t, s.CurrentQuestionStartTime)
}

func TestStateCompleteIsTerminal(t *testing.T) {
	now := time.Now()
	s := startedState(t, now)
	require.NoError(t, s.Complete(now))

	assert.True(t, s.IsComplete)
	assert.ErrorIs(t, s.Advance(now), ErrCompleted)
	assert.ErrorIs(t, s.SubmitAnswer("q1", "x", 1), ErrCompleted)
	assert.ErrorIs(t, s.Pause(now), ErrCompleted)
	assert.ErrorIs(t, s.Complete(now), ErrCompleted)

	// Reset remains valid from the terminal state.
	s.Reset(now)
	assert.False(t, s.IsComplete)
	assert.Empty(t, s.Questions)
	assert.Equal(t, "sess-1", s.ID)
}

func TestStateJumpTo(t *testing.T) {
	now := time.Now()
	s := startedState(t, now)
	s.TimeSpentOnCurrentQuestion = 11

	require.NoError(t, s.JumpTo(2, now))
	assert.Equal(t, 2, s.CurrentQuestion)
	assert.Equal(t, 0, s.TimeSpentOnCurrentQuestion)

	assert.ErrorIs(t, s.JumpTo(3, now), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.JumpTo(-1, now), ErrIndexOutOfRange)
	assert.Equal(t, 2, s.CurrentQuestion)
}

func TestStateSignature(t *testing.T) {
	now := time.Now()
	s := startedState(t, now)

	sig := s.Signature()
	assert.Equal(t, "cand-1-0-3", sig)

	require.NoError(t, s.SubmitAnswer("q1", "answer", 5))
	assert.NotEqual(t, sig, s.Signature())
	assert.Equal(t, "cand-1-1-3", s.Signature())

	assert.Empty(t, (&State{}).Signature())
}

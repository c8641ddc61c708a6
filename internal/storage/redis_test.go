package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crisp/interview/internal/models"
	"crisp/interview/internal/session"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func sampleState() *session.State {
	now := time.Now().UTC().Truncate(time.Second)
	return &session.State{
		ID:          "sess-1",
		CandidateID: "cand-1",
		Questions: []models.InterviewQuestion{
			{ID: "q1", Text: "Explain closures.", Difficulty: "easy", TimeLimit: 20},
		},
		Answers:                    []models.InterviewAnswer{{QuestionID: "q1", Text: "scope capture", TimeTaken: 9}},
		CurrentQuestionStartTime:   &now,
		TimeSpentOnCurrentQuestion: 4,
		UpdatedAt:                  now,
	}
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	state := sampleState()
	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, state.CandidateID, loaded.CandidateID)
	assert.Equal(t, state.Questions, loaded.Questions)
	assert.Equal(t, state.Answers, loaded.Answers)
	assert.Equal(t, state.TimeSpentOnCurrentQuestion, loaded.TimeSpentOnCurrentQuestion)
	require.NotNil(t, loaded.CurrentQuestionStartTime)
	assert.True(t, state.CurrentQuestionStartTime.Equal(*loaded.CurrentQuestionStartTime))
}

func TestRedisSessionStoreNotFound(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisSessionStore(client, time.Hour)

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRedisSessionStoreDelete(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleState()))
	require.NoError(t, store.Delete(ctx, "sess-1"))

	_, err := store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRedisSessionStoreList(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	first := sampleState()
	second := sampleState()
	second.ID = "sess-2"
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sess-1", "sess-2"}, ids)
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisSessionStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleState()))
	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRedisMarkerStore(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisMarkerStore(client, time.Minute)
	ctx := context.Background()

	active, err := store.Active(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, store.SetActive(ctx, "sess-1"))
	active, err = store.Active(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, store.Clear(ctx, "sess-1"))
	active, err = store.Active(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, active)

	// Markers expire on their own.
	require.NoError(t, store.SetActive(ctx, "sess-2"))
	mr.FastForward(2 * time.Minute)
	active, err = store.Active(ctx, "sess-2")
	require.NoError(t, err)
	assert.False(t, active)
}

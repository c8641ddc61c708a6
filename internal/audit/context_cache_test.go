package audit

import (
	"testing"
	"time"

	"crisp/interview/internal/models"
)

func newTestContext() *models.ScoreContext {
	return &models.ScoreContext{
		RequestID:  "abc",
		SessionID:  "sess-1",
		QuestionID: "q1",
		Answer:     "answer text",
	}
}

func TestContextCacheSetGet(t *testing.T) {
	cache := NewContextCache(time.Hour)
	ctx := newTestContext()
	cache.Set("abc", ctx)

	got, ok := cache.Get("abc")
	if !ok {
		t.Fatal("expected to retrieve cached context")
	}
	if got != ctx {
		t.Fatal("expected same pointer from cache")
	}
	if cache.Size() != 1 {
		t.Fatalf("expected size 1, got %d", cache.Size())
	}
}

func TestContextCacheExpiration(t *testing.T) {
	cache := NewContextCache(10 * time.Millisecond)
	cache.Set("abc", newTestContext())
	time.Sleep(20 * time.Millisecond)

	if _, ok := cache.Get("abc"); ok {
		t.Fatal("expected expired context to be unavailable")
	}

	cache.cleanup()
	if cache.Size() != 0 {
		t.Fatalf("expected cleanup to remove expired entry, size %d", cache.Size())
	}
}

func TestContextCacheDelete(t *testing.T) {
	cache := NewContextCache(time.Hour)
	cache.Set("abc", newTestContext())
	cache.Delete("abc")

	if _, ok := cache.Get("abc"); ok {
		t.Fatal("expected deleted context to be unavailable")
	}
}

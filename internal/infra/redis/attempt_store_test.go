package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"course-quiz-service/internal/domain"
	"course-quiz-service/internal/quiz"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestAttemptStoreCompletesOnce(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAttemptStore(newClient(mr))
	ctx := context.Background()
	started := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	if err := store.CreateAttempt(ctx, sampleAttempt("a1", started)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !mr.Exists("attempt:a1") {
		t.Fatalf("expected attempt key")
	}

	correct := true
	done, applied, err := store.CompleteAttempt(ctx, "a1", domain.Completion{
		Score:       1,
		Responses:   []quiz.Evaluation{{QuestionID: "q-0", Correct: &correct}},
		CompletedAt: started.Add(time.Minute),
	})
	if err != nil || !applied {
		t.Fatalf("complete: applied=%v err=%v", applied, err)
	}
	if *done.Score != 1 || len(done.Responses) != 1 {
		t.Fatalf("unexpected completed attempt: %+v", done)
	}

	again, applied, err := store.CompleteAttempt(ctx, "a1", domain.Completion{Score: 0, CompletedAt: started.Add(time.Hour)})
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if applied || *again.Score != 1 {
		t.Fatalf("second completion must leave stored result: applied=%v %+v", applied, again)
	}

	reloaded, err := store.GetAttempt(ctx, "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reloaded.Completed() || !reloaded.CompletedAt.Equal(started.Add(time.Minute)) {
		t.Fatalf("unexpected reloaded attempt: %+v", reloaded)
	}
	if len(reloaded.Questions) != 1 || reloaded.Questions[0].Options[0].Text != "a" {
		t.Fatalf("questions snapshot lost: %+v", reloaded.Questions)
	}
}

func TestAttemptStoreConcurrentCompletion(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAttemptStore(newClient(mr))
	ctx := context.Background()
	_ = store.CreateAttempt(ctx, sampleAttempt("a1", time.Now()))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, ok, err := store.CompleteAttempt(ctx, "a1", domain.Completion{Score: score, CompletedAt: time.Now()})
			if err != nil {
				return
			}
			if ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if applied != 1 {
		t.Fatalf("expected exactly one applied completion, got %d", applied)
	}
}

func TestAttemptStoreListAndMissing(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAttemptStore(newClient(mr))
	ctx := context.Background()
	base := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	_ = store.CreateAttempt(ctx, sampleAttempt("old", base))
	_ = store.CreateAttempt(ctx, sampleAttempt("new", base.Add(time.Hour)))

	list, err := store.ListAttempts(ctx, "test-1", "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "new" || list[1].ID != "old" {
		t.Fatalf("unexpected list order: %+v", list)
	}

	if _, err := store.GetAttempt(ctx, "missing"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, _, err := store.CompleteAttempt(ctx, "missing", domain.Completion{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func sampleAttempt(id string, startedAt time.Time) domain.Attempt {
	return domain.Attempt{
		ID:        id,
		TestID:    "test-1",
		CourseID:  "course-1",
		UserID:    "user-1",
		Status:    domain.AttemptInProgress,
		MaxScore:  1,
		Questions: []quiz.Question{{Kind: quiz.KindSingle, Prompt: "Q", Options: []quiz.Option{{Text: "a", IsCorrect: true}}}},
		StartedAt: startedAt,
	}
}

package memory

import (
	"context"
	"sort"
	"sync"

	"course-quiz-service/internal/domain"
	"course-quiz-service/internal/quiz"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
// The mutex makes load-check-write in CompleteAttempt atomic per store.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]domain.Attempt),
	}
}

func (s *AttemptStore) CreateAttempt(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ID] = cloneAttempt(attempt)
	return nil
}

func (s *AttemptStore) GetAttempt(_ context.Context, attemptID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return cloneAttempt(attempt), nil
}

func (s *AttemptStore) CompleteAttempt(_ context.Context, attemptID string, c domain.Completion) (domain.Attempt, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, false, domain.ErrAttemptNotFound
	}
	if attempt.Completed() {
		return cloneAttempt(attempt), false, nil
	}

	score := c.Score
	completedAt := c.CompletedAt
	attempt.Status = domain.AttemptCompleted
	attempt.Score = &score
	attempt.Responses = append([]quiz.Evaluation(nil), c.Responses...)
	attempt.CompletedAt = &completedAt
	s.attempts[attemptID] = attempt
	return cloneAttempt(attempt), true, nil
}

func (s *AttemptStore) ListAttempts(_ context.Context, testID, userID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Attempt, 0)
	for _, a := range s.attempts {
		if a.TestID == testID && a.UserID == userID {
			out = append(out, cloneAttempt(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

// cloneAttempt copies the slices so callers cannot mutate stored state.
func cloneAttempt(a domain.Attempt) domain.Attempt {
	a.Questions = append([]quiz.Question(nil), a.Questions...)
	if a.Responses != nil {
		a.Responses = append([]quiz.Evaluation(nil), a.Responses...)
	}
	if a.Score != nil {
		score := *a.Score
		a.Score = &score
	}
	return a
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"course-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const completeRetries = 5

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// AttemptStore is a Redis implementation of app.AttemptRepository.
// Layout:
//
//	SET  attempt:{attemptID} {json}
//	ZADD attempts:{testID}:{userID} {startedAt unix nanos} {attemptID}
//
// Completion uses WATCH/MULTI so only one writer moves an attempt out of IN_PROGRESS.
type AttemptStore struct {
	client *redis.Client
}

func NewAttemptStore(client *redis.Client) *AttemptStore {
	return &AttemptStore{client: client}
}

func (s *AttemptStore) CreateAttempt(ctx context.Context, attempt domain.Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(attempt.ID), data, 0)
		pipe.ZAdd(ctx, s.indexKey(attempt.TestID, attempt.UserID), redis.Z{
			Score:  float64(attempt.StartedAt.UnixNano()),
			Member: attempt.ID,
		})
		return nil
	})
	return err
}

func (s *AttemptStore) GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error) {
	return s.load(ctx, s.client, attemptID)
}

func (s *AttemptStore) CompleteAttempt(ctx context.Context, attemptID string, c domain.Completion) (domain.Attempt, bool, error) {
	key := s.key(attemptID)
	for i := 0; i < completeRetries; i++ {
		var (
			stored  domain.Attempt
			applied bool
		)
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			attempt, err := s.load(ctx, tx, attemptID)
			if err != nil {
				return err
			}
			if attempt.Completed() {
				stored = attempt
				return nil
			}

			score := c.Score
			completedAt := c.CompletedAt
			attempt.Status = domain.AttemptCompleted
			attempt.Score = &score
			attempt.Responses = c.Responses
			attempt.CompletedAt = &completedAt
			data, err := json.Marshal(attempt)
			if err != nil {
				return fmt.Errorf("encode attempt: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				return nil
			})
			if err != nil {
				return err
			}
			stored = attempt
			applied = true
			return nil
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return domain.Attempt{}, false, err
		}
		return stored, applied, nil
	}
	return domain.Attempt{}, false, fmt.Errorf("complete attempt %s: too much contention", attemptID)
}

func (s *AttemptStore) ListAttempts(ctx context.Context, testID, userID string) ([]domain.Attempt, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(testID, userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Attempt, 0, len(ids))
	for _, id := range ids {
		attempt, err := s.load(ctx, s.client, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, attempt)
	}
	return out, nil
}

func (s *AttemptStore) load(ctx context.Context, c getter, attemptID string) (domain.Attempt, error) {
	data, err := c.Get(ctx, s.key(attemptID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, err
	}
	var attempt domain.Attempt
	if err := json.Unmarshal(data, &attempt); err != nil {
		return domain.Attempt{}, fmt.Errorf("decode attempt %s: %w", attemptID, err)
	}
	return attempt, nil
}

func (s *AttemptStore) key(attemptID string) string {
	return "attempt:" + attemptID
}

func (s *AttemptStore) indexKey(testID, userID string) string {
	return "attempts:" + testID + ":" + userID
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"course-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const attemptColumns = `id, test_id, course_id, user_id, status, max_score, score, questions, responses, started_at, completed_at`

// AttemptStore persists attempts in test_attempts. Completion is a conditional
// UPDATE on status so concurrent submits apply at most once.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) CreateAttempt(ctx context.Context, a domain.Attempt) error {
	questions, err := json.Marshal(a.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO test_attempts (id, test_id, course_id, user_id, status, max_score, questions, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)`,
		a.ID, a.TestID, a.CourseID, a.UserID, string(a.Status), a.MaxScore, string(questions), a.StartedAt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+attemptColumns+` FROM test_attempts WHERE id=$1`, attemptID)
	attempt, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, err
}

func (s *AttemptStore) CompleteAttempt(ctx context.Context, attemptID string, c domain.Completion) (domain.Attempt, bool, error) {
	responses, err := json.Marshal(c.Responses)
	if err != nil {
		return domain.Attempt{}, false, fmt.Errorf("encode responses: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE test_attempts
		SET status=$2, score=$3, responses=$4::jsonb, completed_at=$5
		WHERE id=$1 AND status=$6`,
		attemptID, string(domain.AttemptCompleted), c.Score, string(responses), c.CompletedAt, string(domain.AttemptInProgress))
	if err != nil {
		return domain.Attempt{}, false, fmt.Errorf("complete attempt: %w", err)
	}
	stored, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.Attempt{}, false, err
	}
	return stored, tag.RowsAffected() == 1, nil
}

func (s *AttemptStore) ListAttempts(ctx context.Context, testID, userID string) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+attemptColumns+` FROM test_attempts
		WHERE test_id=$1 AND user_id=$2
		ORDER BY started_at DESC`, testID, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()
	out := make([]domain.Attempt, 0)
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return out, nil
}

func scanAttempt(row pgx.Row) (domain.Attempt, error) {
	var (
		a                    domain.Attempt
		status               string
		questions, responses []byte
	)
	err := row.Scan(&a.ID, &a.TestID, &a.CourseID, &a.UserID, &status, &a.MaxScore, &a.Score,
		&questions, &responses, &a.StartedAt, &a.CompletedAt)
	if err != nil {
		return domain.Attempt{}, err
	}
	a.Status = domain.AttemptStatus(status)
	if err := json.Unmarshal(questions, &a.Questions); err != nil {
		return domain.Attempt{}, fmt.Errorf("decode attempt questions: %w", err)
	}
	if len(responses) > 0 {
		if err := json.Unmarshal(responses, &a.Responses); err != nil {
			return domain.Attempt{}, fmt.Errorf("decode attempt responses: %w", err)
		}
	}
	return a, nil
}

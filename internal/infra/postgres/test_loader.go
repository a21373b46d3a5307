package postgres

import (
	"context"
	"errors"
	"fmt"

	"course-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// TestLoader loads authored tests from Postgres. Question JSONB is returned
// untouched; normalization happens in the quiz package.
type TestLoader struct {
	pool *pgxpool.Pool
}

func NewTestLoader(pool *pgxpool.Pool) *TestLoader {
	return &TestLoader{pool: pool}
}

func (l *TestLoader) LoadTest(ctx context.Context, testID string) (domain.Test, error) {
	var (
		test                       domain.Test
		raw                        []byte
		unlockModule, unlockLesson *string
	)
	err := l.pool.QueryRow(ctx, `
		SELECT id, course_id, title, COALESCE(description, ''), questions, unlock_module_id, unlock_lesson_id
		FROM tests WHERE id=$1`, testID).
		Scan(&test.ID, &test.CourseID, &test.Title, &test.Description, &raw, &unlockModule, &unlockLesson)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Test{}, domain.ErrTestNotFound
	}
	if err != nil {
		return domain.Test{}, fmt.Errorf("load test: %w", err)
	}
	test.Questions = raw
	test.UnlockModuleID = deref(unlockModule)
	test.UnlockLessonID = deref(unlockLesson)
	return test, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

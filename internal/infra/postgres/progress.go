package postgres

import (
	"context"
	"errors"
	"fmt"

	"course-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ProgressStore reads enrollments and lesson progress.
type ProgressStore struct {
	pool *pgxpool.Pool
}

func NewProgressStore(pool *pgxpool.Pool) *ProgressStore {
	return &ProgressStore{pool: pool}
}

func (s *ProgressStore) GetEnrollment(ctx context.Context, userID, courseID string) (domain.Enrollment, error) {
	e := domain.Enrollment{UserID: userID, CourseID: courseID}
	err := s.pool.QueryRow(ctx, `SELECT status FROM enrollments WHERE user_id=$1 AND course_id=$2`, userID, courseID).
		Scan(&e.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Enrollment{}, domain.ErrEnrollmentNotFound
	}
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("load enrollment: %w", err)
	}
	return e, nil
}

func (s *ProgressStore) GetLessonProgress(ctx context.Context, userID, lessonID string) (domain.LessonProgress, error) {
	p := domain.LessonProgress{UserID: userID, LessonID: lessonID}
	err := s.pool.QueryRow(ctx, `SELECT status, completed_at FROM lesson_progress WHERE user_id=$1 AND lesson_id=$2`, userID, lessonID).
		Scan(&p.Status, &p.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.LessonProgress{}, domain.ErrProgressNotFound
	}
	if err != nil {
		return domain.LessonProgress{}, fmt.Errorf("load lesson progress: %w", err)
	}
	return p, nil
}

func (s *ProgressStore) CountCompletedLessons(ctx context.Context, userID string, lessonIDs []string) (int, error) {
	if len(lessonIDs) == 0 {
		return 0, nil
	}
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT count(DISTINCT lesson_id) FROM lesson_progress
		WHERE user_id=$1 AND lesson_id = ANY($2) AND status=$3`,
		userID, lessonIDs, domain.LessonCompleted).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed lessons: %w", err)
	}
	return n, nil
}

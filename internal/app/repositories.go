package app

import (
	"context"

	"course-quiz-service/internal/domain"
)

// TestRepository loads authored tests (from cache/backing store).
type TestRepository interface {
	GetTest(ctx context.Context, testID string) (domain.Test, error)
}

// CourseRepository resolves courses by id or slug and exposes their structure.
type CourseRepository interface {
	GetCourse(ctx context.Context, ref string) (domain.Course, error)
	GetLesson(ctx context.Context, lessonID string) (domain.Lesson, error)
	GetModule(ctx context.Context, moduleID string) (domain.Module, error)
}

// ProgressRepository reads enrollment and lesson completion state.
type ProgressRepository interface {
	GetEnrollment(ctx context.Context, userID, courseID string) (domain.Enrollment, error)
	GetLessonProgress(ctx context.Context, userID, lessonID string) (domain.LessonProgress, error)
	CountCompletedLessons(ctx context.Context, userID string, lessonIDs []string) (int, error)
}

// AttemptRepository persists attempts. CompleteAttempt must be atomic per
// attempt: it applies the completion only while the attempt is IN_PROGRESS
// and reports whether this call applied it. Either way it returns the stored attempt.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt domain.Attempt) error
	GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error)
	CompleteAttempt(ctx context.Context, attemptID string, c domain.Completion) (domain.Attempt, bool, error)
	ListAttempts(ctx context.Context, testID, userID string) ([]domain.Attempt, error)
}

// UserDirectory creates or refreshes a learner profile.
type UserDirectory interface {
	UpsertUser(ctx context.Context, profile domain.UserProfile) (domain.User, error)
}

// ActivityLog appends analytics events.
type ActivityLog interface {
	Append(ctx context.Context, event domain.ActivityEvent) error
}

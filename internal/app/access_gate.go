package app

import (
	"context"
	"errors"
	"fmt"

	"course-quiz-service/internal/domain"
)

// Prerequisites describes what unlocks a test, for display in the public view.
type Prerequisites struct {
	Lesson *domain.PrerequisiteRef
	Module *domain.PrerequisiteRef
}

// AccessGate decides whether a learner may start a test. Checks run in a
// fixed order (enrollment, lesson, module) and stop at the first denial.
type AccessGate struct {
	courses  CourseRepository
	progress ProgressRepository
}

func NewAccessGate(courses CourseRepository, progress ProgressRepository) *AccessGate {
	return &AccessGate{courses: courses, progress: progress}
}

// Check returns the test's prerequisites when the learner may start it and a
// *domain.AccessDeniedError otherwise. Other errors come from the stores.
func (g *AccessGate) Check(ctx context.Context, userID, courseID string, test domain.Test) (Prerequisites, error) {
	var pre Prerequisites

	enrollment, err := g.progress.GetEnrollment(ctx, userID, courseID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return pre, fmt.Errorf("load enrollment: %w", err)
	}
	if err != nil || !enrollment.Active() {
		return pre, &domain.AccessDeniedError{Reason: domain.ReasonNotEnrolled}
	}

	if test.UnlockLessonID != "" {
		ref, err := g.lessonRef(ctx, test.UnlockLessonID)
		if err != nil {
			return pre, err
		}
		pre.Lesson = ref
		done, err := g.lessonCompleted(ctx, userID, test.UnlockLessonID)
		if err != nil {
			return pre, err
		}
		if !done {
			return pre, &domain.AccessDeniedError{Reason: domain.ReasonLessonNotCompleted, Title: ref.Title}
		}
	}

	if test.UnlockModuleID != "" {
		module, err := g.courses.GetModule(ctx, test.UnlockModuleID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// A dangling module has no lessons to complete.
			module = domain.Module{ID: test.UnlockModuleID, Title: test.UnlockModuleID}
		case err != nil:
			return pre, fmt.Errorf("load module: %w", err)
		}
		pre.Module = &domain.PrerequisiteRef{ID: module.ID, Title: module.Title}
		done, err := g.moduleCompleted(ctx, userID, module)
		if err != nil {
			return pre, err
		}
		if !done {
			return pre, &domain.AccessDeniedError{Reason: domain.ReasonModuleNotCompleted, Title: module.Title}
		}
	}

	return pre, nil
}

func (g *AccessGate) lessonRef(ctx context.Context, lessonID string) (*domain.PrerequisiteRef, error) {
	lesson, err := g.courses.GetLesson(ctx, lessonID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.PrerequisiteRef{ID: lessonID, Title: lessonID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	return &domain.PrerequisiteRef{ID: lesson.ID, Title: lesson.Title}, nil
}

func (g *AccessGate) lessonCompleted(ctx context.Context, userID, lessonID string) (bool, error) {
	progress, err := g.progress.GetLessonProgress(ctx, userID, lessonID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load lesson progress: %w", err)
	}
	return progress.Status == domain.LessonCompleted, nil
}

func (g *AccessGate) moduleCompleted(ctx context.Context, userID string, module domain.Module) (bool, error) {
	lessonIDs := uniqueStrings(module.LessonIDs)
	if len(lessonIDs) == 0 {
		return true, nil
	}
	completed, err := g.progress.CountCompletedLessons(ctx, userID, lessonIDs)
	if err != nil {
		return false, fmt.Errorf("count completed lessons: %w", err)
	}
	return completed >= len(lessonIDs), nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

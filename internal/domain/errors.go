package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the root of every lookup failure; match it with errors.Is.
	ErrNotFound = errors.New("not found")
	// ErrCourseNotFound is returned when a course ref matches neither id nor slug.
	ErrCourseNotFound = fmt.Errorf("course %w", ErrNotFound)
	// ErrTestNotFound is returned for unknown tests or tests of another course.
	ErrTestNotFound = fmt.Errorf("test %w", ErrNotFound)
	// ErrAttemptNotFound covers unknown attempts and attempts referenced under the wrong test, course or user.
	ErrAttemptNotFound = fmt.Errorf("attempt %w", ErrNotFound)
	ErrLessonNotFound  = fmt.Errorf("lesson %w", ErrNotFound)
	ErrModuleNotFound  = fmt.Errorf("module %w", ErrNotFound)
	// ErrEnrollmentNotFound and ErrProgressNotFound signal missing records; the gate treats them as denials.
	ErrEnrollmentNotFound = fmt.Errorf("enrollment %w", ErrNotFound)
	ErrProgressNotFound   = fmt.Errorf("lesson progress %w", ErrNotFound)

	// ErrAccessDenied matches every *AccessDeniedError.
	ErrAccessDenied = errors.New("access denied")
	// ErrAttemptInProgress is returned when a result is requested before submission.
	ErrAttemptInProgress = errors.New("attempt is still in progress")
)

// DenialReason classifies why the access gate refused a start.
type DenialReason string

const (
	ReasonNotEnrolled        DenialReason = "NOT_ENROLLED"
	ReasonLessonNotCompleted DenialReason = "LESSON_NOT_COMPLETED"
	ReasonModuleNotCompleted DenialReason = "MODULE_NOT_COMPLETED"
)

// AccessDeniedError carries the reason and, for prerequisite denials, the
// title of the lesson or module the learner must finish first.
type AccessDeniedError struct {
	Reason DenialReason
	Title  string
}

func (e *AccessDeniedError) Error() string {
	switch e.Reason {
	case ReasonNotEnrolled:
		return "you are not enrolled in this course"
	case ReasonLessonNotCompleted:
		return fmt.Sprintf("complete the lesson %q to unlock this test", e.Title)
	case ReasonModuleNotCompleted:
		return fmt.Sprintf("complete the module %q to unlock this test", e.Title)
	default:
		return ErrAccessDenied.Error()
	}
}

func (e *AccessDeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}

package app

import (
	"context"
	"errors"
	"log"
	"time"

	"course-quiz-service/internal/domain"
)

// ActivityRecorder emits analytics events on a best-effort basis. Failures
// are logged and never reach the caller.
type ActivityRecorder struct {
	log     ActivityLog
	timeout time.Duration
	now     func() time.Time
}

func NewActivityRecorder(activityLog ActivityLog, timeout time.Duration) *ActivityRecorder {
	return &ActivityRecorder{log: activityLog, timeout: timeout, now: time.Now}
}

// Record appends one event. The append outlives request cancellation but is
// bounded by the recorder timeout.
func (r *ActivityRecorder) Record(ctx context.Context, actor, action string, metadata map[string]any) {
	if r == nil || r.log == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			log.Printf("activity %s for %s panicked: %v", action, actor, p)
		}
	}()

	ctx = context.WithoutCancel(ctx)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	event := domain.ActivityEvent{
		Actor:     actor,
		Action:    action,
		Metadata:  metadata,
		Timestamp: r.now().UTC(),
	}
	if err := r.log.Append(ctx, event); err != nil {
		log.Printf("activity %s for %s dropped: %v", action, actor, err)
	}
}

// ActivityLogs fans one event out to several logs. Every log is tried; the
// returned error joins all failures.
type ActivityLogs []ActivityLog

func (ls ActivityLogs) Append(ctx context.Context, event domain.ActivityEvent) error {
	var errs []error
	for _, l := range ls {
		if err := l.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

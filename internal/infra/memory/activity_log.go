package memory

import (
	"context"
	"sync"

	"course-quiz-service/internal/domain"
)

// ActivityLog is an append-only in-memory event log.
type ActivityLog struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{}
}

func (l *ActivityLog) Append(_ context.Context, event domain.ActivityEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// Events returns a snapshot of appended events in order.
func (l *ActivityLog) Events() []domain.ActivityEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.ActivityEvent(nil), l.events...)
}

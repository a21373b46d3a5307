package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"course-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ActivityLog appends rows to activity_logs.
type ActivityLog struct {
	pool *pgxpool.Pool
}

func NewActivityLog(pool *pgxpool.Pool) *ActivityLog {
	return &ActivityLog{pool: pool}
}

func (l *ActivityLog) Append(ctx context.Context, e domain.ActivityEvent) error {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("encode activity metadata: %w", err)
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO activity_logs (actor, action, metadata, created_at) VALUES ($1, $2, $3::jsonb, $4)`,
		e.Actor, e.Action, string(metadata), e.Timestamp)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

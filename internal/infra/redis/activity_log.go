package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"course-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ActivityStream appends activity events to a Redis stream for downstream consumers.
type ActivityStream struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewActivityStream(client *redis.Client, stream string, maxLen int64) *ActivityStream {
	if stream == "" {
		stream = "activity"
	}
	return &ActivityStream{client: client, stream: stream, maxLen: maxLen}
}

func (s *ActivityStream) Append(ctx context.Context, event domain.ActivityEvent) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("encode activity metadata: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"actor":     event.Actor,
			"action":    event.Action,
			"metadata":  string(metadata),
			"timestamp": event.Timestamp.UTC().Format(time.RFC3339Nano),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	return s.client.XAdd(ctx, args).Err()
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"course-quiz-service/internal/domain"
	"course-quiz-service/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// TestRepository caches authored tests in Redis and falls back to a loader on cache miss.
// Each test is stored whole as: SET test:{testID} {json} EX ttl
type TestRepository struct {
	client *redis.Client
	loader memory.TestLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewTestRepository(client *redis.Client, loader memory.TestLoader, ttl time.Duration) *TestRepository {
	return &TestRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *TestRepository) GetTest(ctx context.Context, testID string) (domain.Test, error) {
	if test, ok := r.cached(ctx, testID); ok {
		return test, nil
	}

	result, err, _ := r.sf.Do(testID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if test, ok := r.cached(ctx, testID); ok {
			return test, nil
		}

		test, err := r.loader.LoadTest(ctx, testID)
		if err != nil {
			return domain.Test{}, err
		}

		data, err := json.Marshal(test)
		if err != nil {
			return test, nil
		}
		if err := r.client.Set(ctx, r.key(testID), data, r.ttlWithJitter()).Err(); err != nil {
			log.Printf("cache test %s: %v", testID, err)
		}
		return test, nil
	})
	if err != nil {
		return domain.Test{}, err
	}
	return result.(domain.Test), nil
}

// Invalidate drops the cached copy of a test.
func (r *TestRepository) Invalidate(ctx context.Context, testID string) error {
	return r.client.Del(ctx, r.key(testID)).Err()
}

// cached treats any Redis failure as a miss so the loader stays authoritative.
func (r *TestRepository) cached(ctx context.Context, testID string) (domain.Test, bool) {
	data, err := r.client.Get(ctx, r.key(testID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("read cached test %s: %v", testID, err)
		}
		return domain.Test{}, false
	}
	var test domain.Test
	if err := json.Unmarshal(data, &test); err != nil {
		return domain.Test{}, false
	}
	return test, true
}

func (r *TestRepository) key(testID string) string {
	return "test:" + testID
}

func (r *TestRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

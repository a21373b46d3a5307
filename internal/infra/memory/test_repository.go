package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"course-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// TestLoader fetches authored tests from a backing store (e.g., Postgres).
type TestLoader interface {
	LoadTest(ctx context.Context, testID string) (domain.Test, error)
}

// TestRepository caches tests with TTL to avoid repeated DB hits.
type TestRepository struct {
	loader TestLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedTest
}

type cachedTest struct {
	test      domain.Test
	expiresAt time.Time
}

func NewTestRepository(loader TestLoader, ttl time.Duration) *TestRepository {
	return &TestRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedTest),
	}
}

func (r *TestRepository) GetTest(ctx context.Context, testID string) (domain.Test, error) {
	if test, ok := r.lookup(testID); ok {
		return test, nil
	}

	result, err, _ := r.sf.Do(testID, func() (interface{}, error) {
		// Re-check: another caller may have filled the entry while we waited.
		if test, ok := r.lookup(testID); ok {
			return test, nil
		}

		test, err := r.loader.LoadTest(ctx, testID)
		if err != nil {
			return domain.Test{}, err
		}
		if r.ttl > 0 {
			r.mu.Lock()
			r.cache[testID] = cachedTest{test: test, expiresAt: r.clock().Add(r.ttlWithJitter())}
			r.mu.Unlock()
		}
		return test, nil
	})
	if err != nil {
		return domain.Test{}, err
	}
	return result.(domain.Test), nil
}

// Invalidate drops a cached test, e.g. after the author edits it.
func (r *TestRepository) Invalidate(testID string) {
	r.mu.Lock()
	delete(r.cache, testID)
	r.mu.Unlock()
}

func (r *TestRepository) lookup(testID string) (domain.Test, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[testID]; ok && entry.expiresAt.After(now) {
		return entry.test, true
	}
	return domain.Test{}, false
}

// add up to 10% jitter to spread expirations
func (r *TestRepository) ttlWithJitter() time.Duration {
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticTestLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticTestLoader struct {
	mu    sync.RWMutex
	tests map[string]domain.Test
}

func NewStaticTestLoader(tests map[string]domain.Test) *StaticTestLoader {
	if tests == nil {
		tests = make(map[string]domain.Test)
	}
	return &StaticTestLoader{tests: tests}
}

func (l *StaticTestLoader) LoadTest(_ context.Context, testID string) (domain.Test, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if test, ok := l.tests[testID]; ok {
		return test, nil
	}
	return domain.Test{}, domain.ErrTestNotFound
}

// PutTest adds or replaces a test.
func (l *StaticTestLoader) PutTest(test domain.Test) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tests[test.ID] = test
}

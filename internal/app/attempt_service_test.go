package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"course-quiz-service/internal/app"
	"course-quiz-service/internal/domain"
	"course-quiz-service/internal/infra/memory"
	"course-quiz-service/internal/quiz"
)

func TestStartAndSubmitScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	started, err := env.service.Start(ctx, app.StartRequest{
		CourseRef: "intro-go",
		TestID:    "test-1",
		Profile:   domain.UserProfile{UserID: "u1", FirstName: "Ada"},
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if started.AttemptID == "" {
		t.Fatalf("expected attempt id")
	}
	if started.Test.QuestionCount != 3 || started.Test.MaxScore != 3 {
		t.Fatalf("unexpected public test: %+v", started.Test)
	}
	first := started.Test.Questions[0]
	if first.ID != "q-0" || first.Order != 1 || first.Type != quiz.KindSingle {
		t.Fatalf("unexpected first question: %+v", first)
	}
	if first.Options[1].ID != "q-0-opt-1" {
		t.Fatalf("unexpected option id: %s", first.Options[1].ID)
	}
	if started.Test.Questions[2].Options != nil {
		t.Fatalf("open question must not expose options")
	}

	text := " Paris "
	result, err := env.service.Submit(ctx, app.SubmitRequest{
		CourseRef: "course-1",
		TestID:    "test-1",
		AttemptID: started.AttemptID,
		Answers: []quiz.Answer{
			{QuestionID: "q-0", SelectedOptionIDs: []string{"q-0-opt-1"}},
			{QuestionID: "q-1", SelectedOptionIDs: []string{"q-1-opt-0"}},
			{QuestionID: "q-2", TextAnswer: &text},
		},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 2 || result.MaxScore != 3 || result.Percent != 67 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Answers) != 3 || *result.Answers[1].Correct {
		t.Fatalf("partial multi-select must be incorrect: %+v", result.Answers)
	}

	events := env.activity.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 activity events, got %d", len(events))
	}
	if events[0].Action != domain.ActionAttemptStarted || events[1].Action != domain.ActionAttemptCompleted {
		t.Fatalf("unexpected actions: %s, %s", events[0].Action, events[1].Action)
	}
	if events[1].Metadata["percent"] != 67 {
		t.Fatalf("unexpected completion metadata: %+v", events[1].Metadata)
	}

	user, ok := env.users.Get("u1")
	if !ok || user.FirstName != "Ada" {
		t.Fatalf("expected upserted user, got %+v", user)
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	attemptID := env.start(t, "u1")

	first, err := env.service.Submit(ctx, env.submit(attemptID, "q-0-opt-1"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	second, err := env.service.Submit(ctx, env.submit(attemptID, "q-0-opt-0"))
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if first.Score != second.Score || second.Score != 1 {
		t.Fatalf("resubmit changed score: %d -> %d", first.Score, second.Score)
	}
	if n := countActions(env.activity.Events(), domain.ActionAttemptCompleted); n != 1 {
		t.Fatalf("expected one completion event, got %d", n)
	}
}

func TestConcurrentSubmitCompletesOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	attemptID := env.start(t, "u1")

	var wg sync.WaitGroup
	scores := make([]int, 10)
	for i := range scores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			option := "q-0-opt-0"
			if i%2 == 0 {
				option = "q-0-opt-1"
			}
			res, err := env.service.Submit(ctx, env.submit(attemptID, option))
			if err != nil {
				t.Errorf("submit: %v", err)
				return
			}
			scores[i] = res.Score
		}(i)
	}
	wg.Wait()

	for _, s := range scores[1:] {
		if s != scores[0] {
			t.Fatalf("racing submits observed different results: %v", scores)
		}
	}
	if n := countActions(env.activity.Events(), domain.ActionAttemptCompleted); n != 1 {
		t.Fatalf("expected one completion event, got %d", n)
	}
}

func TestMaxScoreFrozenAtStart(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	attemptID := env.start(t, "u1")

	edited := sampleCourseTest()
	edited.Questions = json.RawMessage(`[{"type":"single","prompt":"Only","options":[{"text":"x","isCorrect":true}]}]`)
	env.loader.PutTest(edited)
	env.tests.Invalidate("test-1")

	res, err := env.service.Submit(ctx, env.submit(attemptID, "q-0-opt-1"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.MaxScore != 3 || res.Score != 1 {
		t.Fatalf("expected frozen denominator 3 with score 1, got %+v", res)
	}
}

func TestStartNotFound(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.service.Start(ctx, app.StartRequest{CourseRef: "nope", TestID: "test-1", Profile: domain.UserProfile{UserID: "u1"}})
	if !errors.Is(err, domain.ErrCourseNotFound) {
		t.Fatalf("expected course not found, got %v", err)
	}

	_, err = env.service.Start(ctx, app.StartRequest{CourseRef: "course-1", TestID: "missing", Profile: domain.UserProfile{UserID: "u1"}})
	if !errors.Is(err, domain.ErrTestNotFound) {
		t.Fatalf("expected test not found, got %v", err)
	}

	other := sampleCourseTest()
	other.ID = "test-other"
	other.CourseID = "course-2"
	env.loader.PutTest(other)
	_, err = env.service.Start(ctx, app.StartRequest{CourseRef: "course-1", TestID: "test-other", Profile: domain.UserProfile{UserID: "u1"}})
	if !errors.Is(err, domain.ErrTestNotFound) {
		t.Fatalf("expected test of other course to be not found, got %v", err)
	}
}

func TestStartDeniedCreatesNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.service.Start(ctx, app.StartRequest{CourseRef: "course-1", TestID: "test-1", Profile: domain.UserProfile{UserID: "stranger"}})
	var denied *domain.AccessDeniedError
	if !errors.As(err, &denied) || denied.Reason != domain.ReasonNotEnrolled {
		t.Fatalf("expected not enrolled, got %v", err)
	}
	list, _ := env.attempts.ListAttempts(ctx, "test-1", "stranger")
	if len(list) != 0 {
		t.Fatalf("denied start must not create attempts")
	}
	if len(env.activity.Events()) != 0 {
		t.Fatalf("denied start must not emit activity")
	}
}

func TestSubmitAttemptScoping(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	attemptID := env.start(t, "u1")

	req := env.submit(attemptID, "q-0-opt-1")
	req.TestID = "test-2"
	if _, err := env.service.Submit(ctx, req); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for mismatched test, got %v", err)
	}

	req = env.submit(attemptID, "q-0-opt-1")
	req.UserID = "u2"
	if _, err := env.service.Submit(ctx, req); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}

	req = env.submit("missing", "q-0-opt-1")
	if _, err := env.service.Submit(ctx, req); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempt not found, got %v", err)
	}
}

func TestResultAndListAttempts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	attemptID := env.start(t, "u1")

	if _, err := env.service.Result(ctx, "course-1", "test-1", attemptID, "u1"); !errors.Is(err, domain.ErrAttemptInProgress) {
		t.Fatalf("expected in progress, got %v", err)
	}
	if _, err := env.service.Submit(ctx, env.submit(attemptID, "q-0-opt-1")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	res, err := env.service.Result(ctx, "intro-go", "test-1", attemptID, "")
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.Score != 1 || res.Percent != 33 {
		t.Fatalf("unexpected result: %+v", res)
	}

	second := env.start(t, "u1")
	list, err := env.service.ListAttempts(ctx, "course-1", "test-1", "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(list))
	}
	if list[0].AttemptID != second || list[0].Score != nil {
		t.Fatalf("expected newest in-progress attempt first, got %+v", list[0])
	}
	if list[1].Score == nil || *list[1].Score != 1 || *list[1].Percent != 33 {
		t.Fatalf("unexpected completed summary: %+v", list[1])
	}
}

func TestActivityFailureDoesNotFailStart(t *testing.T) {
	ctx := context.Background()
	env := newTestEnvWithLog(t, failingLog{})

	if _, err := env.service.Start(ctx, app.StartRequest{CourseRef: "course-1", TestID: "test-1", Profile: domain.UserProfile{UserID: "u1"}}); err != nil {
		t.Fatalf("start must succeed when activity fails: %v", err)
	}
}

func TestStartWithEmptyTest(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	empty := sampleCourseTest()
	empty.ID = "test-empty"
	empty.Questions = json.RawMessage(`"not an array"`)
	env.loader.PutTest(empty)

	started, err := env.service.Start(ctx, app.StartRequest{CourseRef: "course-1", TestID: "test-empty", Profile: domain.UserProfile{UserID: "u1"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Test.MaxScore != 0 || len(started.Test.Questions) != 0 {
		t.Fatalf("expected empty test, got %+v", started.Test)
	}
	res, err := env.service.Submit(ctx, app.SubmitRequest{CourseRef: "course-1", TestID: "test-empty", AttemptID: started.AttemptID})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Percent != 0 || res.Answers == nil {
		t.Fatalf("unexpected empty result: %+v", res)
	}
}

type testEnv struct {
	service  *app.AttemptService
	catalog  *memory.Catalog
	progress *memory.ProgressStore
	loader   *memory.StaticTestLoader
	tests    *memory.TestRepository
	attempts *memory.AttemptStore
	users    *memory.UserDirectory
	activity *memory.ActivityLog
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLog(t, nil)
}

func newTestEnvWithLog(t *testing.T, override app.ActivityLog) *testEnv {
	t.Helper()
	env := &testEnv{
		catalog:  memory.NewCatalog(),
		progress: memory.NewProgressStore(),
		loader:   memory.NewStaticTestLoader(nil),
		attempts: memory.NewAttemptStore(),
		users:    memory.NewUserDirectory(),
		activity: memory.NewActivityLog(),
	}
	env.tests = memory.NewTestRepository(env.loader, time.Minute)
	env.catalog.PutCourse(domain.Course{ID: "course-1", Slug: "intro-go", Title: "Intro to Go"})
	env.loader.PutTest(sampleCourseTest())
	env.progress.Enroll(domain.Enrollment{UserID: "u1", CourseID: "course-1", Status: domain.EnrollmentActive})

	var activityLog app.ActivityLog = env.activity
	if override != nil {
		activityLog = override
	}

	var (
		mu   sync.Mutex
		next int
	)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		next++
		return time.Date(2026, 10, 15, 10, 0, next, 0, time.UTC)
	}
	env.service = app.NewAttemptServiceWithClock(app.Dependencies{
		Courses:  env.catalog,
		Tests:    env.tests,
		Progress: env.progress,
		Attempts: env.attempts,
		Users:    env.users,
		Activity: app.NewActivityRecorder(activityLog, time.Second),
	}, clock)
	return env
}

func (e *testEnv) start(t *testing.T, userID string) string {
	t.Helper()
	res, err := e.service.Start(context.Background(), app.StartRequest{
		CourseRef: "course-1",
		TestID:    "test-1",
		Profile:   domain.UserProfile{UserID: userID},
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return res.AttemptID
}

func (e *testEnv) submit(attemptID, option string) app.SubmitRequest {
	return app.SubmitRequest{
		CourseRef: "course-1",
		TestID:    "test-1",
		AttemptID: attemptID,
		Answers:   []quiz.Answer{{QuestionID: "q-0", SelectedOptionIDs: []string{option}}},
	}
}

func sampleCourseTest() domain.Test {
	return domain.Test{
		ID:       "test-1",
		CourseID: "course-1",
		Title:    "Basics",
		Questions: json.RawMessage(`[
			{"type":"single","prompt":"2 + 2?","options":[{"text":"3"},{"text":"4","isCorrect":true}]},
			{"type":"multiple","prompt":"Even numbers?","options":[{"text":"2","isCorrect":true},{"text":"4","isCorrect":true},{"text":"5"}]},
			{"type":"open","prompt":"Capital of France?","correctAnswer":"paris"}
		]`),
	}
}

func countActions(events []domain.ActivityEvent, action string) int {
	n := 0
	for _, e := range events {
		if e.Action == action {
			n++
		}
	}
	return n
}

type failingLog struct{}

func (failingLog) Append(context.Context, domain.ActivityEvent) error {
	return fmt.Errorf("activity sink unavailable")
}

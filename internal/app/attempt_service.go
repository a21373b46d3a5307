package app

import (
	"context"
	"fmt"
	"time"

	"course-quiz-service/internal/domain"
	"course-quiz-service/internal/quiz"
	"github.com/google/uuid"
)

// Dependencies wires the attempt service to its stores.
type Dependencies struct {
	Courses  CourseRepository
	Tests    TestRepository
	Progress ProgressRepository
	Attempts AttemptRepository
	Users    UserDirectory
	Activity *ActivityRecorder
}

// AttemptService contains the test attempt use cases.
type AttemptService struct {
	courses  CourseRepository
	tests    TestRepository
	attempts AttemptRepository
	users    UserDirectory
	gate     *AccessGate
	activity *ActivityRecorder
	now      func() time.Time
	newID    func() string
}

func NewAttemptService(deps Dependencies) *AttemptService {
	return NewAttemptServiceWithClock(deps, time.Now)
}

// NewAttemptServiceWithClock is test-only for deterministic timestamps.
func NewAttemptServiceWithClock(deps Dependencies, now func() time.Time) *AttemptService {
	return &AttemptService{
		courses:  deps.Courses,
		tests:    deps.Tests,
		attempts: deps.Attempts,
		users:    deps.Users,
		gate:     NewAccessGate(deps.Courses, deps.Progress),
		activity: deps.Activity,
		now:      now,
		newID:    uuid.NewString,
	}
}

type StartRequest struct {
	CourseRef string
	TestID    string
	Profile   domain.UserProfile
}

type SubmitRequest struct {
	CourseRef string
	TestID    string
	AttemptID string
	// UserID is optional; when set it must own the attempt.
	UserID  string
	Answers []quiz.Answer
}

// Start opens a new attempt and returns the public view of the test.
// Nothing is persisted when a lookup fails or the access gate denies.
func (s *AttemptService) Start(ctx context.Context, req StartRequest) (domain.StartResult, error) {
	course, err := s.courses.GetCourse(ctx, req.CourseRef)
	if err != nil {
		return domain.StartResult{}, err
	}
	test, err := s.courseTest(ctx, course, req.TestID)
	if err != nil {
		return domain.StartResult{}, err
	}

	user, err := s.users.UpsertUser(ctx, req.Profile)
	if err != nil {
		return domain.StartResult{}, fmt.Errorf("upsert user: %w", err)
	}
	userID := user.ID
	if userID == "" {
		userID = req.Profile.UserID
	}

	prereq, err := s.gate.Check(ctx, userID, course.ID, test)
	if err != nil {
		return domain.StartResult{}, err
	}

	questions := quiz.Normalize(test.Questions)
	attempt := domain.Attempt{
		ID:        s.newID(),
		TestID:    test.ID,
		CourseID:  course.ID,
		UserID:    userID,
		Status:    domain.AttemptInProgress,
		MaxScore:  quiz.MaxScore(questions),
		Questions: questions,
		StartedAt: s.now().UTC(),
	}
	if err := s.attempts.CreateAttempt(ctx, attempt); err != nil {
		return domain.StartResult{}, fmt.Errorf("create attempt: %w", err)
	}

	s.activity.Record(ctx, userID, domain.ActionAttemptStarted, map[string]any{
		"attemptId": attempt.ID,
		"testId":    test.ID,
		"courseId":  course.ID,
		"maxScore":  attempt.MaxScore,
	})

	return domain.StartResult{
		AttemptID: attempt.ID,
		Test:      publicTest(test, questions, attempt.MaxScore, prereq),
	}, nil
}

// Submit grades an attempt exactly once. Submitting a completed attempt
// returns the stored result without grading or writing again.
func (s *AttemptService) Submit(ctx context.Context, req SubmitRequest) (domain.SubmitResult, error) {
	course, err := s.courses.GetCourse(ctx, req.CourseRef)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	attempt, err := s.ownedAttempt(ctx, course.ID, req.TestID, req.AttemptID, req.UserID)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if attempt.Completed() {
		return resultOf(attempt), nil
	}

	graded := quiz.Grade(attempt.Questions, req.Answers)
	stored, applied, err := s.attempts.CompleteAttempt(ctx, attempt.ID, domain.Completion{
		Score:       graded.Score,
		Responses:   graded.Evaluations,
		CompletedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.SubmitResult{}, fmt.Errorf("complete attempt: %w", err)
	}

	result := resultOf(stored)
	if applied {
		s.activity.Record(ctx, stored.UserID, domain.ActionAttemptCompleted, map[string]any{
			"attemptId": stored.ID,
			"testId":    stored.TestID,
			"courseId":  stored.CourseID,
			"score":     result.Score,
			"maxScore":  result.MaxScore,
			"percent":   result.Percent,
		})
	}
	return result, nil
}

// Result redisplays a completed attempt.
func (s *AttemptService) Result(ctx context.Context, courseRef, testID, attemptID, userID string) (domain.SubmitResult, error) {
	course, err := s.courses.GetCourse(ctx, courseRef)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	attempt, err := s.ownedAttempt(ctx, course.ID, testID, attemptID, userID)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if !attempt.Completed() {
		return domain.SubmitResult{}, domain.ErrAttemptInProgress
	}
	return resultOf(attempt), nil
}

// ListAttempts returns a learner's attempts on a test, newest first.
func (s *AttemptService) ListAttempts(ctx context.Context, courseRef, testID, userID string) ([]domain.AttemptSummary, error) {
	course, err := s.courses.GetCourse(ctx, courseRef)
	if err != nil {
		return nil, err
	}
	if _, err := s.courseTest(ctx, course, testID); err != nil {
		return nil, err
	}
	attempts, err := s.attempts.ListAttempts(ctx, testID, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]domain.AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		if a.CourseID != course.ID {
			continue
		}
		summary := domain.AttemptSummary{
			AttemptID:   a.ID,
			Status:      a.Status,
			MaxScore:    a.MaxScore,
			StartedAt:   a.StartedAt,
			CompletedAt: a.CompletedAt,
		}
		if a.Completed() {
			score := scoreOf(a)
			percent := quiz.Percent(score, a.MaxScore)
			summary.Score = &score
			summary.Percent = &percent
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *AttemptService) courseTest(ctx context.Context, course domain.Course, testID string) (domain.Test, error) {
	test, err := s.tests.GetTest(ctx, testID)
	if err != nil {
		return domain.Test{}, err
	}
	if test.CourseID != course.ID {
		return domain.Test{}, domain.ErrTestNotFound
	}
	return test, nil
}

func (s *AttemptService) ownedAttempt(ctx context.Context, courseID, testID, attemptID, userID string) (domain.Attempt, error) {
	attempt, err := s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.Attempt{}, err
	}
	if attempt.TestID != testID || attempt.CourseID != courseID {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if userID != "" && attempt.UserID != userID {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func resultOf(a domain.Attempt) domain.SubmitResult {
	score := scoreOf(a)
	answers := a.Responses
	if answers == nil {
		answers = []quiz.Evaluation{}
	}
	return domain.SubmitResult{
		AttemptID: a.ID,
		Score:     score,
		MaxScore:  a.MaxScore,
		Percent:   quiz.Percent(score, a.MaxScore),
		Answers:   answers,
	}
}

func scoreOf(a domain.Attempt) int {
	if a.Score == nil {
		return 0
	}
	return *a.Score
}

func publicTest(test domain.Test, questions []quiz.Question, maxScore int, pre Prerequisites) domain.PublicTest {
	out := domain.PublicTest{
		ID:            test.ID,
		Title:         test.Title,
		Description:   test.Description,
		QuestionCount: len(questions),
		MaxScore:      maxScore,
		Questions:     make([]domain.PublicQuestion, 0, len(questions)),
		UnlockLesson:  pre.Lesson,
		UnlockModule:  pre.Module,
	}
	for i, q := range questions {
		pq := domain.PublicQuestion{
			ID:          quiz.QuestionID(i),
			Order:       i + 1,
			Type:        q.Kind,
			Prompt:      q.Prompt,
			Explanation: q.Explanation,
		}
		if q.Kind != quiz.KindOpen {
			pq.Options = make([]domain.PublicOption, len(q.Options))
			for j, opt := range q.Options {
				pq.Options[j] = domain.PublicOption{ID: quiz.OptionID(i, j), Text: opt.Text}
			}
		}
		out.Questions = append(out.Questions, pq)
	}
	return out
}

package domain

import (
	"encoding/json"
	"time"

	"course-quiz-service/internal/quiz"
)

// AttemptStatus is the lifecycle state of an attempt.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
)

// Enrollment and lesson progress statuses recognized by the access gate.
const (
	EnrollmentActive = "ACTIVE"
	LessonCompleted  = "COMPLETED"
)

// Activity actions emitted by the attempt service.
const (
	ActionAttemptStarted   = "attempt.started"
	ActionAttemptCompleted = "attempt.completed"
)

// Course owns modules, lessons and tests. Ref lookups match ID or Slug.
type Course struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Module groups lessons; LessonIDs is in course order.
type Module struct {
	ID        string   `json:"id"`
	CourseID  string   `json:"courseId"`
	Title     string   `json:"title"`
	LessonIDs []string `json:"lessonIds"`
}

type Lesson struct {
	ID       string `json:"id"`
	CourseID string `json:"courseId"`
	ModuleID string `json:"moduleId"`
	Title    string `json:"title"`
}

// Test is authored externally. Questions holds the raw stored JSON, which may
// be in any historical shape; it is only read through quiz.Normalize.
type Test struct {
	ID             string          `json:"id"`
	CourseID       string          `json:"courseId"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Questions      json.RawMessage `json:"questions"`
	UnlockModuleID string          `json:"unlockModuleId,omitempty"`
	UnlockLessonID string          `json:"unlockLessonId,omitempty"`
}

// Attempt is one start of a test by a learner. MaxScore and Questions are
// frozen at start; Score, Responses and CompletedAt are written once on completion.
type Attempt struct {
	ID          string            `json:"id"`
	TestID      string            `json:"testId"`
	CourseID    string            `json:"courseId"`
	UserID      string            `json:"userId"`
	Status      AttemptStatus     `json:"status"`
	MaxScore    int               `json:"maxScore"`
	Score       *int              `json:"score"`
	Questions   []quiz.Question   `json:"questions"`
	Responses   []quiz.Evaluation `json:"responses"`
	StartedAt   time.Time         `json:"startedAt"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}

func (a Attempt) Completed() bool {
	return a.Status == AttemptCompleted
}

// Completion is the single write applied to an attempt when it is graded.
type Completion struct {
	Score       int
	Responses   []quiz.Evaluation
	CompletedAt time.Time
}

type Enrollment struct {
	UserID   string `json:"userId"`
	CourseID string `json:"courseId"`
	Status   string `json:"status"`
}

func (e Enrollment) Active() bool {
	return e.Status == EnrollmentActive
}

type LessonProgress struct {
	UserID      string     `json:"userId"`
	LessonID    string     `json:"lessonId"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// UserProfile is the identity payload sent by the Mini App on start.
type UserProfile struct {
	UserID       string `json:"userId" validate:"required"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"languageCode,omitempty"`
	AvatarURL    string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// User is the directory record produced by an upsert.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Username     string    `json:"username,omitempty"`
	LanguageCode string    `json:"languageCode,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ActivityEvent is an append-only analytics record.
type ActivityEvent struct {
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// PrerequisiteRef names a lesson or module that unlocks a test.
type PrerequisiteRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PublicOption never carries correctness.
type PublicOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type PublicQuestion struct {
	ID          string         `json:"id"`
	Order       int            `json:"order"`
	Type        quiz.Kind      `json:"type"`
	Prompt      string         `json:"prompt"`
	Explanation string         `json:"explanation,omitempty"`
	Options     []PublicOption `json:"options,omitempty"`
}

// PublicTest is the learner-facing view of a test, stripped of answer keys.
type PublicTest struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	QuestionCount int              `json:"questionCount"`
	MaxScore      int              `json:"maxScore"`
	Questions     []PublicQuestion `json:"questions"`
	UnlockLesson  *PrerequisiteRef `json:"unlockLesson,omitempty"`
	UnlockModule  *PrerequisiteRef `json:"unlockModule,omitempty"`
}

type StartResult struct {
	AttemptID string     `json:"attemptId"`
	Test      PublicTest `json:"test"`
}

type SubmitResult struct {
	AttemptID string            `json:"attemptId"`
	Score     int               `json:"score"`
	MaxScore  int               `json:"maxScore"`
	Percent   int               `json:"percent"`
	Answers   []quiz.Evaluation `json:"answers"`
}

// AttemptSummary is a list row for a learner's attempts on a test.
type AttemptSummary struct {
	AttemptID   string        `json:"attemptId"`
	Status      AttemptStatus `json:"status"`
	Score       *int          `json:"score,omitempty"`
	MaxScore    int           `json:"maxScore"`
	Percent     *int          `json:"percent,omitempty"`
	StartedAt   time.Time     `json:"startedAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

package cli

import (
	"encoding/json"

	"course-quiz-service/internal/domain"
	"course-quiz-service/internal/infra/memory"
)

const (
	demoCourseSlug = "go-basics"
	demoUserID     = "demo"
)

type demoData struct {
	catalog  *memory.Catalog
	progress *memory.ProgressStore
	tests    *memory.StaticTestLoader
}

// newDemoData seeds a small course for running without Postgres. The demo
// learner is enrolled and has finished the first lesson, so "basics-quiz" is
// open and "module-exam" stays locked until lesson-2 is completed.
func newDemoData() demoData {
	catalog := memory.NewCatalog()
	catalog.PutCourse(domain.Course{ID: "course-go", Slug: demoCourseSlug, Title: "Go Basics"})
	catalog.PutModule(domain.Module{ID: "module-1", CourseID: "course-go", Title: "Getting Started"})
	catalog.PutLesson(domain.Lesson{ID: "lesson-1", CourseID: "course-go", ModuleID: "module-1", Title: "Hello, World"})
	catalog.PutLesson(domain.Lesson{ID: "lesson-2", CourseID: "course-go", ModuleID: "module-1", Title: "Variables"})

	progress := memory.NewProgressStore()
	progress.Enroll(domain.Enrollment{UserID: demoUserID, CourseID: "course-go", Status: domain.EnrollmentActive})
	progress.SetLessonProgress(domain.LessonProgress{UserID: demoUserID, LessonID: "lesson-1", Status: domain.LessonCompleted})

	tests := memory.NewStaticTestLoader(map[string]domain.Test{
		"basics-quiz": {
			ID:             "basics-quiz",
			CourseID:       "course-go",
			Title:          "Hello, World check",
			UnlockLessonID: "lesson-1",
			Questions: json.RawMessage(`[
				{"type":"single","prompt":"Which keyword declares a package?","options":[{"text":"package","isCorrect":true},{"text":"module"},{"text":"import"}]},
				{"type":"multiple","prompt":"Which are builtin types?","options":[{"text":"int","isCorrect":true},{"text":"string","isCorrect":true},{"text":"char"}]},
				{"type":"open","prompt":"What does fmt.Println print after its arguments?","correctAnswer":"newline"}
			]`),
		},
		"module-exam": {
			ID:             "module-exam",
			CourseID:       "course-go",
			Title:          "Getting Started exam",
			UnlockModuleID: "module-1",
			Questions: json.RawMessage(`[
				{"question":"Zero value of an int?","options":["0","nil","undefined"],"answer":0},
				{"prompt":"Describe := in one sentence."}
			]`),
		},
	})

	return demoData{catalog: catalog, progress: progress, tests: tests}
}

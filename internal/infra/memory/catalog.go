package memory

import (
	"context"
	"sync"

	"course-quiz-service/internal/domain"
)

// Catalog is an in-memory course structure store (courses, modules, lessons).
type Catalog struct {
	mu      sync.RWMutex
	courses map[string]domain.Course
	modules map[string]domain.Module
	lessons map[string]domain.Lesson
}

func NewCatalog() *Catalog {
	return &Catalog{
		courses: make(map[string]domain.Course),
		modules: make(map[string]domain.Module),
		lessons: make(map[string]domain.Lesson),
	}
}

func (c *Catalog) PutCourse(course domain.Course) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.courses[course.ID] = course
}

func (c *Catalog) PutModule(module domain.Module) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules[module.ID] = module
}

// PutLesson stores a lesson and appends it to its module's lesson list.
func (c *Catalog) PutLesson(lesson domain.Lesson) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lessons[lesson.ID] = lesson
	if m, ok := c.modules[lesson.ModuleID]; ok {
		for _, id := range m.LessonIDs {
			if id == lesson.ID {
				return
			}
		}
		m.LessonIDs = append(append([]string(nil), m.LessonIDs...), lesson.ID)
		c.modules[m.ID] = m
	}
}

func (c *Catalog) GetCourse(_ context.Context, ref string) (domain.Course, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if course, ok := c.courses[ref]; ok {
		return course, nil
	}
	for _, course := range c.courses {
		if course.Slug != "" && course.Slug == ref {
			return course, nil
		}
	}
	return domain.Course{}, domain.ErrCourseNotFound
}

func (c *Catalog) GetLesson(_ context.Context, lessonID string) (domain.Lesson, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lesson, ok := c.lessons[lessonID]
	if !ok {
		return domain.Lesson{}, domain.ErrLessonNotFound
	}
	return lesson, nil
}

func (c *Catalog) GetModule(_ context.Context, moduleID string) (domain.Module, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	module, ok := c.modules[moduleID]
	if !ok {
		return domain.Module{}, domain.ErrModuleNotFound
	}
	module.LessonIDs = append([]string(nil), module.LessonIDs...)
	return module, nil
}

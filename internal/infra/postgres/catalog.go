package postgres

import (
	"context"
	"errors"
	"fmt"

	"course-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Catalog reads courses, modules and lessons.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

// GetCourse matches ref against id first, then slug.
func (c *Catalog) GetCourse(ctx context.Context, ref string) (domain.Course, error) {
	var (
		course domain.Course
		slug   *string
	)
	err := c.pool.QueryRow(ctx, `
		SELECT id, slug, title FROM courses
		WHERE id=$1 OR slug=$1
		ORDER BY (id=$1) DESC
		LIMIT 1`, ref).Scan(&course.ID, &slug, &course.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	if err != nil {
		return domain.Course{}, fmt.Errorf("load course: %w", err)
	}
	course.Slug = deref(slug)
	return course, nil
}

func (c *Catalog) GetLesson(ctx context.Context, lessonID string) (domain.Lesson, error) {
	var (
		lesson   domain.Lesson
		moduleID *string
	)
	err := c.pool.QueryRow(ctx, `SELECT id, course_id, module_id, title FROM lessons WHERE id=$1`, lessonID).
		Scan(&lesson.ID, &lesson.CourseID, &moduleID, &lesson.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lesson{}, domain.ErrLessonNotFound
	}
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("load lesson: %w", err)
	}
	lesson.ModuleID = deref(moduleID)
	return lesson, nil
}

func (c *Catalog) GetModule(ctx context.Context, moduleID string) (domain.Module, error) {
	var module domain.Module
	err := c.pool.QueryRow(ctx, `SELECT id, course_id, title FROM modules WHERE id=$1`, moduleID).
		Scan(&module.ID, &module.CourseID, &module.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Module{}, domain.ErrModuleNotFound
	}
	if err != nil {
		return domain.Module{}, fmt.Errorf("load module: %w", err)
	}

	rows, err := c.pool.Query(ctx, `SELECT id FROM lessons WHERE module_id=$1 ORDER BY position, id`, moduleID)
	if err != nil {
		return domain.Module{}, fmt.Errorf("load module lessons: %w", err)
	}
	defer rows.Close()
	module.LessonIDs = make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return domain.Module{}, fmt.Errorf("scan module lesson: %w", err)
		}
		module.LessonIDs = append(module.LessonIDs, id)
	}
	if err := rows.Err(); err != nil {
		return domain.Module{}, fmt.Errorf("load module lessons: %w", err)
	}
	return module, nil
}

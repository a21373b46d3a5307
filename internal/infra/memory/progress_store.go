package memory

import (
	"context"
	"sync"

	"course-quiz-service/internal/domain"
)

// ProgressStore keeps enrollments and lesson progress in memory.
type ProgressStore struct {
	mu          sync.RWMutex
	enrollments map[[2]string]domain.Enrollment
	progress    map[[2]string]domain.LessonProgress
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		enrollments: make(map[[2]string]domain.Enrollment),
		progress:    make(map[[2]string]domain.LessonProgress),
	}
}

func (s *ProgressStore) Enroll(e domain.Enrollment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollments[[2]string{e.UserID, e.CourseID}] = e
}

func (s *ProgressStore) SetLessonProgress(p domain.LessonProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[[2]string{p.UserID, p.LessonID}] = p
}

func (s *ProgressStore) GetEnrollment(_ context.Context, userID, courseID string) (domain.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enrollments[[2]string{userID, courseID}]
	if !ok {
		return domain.Enrollment{}, domain.ErrEnrollmentNotFound
	}
	return e, nil
}

func (s *ProgressStore) GetLessonProgress(_ context.Context, userID, lessonID string) (domain.LessonProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.progress[[2]string{userID, lessonID}]
	if !ok {
		return domain.LessonProgress{}, domain.ErrProgressNotFound
	}
	return p, nil
}

func (s *ProgressStore) CountCompletedLessons(_ context.Context, userID string, lessonIDs []string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, id := range lessonIDs {
		if p, ok := s.progress[[2]string{userID, id}]; ok && p.Status == domain.LessonCompleted {
			n++
		}
	}
	return n, nil
}

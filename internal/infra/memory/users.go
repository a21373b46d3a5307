package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"course-quiz-service/internal/domain"
)

// UserDirectory is an in-memory app.UserDirectory. Upserts keep previously
// known fields when the new profile leaves them blank.
type UserDirectory struct {
	mu    sync.RWMutex
	users map[string]domain.User
	clock func() time.Time
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{users: make(map[string]domain.User), clock: time.Now}
}

func (d *UserDirectory) UpsertUser(_ context.Context, p domain.UserProfile) (domain.User, error) {
	if p.UserID == "" {
		return domain.User{}, errors.New("user id is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	u := d.users[p.UserID]
	u.ID = p.UserID
	u.FirstName = keep(p.FirstName, u.FirstName)
	u.LastName = keep(p.LastName, u.LastName)
	u.Username = keep(p.Username, u.Username)
	u.LanguageCode = keep(p.LanguageCode, u.LanguageCode)
	u.AvatarURL = keep(p.AvatarURL, u.AvatarURL)
	u.UpdatedAt = d.clock().UTC()
	d.users[p.UserID] = u
	return u, nil
}

// Get returns a stored user.
func (d *UserDirectory) Get(userID string) (domain.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[userID]
	return u, ok
}

func keep(next, prev string) string {
	if next == "" {
		return prev
	}
	return next
}

package postgres

import (
	"context"
	"fmt"

	"course-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// UserDirectory upserts learner profiles. Blank incoming fields keep the stored value.
type UserDirectory struct {
	pool *pgxpool.Pool
}

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

func (d *UserDirectory) UpsertUser(ctx context.Context, p domain.UserProfile) (domain.User, error) {
	var u domain.User
	err := d.pool.QueryRow(ctx, `
		INSERT INTO users (id, first_name, last_name, username, language_code, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			first_name    = COALESCE(NULLIF(EXCLUDED.first_name, ''), users.first_name),
			last_name     = COALESCE(NULLIF(EXCLUDED.last_name, ''), users.last_name),
			username      = COALESCE(NULLIF(EXCLUDED.username, ''), users.username),
			language_code = COALESCE(NULLIF(EXCLUDED.language_code, ''), users.language_code),
			avatar_url    = COALESCE(NULLIF(EXCLUDED.avatar_url, ''), users.avatar_url),
			updated_at    = now()
		RETURNING id, first_name, last_name, username, language_code, avatar_url, updated_at`,
		p.UserID, p.FirstName, p.LastName, p.Username, p.LanguageCode, p.AvatarURL).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.LanguageCode, &u.AvatarURL, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

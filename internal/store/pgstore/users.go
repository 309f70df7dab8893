// Package pgstore keeps user profiles in PostgreSQL.
package pgstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
	"github.com/lib/pq"
)

type Users struct {
	db *sql.DB
}

var _ store.UserStore = (*Users)(nil)

func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

// UpsertUser creates the profile or updates its name and role. created_at is
// only ever set on the first registration.
func (s *Users) UpsertUser(ctx context.Context, u *models.User) error {
	return s.db.QueryRowContext(ctx, `
		INSERT INTO users (uid, display_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (uid) DO UPDATE
		SET display_name = EXCLUDED.display_name,
			role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`, u.UID, u.DisplayName, string(u.Role), u.UpdatedAt).Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (s *Users) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	var role string
	err := s.db.QueryRowContext(ctx, `
		SELECT uid, display_name, role, created_at, updated_at
		FROM users WHERE uid = $1
	`, uid).Scan(&u.UID, &u.DisplayName, &role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (s *Users) GetUsers(ctx context.Context, uids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(uids))
	if len(uids) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT uid, display_name, role, created_at, updated_at
		FROM users WHERE uid = ANY($1)
	`, pq.Array(uids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		var role string
		if err := rows.Scan(&u.UID, &u.DisplayName, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		out[u.UID] = &u
	}
	return out, rows.Err()
}

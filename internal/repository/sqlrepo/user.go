package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/staffdir/pkg/models"
	"github.com/garnizeh/staffdir/pkg/repository"
)

func (r *Repo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}

	query := fmt.Sprintf(`INSERT INTO users (username, password_hash, created) VALUES (%s, %s, %s) RETURNING id`,
		r.dialect.Placeholder(1), r.dialect.Placeholder(2), r.dialect.Placeholder(3))

	var id int64
	if err := r.conn.QueryRow(ctx, query, u.Username, u.PasswordHash, r.now().UnixMilli()).Scan(&id); err != nil {
		if r.isUnique(err) {
			return 0, &repository.ConstraintError{Field: "username"}
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	return id, nil
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT id, username, password_hash, created FROM users WHERE username = %s`, r.dialect.Placeholder(1))
	var u models.User
	if err := r.conn.QueryRow(ctx, query, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &u, nil
}

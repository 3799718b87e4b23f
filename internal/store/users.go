package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reminders-lite/internal/model"
)

// GetOrCreateUser returns the user registered under email, creating it with
// password when missing. An existing user's password is left untouched.
func (s *Store) GetOrCreateUser(ctx context.Context, email, password string, nowMillis int64) (model.User, bool, error) {
	if email == "" || password == "" {
		return model.User{}, false, errors.New("email and password are required")
	}

	u, err := s.userByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, false, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, password, created_at) VALUES (?, ?, ?)`,
		email, password, nowMillis)
	if err != nil {
		return model.User{}, false, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, false, fmt.Errorf("failed to get inserted ID: %w", err)
	}
	return model.User{ID: id, Email: email, Password: password, CreatedAt: nowMillis}, true, nil
}

func (s *Store) FindUserByCredentials(ctx context.Context, email, password string) (model.User, bool, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password, created_at FROM users WHERE email = ? AND password = ? LIMIT 1`,
		email, password).Scan(&u.ID, &u.Email, &u.Password, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, fmt.Errorf("failed to query user: %w", err)
	}
	return u, true, nil
}

func (s *Store) userByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.Password, &u.CreatedAt)
	return u, err
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reminders-lite/internal/model"
)

const reminderColumns = `id, user_id, title, body, deadline, created_at`

func (s *Store) ListReminders(ctx context.Context, userID int64) ([]model.Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	result := make([]model.Reminder, 0)
	for rows.Next() {
		var r model.Reminder
		if err := rows.Scan(&r.ID, &r.UserID, &r.Title, &r.Body, &r.Deadline, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetReminder returns the reminder only when it belongs to userID.
func (s *Store) GetReminder(ctx context.Context, userID, id int64) (model.Reminder, bool, error) {
	var r model.Reminder
	err := s.db.QueryRowContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&r.ID, &r.UserID, &r.Title, &r.Body, &r.Deadline, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reminder{}, false, nil
	}
	if err != nil {
		return model.Reminder{}, false, fmt.Errorf("failed to get reminder: %w", err)
	}
	return r, true, nil
}

// CreateReminder ignores any incoming id and created_at.
func (s *Store) CreateReminder(ctx context.Context, r model.Reminder, nowMillis int64) (model.Reminder, error) {
	if r.UserID <= 0 || r.Title == "" {
		return model.Reminder{}, ErrInvalidReminder
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (user_id, title, body, deadline, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.UserID, r.Title, r.Body, r.Deadline, nowMillis)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("failed to insert reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Reminder{}, fmt.Errorf("failed to get inserted ID: %w", err)
	}
	r.ID = id
	r.CreatedAt = nowMillis
	return r, nil
}

// UpdateReminder replaces title, body and deadline. The owner and creation
// time are kept from the stored row.
func (s *Store) UpdateReminder(ctx context.Context, r model.Reminder) (model.Reminder, bool, error) {
	if r.UserID <= 0 || r.Title == "" {
		return model.Reminder{}, false, ErrInvalidReminder
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET title = ?, body = ?, deadline = ? WHERE id = ? AND user_id = ?`,
		r.Title, r.Body, r.Deadline, r.ID, r.UserID)
	if err != nil {
		return model.Reminder{}, false, fmt.Errorf("failed to update reminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Reminder{}, false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return model.Reminder{}, false, nil
	}
	return s.GetReminder(ctx, r.UserID, r.ID)
}

func (s *Store) DeleteReminder(ctx context.Context, userID, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete reminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

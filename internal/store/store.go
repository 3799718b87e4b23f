package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

// ErrInvalidReminder is returned for writes missing a title or owner.
var ErrInvalidReminder = errors.New("invalid reminder")

// Store keeps users and reminders in SQLite. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

const busyTimeoutMillis = 5000

type Options struct {
	// Path of the database file. ":memory:" keeps everything in process.
	Path string
}

func New() (*Store, error) {
	return NewWithOptions(Options{Path: ":memory:"})
}

func NewWithOptions(opts Options) (*Store, error) {
	path := opts.Path
	if path == "" {
		path = ":memory:"
	}

	dsn := path
	if path != ":memory:" {
		// Pooled connections wait for the write lock instead of failing with SQLITE_BUSY.
		dsn = path + "?_pragma=busy_timeout(" + strconv.Itoa(busyTimeoutMillis) + ")"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			email      TEXT    NOT NULL UNIQUE,
			password   TEXT    NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS reminders (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			title      TEXT    NOT NULL,
			body       TEXT    NOT NULL DEFAULT '',
			deadline   INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS reminders_user_id ON reminders(user_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

package waitlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicate is returned when the email is already registered.
var ErrDuplicate = errors.New("email already registered")

// Entry is one waitlist signup.
type Entry struct {
	ID        string
	Email     string
	UseCase   string
	CreatedAt time.Time
}

// Inserter is the remote endpoint the service talks to.
type Inserter interface {
	Insert(ctx context.Context, email, useCase string) (Entry, error)
}

// Store keeps entries in SQLite with a unique email column.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS waitlist (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	use_case TEXT,
	created_at DATETIME NOT NULL
);`

// Open creates or opens the database at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create waitlist table: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Insert adds an entry. The email is trimmed and lower-cased first, so
// addresses differing only in case are duplicates.
func (s *Store) Insert(ctx context.Context, email, useCase string) (Entry, error) {
	if !ValidEmail(email) {
		return Entry{}, ErrInvalidEmail
	}
	email = NormalizeEmail(email)
	e := Entry{
		ID:        uuid.NewString(),
		Email:     email,
		UseCase:   useCase,
		CreatedAt: s.now().UTC(),
	}
	var uc sql.NullString
	if useCase != "" {
		uc = sql.NullString{String: useCase, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO waitlist (id, email, use_case, created_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Email, uc, e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Entry{}, ErrDuplicate
		}
		return Entry{}, fmt.Errorf("insert waitlist entry: %w", err)
	}
	return e, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// Count returns how many entries are stored.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM waitlist`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count waitlist: %w", err)
	}
	return n, nil
}

// List returns entries oldest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, email, use_case, created_at FROM waitlist ORDER BY created_at, email`)
	if err != nil {
		return nil, fmt.Errorf("list waitlist: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var uc sql.NullString
		if err := rows.Scan(&e.ID, &e.Email, &uc, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan waitlist: %w", err)
		}
		e.UseCase = uc.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

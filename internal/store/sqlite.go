package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"portfolio-sentinel/internal/errors"
)

// SQLiteStore implements ContextStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based context store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS context_sections (
		name TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// GetSection returns one section by name.
func (s *SQLiteStore) GetSection(ctx context.Context, name string) (*Section, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, content, version, updated_at FROM context_sections WHERE name = ?`, name)

	var sec Section
	if err := row.Scan(&sec.Name, &sec.Content, &sec.Version, &sec.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.Wrapf(errors.ErrSectionNotFound, "section %q", name)
		}
		return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	return &sec, nil
}

// ListSections returns all sections ordered by name.
func (s *SQLiteStore) ListSections(ctx context.Context) ([]Section, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, content, version, updated_at FROM context_sections ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		var sec Section
		if err := rows.Scan(&sec.Name, &sec.Content, &sec.Version, &sec.UpdatedAt); err != nil {
			return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// UpdateSection writes new content to a section, creating it if absent.
// Append and prepend modes join with a blank line; each write bumps the
// section version.
func (s *SQLiteStore) UpdateSection(ctx context.Context, name, content string, mode UpdateMode) (*Section, error) {
	switch mode {
	case ModeReplace, ModeAppend, ModePrepend:
	default:
		return nil, errors.NewParameterError("mode", string(mode), "must be replace, append, or prepend")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	defer tx.Rollback()

	var existing string
	var version int
	err = tx.QueryRowContext(ctx,
		`SELECT content, version FROM context_sections WHERE name = ?`, name).
		Scan(&existing, &version)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}

	next := content
	if err == nil {
		switch mode {
		case ModeAppend:
			next = existing + "\n\n" + content
		case ModePrepend:
			next = content + "\n\n" + existing
		}
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO context_sections (name, content, version, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET
			content = excluded.content,
			version = context_sections.version + 1,
			updated_at = excluded.updated_at`,
		name, next, now)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}

	return s.GetSection(ctx, name)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

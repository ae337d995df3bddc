package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// SQLite persists records in a single-file database at dir/tasks.db.
// WAL mode gives concurrent reads and crash-safe writes; one writer
// connection, which is how SQLite wants to be used.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database under dir.
// Enables WAL mode and a 5-second busy timeout.
func OpenSQLite(dir string) (*SQLite, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "tasks.db")
	// The driver only honors _pragma= query parameters; mattn-style
	// _journal_mode keys are silently dropped.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// migrate runs idempotent schema migrations.
func (s *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS records (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Get returns the value stored under key.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM records WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put inserts or replaces the record under key.
func (s *SQLite) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// Delete removes key. Absent keys are a success.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key)
	return err
}

// Keys returns all keys beginning with prefix. The scan is a range query
// rather than LIKE: task keys are full of underscores, which LIKE would
// treat as a single-character wildcard.
func (s *SQLite) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := `SELECT key FROM records ORDER BY key`
	args := []any{}
	if prefix != "" {
		if end := prefixEnd(prefix); end != "" {
			query = `SELECT key FROM records WHERE key >= ? AND key < ? ORDER BY key`
			args = []any{prefix, end}
		} else {
			query = `SELECT key FROM records WHERE key >= ? ORDER BY key`
			args = []any{prefix}
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// prefixEnd returns the smallest string greater than every string that
// begins with prefix, for use as a range upper bound. Empty when no
// finite bound exists.
func prefixEnd(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1])
		}
	}
	return ""
}

// Ping checks database connectivity.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close cleanly shuts down the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite keeps documents in a single table keyed by user and document name.
type SQLite struct {
	db     *sql.DB
	path   string
	userID string
}

func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db, path: path, userID: "default"}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		user_id    TEXT NOT NULL,
		name       TEXT NOT NULL,
		body       TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, name)
	);`)
	return err
}

// ForUser shares the connection. Closing any view closes it for all.
func (s *SQLite) ForUser(userID string) *SQLite {
	return &SQLite{db: s.db, path: s.path, userID: userOrDefault(userID)}
}

func (s *SQLite) IsConfigured() bool { return true }

func (s *SQLite) Load(ctx context.Context, doc string) ([]byte, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE user_id = ? AND name = ?`,
		s.userID, doc,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", doc, err)
	}
	return []byte(body), true, nil
}

func (s *SQLite) Save(ctx context.Context, doc string, body []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (user_id, name, body, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		s.userID, doc, string(body), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", doc, err)
	}
	return nil
}

func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Close() error { return s.db.Close() }

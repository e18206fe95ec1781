package persistence

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var (
	ErrUnknownBackend  = errors.New("unknown storage backend")
	ErrInvalidDocument = errors.New("document is not valid JSON")
)

// Store holds the per-user documents. Each document is read and written on
// its own; a missing document is reported with ok=false, not an error.
type Store interface {
	IsConfigured() bool
	Load(ctx context.Context, doc string) (body []byte, ok bool, err error)
	Save(ctx context.Context, doc string, body []byte) error
	Close() error
}

type Options struct {
	Backend    string
	DataDir    string
	SQLitePath string
	UserID     string
}

// Open builds the backend named in opts, scoped to opts.UserID.
func Open(opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendNone:
		return Unconfigured{}, nil
	case BackendMemory:
		return NewMemory().ForUser(opts.UserID), nil
	case BackendFile:
		repo, err := NewFileRepo(opts.DataDir)
		if err != nil {
			return nil, err
		}
		return repo.ForUser(opts.UserID), nil
	case BackendSQLite:
		path := opts.SQLitePath
		if strings.TrimSpace(path) == "" {
			path = filepath.Join(opts.DataDir, "terranova.db")
		}
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return db.ForUser(opts.UserID), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// Unconfigured is local-only mode: nothing is read and writes vanish.
type Unconfigured struct{}

func (Unconfigured) IsConfigured() bool { return false }

func (Unconfigured) Load(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Unconfigured) Save(context.Context, string, []byte) error { return nil }

func (Unconfigured) Close() error { return nil }

func userOrDefault(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "default"
	}
	return userID
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

package persistence

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

type fileState struct {
	Users map[string]map[string]json.RawMessage `json:"users"`
}

type fileStore struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

// FileRepo stores every user's documents in one JSON file under the data dir.
type FileRepo struct {
	store  *fileStore
	userID string
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	st := &fileStore{
		path: filepath.Join(dataDir, "documents.json"),
		s:    fileState{Users: map[string]map[string]json.RawMessage{}},
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	return &FileRepo{store: st, userID: "default"}, nil
}

func (s *fileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.s = fileState{Users: map[string]map[string]json.RawMessage{}}
			return nil
		}
		return err
	}
	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Users == nil {
		loaded.Users = map[string]map[string]json.RawMessage{}
	}
	s.s = loaded
	return nil
}

func (s *fileStore) saveLocked() error {
	b, err := json.MarshalIndent(s.s, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (r *FileRepo) ForUser(userID string) *FileRepo {
	return &FileRepo{store: r.store, userID: userOrDefault(userID)}
}

func (r *FileRepo) IsConfigured() bool { return true }

func (r *FileRepo) Load(ctx context.Context, doc string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	b, ok := r.store.s.Users[r.userID][doc]
	return cloneBytes(b), ok, nil
}

func (r *FileRepo) Save(ctx context.Context, doc string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(body) {
		return ErrInvalidDocument
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u := r.store.s.Users[r.userID]
	if u == nil {
		u = map[string]json.RawMessage{}
		r.store.s.Users[r.userID] = u
	}
	u[doc] = json.RawMessage(cloneBytes(body))
	return r.store.saveLocked()
}

func (r *FileRepo) Path() string { return r.store.path }

func (r *FileRepo) Close() error { return nil }

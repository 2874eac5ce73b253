package session

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// fileEntry is the on-disk envelope for one key.
type fileEntry struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// FileStore keeps session data as one file per key under a base
// directory. Keys are percent-escaped to form file names.
type FileStore struct {
	root string
	now  func() time.Time
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create session directory")
	}
	return &FileStore{root: dir, now: time.Now}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.root, url.PathEscape(key))
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "read session file")
	}
	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, errors.Wrap(err, "decode session file")
	}
	if entry.expired(s.now()) {
		_ = os.Remove(s.path(key))
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Set implements Store.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	return s.write(key, fileEntry{Value: value})
}

// Expire implements Store.
func (s *FileStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	value, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return err
	}
	return s.write(key, fileEntry{Value: value, ExpiresAt: s.now().Add(ttl)})
}

// Remove implements Store.
func (s *FileStore) Remove(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "remove session file")
}

func (s *FileStore) write(key string, entry fileEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "encode session file")
	}
	if err := os.WriteFile(s.path(key), data, 0o600); err != nil {
		return errors.Wrap(err, "write session file")
	}
	return nil
}

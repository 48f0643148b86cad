package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/hasibdev/portfeed/model"
	Logger "github.com/hasibdev/portfeed/utils/log"
	"github.com/pkg/errors"
)

const (
	// Fixed storage keys for the device-local state. The post list and the
	// migration flag live under separate keys so the flag survives a list
	// rewrite.
	postsFileName         = "portfolio_posts_v1.json"
	migrationFlagFileName = "portfolio_migrated_v1"
)

// LocalStore persists the full post list on the local device as one JSON
// document, rewritten wholesale on every change. It also owns the persisted
// migration-completed flag checked before any local-to-remote copy.
//
// Reads fail soft: a missing or malformed list yields an empty one. A mutex
// serializes the read-modify-write cycles issued by concurrent request
// handlers.
type LocalStore struct {
	mu  sync.Mutex
	dir string
}

// NewLocalStore opens (creating if needed) the store rooted at dir.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "cannot create local store directory")
	}
	return &LocalStore{dir: dir}, nil
}

// ListAll returns every stored post in insertion order. Malformed or missing
// stored content yields an empty list rather than an error.
func (s *LocalStore) ListAll() []model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listAllLocked()
}

func (s *LocalStore) listAllLocked() []model.Post {
	raw, err := os.ReadFile(s.postsPath())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			Logger.Log.Warn("cannot read local post list, treating as empty: ", err)
		}
		return []model.Post{}
	}
	var posts []model.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		Logger.Log.Warn("local post list is malformed, treating as empty: ", err)
		return []model.Post{}
	}
	return posts
}

// PersistAll overwrites the stored list with posts. The write goes through a
// temp file and rename so a crash mid-write never leaves a truncated list.
func (s *LocalStore) PersistAll(posts []model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistAllLocked(posts)
}

func (s *LocalStore) persistAllLocked(posts []model.Post) error {
	raw, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot encode local post list")
	}
	tmp := s.postsPath() + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.Wrap(err, "cannot write local post list")
	}
	return errors.Wrap(os.Rename(tmp, s.postsPath()), "cannot replace local post list")
}

// Append adds posts to the end of the stored list under a single lock, so
// two concurrent appends cannot lose each other's read-modify-write.
func (s *LocalStore) Append(posts ...model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistAllLocked(append(s.listAllLocked(), posts...))
}

// Remove filters the post with the given id out of the stored list and
// rewrites it. Returns ErrNotFound when no stored post carries the id.
func (s *LocalStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.listAllLocked()
	kept := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if p.Id != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(posts) {
		return ErrNotFound
	}
	return s.persistAllLocked(kept)
}

// MigrationDone reports whether the one-time local-to-remote migration has
// already been marked complete on this device.
func (s *LocalStore) MigrationDone() bool {
	_, err := os.Stat(s.flagPath())
	return err == nil
}

// MarkMigrationDone persists the migration-completed flag. Idempotent.
func (s *LocalStore) MarkMigrationDone() error {
	return errors.Wrap(os.WriteFile(s.flagPath(), []byte("1"), 0o644), "cannot persist migration flag")
}

func (s *LocalStore) postsPath() string {
	return filepath.Join(s.dir, postsFileName)
}

func (s *LocalStore) flagPath() string {
	return filepath.Join(s.dir, migrationFlagFileName)
}

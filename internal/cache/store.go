// Package cache persists per-artist catalog snapshots as JSON files.
//
// One file per artist under a configurable root, written with a
// temp-then-rename discipline so a reader never observes a torn entry. The
// cache is an optimization only: read failures degrade to a live fetch.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/soracane/kwx/internal/models"
	"github.com/soracane/kwx/internal/shared"
)

// Entry is a complete snapshot of an artist's catalog at fetch time.
// Entries are replaced wholesale on refresh, never merged.
type Entry struct {
	ArtistID  string         `json:"artist_id"`
	FetchedAt time.Time      `json:"fetched_at"`
	Tracks    []models.Track `json:"tracks"`
}

// Store is a file-backed snapshot store rooted at a single directory.
type Store struct {
	dir    string
	maxAge time.Duration
	lock   *flock.Flock
}

// NewStore creates a Store rooted at dir. maxAge bounds how old an entry may
// be before Read treats it as absent; zero means entries never expire.
func NewStore(dir string, maxAge time.Duration) *Store {
	return &Store{
		dir:    dir,
		maxAge: maxAge,
		lock:   flock.New(filepath.Join(dir, ".lock")),
	}
}

// Dir returns the cache root directory.
func (s *Store) Dir() string {
	return s.dir
}

// TryLock attempts to take the cache directory lock for the duration of a
// run. It reports false without error when another process holds it;
// callers are expected to warn and continue lockless.
func (s *Store) TryLock() (bool, error) {
	if err := s.ensureDir(); err != nil {
		return false, err
	}
	return s.lock.TryLock()
}

// Unlock releases the directory lock if held.
func (s *Store) Unlock() error {
	return s.lock.Unlock()
}

// Read returns the stored snapshot for the artist, or nil when no usable
// entry exists. Absence is not an error; it signals "must fetch". Unreadable
// or corrupt entries are reported as cache IO errors so the caller can
// degrade to a live fetch.
func (s *Store) Read(artistID string) (*Entry, error) {
	data, err := os.ReadFile(s.path(artistID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", shared.ErrCacheIO, artistID, err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", shared.ErrCacheIO, artistID, err)
	}

	if s.maxAge > 0 && time.Since(entry.FetchedAt) > s.maxAge {
		return nil, nil
	}

	return &entry, nil
}

// Write atomically replaces any prior entry for the artist with a complete
// snapshot. The entry is staged in a temp file in the same directory and
// renamed into place so a concurrent reader never sees a partial file.
func (s *Store) Write(artistID string, tracks []models.Track) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	entry := Entry{
		ArtistID:  artistID,
		FetchedAt: time.Now().UTC(),
		Tracks:    tracks,
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", shared.ErrCacheIO, artistID, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, artistID+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: stage %s: %v", shared.ErrCacheIO, artistID, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: stage %s: %v", shared.ErrCacheIO, artistID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: stage %s: %v", shared.ErrCacheIO, artistID, err)
	}

	if err := os.Rename(tmp.Name(), s.path(artistID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: replace %s: %v", shared.ErrCacheIO, artistID, err)
	}

	return nil
}

// Clear removes the snapshot for one artist. Clearing an absent entry is a
// no-op.
func (s *Store) Clear(artistID string) error {
	if err := os.Remove(s.path(artistID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: clear %s: %v", shared.ErrCacheIO, artistID, err)
	}
	return nil
}

// ClearAll removes every snapshot under the cache root, leaving the
// directory (and any lock file) in place.
func (s *Store) ClearAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: clear all: %v", shared.ErrCacheIO, err)
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("%w: clear all: %v", shared.ErrCacheIO, err)
		}
	}

	return nil
}

// List returns the artist IDs with a stored snapshot.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: list: %v", shared.ErrCacheIO, err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		ids = append(ids, e.Name()[:len(e.Name())-len(".json")])
	}

	return ids, nil
}

func (s *Store) path(artistID string) string {
	return filepath.Join(s.dir, artistID+".json")
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: create cache dir: %v", shared.ErrCacheIO, err)
	}
	return nil
}

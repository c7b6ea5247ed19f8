// Package synccache throttles repeated checks of the same ChangeSpec.
//
// The cache file (~/.local/state/changespec/sync_cache.json) is a flat JSON
// object mapping ChangeSpec names to the time they were last checked. It is
// always replaced atomically, so an interrupted write leaves the previous
// contents in place.
package synccache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/amonks/changespec/internal/atomicfile"
)

// Entries maps ChangeSpec names to their last-checked time.
type Entries map[string]time.Time

// Store manages the cache file with locking.
type Store struct {
	dir string
}

// NewStore creates a new cache store using the given directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the path to the cache file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, "sync_cache.json")
}

func (s *Store) lockPath() string {
	return filepath.Join(s.dir, "sync_cache.lock")
}

// Load reads the cache from disk. Returns empty entries if the file doesn't exist.
func (s *Store) Load() (Entries, error) {
	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return make(Entries), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sync cache: %w", err)
	}

	entries := make(Entries)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal sync cache: %w", err)
	}
	return entries, nil
}

// Save writes the cache to disk.
func (s *Store) Save(entries Entries) error {
	if entries == nil {
		entries = make(Entries)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sync cache: %w", err)
	}
	data = append(data, '\n')

	if err := atomicfile.WriteFile(s.Path(), data, 0o644); err != nil {
		return fmt.Errorf("save sync cache: %w", err)
	}
	return nil
}

// Update reads, modifies, and writes the cache while holding the lock file.
func (s *Store) Update(fn func(entries Entries) error) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	lockFile, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lockFile.Close()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)

	entries, err := s.Load()
	if err != nil {
		return err
	}

	if err := fn(entries); err != nil {
		return err
	}

	return s.Save(entries)
}

package synccache

import (
	"fmt"
	"time"
)

// DefaultMinInterval is the throttle window between checks of one ChangeSpec.
const DefaultMinInterval = 5 * time.Minute

// Cache answers throttling questions and records check attempts.
//
// Reads are served from memory; every RecordChecked writes through to the
// store so the window survives restarts.
type Cache struct {
	store   *Store
	entries Entries
}

// Open loads the cache from store.
func Open(store *Store) (*Cache, error) {
	entries, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Cache{store: store, entries: entries}, nil
}

// OpenDir loads the cache stored in dir.
func OpenDir(dir string) (*Cache, error) {
	return Open(NewStore(dir))
}

// ShouldCheck reports whether name is due for a check: it has never been
// checked, or at least minInterval has passed since the last check.
// A non-positive minInterval always allows the check.
func (c *Cache) ShouldCheck(name string, now time.Time, minInterval time.Duration) bool {
	last, ok := c.entries[name]
	if !ok || minInterval <= 0 {
		return true
	}
	return now.Sub(last) >= minInterval
}

// LastChecked returns the last recorded check for name.
func (c *Cache) LastChecked(name string) (time.Time, bool) {
	last, ok := c.entries[name]
	return last, ok
}

// RecordChecked upserts the last-checked time for name and persists it.
//
// If persisting fails the in-memory view is left unchanged.
func (c *Cache) RecordChecked(name string, now time.Time) error {
	var merged Entries
	err := c.store.Update(func(entries Entries) error {
		entries[name] = now
		merged = entries
		return nil
	})
	if err != nil {
		return fmt.Errorf("record check for %s: %w", name, err)
	}
	c.entries = merged
	return nil
}

// Forget removes the entry for name so the next check is not throttled.
func (c *Cache) Forget(name string) error {
	var merged Entries
	err := c.store.Update(func(entries Entries) error {
		delete(entries, name)
		merged = entries
		return nil
	})
	if err != nil {
		return fmt.Errorf("forget %s: %w", name, err)
	}
	c.entries = merged
	return nil
}

// Reload replaces the in-memory view with the entries on disk, picking up
// checks recorded or forgotten by other processes.
func (c *Cache) Reload() error {
	entries, err := c.store.Load()
	if err != nil {
		return err
	}
	c.entries = entries
	return nil
}

// Len returns the number of ChangeSpecs with a recorded check.
func (c *Cache) Len() int {
	return len(c.entries)
}

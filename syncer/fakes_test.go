package syncer

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/amonks/changespec/changespec"
)

type memStore struct {
	items   map[string]changespec.ChangeSpec
	saves   []changespec.ChangeSpec
	saveErr map[string]error
}

func newMemStore(items ...changespec.ChangeSpec) *memStore {
	store := &memStore{items: make(map[string]changespec.ChangeSpec), saveErr: make(map[string]error)}
	for _, item := range items {
		store.items[item.Name] = item
	}
	return store
}

func (s *memStore) LoadAll() ([]changespec.ChangeSpec, error) {
	all := make([]changespec.ChangeSpec, 0, len(s.items))
	for _, item := range s.items {
		all = append(all, item)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (s *memStore) Save(cs changespec.ChangeSpec) error {
	if err := s.saveErr[cs.Name]; err != nil {
		return err
	}
	s.items[cs.Name] = cs
	s.saves = append(s.saves, cs)
	return nil
}

func (s *memStore) status(name string) changespec.Status {
	return s.items[name].Status
}

type memCache struct {
	entries  map[string]time.Time
	recorded []string
	reloads  int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]time.Time)}
}

func (c *memCache) ShouldCheck(name string, now time.Time, minInterval time.Duration) bool {
	last, ok := c.entries[name]
	return !ok || now.Sub(last) >= minInterval
}

func (c *memCache) RecordChecked(name string, now time.Time) error {
	c.entries[name] = now
	c.recorded = append(c.recorded, name)
	return nil
}

func (c *memCache) Reload() error {
	c.reloads++
	return nil
}

func (c *memCache) wasRecorded(name string) bool {
	_, ok := c.entries[name]
	return ok
}

type checkResult struct {
	event changespec.Event
	err   error
}

// fakeChecker answers checks from per-name tables. Missing entries give
// NoEvent for submission and NoComments for comments.
type fakeChecker struct {
	submitted map[string]checkResult
	comments  map[string]checkResult
	presubmit map[string]checkResult

	launchPath string
	launchErr  error

	calls    []string
	launched []string
}

func newFakeChecker() *fakeChecker {
	return &fakeChecker{
		submitted: make(map[string]checkResult),
		comments:  make(map[string]checkResult),
		presubmit: make(map[string]checkResult),
	}
}

func (c *fakeChecker) CheckSubmission(ctx context.Context, cs changespec.ChangeSpec) (changespec.Event, error) {
	c.calls = append(c.calls, "submitted:"+cs.Name)
	if result, ok := c.submitted[cs.Name]; ok {
		return result.event, result.err
	}
	return changespec.NoEvent{}, nil
}

func (c *fakeChecker) CheckComments(ctx context.Context, cs changespec.ChangeSpec) (changespec.Event, error) {
	c.calls = append(c.calls, "comments:"+cs.Name)
	if result, ok := c.comments[cs.Name]; ok {
		return result.event, result.err
	}
	return changespec.NoCommentsEvent{}, nil
}

func (c *fakeChecker) CheckPresubmitCompletion(ctx context.Context, cs changespec.ChangeSpec) (changespec.Event, error) {
	c.calls = append(c.calls, "presubmit:"+cs.Name)
	if result, ok := c.presubmit[cs.Name]; ok {
		return result.event, result.err
	}
	return changespec.NoEvent{}, nil
}

func (c *fakeChecker) LaunchPresubmit(cs changespec.ChangeSpec) (string, error) {
	c.launched = append(c.launched, cs.Name)
	if c.launchErr != nil {
		return "", c.launchErr
	}
	return c.launchPath, nil
}

func (c *fakeChecker) checked(name string) bool {
	for _, call := range c.calls {
		if call == "submitted:"+name || call == "comments:"+name || call == "presubmit:"+name {
			return true
		}
	}
	return false
}

var errCheck = errors.New("check command failed")

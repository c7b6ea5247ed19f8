// Package syncer advances ChangeSpecs by polling external checks.
//
// The Syncer is the only component that writes ChangeSpec statuses. Each
// SyncOne call evaluates, in order: whether the status is syncable, the
// throttle window (unless forced), and the parent dependency gate. Only then
// are external checks run, their event fed through changespec.Transition,
// the result persisted, and the check recorded in the cache.
//
// Scheduling is the caller's business: the Syncer runs synchronously and
// keeps no ChangeSpec list between calls.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/amonks/changespec/changespec"
	"github.com/amonks/changespec/synccache"
)

// Store loads and persists ChangeSpecs.
type Store interface {
	LoadAll() ([]changespec.ChangeSpec, error)
	Save(changespec.ChangeSpec) error
}

// Cache throttles checks per ChangeSpec.
type Cache interface {
	ShouldCheck(name string, now time.Time, minInterval time.Duration) bool
	RecordChecked(name string, now time.Time) error
	Reload() error
}

// Checker runs external checks and launches presubmits.
type Checker interface {
	CheckSubmission(ctx context.Context, cs changespec.ChangeSpec) (changespec.Event, error)
	CheckComments(ctx context.Context, cs changespec.ChangeSpec) (changespec.Event, error)
	CheckPresubmitCompletion(ctx context.Context, cs changespec.ChangeSpec) (changespec.Event, error)
	LaunchPresubmit(cs changespec.ChangeSpec) (string, error)
}

// Config configures a Syncer.
type Config struct {
	Store   Store
	Cache   Cache
	Checker Checker

	// MinInterval is the throttle window. Defaults to
	// synccache.DefaultMinInterval.
	MinInterval time.Duration

	Logger *log.Logger
}

// Syncer orchestrates checks and status transitions.
type Syncer struct {
	store       Store
	cache       Cache
	checker     Checker
	minInterval time.Duration
	logger      *log.Logger
}

// New creates a Syncer.
func New(config Config) (*Syncer, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if config.Cache == nil {
		return nil, fmt.Errorf("cache cannot be nil")
	}
	if config.Checker == nil {
		return nil, fmt.Errorf("checker cannot be nil")
	}
	if config.MinInterval <= 0 {
		config.MinInterval = synccache.DefaultMinInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Syncer{
		store:       config.Store,
		cache:       config.Cache,
		checker:     config.Checker,
		minInterval: config.MinInterval,
		logger:      logger,
	}, nil
}

// MinInterval returns the configured throttle window.
func (s *Syncer) MinInterval() time.Duration {
	return s.minInterval
}

// SyncOne checks a single ChangeSpec and applies any resulting transition.
//
// all must be the unfiltered set of ChangeSpecs; it is only used to resolve
// the parent. Check failures are reported in Result.CheckErr and never
// returned. Transition and persistence failures are returned.
func (s *Syncer) SyncOne(ctx context.Context, cs changespec.ChangeSpec, all []changespec.ChangeSpec, now time.Time, force bool) (Result, error) {
	result := Result{Name: cs.Name, From: cs.Status, To: cs.Status}

	if !cs.Status.IsValid() {
		return result, fmt.Errorf("sync %s: %w: %q", cs.Name, changespec.ErrUnknownStatus, cs.Status)
	}
	if !cs.Status.IsSyncable() {
		result.Skipped = SkipNotSyncable
		return result, nil
	}
	if !force && !s.cache.ShouldCheck(cs.Name, now, s.minInterval) {
		result.Skipped = SkipThrottled
		return result, nil
	}
	// Skipping here leaves the cache untouched so the check runs promptly
	// once the parent submits.
	if !changespec.IsEligible(cs, all) {
		result.Skipped = SkipIneligible
		return result, nil
	}

	event, checkErr := s.runChecks(ctx, cs)
	result.Checked = true
	result.Event = event
	if checkErr != nil {
		result.CheckErr = checkErr
		s.logger.Printf("%s: %v", cs.Name, checkErr)
	}

	if !changespec.IsNoEvent(event) && !changespec.IsObservation(cs.Status, event) {
		next, err := changespec.Transition(cs.Status, event)
		if err != nil {
			return result, fmt.Errorf("sync %s: %w", cs.Name, err)
		}
		if next != cs.Status {
			updated := cs
			updated.Status = next
			updated.UpdatedAt = now
			if err := s.store.Save(updated); err != nil {
				return result, fmt.Errorf("save %s: %w", cs.Name, err)
			}
			result.To = next
			s.logger.Printf("%s: %s -> %s (%s)", cs.Name, cs.Status, next, event)
		}
	}

	if err := s.cache.RecordChecked(cs.Name, now); err != nil {
		return result, err
	}
	return result, nil
}

// runChecks picks the checks that apply to the current status.
func (s *Syncer) runChecks(ctx context.Context, cs changespec.ChangeSpec) (changespec.Event, error) {
	switch cs.Status {
	case changespec.StatusRunningPresubmits:
		return s.checker.CheckPresubmitCompletion(ctx, cs)
	case changespec.StatusMailed, changespec.StatusChangesRequested:
		event, submitErr := s.checker.CheckSubmission(ctx, cs)
		if _, ok := event.(changespec.SubmittedEvent); ok {
			return event, submitErr
		}
		event, commentsErr := s.checker.CheckComments(ctx, cs)
		return event, errors.Join(submitErr, commentsErr)
	default:
		return changespec.NoEvent{}, nil
	}
}

// SyncAll runs SyncOne for every ChangeSpec in all, in name order.
//
// A failure for one ChangeSpec never stops the batch. Hard failures are
// joined and returned alongside the complete report.
func (s *Syncer) SyncAll(ctx context.Context, all []changespec.ChangeSpec, now time.Time, force bool) (Report, error) {
	ordered := append([]changespec.ChangeSpec(nil), all...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Name < ordered[j].Name
	})

	// view tracks statuses changed earlier in the batch, so a parent
	// submitted here can unblock a child later in the same batch.
	view := append([]changespec.ChangeSpec(nil), all...)
	positions := make(map[string]int, len(view))
	for i, cs := range view {
		positions[cs.Name] = i
	}

	report := Report{StartedAt: now, Forced: force}
	var errs []error
	for _, cs := range ordered {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := s.SyncOne(ctx, cs, view, now, force)
		if err != nil {
			result.Err = err
			errs = append(errs, err)
		}
		if result.Changed() {
			view[positions[cs.Name]].Status = result.To
		}
		report.Results = append(report.Results, result)
	}
	return report, errors.Join(errs...)
}

// Eligible returns the members of all that SyncAll would check right now.
func (s *Syncer) Eligible(all []changespec.ChangeSpec, now time.Time, force bool) []changespec.ChangeSpec {
	index := changespec.NewIndex(all)
	var eligible []changespec.ChangeSpec
	for _, cs := range all {
		if !cs.Status.IsSyncable() {
			continue
		}
		if !force && !s.cache.ShouldCheck(cs.Name, now, s.minInterval) {
			continue
		}
		if !index.IsEligible(cs) {
			continue
		}
		eligible = append(eligible, cs)
	}
	return eligible
}

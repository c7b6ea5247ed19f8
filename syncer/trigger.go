package syncer

import (
	"context"
	"fmt"
	"time"
)

// Trigger names the occasion a sync is run for.
type Trigger string

const (
	// TriggerStartup checks every syncable ChangeSpec across all projects
	// when the tool starts.
	TriggerStartup Trigger = "startup"

	// TriggerNavigate checks every eligible ChangeSpec when the user moves
	// between ChangeSpecs, not just the one being moved to.
	TriggerNavigate Trigger = "navigate"

	// TriggerManual is an explicit user request and bypasses the throttle.
	TriggerManual Trigger = "manual"
)

// Forces reports whether the trigger bypasses the throttle window.
func (t Trigger) Forces() bool {
	return t == TriggerManual
}

// ParseTrigger converts a string into a Trigger.
func ParseTrigger(value string) (Trigger, error) {
	switch Trigger(value) {
	case TriggerStartup, TriggerNavigate, TriggerManual:
		return Trigger(value), nil
	default:
		return "", fmt.Errorf("unknown trigger %q", value)
	}
}

// RunTrigger loads the unfiltered ChangeSpec set from the store and syncs
// all of it. Callers should reload their own view afterwards.
//
// The throttle cache is reloaded first so long-running callers see checks
// recorded or reset by other processes.
func (s *Syncer) RunTrigger(ctx context.Context, trigger Trigger, now time.Time) (Report, error) {
	if err := s.cache.Reload(); err != nil {
		return Report{}, fmt.Errorf("reload sync cache: %w", err)
	}
	all, err := s.store.LoadAll()
	if err != nil {
		return Report{}, fmt.Errorf("load changespecs: %w", err)
	}
	s.logger.Printf("%s sync: %d changespecs", trigger, len(all))
	return s.SyncAll(ctx, all, now, trigger.Forces())
}

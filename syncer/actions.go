package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/amonks/changespec/changespec"
)

// find loads the full set and returns the named ChangeSpec.
func (s *Syncer) find(name string) (changespec.ChangeSpec, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return changespec.ChangeSpec{}, fmt.Errorf("load changespecs: %w", err)
	}
	for _, cs := range all {
		if cs.Name == name {
			return cs, nil
		}
	}
	return changespec.ChangeSpec{}, fmt.Errorf("%w: %s", changespec.ErrNotFound, name)
}

// apply routes event through the state machine and persists the result.
func (s *Syncer) apply(cs changespec.ChangeSpec, event changespec.Event, now time.Time) (changespec.ChangeSpec, error) {
	next, err := changespec.Transition(cs.Status, event)
	if err != nil {
		return changespec.ChangeSpec{}, fmt.Errorf("%s: %w", cs.Name, err)
	}
	updated := cs
	updated.Status = next
	updated.UpdatedAt = now
	if launched, ok := event.(changespec.PresubmitLaunchedEvent); ok {
		updated.PresubmitOutputPath = launched.OutputPath
	}
	if err := s.store.Save(updated); err != nil {
		return changespec.ChangeSpec{}, fmt.Errorf("save %s: %w", cs.Name, err)
	}
	s.logger.Printf("%s: %s -> %s (%s)", cs.Name, cs.Status, next, event)
	return updated, nil
}

// StartPresubmit launches the presubmit for name in the background and
// moves it to RunningPresubmits without waiting for the outcome. Later
// syncs discover completion through the recorded output file.
func (s *Syncer) StartPresubmit(ctx context.Context, name string, now time.Time) (changespec.ChangeSpec, error) {
	cs, err := s.find(name)
	if err != nil {
		return changespec.ChangeSpec{}, err
	}
	if err := ctx.Err(); err != nil {
		return changespec.ChangeSpec{}, err
	}

	// Validate before launching so an illegal request starts nothing.
	if _, err := changespec.Transition(cs.Status, changespec.PresubmitLaunchedEvent{}); err != nil {
		return changespec.ChangeSpec{}, fmt.Errorf("%s: %w", cs.Name, err)
	}

	path, err := s.checker.LaunchPresubmit(cs)
	if err != nil {
		return changespec.ChangeSpec{}, fmt.Errorf("launch presubmit for %s: %w", cs.Name, err)
	}

	updated, err := s.apply(cs, changespec.PresubmitLaunchedEvent{OutputPath: path}, now)
	if err != nil {
		// The process is already running; keep its output findable.
		s.logger.Printf("%s: presubmit running with output %s but not recorded: %v", cs.Name, path, err)
		return changespec.ChangeSpec{}, fmt.Errorf("presubmit for %s started with output %s but was not recorded: %w", cs.Name, path, err)
	}
	return updated, nil
}

// Advance applies a user-initiated event (QA completed, mailed) to name.
func (s *Syncer) Advance(ctx context.Context, name string, event changespec.Event, now time.Time) (changespec.ChangeSpec, error) {
	switch event.(type) {
	case changespec.QACompletedEvent, changespec.MailedEvent:
	default:
		return changespec.ChangeSpec{}, fmt.Errorf("%w: %s is not user-initiated", changespec.ErrInvalidTransition, event)
	}
	if err := ctx.Err(); err != nil {
		return changespec.ChangeSpec{}, err
	}

	cs, err := s.find(name)
	if err != nil {
		return changespec.ChangeSpec{}, err
	}
	return s.apply(cs, event, now)
}

package syncer

import (
	"time"

	"github.com/amonks/changespec/changespec"
)

// SkipReason explains why SyncOne did not run checks.
type SkipReason string

const (
	// SkipNone means checks ran.
	SkipNone SkipReason = ""
	// SkipNotSyncable means the status has no periodic check.
	SkipNotSyncable SkipReason = "not_syncable"
	// SkipThrottled means the ChangeSpec was checked within the window.
	SkipThrottled SkipReason = "throttled"
	// SkipIneligible means the parent has not been submitted.
	SkipIneligible SkipReason = "ineligible"
)

// Result describes what SyncOne did for one ChangeSpec.
type Result struct {
	Name string
	From changespec.Status
	To   changespec.Status

	Skipped SkipReason

	// Checked is set when external checks ran.
	Checked bool
	Event   changespec.Event

	// CheckErr holds an absorbed check failure.
	CheckErr error

	// Err holds a hard failure recorded by SyncAll.
	Err error
}

// Changed reports whether the ChangeSpec moved to a new status.
func (r Result) Changed() bool {
	return r.From != r.To
}

// Report collects the results of a SyncAll batch.
type Report struct {
	StartedAt time.Time
	Forced    bool
	Results   []Result
}

// Advanced returns the results whose status changed.
func (r Report) Advanced() []Result {
	var advanced []Result
	for _, result := range r.Results {
		if result.Changed() {
			advanced = append(advanced, result)
		}
	}
	return advanced
}

// Checked returns the results for which checks ran.
func (r Report) Checked() []Result {
	var checked []Result
	for _, result := range r.Results {
		if result.Checked {
			checked = append(checked, result)
		}
	}
	return checked
}

// Failed returns results with either an absorbed check failure or a hard
// failure.
func (r Report) Failed() []Result {
	var failed []Result
	for _, result := range r.Results {
		if result.CheckErr != nil || result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

// Count returns how many results were skipped for reason.
func (r Report) Count(reason SkipReason) int {
	count := 0
	for _, result := range r.Results {
		if result.Skipped == reason {
			count++
		}
	}
	return count
}

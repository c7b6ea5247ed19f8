// Package changespec models code-review units ("ChangeSpecs") and the rules
// that govern how they move between statuses.
//
// The public API is small:
//   - Transition is the single source of truth for status changes
//   - IsEligible implements the parent-before-child dependency gate
//   - FileStore persists ChangeSpecs as one JSON file per project
package changespec

import (
	"strings"
	"time"
)

// Status represents the lifecycle position of a ChangeSpec.
type Status string

const (
	// StatusNeedsPresubmits indicates presubmits have not been started.
	StatusNeedsPresubmits Status = "needs_presubmits"

	// StatusRunningPresubmits indicates a detached presubmit is in flight.
	StatusRunningPresubmits Status = "running_presubmits"

	// StatusNeedsQA indicates presubmits passed and QA is pending.
	StatusNeedsQA Status = "needs_qa"

	// StatusPreMailed indicates QA is done but the change is not yet mailed.
	StatusPreMailed Status = "pre_mailed"

	// StatusMailed indicates the change is out for review.
	StatusMailed Status = "mailed"

	// StatusChangesRequested indicates reviewers left unresolved comments.
	StatusChangesRequested Status = "changes_requested"

	// StatusSubmitted indicates the change has landed.
	StatusSubmitted Status = "submitted"
)

// ValidStatuses returns all valid status values in lifecycle order.
func ValidStatuses() []Status {
	return []Status{
		StatusNeedsPresubmits,
		StatusRunningPresubmits,
		StatusNeedsQA,
		StatusPreMailed,
		StatusMailed,
		StatusChangesRequested,
		StatusSubmitted,
	}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// IsSyncable returns true for statuses that periodic checks can advance.
func (s Status) IsSyncable() bool {
	switch s {
	case StatusMailed, StatusChangesRequested, StatusRunningPresubmits:
		return true
	default:
		return false
	}
}

// IsUnderReview returns true for statuses where submission and comment
// checks run.
func (s Status) IsUnderReview() bool {
	return s == StatusMailed || s == StatusChangesRequested
}

// IsTerminal returns true when no transition leaves the status.
func (s Status) IsTerminal() bool {
	return s == StatusSubmitted
}

// DisplayName returns the human-facing spelling, e.g. "Changes Requested".
func (s Status) DisplayName() string {
	switch s {
	case StatusNeedsPresubmits:
		return "Needs Presubmits"
	case StatusRunningPresubmits:
		return "Running Presubmits"
	case StatusNeedsQA:
		return "Needs QA"
	case StatusPreMailed:
		return "Pre-Mailed"
	case StatusMailed:
		return "Mailed"
	case StatusChangesRequested:
		return "Changes Requested"
	case StatusSubmitted:
		return "Submitted"
	default:
		return string(s)
	}
}

// ParseStatus accepts either the persisted value ("changes_requested") or a
// display spelling ("Changes Requested", "ChangesRequested").
func ParseStatus(value string) (Status, error) {
	key := statusKey(value)
	for _, status := range ValidStatuses() {
		if key == statusKey(string(status)) {
			return status, nil
		}
	}
	return "", unknownStatus(Status(value))
}

func statusKey(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(value)
}

// ChangeSpec is a named unit of code review.
type ChangeSpec struct {
	// Name uniquely identifies the ChangeSpec across all projects.
	Name string `json:"name"`

	// Project names the external workspace the change lives in.
	Project string `json:"project"`

	Status Status `json:"status"`

	// Parent is the name of the ChangeSpec this one is stacked on.
	// Empty means no dependency.
	Parent string `json:"parent,omitempty"`

	Description string `json:"description,omitempty"`

	// PresubmitOutputPath points at the captured output of the most recent
	// presubmit launch. Empty until a presubmit has been started.
	PresubmitOutputPath string `json:"pre_submit_output_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasParent reports whether the ChangeSpec is stacked on another one.
func (c ChangeSpec) HasParent() bool {
	return strings.TrimSpace(c.Parent) != ""
}

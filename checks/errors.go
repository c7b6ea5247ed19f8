package checks

import "errors"

var (
	// ErrCheckFailed indicates an external check could not produce an
	// answer: it failed to start, timed out, or could not be read. Callers
	// treat it as "not yet resolved".
	ErrCheckFailed = errors.New("check failed")

	// ErrNotApplicable indicates a check was requested for a ChangeSpec
	// whose status the check does not cover.
	ErrNotApplicable = errors.New("check not applicable to status")

	// ErrNoCommand indicates the command for a check is not configured.
	ErrNoCommand = errors.New("check command not configured")
)

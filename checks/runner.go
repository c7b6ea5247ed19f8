// Package checks runs the external commands that reveal what happened to a
// ChangeSpec and turns their results into changespec events.
//
// Every check is a single invocation with no retries. When a command cannot
// give an answer the check returns changespec.NoEvent together with an error
// wrapping ErrCheckFailed, so callers never regress a status on a failure.
package checks

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amonks/changespec/changespec"
)

// DefaultTimeout bounds a single check command.
const DefaultTimeout = 2 * time.Minute

// DefaultPresubmitStaleAfter is how long an unfinished presubmit's output
// may go unmodified before its recorded pid is no longer trusted.
const DefaultPresubmitStaleAfter = 24 * time.Hour

// Config configures a Runner.
type Config struct {
	// SubmittedCommand is run with the ChangeSpec name as its argument.
	// Exit 0 with affirmative (or empty) output means submitted.
	SubmittedCommand string

	// CommentsCommand is run with the ChangeSpec name as its argument.
	// Non-empty output means reviewers have unresolved comments.
	CommentsCommand string

	// PresubmitCommand is launched detached by LaunchPresubmit.
	PresubmitCommand string

	// CloudRoot and SrcBase locate a project's workspace:
	// <CloudRoot>/<project>/<SrcBase>.
	CloudRoot string
	SrcBase   string

	// PresubmitDir holds per-ChangeSpec presubmit output files.
	PresubmitDir string

	// Timeout bounds each check command. Defaults to DefaultTimeout.
	Timeout time.Duration

	// PresubmitStaleAfter bounds how long presubmit output may sit idle
	// without an exit marker. Defaults to DefaultPresubmitStaleAfter.
	PresubmitStaleAfter time.Duration

	Logger *log.Logger
}

// Runner executes checks for ChangeSpecs.
type Runner struct {
	config Config
	logger *log.Logger
	now    func() time.Time
}

// NewRunner creates a Runner from config.
func NewRunner(config Config) *Runner {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.PresubmitStaleAfter <= 0 {
		config.PresubmitStaleAfter = DefaultPresubmitStaleAfter
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{config: config, logger: logger, now: time.Now}
}

// WorkspaceDir returns the directory checks for project run in.
func (r *Runner) WorkspaceDir(project string) string {
	return filepath.Join(expandHome(r.config.CloudRoot), project, r.config.SrcBase)
}

// CheckSubmission asks whether the change has been submitted.
func (r *Runner) CheckSubmission(ctx context.Context, cs changespec.ChangeSpec) (changespec.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	result, err := runCheckCommand(ctx, r.WorkspaceDir(cs.Project), r.config.SubmittedCommand, cs.Name, "submission check")
	if err != nil {
		return changespec.NoEvent{}, fmt.Errorf("%w: %s: %w", ErrCheckFailed, cs.Name, err)
	}
	if result.ExitCode != 0 {
		r.logger.Printf("%s: not submitted (exit %d)", cs.Name, result.ExitCode)
		return changespec.NoEvent{}, nil
	}
	if result.Stdout != "" && !isAffirmative(result.Stdout) {
		return changespec.NoEvent{}, nil
	}
	return changespec.SubmittedEvent{}, nil
}

// CheckComments asks whether reviewers have left unresolved comments.
// It only applies to Mailed and ChangesRequested ChangeSpecs.
func (r *Runner) CheckComments(ctx context.Context, cs changespec.ChangeSpec) (changespec.Event, error) {
	if !cs.Status.IsUnderReview() {
		return changespec.NoEvent{}, fmt.Errorf("%w: comments check on %s", ErrNotApplicable, cs.Status)
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	result, err := runCheckCommand(ctx, r.WorkspaceDir(cs.Project), r.config.CommentsCommand, cs.Name, "comments check")
	if err != nil {
		return changespec.NoEvent{}, fmt.Errorf("%w: %s: %w", ErrCheckFailed, cs.Name, err)
	}
	if result.ExitCode != 0 {
		return changespec.NoEvent{}, fmt.Errorf("%w: %s: comments check exited %d", ErrCheckFailed, cs.Name, result.ExitCode)
	}
	if result.Stdout != "" {
		return changespec.CommentsPendingEvent{}, nil
	}
	return changespec.NoCommentsEvent{}, nil
}

// CheckPresubmitCompletion inspects the output file of a launched presubmit.
func (r *Runner) CheckPresubmitCompletion(ctx context.Context, cs changespec.ChangeSpec) (changespec.Event, error) {
	if strings.TrimSpace(cs.PresubmitOutputPath) == "" {
		return changespec.NoEvent{}, nil
	}
	if err := ctx.Err(); err != nil {
		return changespec.NoEvent{}, fmt.Errorf("%w: %s: %w", ErrCheckFailed, cs.Name, err)
	}

	file, err := os.Open(cs.PresubmitOutputPath)
	if err != nil {
		return changespec.NoEvent{}, fmt.Errorf("%w: %s: open presubmit output: %w", ErrCheckFailed, cs.Name, err)
	}
	defer file.Close()

	outcome, err := ReadPresubmitOutcome(file)
	if err != nil {
		return changespec.NoEvent{}, fmt.Errorf("%w: %s: %w", ErrCheckFailed, cs.Name, err)
	}
	info, err := file.Stat()
	if err != nil {
		return changespec.NoEvent{}, fmt.Errorf("%w: %s: stat presubmit output: %w", ErrCheckFailed, cs.Name, err)
	}
	idle := r.now().Sub(info.ModTime())

	switch {
	case outcome.Finished && outcome.ExitCode == 0:
		return changespec.PresubmitSucceededEvent{}, nil
	case outcome.Finished:
		return changespec.PresubmitFailedEvent{ExitCode: outcome.ExitCode}, nil
	case outcome.PID > 0 && !processRunning(outcome.PID):
		r.logger.Printf("%s: presubmit pid %d exited without reporting", cs.Name, outcome.PID)
		return changespec.PresubmitFailedEvent{ExitCode: -1}, nil
	case idle >= r.config.PresubmitStaleAfter:
		// A pid recorded this long ago may belong to an unrelated process.
		r.logger.Printf("%s: presubmit output idle for %s without reporting", cs.Name, idle.Round(time.Second))
		return changespec.PresubmitFailedEvent{ExitCode: -1}, nil
	default:
		return changespec.NoEvent{}, nil
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

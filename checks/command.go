package checks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long a killed check may hold its output pipes open
// through orphaned children.
const waitDelay = time.Second

// commandResult captures the outcome of a finished check command.
type commandResult struct {
	Stdout   string
	ExitCode int
}

// shellCommand builds `bash -c <script> bash <name>` so the configured
// command sees the ChangeSpec name as "$1".
func shellCommand(ctx context.Context, dir, script, name string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "bash", "-c", script, "bash", name)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	return cmd
}

// invocation appends the ChangeSpec name to a configured command.
func invocation(command string) string {
	return strings.TrimSpace(command) + ` "$1"`
}

// runCheckCommand runs command for name in dir. A non-zero exit is reported
// through commandResult; only failures to run at all are errors.
func runCheckCommand(ctx context.Context, dir, command, name, label string) (commandResult, error) {
	if strings.TrimSpace(command) == "" {
		return commandResult{}, fmt.Errorf("%s: %w", label, ErrNoCommand)
	}
	if info, err := os.Stat(dir); err != nil {
		return commandResult{}, fmt.Errorf("%s: workspace %s: %w", label, dir, err)
	} else if !info.IsDir() {
		return commandResult{}, fmt.Errorf("%s: workspace %s is not a directory", label, dir)
	}

	cmd := shellCommand(ctx, dir, invocation(command), name)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if ctx.Err() != nil {
		return commandResult{}, fmt.Errorf("%s: %w", label, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return commandResult{
				Stdout:   strings.TrimSpace(string(output)),
				ExitCode: exitErr.ExitCode(),
			}, nil
		}
		return commandResult{}, fmt.Errorf("%s: %w: %s", label, err, strings.TrimSpace(stderr.String()))
	}
	return commandResult{Stdout: strings.TrimSpace(string(output))}, nil
}

// isAffirmative interprets the stdout of a submission check.
func isAffirmative(stdout string) bool {
	switch strings.ToLower(strings.TrimSpace(stdout)) {
	case "0", "false", "no", "n":
		return false
	default:
		return true
	}
}

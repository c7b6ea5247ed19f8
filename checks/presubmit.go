package checks

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/amonks/changespec/changespec"
)

// Markers written into presubmit output files by the launch wrapper.
const (
	PIDMarker      = "CHANGESPEC_PRESUBMIT_PID:"
	ExitCodeMarker = "CHANGESPEC_PRESUBMIT_EXIT_CODE:"
)

// Marker lines are short; longer lines are command output and skipped.
const maxMarkerLine = 4096

// PresubmitOutcome summarizes a presubmit output file.
type PresubmitOutcome struct {
	// PID is the process group leader recorded at launch, or 0.
	PID int

	// Finished is set once the exit marker has been written.
	Finished bool
	ExitCode int
}

// ReadPresubmitOutcome scans presubmit output for the launch markers.
// The first PID marker and the last exit marker win. Lines of any length
// are accepted.
func ReadPresubmitOutcome(r io.Reader) (PresubmitOutcome, error) {
	var outcome PresubmitOutcome

	reader := bufio.NewReader(r)
	var line []byte
	overlong := false
	for {
		fragment, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return PresubmitOutcome{}, fmt.Errorf("read presubmit output: %w", err)
		}
		if !overlong {
			line = append(line, fragment...)
			if len(line) > maxMarkerLine {
				overlong = true
				line = line[:0]
			}
		}
		if isPrefix {
			continue
		}
		if !overlong {
			if err := outcome.observe(strings.TrimSpace(string(line))); err != nil {
				return PresubmitOutcome{}, err
			}
		}
		line = line[:0]
		overlong = false
	}
	return outcome, nil
}

func (o *PresubmitOutcome) observe(line string) error {
	switch {
	case strings.HasPrefix(line, PIDMarker) && o.PID == 0:
		pid, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, PIDMarker)))
		if err == nil {
			o.PID = pid
		}
	case strings.HasPrefix(line, ExitCodeMarker):
		code, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, ExitCodeMarker)))
		if err != nil {
			return fmt.Errorf("parse presubmit exit code %q: %w", line, err)
		}
		o.Finished = true
		o.ExitCode = code
	}
	return nil
}

// presubmitScript wraps command so the output file records the wrapper's
// pid up front and the command's exit status at the end.
func presubmitScript(command string) string {
	return strings.Join([]string{
		fmt.Sprintf(`printf '%s %%d\n' "$$"`, PIDMarker),
		invocation(command),
		`code=$?`,
		fmt.Sprintf(`printf '\n%s %%d\n' "$code"`, ExitCodeMarker),
		`exit "$code"`,
	}, "\n")
}

// PresubmitOutputDir returns the directory holding output files for name.
func (r *Runner) PresubmitOutputDir(name string) string {
	return filepath.Join(r.config.PresubmitDir, name)
}

// LaunchPresubmit starts the presubmit command for cs as a detached
// background process and returns the path its output is captured in.
//
// The process gets its own session, so it keeps running after the caller
// exits. LaunchPresubmit never waits for it.
func (r *Runner) LaunchPresubmit(cs changespec.ChangeSpec) (string, error) {
	if strings.TrimSpace(r.config.PresubmitCommand) == "" {
		return "", fmt.Errorf("presubmit: %w", ErrNoCommand)
	}
	if strings.TrimSpace(r.config.PresubmitDir) == "" {
		return "", fmt.Errorf("presubmit: output directory not configured")
	}

	dir := r.WorkspaceDir(cs.Project)
	if info, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("presubmit: workspace %s: %w", dir, err)
	} else if !info.IsDir() {
		return "", fmt.Errorf("presubmit: workspace %s is not a directory", dir)
	}

	outputFile, err := r.createOutputFile(cs.Name)
	if err != nil {
		return "", err
	}
	defer outputFile.Close()

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	// Not CommandContext: the process must outlive any caller context.
	cmd := shellCommandDetached(dir, presubmitScript(r.config.PresubmitCommand), cs.Name)
	cmd.Stdin = devNull
	cmd.Stdout = outputFile
	cmd.Stderr = outputFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		os.Remove(outputFile.Name())
		return "", fmt.Errorf("start presubmit: %w", err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		r.logger.Printf("%s: release presubmit pid %d: %v", cs.Name, pid, err)
	}
	r.logger.Printf("%s: launched presubmit pid %d, output %s", cs.Name, pid, outputFile.Name())

	return outputFile.Name(), nil
}

func (r *Runner) createOutputFile(name string) (*os.File, error) {
	dir := r.PresubmitOutputDir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create presubmit output dir: %w", err)
	}

	base := "presubmit-" + r.now().UTC().Format("20060102T150405Z")
	for attempt := 1; ; attempt++ {
		filename := base + ".log"
		if attempt > 1 {
			filename = fmt.Sprintf("%s-%d.log", base, attempt)
		}
		file, err := os.OpenFile(filepath.Join(dir, filename), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return file, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create presubmit output file: %w", err)
		}
	}
}

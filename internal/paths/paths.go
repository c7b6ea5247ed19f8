package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables that override the default directories.
const (
	StateDirEnv = "CHANGESPEC_STATE_DIR"
	DataDirEnv  = "CHANGESPEC_DATA_DIR"
)

// HomeDir returns the current user's home directory.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return home, nil
}

// DefaultStateDir returns the directory holding the sync cache.
func DefaultStateDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(StateDirEnv)); dir != "" {
		return dir, nil
	}
	home, err := HomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".local", "state", "changespec"), nil
}

// DefaultDataDir returns the directory holding ChangeSpecs and presubmit output.
func DefaultDataDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(DataDirEnv)); dir != "" {
		return dir, nil
	}
	home, err := HomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".local", "share", "changespec"), nil
}

// ProjectsDir returns the directory of per-project ChangeSpec files.
func ProjectsDir(dataDir string) string {
	return filepath.Join(dataDir, "projects")
}

// PresubmitsDir returns the directory of per-ChangeSpec presubmit output.
func PresubmitsDir(dataDir string) string {
	return filepath.Join(dataDir, "presubmits")
}

package checks

import (
	"errors"
	"os/exec"
	"syscall"
)

func shellCommandDetached(dir, script, name string) *exec.Cmd {
	cmd := exec.Command("bash", "-c", script, "bash", name)
	cmd.Dir = dir
	return cmd
}

// processRunning reports whether pid refers to a live process. EPERM means
// the process exists but belongs to someone else.
func processRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	if err := syscall.Kill(pid, 0); err != nil {
		return errors.Is(err, syscall.EPERM)
	}
	return true
}

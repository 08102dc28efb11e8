//go:build !windows

package process

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// defaultShell returns the POSIX shell invocation.
func defaultShell() (string, []string) {
	return "sh", []string{"-c"}
}

// shellCommand builds the command running text through the shell. The child
// gets its own process group so the whole tree can be killed.
func shellCommand(shell string, args []string, text string) *exec.Cmd {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, args...)
	argv = append(argv, text)

	cmd := exec.Command(shell, argv...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd
}

// killProcessTree sends SIGKILL to the process group led by p.
func killProcessTree(p *os.Process) error {
	if err := killGroup(p.Pid); err != nil {
		return err
	}
	// The leader may have left its group; signal it directly as well.
	if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// killGroup sends SIGKILL to every member of process group pgid. A group
// that is already empty is not an error.
func killGroup(pgid int) error {
	if err := syscall.Kill(-pgid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return err
	}
	return nil
}

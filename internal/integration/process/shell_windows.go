//go:build windows

package process

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// defaultShell returns the Windows command interpreter invocation.
func defaultShell() (string, []string) {
	return "cmd", []string{"/C"}
}

// shellCommand builds the command running text through cmd.exe. The command
// line is passed raw so cmd.exe sees quotes and redirections unchanged.
func shellCommand(shell string, args []string, text string) *exec.Cmd {
	cmd := exec.Command(shell)
	parts := append([]string{shell}, args...)
	parts = append(parts, text)
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: strings.Join(parts, " ")}
	return cmd
}

// killProcessTree kills the process.
func killProcessTree(p *os.Process) error {
	if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// killGroup is a no-op: cmd.exe children are not grouped. Lingering
// children lose their pipes when the supervisor closes them.
func killGroup(int) error {
	return nil
}

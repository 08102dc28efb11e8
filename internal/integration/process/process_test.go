package process

import (
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestProcess_State_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateCreated, "created"},
		{StateRunning, "running"},
		{StateExited, "exited"},
		{StateKilled, "killed"},
		{State(99), "unknown(99)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %q, expected %q", tt.state, got, tt.expected)
		}
	}
}

func TestLauncher_Launch(t *testing.T) {
	skipOnWindows(t)

	l := NewLauncher()
	proc, err := l.Launch(2, CommandSpec{Text: "echo hello; echo oops 1>&2"})
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer proc.Close()

	if proc.Index != 2 {
		t.Errorf("expected index 2, got %d", proc.Index)
	}
	if proc.ID == "" {
		t.Error("expected process ID to be set")
	}
	if proc.PID() <= 0 {
		t.Errorf("expected positive PID, got %d", proc.PID())
	}
	if proc.Started.IsZero() {
		t.Error("expected Started time to be set")
	}

	stdout, _ := io.ReadAll(proc.Stdout)
	stderr, _ := io.ReadAll(proc.Stderr)
	<-proc.Done()

	if string(stdout) != "hello\n" {
		t.Errorf("stdout = %q, expected %q", stdout, "hello\n")
	}
	if string(stderr) != "oops\n" {
		t.Errorf("stderr = %q, expected %q", stderr, "oops\n")
	}
	if proc.State() != StateExited {
		t.Errorf("expected state StateExited, got %v", proc.State())
	}
	if proc.ExitCode() != 0 {
		t.Errorf("expected exit code 0, got %d", proc.ExitCode())
	}
	if !proc.HasExited() {
		t.Error("expected HasExited() to be true after exit")
	}
}

func TestLauncher_ExitCode(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name     string
		text     string
		wantCode int
	}{
		{"success", "true", 0},
		{"failure", "false", 1},
		{"exit 42", "exit 42", 42},
		{"pipeline", "echo x | grep -q y", 1},
	}

	l := NewLauncher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc, err := l.Launch(0, CommandSpec{Text: tt.text})
			if err != nil {
				t.Fatalf("Launch() error: %v", err)
			}
			defer proc.Close()
			_, _ = io.Copy(io.Discard, proc.Stdout)
			<-proc.Done()

			if proc.ExitCode() != tt.wantCode {
				t.Errorf("expected exit code %d, got %d", tt.wantCode, proc.ExitCode())
			}
		})
	}
}

func TestLauncher_InvalidSpec(t *testing.T) {
	_, err := NewLauncher().Launch(0, CommandSpec{Text: ""})
	if !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("expected ErrEmptyCommand, got %v", err)
	}
}

func TestLauncher_MissingShell(t *testing.T) {
	l := NewLauncher(WithShell("/no/such/shell-12345", "-c"))
	_, err := l.Launch(0, CommandSpec{Text: "true"})
	if !errors.Is(err, ErrSpawnFailed) {
		t.Fatalf("expected ErrSpawnFailed, got %v", err)
	}
}

func TestLauncher_Options(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	l := NewLauncher(WithShell("sh", "-c"), WithEnv("GHOP_TEST_VALUE=forty-two"), WithDir(dir))

	shell, args := l.Shell()
	if shell != "sh" || len(args) != 1 || args[0] != "-c" {
		t.Errorf("Shell() = %q %v", shell, args)
	}

	proc, err := l.Launch(0, CommandSpec{Text: "echo $GHOP_TEST_VALUE; pwd"})
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer proc.Close()

	out, _ := io.ReadAll(proc.Stdout)
	<-proc.Done()

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 2 {
		t.Fatalf("unexpected output %q", out)
	}
	if lines[0] != "forty-two" {
		t.Errorf("env not passed, got %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], strings.TrimPrefix(dir, "/private")) {
		t.Errorf("working dir = %q, expected %q", lines[1], dir)
	}
}

func TestProcess_Terminate(t *testing.T) {
	skipOnWindows(t)

	proc, err := NewLauncher().Launch(0, CommandSpec{Text: "sleep 10"})
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer proc.Close()

	if !proc.IsRunning() {
		t.Fatal("expected process to be running")
	}

	if !proc.Terminate() {
		t.Error("first Terminate() should deliver the kill")
	}
	if proc.Terminate() {
		t.Error("second Terminate() should be a no-op")
	}

	select {
	case <-proc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit after Terminate()")
	}

	if proc.State() != StateKilled {
		t.Errorf("expected state StateKilled, got %v", proc.State())
	}
	if proc.KillError() != nil {
		t.Errorf("unexpected kill error: %v", proc.KillError())
	}
	if proc.TimedOut() || proc.Canceled() {
		t.Error("plain Terminate() must not mark timeout or cancel")
	}
}

func TestProcess_TerminateAfterExit(t *testing.T) {
	skipOnWindows(t)

	proc, err := NewLauncher().Launch(0, CommandSpec{Text: "true"})
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer proc.Close()
	<-proc.Done()

	if proc.Terminate() {
		t.Error("Terminate() after exit should return false")
	}
	if proc.ExitCode() != 0 {
		t.Errorf("expected exit code 0, got %d", proc.ExitCode())
	}
}

func TestProcess_TerminateGroupAfterLeaderExit(t *testing.T) {
	skipOnWindows(t)

	proc, err := NewLauncher().Launch(0, CommandSpec{Text: "sleep 30 & echo started"})
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer proc.Close()

	<-proc.Done()

	if proc.ExitCode() != 0 {
		t.Errorf("expected leader exit code 0, got %d", proc.ExitCode())
	}
	if !proc.terminateGroup(reasonCancel) {
		t.Fatal("terminateGroup() should kill the remaining group")
	}
	if proc.terminateGroup(reasonTimeout) {
		t.Error("second terminateGroup() should return false")
	}
	if !proc.Canceled() || proc.TimedOut() {
		t.Error("expected only the cancel reason to be recorded")
	}
	if err := proc.KillError(); err != nil {
		t.Errorf("KillError() = %v", err)
	}

	// The killed sleep releases stdout.
	eof := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, proc.Stdout)
		close(eof)
	}()
	select {
	case <-eof:
	case <-time.After(5 * time.Second):
		t.Fatal("stdout still open after terminateGroup()")
	}
}

func TestProcess_TerminateGroupAfterTerminate(t *testing.T) {
	skipOnWindows(t)

	proc, err := NewLauncher().Launch(0, CommandSpec{Text: "sleep 30"})
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer proc.Close()

	if proc.terminateGroup(reasonCancel) {
		t.Error("terminateGroup() should leave a running leader to Terminate()")
	}
	if !proc.Terminate() {
		t.Fatal("Terminate() should kill the running process")
	}
	<-proc.Done()

	if proc.terminateGroup(reasonCancel) {
		t.Error("terminateGroup() after Terminate() should return false")
	}
	if proc.Canceled() {
		t.Error("terminateGroup() should not record a reason when it does nothing")
	}
}

func TestProcess_ExitError(t *testing.T) {
	skipOnWindows(t)

	proc, err := NewLauncher().Launch(0, CommandSpec{Text: "exit 3"})
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer proc.Close()
	<-proc.Done()

	var exitErr *exec.ExitError
	if !errors.As(proc.ExitError(), &exitErr) {
		t.Fatalf("expected *exec.ExitError, got %v", proc.ExitError())
	}
	if exitErr.ExitCode() != 3 {
		t.Errorf("expected exit code 3, got %d", exitErr.ExitCode())
	}
}

func TestProcess_TerminateKillsGroup(t *testing.T) {
	skipOnWindows(t)

	// The background sleep keeps stdout open unless the whole group dies.
	proc, err := NewLauncher().Launch(0, CommandSpec{Text: "sleep 30 & sleep 30; wait"})
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer proc.Close()

	proc.Terminate()

	eof := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, proc.Stdout)
		close(eof)
	}()

	select {
	case <-eof:
	case <-time.After(5 * time.Second):
		t.Fatal("stdout still open: process group was not killed")
	}
}

func TestProcess_Close(t *testing.T) {
	skipOnWindows(t)

	proc, err := NewLauncher().Launch(0, CommandSpec{Text: "true"})
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	<-proc.Done()

	if err := proc.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if err := proc.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestProcess_Runtime(t *testing.T) {
	skipOnWindows(t)

	proc, err := NewLauncher().Launch(0, CommandSpec{Text: "sleep 0.1"})
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer proc.Close()
	<-proc.Done()

	if proc.Runtime() < 100*time.Millisecond {
		t.Errorf("expected runtime >= 100ms, got %v", proc.Runtime())
	}
}

package process

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Launcher starts one child process per CommandSpec through the host shell.
type Launcher struct {
	shell     string
	shellArgs []string
	env       []string
	dir       string
}

// LauncherOption configures a Launcher instance.
type LauncherOption func(*Launcher)

// WithShell sets the shell binary and the arguments placed before the
// command text, e.g. WithShell("bash", "-c").
func WithShell(shell string, args ...string) LauncherOption {
	return func(l *Launcher) {
		if shell == "" {
			return
		}
		l.shell = shell
		l.shellArgs = append([]string(nil), args...)
	}
}

// WithEnv adds KEY=VALUE pairs to the inherited environment.
func WithEnv(env ...string) LauncherOption {
	return func(l *Launcher) {
		l.env = append(l.env, env...)
	}
}

// WithDir sets the working directory for launched commands.
func WithDir(dir string) LauncherOption {
	return func(l *Launcher) {
		l.dir = dir
	}
}

// NewLauncher creates a launcher using the platform shell by default.
func NewLauncher(opts ...LauncherOption) *Launcher {
	shell, args := defaultShell()
	l := &Launcher{
		shell:     shell,
		shellArgs: args,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Shell returns the shell binary and its leading arguments.
func (l *Launcher) Shell() (string, []string) {
	return l.shell, append([]string(nil), l.shellArgs...)
}

// Launch starts spec as the command at the given index.
//
// Stdout and stderr are connected to fresh OS pipes whose read ends are
// exposed on the returned Process. The caller must drain both and call
// Close when done. A failure to start the shell wraps ErrSpawnFailed.
func (l *Launcher) Launch(index int, spec CommandSpec) (*Process, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	cmd := shellCommand(l.shell, l.shellArgs, spec.Text)
	cmd.Dir = l.dir
	if len(l.env) > 0 {
		cmd.Env = append(os.Environ(), l.env...)
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrSpawnFailed, err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		_ = stdoutR.Close()
		_ = stdoutW.Close()
		return nil, fmt.Errorf("%w: stderr pipe: %v", ErrSpawnFailed, err)
	}

	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	proc := newProcess(uuid.New().String(), index, spec, cmd)
	proc.Stdout = stdoutR
	proc.Stderr = stderrR

	startErr := proc.start()

	// The child holds its own copies of the write ends.
	_ = stdoutW.Close()
	_ = stderrW.Close()

	if startErr != nil {
		_ = proc.Close()
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, startErr)
	}

	return proc, nil
}

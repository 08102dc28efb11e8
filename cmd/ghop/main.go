// Package main is the entry point for ghop, which runs shell commands
// concurrently and labels their output.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/ghop/internal/app"
	"github.com/dshills/ghop/internal/config"
	"github.com/dshills/ghop/internal/integration/process"
)

const usage = `ghop [options] <command1> <command2> ... <commandN>

Options:
    -h, --help            Print this help message.
    -v, --version         Print the version.
    -t, --tui             Run in TUI mode.
    -f, --file <FILE>     Load commands from a YAML, TOML or JSON file; then specify the set name to run.
        --format <F>      Output format: plain (default) or json.
        --log-level <L>   Log level: debug, info, warn (default) or error.
        --log-file <P>    Write logs to a file instead of stderr.

YAML format examples:
    # Simple map of sets
    build: ["go build ./...", "go test ./..."]
    lint:  ["go vet ./...", "gofmt -l ."]

    # Or use a top-level 'sets' key, with optional per-command timeouts
    sets:
      dev:
        - "npm run dev"
        - command: "go test ./..."
          timeout: 30s

Usage with -f:
    ghop -f ghop.yml build

Without -f, a ghop.yml in the current directory is used when the first
argument names one of its sets.
`

// options holds parsed command-line flags.
type options struct {
	help     bool
	version  bool
	tui      bool
	file     string
	format   string
	logLevel string
	logFile  string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, rest, code, ok := parseFlags(args, stderr)
	if !ok {
		return code
	}

	if opts.help {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if opts.version {
		fmt.Fprintf(stdout, "%s (%s)\n", version, commit)
		return 0
	}

	env, err := config.LoadOverrides()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	commands, code, ok := resolveCommands(opts, env, rest, stderr)
	if !ok {
		return code
	}

	logger, err := newLogger(opts, env, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Close()

	application, err := app.New(app.Options{
		Commands:   commands,
		TUI:        opts.tui,
		Format:     app.Format(opts.format),
		Shell:      env.Shell,
		BufferSize: env.BufferSize,
		Stdout:     stdout,
		Stderr:     stderr,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code, err = application.Run(ctx)
	if err != nil {
		if opts.tui {
			fmt.Fprintf(stderr, "TUI error: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return code
}

// parseFlags parses options up to the first non-option argument. When ok is
// false the caller exits with code.
func parseFlags(args []string, stderr io.Writer) (opts options, rest []string, code int, ok bool) {
	fs := flag.NewFlagSet("ghop", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	fs.BoolVar(&opts.help, "help", false, "Print this help message")
	fs.BoolVar(&opts.help, "h", false, "Print this help message (shorthand)")
	fs.BoolVar(&opts.version, "version", false, "Print the version")
	fs.BoolVar(&opts.version, "v", false, "Print the version (shorthand)")
	fs.BoolVar(&opts.tui, "tui", false, "Run in TUI mode")
	fs.BoolVar(&opts.tui, "t", false, "Run in TUI mode (shorthand)")
	fs.StringVar(&opts.file, "file", "", "Load commands from a file")
	fs.StringVar(&opts.file, "f", "", "Load commands from a file (shorthand)")
	fs.StringVar(&opts.format, "format", "plain", "Output format (plain, json)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFile, "log-file", "", "Write logs to a file")

	err := fs.Parse(args)
	if err == nil {
		return opts, fs.Args(), 0, true
	}

	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "flag provided but not defined: "):
		name := strings.TrimPrefix(msg, "flag provided but not defined: ")
		fmt.Fprintf(stderr, "Unknown option: %s\n", originalArg(args, name))
		fmt.Fprint(stderr, usage)
	case msg == "flag needs an argument: -f" || msg == "flag needs an argument: -file":
		fmt.Fprintln(stderr, "-f/--file requires a file path")
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return opts, nil, 2, false
}

// originalArg finds the argument as typed for a flag the parser reports as
// "-name".
func originalArg(args []string, reported string) string {
	name := strings.TrimPrefix(reported, "-")
	for _, arg := range args {
		trimmed := strings.TrimLeft(arg, "-")
		if trimmed == name || strings.HasPrefix(trimmed, name+"=") {
			return arg
		}
	}
	return reported
}

// resolveCommands picks the commands to run: a named set from -f, a named set
// from the default file, or the positional arguments.
func resolveCommands(opts options, env config.Overrides, rest []string, stderr io.Writer) ([]process.CommandSpec, int, bool) {
	if opts.file != "" {
		if len(rest) == 0 {
			fmt.Fprintln(stderr, "When using -f/--file, you must specify the set name to run.")
			return nil, 1, false
		}
		commands, err := config.Load(opts.file, rest[0])
		if err != nil {
			fmt.Fprintln(stderr, err)
			return nil, 1, false
		}
		return commands, 0, true
	}

	if len(rest) == 0 {
		fmt.Fprintln(stderr, "No commands provided. Use -h for help.")
		return nil, 1, false
	}

	path := env.File
	if path == "" {
		path = config.FindDefault(".")
	}
	if path != "" {
		f, err := config.ReadFile(path)
		if err != nil {
			// A broken default file only matters when it was asked for.
			if env.File != "" {
				fmt.Fprintln(stderr, err)
				return nil, 1, false
			}
		} else if f.Has(rest[0]) {
			commands, err := f.Set(rest[0])
			if err != nil {
				fmt.Fprintln(stderr, err)
				return nil, 1, false
			}
			fmt.Fprintf(stderr, "ghop: running set '%s' from %s\n", rest[0], path)
			return commands, 0, true
		}
	}

	return process.Specs(rest...), 0, true
}

// newLogger resolves the logger: flags beat environment, which beats the
// defaults. The viewer owns the terminal, so TUI runs log only to a file.
func newLogger(opts options, env config.Overrides, stderr io.Writer) (*app.Logger, error) {
	levelName := opts.logLevel
	if levelName == "" {
		levelName = env.LogLevel
	}
	level := app.DefaultLogLevel
	if levelName != "" {
		var err error
		if level, err = app.ParseLogLevel(levelName); err != nil {
			return nil, err
		}
	}

	path := opts.logFile
	if path == "" {
		path = env.LogFile
	}
	if path != "" {
		return app.NewFileLogger(path, level)
	}
	if opts.tui {
		return app.NullLogger, nil
	}

	cfg := app.DefaultLoggerConfig()
	cfg.Level = level
	cfg.Output = stderr
	return app.NewLogger(cfg), nil
}

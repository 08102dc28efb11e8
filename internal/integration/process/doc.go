// Package process runs shell commands concurrently and supervises them as a unit.
//
// A run takes an ordered list of CommandSpec values, starts one child process
// per spec through the host shell, streams both output streams into an
// output.Multiplexer, enforces optional per-command timeouts, and resolves to
// a single aggregate exit code.
//
// # Supervisor
//
//	sup := process.NewSupervisor(
//	    process.WithSink(output.NewPlainSink(os.Stdout, os.Stderr)),
//	)
//	res, err := sup.Run(ctx, []process.CommandSpec{
//	    {Text: "make build"},
//	    {Text: "npm run dev", Timeout: time.Minute},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Exit(res.Code)
//
// # Termination
//
// A process can be terminated by its timeout Watchdog, by a cancellation
// request, or it can exit on its own. Checking whether the process is still
// running and killing it happen under one per-process mutex, so at most one
// party delivers a kill and a late watchdog is a no-op. Termination always
// waits for the real exit before the outcome is reported.
//
// A shell may exit while a background child still holds its output pipes.
// The run keeps reading that output, but cancellation and the command's
// timeout still apply and kill what is left of the process group.
//
// # Exit codes
//
//   - A timed-out command reports TimeoutExitCode (124).
//   - A command that could not be started reports SpawnFailureCode (-1).
//   - The aggregate is 0 when every command succeeded, otherwise the code of
//     the last command (in completion order) that exited non-zero. Negative
//     codes are reported as 1.
//
// # Thread Safety
//
// Supervisor, Process and CancelSignal are safe for concurrent use.
package process

package process

import (
	"testing"
	"time"
)

func TestWatchdog_Fires(t *testing.T) {
	skipOnWindows(t)

	proc, err := NewLauncher().Launch(0, CommandSpec{Text: "sleep 5"})
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer proc.Close()

	wd := StartWatchdog(proc, 100*time.Millisecond)

	select {
	case <-proc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("watchdog did not terminate the process")
	}

	if !wd.Fired() {
		t.Error("expected Fired() to be true")
	}
	if !proc.TimedOut() {
		t.Error("expected TimedOut() to be true")
	}
	if proc.Canceled() {
		t.Error("expected Canceled() to be false")
	}
}

func TestWatchdog_FastCommand(t *testing.T) {
	skipOnWindows(t)

	proc, err := NewLauncher().Launch(0, CommandSpec{Text: "exit 3"})
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer proc.Close()

	wd := StartWatchdog(proc, 2*time.Second)
	<-proc.Done()

	if !wd.Stop() {
		t.Error("expected Stop() to disarm a pending timer")
	}
	if wd.Fired() {
		t.Error("watchdog fired for a command that finished in time")
	}
	if proc.TimedOut() {
		t.Error("expected TimedOut() to be false")
	}
	if proc.ExitCode() != 3 {
		t.Errorf("expected exit code 3, got %d", proc.ExitCode())
	}
}

func TestWatchdog_FiresAfterExit(t *testing.T) {
	skipOnWindows(t)

	proc, err := NewLauncher().Launch(0, CommandSpec{Text: "true"})
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer proc.Close()
	<-proc.Done()

	wd := StartWatchdog(proc, time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	if wd.Fired() {
		t.Error("watchdog must not kill an exited process")
	}
	if proc.TimedOut() {
		t.Error("expected TimedOut() to be false")
	}
}

func TestWatchdog_Disabled(t *testing.T) {
	tests := []time.Duration{0, -time.Second}

	for _, timeout := range tests {
		wd := StartWatchdog(nil, timeout)
		if wd != nil {
			t.Errorf("StartWatchdog(%v) should return nil", timeout)
		}
		if wd.Stop() {
			t.Error("Stop() on nil watchdog should return false")
		}
		if wd.Fired() {
			t.Error("Fired() on nil watchdog should return false")
		}
	}
}

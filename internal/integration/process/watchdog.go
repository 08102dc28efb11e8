package process

import (
	"sync/atomic"
	"time"
)

// Watchdog terminates a process that outlives its timeout.
type Watchdog struct {
	timer *time.Timer
	fired atomic.Bool
}

// StartWatchdog arms a watchdog for p. It returns nil when timeout is not
// positive; a nil Watchdog is safe to use.
func StartWatchdog(p *Process, timeout time.Duration) *Watchdog {
	if timeout <= 0 {
		return nil
	}

	w := &Watchdog{}
	w.timer = time.AfterFunc(timeout, func() {
		if p.terminate(reasonTimeout) {
			w.fired.Store(true)
		}
	})
	return w
}

// Stop disarms the watchdog. It returns true if the timer had not fired.
func (w *Watchdog) Stop() bool {
	if w == nil {
		return false
	}
	return w.timer.Stop()
}

// Fired reports whether the watchdog killed the process.
func (w *Watchdog) Fired() bool {
	if w == nil {
		return false
	}
	return w.fired.Load()
}

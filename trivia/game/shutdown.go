package game

import (
	"sync"
	"time"

	"github.com/jaredblack/trivia-wizard-2/wlog"
)

var shutdownLogger = wlog.NewPrefixLogger("shutdown")

// IdleTimer is the idle-shutdown supervisor. When the last host disconnects
// the acceptor starts it; any host connection cancels it. If it runs to
// completion it signals the process to shut down.
type IdleTimer struct {
	mu       sync.Mutex
	duration time.Duration
	shutdown chan<- struct{}

	// stop is non-nil while the countdown is running.
	stop chan struct{}
}

// NewIdleTimer creates a supervisor that signals shutdown on the given
// channel after duration of host-less idling.
func NewIdleTimer(shutdown chan<- struct{}, duration time.Duration) *IdleTimer {
	return &IdleTimer{
		duration: duration,
		shutdown: shutdown,
	}
}

// Start begins the shutdown countdown. A countdown that is already running
// is left alone.
func (t *IdleTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		return
	}

	shutdownLogger.Info("starting shutdown timer...")
	stop := make(chan struct{})
	t.stop = stop

	go func() {
		select {
		case <-time.After(t.duration):
			shutdownLogger.Info("shutting down server process...")
			t.shutdown <- struct{}{}
		case <-stop:
			shutdownLogger.Info("shutdown timer cancelled")
		}
	}()
}

// Cancel aborts a running countdown.
func (t *IdleTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		shutdownLogger.Info("cancelling shutdown timer...")
		close(t.stop)
		t.stop = nil
	}
}

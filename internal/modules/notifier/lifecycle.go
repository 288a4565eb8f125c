package notifier

import (
	"context"
	"log"
	"sync"
	"time"
)

// State is the readiness lifecycle of the delivery channel.
type State string

const (
	StateUninitialized State = "UNINITIALIZED"
	StatePending       State = "PENDING"
	StateReady         State = "READY"
	StateFailed        State = "FAILED"
)

// LifecycleConfig tunes the initializer schedule and readiness polling.
// Zero values fall back to production defaults.
type LifecycleConfig struct {
	// ProbeOffsets are offsets from Init at which the readiness probe runs.
	// The channel provider loads on its own schedule, so probing is staggered
	// from immediate to patient rather than fired once.
	ProbeOffsets []time.Duration

	// PollInterval is how often WaitUntilReady re-checks the state.
	PollInterval time.Duration

	// ProbeTimeout bounds a single probe attempt.
	ProbeTimeout time.Duration
}

func (c LifecycleConfig) withDefaults() LifecycleConfig {
	if len(c.ProbeOffsets) == 0 {
		c.ProbeOffsets = []time.Duration{0, 3 * time.Second, 10 * time.Second, 30 * time.Second}
	}
	if c.PollInterval == 0 {
		c.PollInterval = 650 * time.Millisecond
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = 5 * time.Second
	}
	return c
}

// Lifecycle owns the delivery channel's readiness state. Init is idempotent:
// the first call starts one probing goroutine, later calls are no-ops. The
// state only moves UNINITIALIZED → PENDING → {READY, FAILED}; READY and
// FAILED are terminal for the process lifetime.
type Lifecycle struct {
	mu      sync.Mutex
	state   State
	lastErr error

	probe Pinger
	cfg   LifecycleConfig
}

func NewLifecycle(probe Pinger, cfg LifecycleConfig) *Lifecycle {
	return &Lifecycle{
		state: StateUninitialized,
		probe: probe,
		cfg:   cfg.withDefaults(),
	}
}

// Init starts the readiness probe schedule. Calling it again has no effect.
func (l *Lifecycle) Init(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateUninitialized {
		return
	}
	l.state = StatePending
	go l.run(ctx)
}

func (l *Lifecycle) run(ctx context.Context) {
	start := time.Now()
	for _, offset := range l.cfg.ProbeOffsets {
		if wait := offset - time.Since(start); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				l.fail(ctx.Err())
				return
			}
		}

		probeCtx, cancel := context.WithTimeout(ctx, l.cfg.ProbeTimeout)
		err := l.probe.Ping(probeCtx)
		cancel()
		if err == nil {
			l.mu.Lock()
			l.state = StateReady
			l.lastErr = nil
			l.mu.Unlock()
			return
		}

		log.Printf("notifier: readiness probe failed (will retry per schedule): %v", err)
		l.mu.Lock()
		l.lastErr = err
		l.mu.Unlock()

		if ctx.Err() != nil {
			l.fail(ctx.Err())
			return
		}
	}
	l.fail(nil)
}

func (l *Lifecycle) fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.lastErr = err
	}
	l.state = StateFailed
}

// State returns the current readiness state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Err returns the most recent probe error, if any.
func (l *Lifecycle) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// WaitUntilReady polls the readiness state until it is READY, until it is
// terminally FAILED, or until the timeout elapses. A non-nil return is always
// a *ReadinessTimeoutError: the caller never got a chance to send.
func (l *Lifecycle) WaitUntilReady(ctx context.Context, timeout time.Duration) error {
	start := time.Now()
	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		switch l.State() {
		case StateReady:
			return nil
		case StateFailed:
			return &ReadinessTimeoutError{State: StateFailed, Waited: time.Since(start)}
		}

		select {
		case <-ticker.C:
		case <-deadline.C:
			return &ReadinessTimeoutError{State: l.State(), Waited: time.Since(start)}
		case <-ctx.Done():
			return &ReadinessTimeoutError{State: l.State(), Waited: time.Since(start)}
		}
	}
}

// Package maps bootstraps the Google Maps SDK and classifies its failures.
package maps

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kmtracker/kmtracker/internal/metrics"
)

// State is the lifecycle state of the loader.
type State int

const (
	StateNotLoaded State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "not_loaded"
	}
}

// Adapter performs one physical load of the SDK.
// It stands in for the script tag and the callback hooks the SDK invokes.
type Adapter interface {
	Load(ctx context.Context) error
}

// AdapterFunc adapts a function to the Adapter interface.
type AdapterFunc func(ctx context.Context) error

// Load calls f(ctx).
func (f AdapterFunc) Load(ctx context.Context) error {
	return f(ctx)
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	Adapter Adapter
	// Origin is the public origin reported in domain restriction errors.
	Origin string
	// RetryCooldown is how long a failure is returned before a new attempt is
	// allowed. Negative means a failure is permanent.
	RetryCooldown time.Duration
	// Timeout bounds a single load attempt. Zero means no limit.
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

// Loader ensures the SDK is loaded at most once at a time and fans the
// result out to every caller waiting on that attempt.
type Loader struct {
	adapter  Adapter
	origin   string
	cooldown time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	metrics  metrics.Recorder
	now      func() time.Time

	mu       sync.Mutex
	state    State
	current  *attempt
	err      error
	failedAt time.Time
	attempts int
}

type attempt struct {
	done    chan struct{}
	err     error
	waiters int
}

// NewLoader creates a Loader.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	return &Loader{
		adapter:  cfg.Adapter,
		origin:   cfg.Origin,
		cooldown: cfg.RetryCooldown,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		now:      time.Now,
	}
}

// EnsureLoaded returns nil once the SDK is loaded. The first call starts a load;
// concurrent calls join it and receive the same result. A cancelled ctx stops
// this caller from waiting without aborting the attempt.
func (l *Loader) EnsureLoaded(ctx context.Context) error {
	l.mu.Lock()
	switch l.state {
	case StateLoaded:
		l.mu.Unlock()
		return nil
	case StateLoading:
		a := l.current
		a.waiters++
		l.mu.Unlock()
		return wait(ctx, a)
	case StateFailed:
		if l.cooldown < 0 || l.now().Sub(l.failedAt) < l.cooldown {
			err := l.err
			l.mu.Unlock()
			return err
		}
	}

	a := &attempt{done: make(chan struct{}), waiters: 1}
	l.current = a
	l.state = StateLoading
	l.attempts++
	n := l.attempts
	l.mu.Unlock()

	go l.run(context.WithoutCancel(ctx), a, n)

	return wait(ctx, a)
}

func wait(ctx context.Context, a *attempt) error {
	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) run(ctx context.Context, a *attempt, n int) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	err := Classify(l.adapter.Load(ctx), l.origin)

	l.mu.Lock()
	if err != nil {
		l.state = StateFailed
		l.err = err
		l.failedAt = l.now()
	} else {
		l.state = StateLoaded
		l.err = nil
	}
	a.err = err
	waiters := a.waiters
	l.current = nil
	close(a.done)
	l.mu.Unlock()

	if err != nil {
		l.metrics.IncMapsLoad("failed")
		l.logger.Warn("maps sdk load failed",
			slog.Int("attempt", n),
			slog.Int("waiters", waiters),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return
	}

	l.metrics.IncMapsLoad("success")
	l.logger.Info("maps sdk loaded",
		slog.Int("attempt", n),
		slog.Int("waiters", waiters),
		slog.Duration("duration", time.Since(start)),
	)
}

// Status is a point-in-time view of the loader.
type Status struct {
	State    State
	Error    string
	Attempts int
}

// Status returns the current loader state.
func (l *Loader) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Status{State: l.state, Attempts: l.attempts}
	if l.err != nil {
		s.Error = l.err.Error()
	}
	return s
}

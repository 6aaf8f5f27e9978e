package sink

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/budgetgrid/internal/grid"
	"github.com/muurk/budgetgrid/internal/logging"
)

// Defaults for NewActor
const (
	DefaultQueueSize  = 256
	DefaultRetries    = 3
	DefaultBackoff    = 100 * time.Millisecond
	DefaultMaxBackoff = 2 * time.Second
)

// Result is the outcome of persisting one intent. Err is nil on success.
type Result struct {
	Intent grid.CommitIntent
	Err    error
}

// Revert returns the grid revert for a failed result
func (r Result) Revert() grid.Revert {
	reason := ""
	if r.Err != nil {
		reason = r.Err.Error()
	}
	return grid.Revert{
		Seq:     r.Intent.Seq,
		Address: r.Intent.Address,
		Value:   r.Intent.Previous,
		Reason:  reason,
	}
}

// ActorOption configures an Actor
type ActorOption func(*Actor)

// WithQueueSize sets the intent and result buffer sizes
func WithQueueSize(n int) ActorOption {
	return func(a *Actor) {
		if n > 0 {
			a.queueSize = n
		}
	}
}

// WithRetries sets how many times a temporary failure is retried
func WithRetries(n int) ActorOption {
	return func(a *Actor) {
		if n >= 0 {
			a.retries = n
		}
	}
}

// WithBackoff sets the first retry delay and its cap
func WithBackoff(initial, max time.Duration) ActorOption {
	return func(a *Actor) {
		a.backoff = initial
		a.maxBackoff = max
	}
}

// Actor persists commit intents on its own goroutine. It implements
// grid.CommitSink.
type Actor struct {
	store      Store
	queueSize  int
	retries    int
	backoff    time.Duration
	maxBackoff time.Duration

	in   chan grid.CommitIntent
	out  chan Result
	done chan struct{}
	quit chan struct{} // Closed by Close; stops pending result deliveries

	mu      sync.RWMutex
	closed  bool
	started bool
}

// NewActor creates an actor over store. Call Start before committing.
func NewActor(store Store, opts ...ActorOption) *Actor {
	a := &Actor{
		store:      store,
		queueSize:  DefaultQueueSize,
		retries:    DefaultRetries,
		backoff:    DefaultBackoff,
		maxBackoff: DefaultMaxBackoff,
		done:       make(chan struct{}),
		quit:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.in = make(chan grid.CommitIntent, a.queueSize)
	a.out = make(chan Result, a.queueSize)
	return a
}

// Start launches the persistence goroutine. Once ctx is cancelled, queued
// and later intents fail with the context error instead of being saved, so
// every intent still gets a Result. The goroutine exits on Close.
func (a *Actor) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return
	}
	a.started = true
	go a.run(ctx)
}

// Commit implements grid.CommitSink. It never blocks: when the queue is full
// or the actor is closed the intent fails immediately.
func (a *Actor) Commit(intent grid.CommitIntent) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.fail(intent, ErrClosed)
		return
	}
	select {
	case a.in <- intent:
	default:
		a.fail(intent, ErrQueueFull)
	}
}

// fail publishes a failure without blocking the caller. Must be called
// with a.mu held.
func (a *Actor) fail(intent grid.CommitIntent, err error) {
	logging.Warn("Commit refused", zap.String("cell", intent.Address.String()), zap.Error(err))
	res := Result{Intent: intent, Err: err}
	select {
	case a.out <- res:
		return
	default:
	}
	if a.closed {
		logging.Warn("Result dropped, nobody is reading",
			zap.String("cell", intent.Address.String()),
			zap.Uint64("seq", intent.Seq),
		)
		return
	}
	// Delivered once the reader catches up, or dropped by Close
	go a.publish(res)
}

// publish delivers res, blocking until the reader takes it or Close is
// called
func (a *Actor) publish(res Result) {
	select {
	case a.out <- res:
		return
	default:
	}
	select {
	case a.out <- res:
	case <-a.quit:
		logging.Warn("Result dropped after close",
			zap.String("cell", res.Intent.Address.String()),
			zap.Uint64("seq", res.Intent.Seq),
		)
	}
}

// Results delivers one Result per committed intent. The channel is never
// closed; stop reading once Close returns.
func (a *Actor) Results() <-chan Result {
	return a.out
}

// Close stops accepting intents, persists the ones already queued (or fails
// them with the context error when the run context is done) and closes the
// store. Results the reader no longer has room for are dropped.
func (a *Actor) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	started := a.started
	close(a.in)
	close(a.quit)
	a.mu.Unlock()

	if started {
		<-a.done
	} else {
		for intent := range a.in {
			a.publish(Result{Intent: intent, Err: ErrClosed})
		}
	}
	return a.store.Close()
}

func (a *Actor) run(ctx context.Context) {
	defer close(a.done)

	for intent := range a.in {
		if err := ctx.Err(); err != nil {
			logging.Warn("Commit abandoned",
				zap.String("cell", intent.Address.String()),
				zap.Uint64("seq", intent.Seq),
				zap.Error(err),
			)
			a.publish(Result{Intent: intent, Err: err})
			continue
		}
		res := Result{Intent: intent, Err: a.persist(ctx, intent)}
		if res.Err == nil {
			logging.Debug("Commit persisted",
				zap.String("cell", intent.Address.String()),
				zap.Uint64("seq", intent.Seq),
			)
		}
		a.publish(res)
	}
}

// persist saves intent, retrying temporary failures with exponential backoff
func (a *Actor) persist(ctx context.Context, intent grid.CommitIntent) error {
	delay := a.backoff
	for attempt := 0; ; attempt++ {
		err := a.store.Save(ctx, intent)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) || attempt >= a.retries {
			logging.Error("Commit failed",
				zap.String("cell", intent.Address.String()),
				zap.Uint64("seq", intent.Seq),
				zap.Int("attempts", attempt+1),
				zap.Error(err),
			)
			return err
		}

		logging.Warn("Commit failed, retrying",
			zap.String("cell", intent.Address.String()),
			zap.Uint64("seq", intent.Seq),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > a.maxBackoff {
			delay = a.maxBackoff
		}
	}
}

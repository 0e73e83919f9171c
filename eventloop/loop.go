// Package eventloop provides a single-goroutine task queue that stands in for
// an event-driven host.
//
// Tasks posted to a Loop run one at a time, in posting order, on the
// goroutine that called Run. Delayed tasks are armed with time.AfterFunc and
// only enqueue themselves when they fire, so every task body still executes
// on the loop goroutine. Each executed task is one "turn".
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrClosed is returned when posting to a stopped loop.
	ErrClosed = errors.New("event loop closed")

	// ErrRunning is returned by Run when the loop is already running.
	ErrRunning = errors.New("event loop already running")
)

// Task is a unit of work run on the loop goroutine. A non-nil error stops
// the loop and is returned from Run.
type Task = func() error

// Loop is a serial task queue with timers.
type Loop struct {
	mu      sync.Mutex
	queue   []Task
	timers  map[*time.Timer]struct{}
	running bool
	closed  bool

	wake  chan struct{}
	turns atomic.Uint64

	keepAlive bool
	logger    *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithKeepAlive keeps Run blocked while the loop is idle instead of
// returning once no tasks or timers remain. Run then ends only on Stop,
// context cancellation or a task error.
func WithKeepAlive(keep bool) Option {
	return func(l *Loop) {
		l.keepAlive = keep
	}
}

// WithLogger sets the loop's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates an idle loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		timers: make(map[*time.Timer]struct{}),
		wake:   make(chan struct{}, 1),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post enqueues task to run on a later turn.
func (l *Loop) Post(task Task) error {
	if task == nil {
		return errors.New("eventloop: nil task")
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	l.signal()
	return nil
}

// PostAfter enqueues task once d has elapsed. A non-positive d behaves like
// a timer that fires immediately: the task is still queued from the timer
// goroutine, after tasks already posted.
func (l *Loop) PostAfter(d time.Duration, task Task) error {
	if task == nil {
		return errors.New("eventloop: nil task")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	// The callback takes the lock before touching timers, so t is assigned
	// before it can be observed.
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		l.mu.Lock()
		if _, ok := l.timers[t]; !ok {
			l.mu.Unlock()
			return
		}
		delete(l.timers, t)
		l.queue = append(l.queue, task)
		l.mu.Unlock()

		l.signal()
	})
	l.timers[t] = struct{}{}
	return nil
}

// Run executes tasks until the loop is idle, stopped, ctx is cancelled or a
// task fails. Idle means no queued tasks and no pending timers; with
// WithKeepAlive an idle loop keeps waiting.
//
// A task error stops the loop (pending timers are cancelled and later posts
// fail with ErrClosed) and is returned wrapped.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrRunning
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	for {
		task, ok, idle := l.next()
		if ok {
			turn := l.turns.Add(1)
			if err := task(); err != nil {
				l.logger.Debug("task failed, stopping loop", "turn", turn, "error", err)
				l.Stop()
				return fmt.Errorf("eventloop: turn %d: %w", turn, err)
			}
			continue
		}
		if idle {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// next pops the head of the queue. idle reports that Run should return.
func (l *Loop) next() (task Task, ok bool, idle bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, false, true
	}
	if len(l.queue) > 0 {
		task = l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		return task, true, false
	}
	return nil, false, !l.keepAlive && len(l.timers) == 0
}

// Stop closes the loop: pending timers are cancelled, queued tasks are
// dropped and a running Run returns nil. Stop is idempotent.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	for t := range l.timers {
		t.Stop()
	}
	dropped := len(l.queue)
	clear(l.timers)
	l.queue = nil
	l.mu.Unlock()

	if dropped > 0 {
		l.logger.Debug("loop stopped with queued tasks", "dropped", dropped)
	}
	l.signal()
}

// Turns returns the number of tasks executed so far.
func (l *Loop) Turns() uint64 {
	return l.turns.Load()
}

// Pending returns the number of queued tasks and armed timers.
func (l *Loop) Pending() (queued, timers int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue), len(l.timers)
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

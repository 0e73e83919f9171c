// Package executor runs a source in adaptive, time-sliced bursts.
//
// A burst advances the source synchronously until it is exhausted or until
// the burst decides to cut back, then yields to the host and reschedules
// itself, either as soon as possible or after a computed rest delay. The
// decision adapts to how far the burst overshot its interval budget:
//
//   - Below the normal interval (5ms) a burst always cuts back once its
//     budget is spent.
//   - From normal upwards the overshoot is graded into an "axis" of 2, 5, 7
//     or 10, and the burst cuts back with probability axis/10.
//
// After a burst that did not finish, a rest delay is drawn with probability
// max(2, axis/2.75)/10:
//
//	delay = min(rest, max(1, ceil(risk/(rest+diff) + diff)))
//
// where risk is the time since the run started, diff the burst length and
// rest the rest budget (100ms by default), all in whole milliseconds.
//
// # Thread Safety
//
// An Executor may start any number of runs. Each run is driven entirely by
// the tasks it schedules through its yield.Primitive, so a run's source and
// callbacks are only touched from the host goroutine. Handle accessors are
// safe to call from any goroutine.
package executor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/wesleyorama2/lazyiter/source"
	"github.com/wesleyorama2/lazyiter/speed"
	"github.com/wesleyorama2/lazyiter/yield"
)

// ErrNilSource is returned by Run when no source is given.
var ErrNilSource = errors.New("executor: nil source")

const (
	// DefaultRestBudget caps the rest delay between bursts.
	DefaultRestBudget = 100 * time.Millisecond

	// Overshoot thresholds, in milliseconds past the interval, for axis 2,
	// 5 and 7. Anything beyond the last is axis 10.
	axisTier2 = 8
	axisTier5 = 36
	axisTier7 = 48

	// axisUnset stands in for the axis in the delay probability until one
	// has been computed.
	axisUnset = 2
)

// Rand is the randomness source for cutback and delay decisions.
type Rand interface {
	// Float64 returns a number in [0, 1).
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// SeededRand returns a deterministic Rand.
func SeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Executor schedules burst loops through a yield primitive.
type Executor struct {
	yield    yield.Primitive
	clock    Clock
	rand     Rand
	logger   *slog.Logger
	observer Observer
	rest     time.Duration
	minDelay time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock sets the time source used to measure bursts.
func WithClock(c Clock) Option {
	return func(e *Executor) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithRand sets the randomness source.
func WithRand(r Rand) Option {
	return func(e *Executor) {
		if r != nil {
			e.rand = r
		}
	}
}

// WithLogger sets the logger. Run lifecycle and burst timing are logged at
// Debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver registers an observer notified after every burst.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observer = o
	}
}

// WithRestBudget sets the upper bound of the rest delay. Non-positive values
// are ignored.
func WithRestBudget(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.rest = d
		}
	}
}

// WithMinDelay sets a floor for the delay between bursts that did not
// finish. Zero, the default, leaves the adaptive delay untouched.
func WithMinDelay(d time.Duration) Option {
	return func(e *Executor) {
		if d >= 0 {
			e.minDelay = d
		}
	}
}

// New creates an executor that yields through y.
func New(y yield.Primitive, opts ...Option) *Executor {
	if y == nil {
		y = yield.Funcs{}
	}
	e := &Executor{
		yield:  y,
		clock:  RealClock{},
		rand:   globalRand{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		rest:   DefaultRestBudget,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run schedules src to be drained in bursts of roughly interval and returns
// without executing any step. onComplete is called once, on the host, after
// the source is exhausted; it is never called if a step fails.
//
// Run fails only when src is nil or the first burst cannot be scheduled.
// Later failures (a step error or a scheduling error) are returned by the
// burst task to the host.
func (e *Executor) Run(src source.Source, interval time.Duration, onComplete func()) error {
	_, err := e.Start(src, interval, onComplete)
	return err
}

// Start is Run returning a handle on the run's progress.
func (e *Executor) Start(src source.Source, interval time.Duration, onComplete func()) (*Handle, error) {
	if src == nil {
		return nil, ErrNilSource
	}

	r := &run{
		exec:       e,
		src:        src,
		interval:   float64(interval) / float64(time.Millisecond),
		onComplete: onComplete,
		rest:       e.rest.Milliseconds(),
		start:      e.clock.Now(),
		logEvery:   &rate.Sometimes{First: 1, Interval: time.Second},
		handle:     &Handle{},
	}
	if r.rest <= 0 {
		r.rest = 1
	}

	e.logger.Debug("run scheduled", "interval", interval, "defensive", r.defensive())

	if err := e.yield.ScheduleAsap(r.task); err != nil {
		r.handle.state.Store(int32(StateAborted))
		return r.handle, fmt.Errorf("executor: schedule first burst: %w", err)
	}
	return r.handle, nil
}

// run holds the timing state of one Run.
type run struct {
	exec       *Executor
	src        source.Source
	interval   float64
	onComplete func()

	start     time.Time
	loopStart time.Time
	diff      int64
	risk      int64
	axis      int
	rest      int64

	logEvery *rate.Sometimes
	handle   *Handle
}

func (r *run) task() error {
	return r.burst()
}

func (r *run) defensive() bool {
	return r.interval < float64(speed.Normal.Interval)/float64(time.Millisecond)
}

func (r *run) burst() error {
	e := r.exec
	h := r.handle

	h.state.CompareAndSwap(int32(StateCreated), int32(StateRunning))
	n := h.bursts.Add(1)

	r.loopStart = e.clock.Now()
	steps := 0
	finished := false

	for {
		step, err := r.src.Advance()
		if err != nil {
			h.state.Store(int32(StateAborted))
			h.steps.Add(int64(steps))
			e.logger.Debug("run aborted", "burst", n, "steps", h.steps.Load(), "error", err)
			return fmt.Errorf("executor: burst %d: %w", n, err)
		}
		if step.Done {
			finished = true
			break
		}
		steps++

		done := e.clock.Now()
		r.risk = done.Sub(r.start).Milliseconds()
		r.diff = done.Sub(r.loopStart).Milliseconds()

		if r.shouldCutBack() {
			break
		}
	}
	h.steps.Add(int64(steps))

	end := e.clock.Now()
	stats := BurstStats{
		Burst:    n,
		Steps:    steps,
		Elapsed:  end.Sub(r.loopStart),
		Risk:     end.Sub(r.start),
		Axis:     r.axis,
		Finished: finished,
	}

	if finished {
		h.state.Store(int32(StateCompleted))
		r.observe(stats)
		e.logger.Debug("run completed", "bursts", n, "steps", h.steps.Load())
		if r.onComplete != nil {
			r.onComplete()
		}
		return nil
	}

	delay := r.backoff()
	stats.Delay = delay
	r.observe(stats)

	if delay > 0 {
		err := e.yield.ScheduleAfter(r.task, delay)
		if err != nil {
			h.state.Store(int32(StateAborted))
			return fmt.Errorf("executor: reschedule after burst %d: %w", n, err)
		}
		return nil
	}
	if err := e.yield.ScheduleAsap(r.task); err != nil {
		h.state.Store(int32(StateAborted))
		return fmt.Errorf("executor: reschedule after burst %d: %w", n, err)
	}
	return nil
}

// shouldCutBack decides, after a step, whether the burst ends here.
func (r *run) shouldCutBack() bool {
	diff := float64(r.diff)
	if diff < r.interval {
		return false
	}
	if r.defensive() {
		return true
	}

	switch {
	case diff < r.interval+axisTier2:
		r.axis = 2
	case diff < r.interval+axisTier5:
		r.axis = 5
	case diff < r.interval+axisTier7:
		r.axis = 7
	default:
		r.axis = 10
	}
	return r.axis >= 10 || r.exec.rand.Float64()*10 < float64(r.axis)
}

// backoff returns the delay before the next burst.
func (r *run) backoff() time.Duration {
	axis := r.axis
	if axis == 0 {
		axis = axisUnset
	}

	var ms int64
	if r.exec.rand.Float64()*10 < math.Max(2, float64(axis)/2.75) {
		raw := math.Ceil(float64(r.risk)/float64(r.rest+r.diff) + float64(r.diff))
		ms = min(r.rest, max(1, int64(raw)))
	}

	delay := time.Duration(ms) * time.Millisecond
	return max(delay, r.exec.minDelay)
}

func (r *run) observe(stats BurstStats) {
	e := r.exec
	if e.observer != nil {
		e.observer.ObserveBurst(stats)
	}
	r.logEvery.Do(func() {
		e.logger.Debug("burst",
			"burst", stats.Burst,
			"steps", stats.Steps,
			"diff_ms", r.diff,
			"risk_ms", r.risk,
			"axis", stats.Axis,
			"delay", stats.Delay,
			"finished", stats.Finished,
		)
	})
}

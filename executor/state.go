package executor

import (
	"sync/atomic"
	"time"
)

// State is the lifecycle stage of a run.
type State int32

const (
	// StateCreated means the first burst is scheduled but has not run.
	StateCreated State = iota

	// StateRunning means at least one burst has started.
	StateRunning

	// StateCompleted means the source was exhausted and the completion
	// callback was invoked.
	StateCompleted

	// StateAborted means a step or a reschedule failed.
	StateAborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Handle reports the progress of one run.
type Handle struct {
	state  atomic.Int32
	bursts atomic.Int64
	steps  atomic.Int64
}

// State returns the run's current state.
func (h *Handle) State() State { return State(h.state.Load()) }

// Bursts returns the number of bursts started.
func (h *Handle) Bursts() int64 { return h.bursts.Load() }

// Steps returns the number of steps that performed work.
func (h *Handle) Steps() int64 { return h.steps.Load() }

// BurstStats describes one finished burst.
type BurstStats struct {
	// Burst is the 1-based burst number within the run.
	Burst int64

	// Steps is the number of steps that performed work in this burst.
	Steps int

	// Elapsed is the wall time of the whole burst, at clock resolution.
	Elapsed time.Duration

	// Risk is the time since the run started, measured when the burst
	// ended.
	Risk time.Duration

	// Axis is the overshoot grade (0 until first computed, then 2, 5, 7 or
	// 10). It carries over between bursts.
	Axis int

	// Delay is the rest before the next burst; zero means as soon as
	// possible. Always zero when Finished.
	Delay time.Duration

	// Finished reports that the source was exhausted in this burst.
	Finished bool
}

// Observer receives burst statistics on the host goroutine.
type Observer interface {
	ObserveBurst(stats BurstStats)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(BurstStats)

// ObserveBurst calls f.
func (f ObserverFunc) ObserveBurst(stats BurstStats) { f(stats) }

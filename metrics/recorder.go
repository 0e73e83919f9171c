// Package metrics aggregates executor burst statistics using HDR histograms.
package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/wesleyorama2/lazyiter/executor"
)

// Recorder collects burst statistics from one or more runs.
//
// It implements executor.Observer, so it can be registered directly with
// executor.WithObserver. Three histograms are kept:
//   - burst length, in microseconds
//   - working steps per burst
//   - rest delay before delayed resumptions, in milliseconds
//
// # Thread Safety
//
// Recorder is safe for concurrent use. Counters use atomic operations and
// the histograms are guarded by a mutex.
type Recorder struct {
	mu      sync.Mutex
	elapsed *hdrhistogram.Histogram
	steps   *hdrhistogram.Histogram
	delays  *hdrhistogram.Histogram

	bursts    atomic.Int64
	work      atomic.Int64
	asap      atomic.Int64
	delayed   atomic.Int64
	completed atomic.Int64

	config RecorderConfig
}

// RecorderConfig contains histogram bounds for the recorder.
type RecorderConfig struct {
	// ElapsedMax is the largest recordable burst length in microseconds
	// (default: 1 hour).
	ElapsedMax int64

	// StepsMax is the largest recordable step count per burst
	// (default: 10,000,000).
	StepsMax int64

	// DelayMax is the largest recordable delay in milliseconds
	// (default: 1 hour).
	DelayMax int64

	// SigFigs is the number of significant figures (default: 3).
	SigFigs int
}

// DefaultRecorderConfig returns the default configuration.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		ElapsedMax: 3600000000, // 1 hour in microseconds
		StepsMax:   10000000,
		DelayMax:   3600000, // 1 hour in milliseconds
		SigFigs:    3,
	}
}

// NewRecorder creates a recorder with the default configuration.
func NewRecorder() *Recorder {
	return NewRecorderWithConfig(DefaultRecorderConfig())
}

// NewRecorderWithConfig creates a recorder with custom histogram bounds.
func NewRecorderWithConfig(config RecorderConfig) *Recorder {
	return &Recorder{
		elapsed: hdrhistogram.New(1, config.ElapsedMax, config.SigFigs),
		steps:   hdrhistogram.New(1, config.StepsMax, config.SigFigs),
		delays:  hdrhistogram.New(1, config.DelayMax, config.SigFigs),
		config:  config,
	}
}

// ObserveBurst records one burst.
func (r *Recorder) ObserveBurst(stats executor.BurstStats) {
	r.bursts.Add(1)
	r.work.Add(int64(stats.Steps))

	switch {
	case stats.Finished:
		r.completed.Add(1)
	case stats.Delay > 0:
		r.delayed.Add(1)
	default:
		r.asap.Add(1)
	}

	// HDR histogram RecordValue is not thread-safe.
	r.mu.Lock()
	defer r.mu.Unlock()

	r.elapsed.RecordValue(clamp(stats.Elapsed.Microseconds(), r.config.ElapsedMax))
	if stats.Steps > 0 {
		r.steps.RecordValue(clamp(int64(stats.Steps), r.config.StepsMax))
	}
	if stats.Delay > 0 {
		r.delays.RecordValue(clamp(stats.Delay.Milliseconds(), r.config.DelayMax))
	}
}

func clamp(v, hi int64) int64 {
	return min(max(v, 1), hi)
}

// Snapshot returns a point-in-time view of the recorded bursts.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	elapsed := summarize(r.elapsed)
	steps := summarize(r.steps)
	delays := summarize(r.delays)
	r.mu.Unlock()

	return Snapshot{
		Bursts:         r.bursts.Load(),
		Steps:          r.work.Load(),
		AsapResumes:    r.asap.Load(),
		DelayedResumes: r.delayed.Load(),
		Completed:      r.completed.Load(),
		ElapsedMicros:  elapsed,
		StepsPerBurst:  steps,
		DelayMillis:    delays,
	}
}

// Reset clears all recorded data.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.elapsed.Reset()
	r.steps.Reset()
	r.delays.Reset()
	r.mu.Unlock()

	r.bursts.Store(0)
	r.work.Store(0)
	r.asap.Store(0)
	r.delayed.Store(0)
	r.completed.Store(0)
}

func summarize(h *hdrhistogram.Histogram) Distribution {
	return Distribution{
		Min:   h.Min(),
		Max:   h.Max(),
		Mean:  h.Mean(),
		P50:   h.ValueAtQuantile(50),
		P90:   h.ValueAtQuantile(90),
		P99:   h.ValueAtQuantile(99),
		Count: h.TotalCount(),
	}
}

// Snapshot contains aggregated burst statistics.
type Snapshot struct {
	Bursts         int64        `json:"bursts"`
	Steps          int64        `json:"steps"`
	AsapResumes    int64        `json:"asapResumes"`
	DelayedResumes int64        `json:"delayedResumes"`
	Completed      int64        `json:"completed"`
	ElapsedMicros  Distribution `json:"elapsedMicros"`
	StepsPerBurst  Distribution `json:"stepsPerBurst"`
	DelayMillis    Distribution `json:"delayMillis"`
}

// Distribution summarizes one histogram in its recorded unit.
type Distribution struct {
	Min   int64   `json:"min"`
	Max   int64   `json:"max"`
	Mean  float64 `json:"mean"`
	P50   int64   `json:"p50"`
	P90   int64   `json:"p90"`
	P99   int64   `json:"p99"`
	Count int64   `json:"count"`
}

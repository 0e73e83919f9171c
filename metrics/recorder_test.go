package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wesleyorama2/lazyiter/executor"
)

func TestRecorder_ObserveBurst(t *testing.T) {
	r := NewRecorder()

	r.ObserveBurst(executor.BurstStats{Burst: 1, Steps: 10, Elapsed: 6 * time.Millisecond, Delay: 7 * time.Millisecond})
	r.ObserveBurst(executor.BurstStats{Burst: 2, Steps: 20, Elapsed: 5 * time.Millisecond})
	r.ObserveBurst(executor.BurstStats{Burst: 3, Steps: 0, Finished: true})

	snap := r.Snapshot()
	assert.Equal(t, int64(3), snap.Bursts)
	assert.Equal(t, int64(30), snap.Steps)
	assert.Equal(t, int64(1), snap.AsapResumes)
	assert.Equal(t, int64(1), snap.DelayedResumes)
	assert.Equal(t, int64(1), snap.Completed)

	// Empty final bursts do not count towards steps per burst.
	assert.Equal(t, int64(2), snap.StepsPerBurst.Count)
	assert.Equal(t, int64(10), snap.StepsPerBurst.Min)
	assert.Equal(t, int64(20), snap.StepsPerBurst.Max)

	assert.Equal(t, int64(1), snap.DelayMillis.Count)
	assert.Equal(t, int64(7), snap.DelayMillis.Max)

	// Zero-length bursts are clamped to the histogram floor.
	assert.Equal(t, int64(3), snap.ElapsedMicros.Count)
	assert.Equal(t, int64(1), snap.ElapsedMicros.Min)
}

func TestRecorder_Reset(t *testing.T) {
	r := NewRecorder()
	r.ObserveBurst(executor.BurstStats{Steps: 3, Elapsed: time.Millisecond})
	r.Reset()

	snap := r.Snapshot()
	assert.Zero(t, snap.Bursts)
	assert.Zero(t, snap.Steps)
	assert.Zero(t, snap.ElapsedMicros.Count)
	assert.Zero(t, snap.StepsPerBurst.Count)
}

func TestRecorder_ConcurrentUse(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.ObserveBurst(executor.BurstStats{Steps: 1, Elapsed: time.Millisecond})
			}
		}()
	}
	wg.Wait()

	snap := r.Snapshot()
	assert.Equal(t, int64(800), snap.Bursts)
	assert.Equal(t, int64(800), snap.ElapsedMicros.Count)
}

func TestRecorder_IsObserver(t *testing.T) {
	var _ executor.Observer = NewRecorder()
}

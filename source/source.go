// Package source provides the step producers driven by the time-sliced
// executor.
//
// A Source performs one unit of work per call to Advance and reports the
// outcome as a Step. Exhaustion is a normal result (Step.Done), never an
// error: errors returned by Advance are fatal to the run.
//
// Step callbacks end a loop early by returning ErrStop. Every source in this
// package translates ErrStop into an exhausted Step, so the executor only
// ever sees genuine failures as errors.
package source

import "errors"

// ErrStop is returned by a step callback to end the loop normally.
var ErrStop = errors.New("lazyiter: stop iteration")

// Step is the result of a single Advance call.
type Step struct {
	// Done reports that the source is exhausted. No work was performed.
	Done bool

	// Value is what the step produced: the visited element, the range value,
	// or the counter value. It is unset when Done is true.
	Value any
}

// Source produces the next unit of work or signals exhaustion.
//
// Implementations are not safe for concurrent use; the executor drives a
// source from a single goroutine.
type Source interface {
	Advance() (Step, error)
}

// Func adapts an ordinary function into a Source.
type Func func() (Step, error)

// Advance calls f.
func (f Func) Advance() (Step, error) {
	return f()
}

// exhausted is the Step every source returns once it has nothing left.
var exhausted = Step{Done: true}

// settle maps a step callback's error onto a Step result.
func settle(value any, err error) (Step, error) {
	if err != nil {
		if errors.Is(err, ErrStop) {
			return exhausted, nil
		}
		return Step{}, err
	}
	return Step{Value: value}, nil
}

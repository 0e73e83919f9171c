// Package yield abstracts how a burst hands control back to its host and
// asks to be resumed.
//
// A Primitive offers two capabilities: run a task as soon as possible
// (after the current host turn) and run a task after a delay. Adapters build
// Primitives over a Host, and Fallback picks the first one that works.
package yield

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is returned by a Primitive that cannot schedule at all.
var ErrUnavailable = errors.New("yield primitive unavailable")

// Task is resumable work. Its error is handed to the host.
type Task func() error

// Primitive schedules a task on a later host turn.
type Primitive interface {
	ScheduleAsap(task Task) error
	ScheduleAfter(task Task, d time.Duration) error
}

// Host is the event loop a Primitive posts to. *eventloop.Loop implements
// it.
type Host interface {
	Post(task func() error) error
	PostAfter(d time.Duration, task func() error) error
}

// Funcs builds a Primitive from two functions. A nil field makes the
// matching method fail with ErrUnavailable.
type Funcs struct {
	Asap  func(Task) error
	After func(Task, time.Duration) error
}

// ScheduleAsap calls f.Asap.
func (f Funcs) ScheduleAsap(task Task) error {
	if f.Asap == nil {
		return ErrUnavailable
	}
	return f.Asap(task)
}

// ScheduleAfter calls f.After.
func (f Funcs) ScheduleAfter(task Task, d time.Duration) error {
	if f.After == nil {
		return ErrUnavailable
	}
	return f.After(task, d)
}

// Queue schedules asap tasks straight onto the host queue.
func Queue(h Host) Primitive {
	if h == nil {
		return Funcs{}
	}
	return Funcs{
		Asap: func(task Task) error {
			return h.Post(task)
		},
		After: func(task Task, d time.Duration) error {
			return h.PostAfter(d, task)
		},
	}
}

// Timer schedules asap tasks through a zero-delay host timer.
func Timer(h Host) Primitive {
	if h == nil {
		return Funcs{}
	}
	after := func(task Task, d time.Duration) error {
		return h.PostAfter(d, task)
	}
	return Funcs{
		Asap: func(task Task) error {
			return after(task, 0)
		},
		After: after,
	}
}

// ForHost returns the preferred primitive for h: the host queue, falling
// back to a zero-delay timer.
func ForHost(h Host) Primitive {
	return Fallback(Queue(h), Timer(h))
}

type fallback []Primitive

// Fallback tries each primitive in order and stops at the first that
// neither returns an error nor panics. If all fail, the joined errors are
// returned.
func Fallback(ps ...Primitive) Primitive {
	out := make(fallback, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (f fallback) ScheduleAsap(task Task) error {
	return f.try(func(p Primitive) error { return p.ScheduleAsap(task) })
}

func (f fallback) ScheduleAfter(task Task, d time.Duration) error {
	return f.try(func(p Primitive) error { return p.ScheduleAfter(task, d) })
}

func (f fallback) try(call func(Primitive) error) error {
	if len(f) == 0 {
		return ErrUnavailable
	}

	var errs []error
	for _, p := range f {
		err := guard(p, call)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}

func guard(p Primitive, call func(Primitive) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("yield: primitive panicked: %v", r)
		}
	}()
	return call(p)
}

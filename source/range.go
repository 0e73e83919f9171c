package source

import (
	"strconv"
	"strings"
)

// Number is the set of types a Range can step over.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Bounds describes a half-open ascending range [Begin, End) walked in
// increments of Step.
type Bounds[N Number] struct {
	Begin N
	End   N
	Step  N
}

// Count returns the bounds 0, 1, ..., n-1.
func Count[N Number](n N) Bounds[N] {
	return Bounds[N]{Begin: 0, End: n, Step: 1}
}

// Span returns the bounds begin, begin+step, ... while below end.
func Span[N Number](begin, end, step N) Bounds[N] {
	return Bounds[N]{Begin: begin, End: end, Step: step}
}

// RangeState is shared with every RangeFunc call of one traversal.
type RangeState[N Number] struct {
	Bounds[N]

	// Last is true on the final iteration (current >= End-Step).
	Last bool

	// Prev holds the value returned by the previous RangeFunc call.
	Prev any
}

// RangeFunc is called once per range value. Its first return value is
// exposed to the next call as RangeState.Prev.
type RangeFunc[N Number] func(i N, last bool, st *RangeState[N]) (any, error)

type ranger[N Number] struct {
	st   RangeState[N]
	fn   RangeFunc[N]
	cur  N
	last N
}

// Range walks b, calling fn with each value.
//
// Only ascending ranges are walked: a Step that is zero, negative or NaN
// exhausts the range immediately, as does Begin >= End. A step that would
// carry the cursor past the largest value of N ends the range.
func Range[N Number](b Bounds[N], fn RangeFunc[N]) Source {
	r := &ranger[N]{
		st:   RangeState[N]{Bounds: b},
		fn:   fn,
		cur:  b.End,
		last: b.End - b.Step,
	}
	if b.Step > 0 {
		r.cur = b.Begin
	}
	return r
}

func (r *ranger[N]) Advance() (Step, error) {
	if !(r.cur < r.st.End) {
		return exhausted, nil
	}

	i := r.cur
	r.st.Last = i >= r.last
	prev, err := r.fn(i, r.st.Last, &r.st)
	step, err := settle(i, err)
	if err != nil || step.Done {
		return step, err
	}

	r.st.Prev = prev
	if next := r.cur + r.st.Step; next > r.cur {
		r.cur = next
	} else {
		// Overflowed, or a float step too small to move the cursor.
		r.cur = r.st.End
	}
	return step, nil
}

// ParseRange parses a textual range. Accepted forms:
//
//	"10"                      -> 0..9
//	"0:30:5"                  -> begin:end:step
//	"0:30"                    -> begin:end, step 1
//	"begin=0,end=30,step=5"   -> named fields; start/stop are aliases
//
// Parts that are missing or not numeric fall back to begin 0, end 0 and
// step 1 instead of failing, so a malformed range degrades to an empty or
// default walk.
func ParseRange(s string) Bounds[float64] {
	b := Bounds[float64]{Step: 1}
	s = strings.TrimSpace(s)
	if s == "" {
		return b
	}

	if strings.Contains(s, "=") {
		for _, part := range strings.Split(s, ",") {
			key, value, ok := strings.Cut(part, "=")
			if !ok {
				continue
			}
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "begin", "start":
				b.Begin = parseNumber(value, 0)
			case "end", "stop":
				b.End = parseNumber(value, 0)
			case "step":
				b.Step = parseNumber(value, 1)
			}
		}
		return b
	}

	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		b.End = parseNumber(parts[0], 0)
	case 2:
		b.Begin = parseNumber(parts[0], 0)
		b.End = parseNumber(parts[1], 0)
	default:
		b.Begin = parseNumber(parts[0], 0)
		b.End = parseNumber(parts[1], 0)
		b.Step = parseNumber(parts[2], 1)
	}
	return b
}

func parseNumber(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fallback
	}
	return v
}

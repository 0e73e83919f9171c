package source

import "math"

type counter struct {
	fn func(i int) error
	i  int
}

// Counter calls fn with 0, 1, 2, ... without end. The count wraps to 0
// rather than overflowing. The only way to finish is for fn to return
// ErrStop.
func Counter(fn func(i int) error) Source {
	return &counter{fn: fn}
}

func (c *counter) Advance() (Step, error) {
	i := c.i
	step, err := settle(i, c.fn(i))
	if err != nil || step.Done {
		return step, err
	}

	if c.i == math.MaxInt {
		c.i = 0
	} else {
		c.i++
	}
	return step, nil
}

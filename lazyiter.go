package lazyiter

import (
	"cmp"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/lazyiter/executor"
	"github.com/wesleyorama2/lazyiter/source"
	"github.com/wesleyorama2/lazyiter/speed"
	"github.com/wesleyorama2/lazyiter/yield"
)

// ErrStop is returned by a step callback to end the loop normally.
var ErrStop = source.ErrStop

// Iterator binds a yield primitive to a speed. Iterators are values: Speed
// and the shortcut methods return modified copies.
type Iterator struct {
	yield    yield.Primitive
	table    *speed.Table
	profile  speed.Profile
	paced    bool
	execOpts []executor.Option
}

// Option configures an Iterator.
type Option func(*Iterator)

// WithSpeed selects the speed by label or millisecond count.
func WithSpeed(s string) Option {
	return func(it *Iterator) {
		it.profile = it.table.Resolve(s)
	}
}

// WithInterval sets the burst interval directly.
func WithInterval(d time.Duration) Option {
	return func(it *Iterator) {
		it.profile = speed.Profile{Name: d.String(), Interval: d}
	}
}

// WithSpeedTable resolves speed labels against t instead of the presets.
// It applies to WithSpeed options that follow it and to later Speed calls.
func WithSpeedTable(t *speed.Table) Option {
	return func(it *Iterator) {
		it.table = t
	}
}

// WithPacing makes the profile's nominal delay a floor for the rest between
// bursts.
func WithPacing(paced bool) Option {
	return func(it *Iterator) {
		it.paced = paced
	}
}

// WithExecutorOptions passes options through to every executor the
// iterator creates.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(it *Iterator) {
		it.execOpts = append(it.execOpts, opts...)
	}
}

// New creates an iterator yielding through y at normal speed.
func New(y yield.Primitive, opts ...Option) *Iterator {
	it := &Iterator{
		yield:   y,
		profile: speed.Normal,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// Profile returns the speed profile loops will run at.
func (it *Iterator) Profile() speed.Profile {
	return it.profile
}

// Speed returns a copy of it running at s.
func (it *Iterator) Speed(s string) *Iterator {
	c := *it
	c.profile = it.table.Resolve(s)
	return &c
}

func (it *Iterator) Limp() *Iterator   { return it.Speed(speed.Limp.Name) }
func (it *Iterator) Doze() *Iterator   { return it.Speed(speed.Doze.Name) }
func (it *Iterator) Slow() *Iterator   { return it.Speed(speed.Slow.Name) }
func (it *Iterator) Normal() *Iterator { return it.Speed(speed.Normal.Name) }
func (it *Iterator) Fast() *Iterator   { return it.Speed(speed.Fast.Name) }
func (it *Iterator) Rapid() *Iterator  { return it.Speed(speed.Rapid.Name) }
func (it *Iterator) Ninja() *Iterator  { return it.Speed(speed.Ninja.Name) }

// Run drains src in bursts and calls done once it is exhausted. It returns
// after scheduling the first burst; see executor.Executor.Run.
func (it *Iterator) Run(src source.Source, done func()) error {
	opts := it.execOpts
	if it.paced && it.profile.Delay > 0 {
		opts = append(opts[:len(opts):len(opts)], executor.WithMinDelay(it.profile.Delay))
	}
	return executor.New(it.yield, opts...).Run(src, it.profile.Interval, done)
}

// ForEach visits items in index order.
func ForEach[T any](it *Iterator, items []T, fn func(v T, i int) error, done func()) error {
	return it.Run(source.Slice(items, fn), done)
}

// ForEachIndexed visits a possibly sparse collection in index order,
// skipping holes.
func ForEachIndexed[T any](it *Iterator, c source.Indexed[T], fn func(v T, i int) error, done func()) error {
	return it.Run(source.Collection(c, fn), done)
}

// ForEachMap visits m in ascending key order. Keys are captured when the
// loop starts.
func ForEachMap[K cmp.Ordered, V any](it *Iterator, m map[K]V, fn func(v V, k K) error, done func()) error {
	return it.Run(source.Map(m, fn), done)
}

// ForEachJSON visits the array elements or object members at path in doc.
func ForEachJSON(it *Iterator, doc []byte, path string, fn func(value gjson.Result, key string) error, done func()) error {
	src, err := source.JSON(doc, path, fn)
	if err != nil {
		return err
	}
	return it.Run(src, done)
}

// Repeat calls fn with 0 through n-1.
func Repeat(it *Iterator, n int, fn func(i int) error, done func()) error {
	return it.Run(source.Range(source.Count(n), func(i int, _ bool, _ *source.RangeState[int]) (any, error) {
		return nil, fn(i)
	}), done)
}

// RepeatRange walks the bounds b like a for statement.
func RepeatRange[N source.Number](it *Iterator, b source.Bounds[N], fn source.RangeFunc[N], done func()) error {
	return it.Run(source.Range(b, fn), done)
}

// ForEver calls fn with 0, 1, 2, ... until it returns ErrStop.
func ForEver(it *Iterator, fn func(i int) error, done func()) error {
	return it.Run(source.Counter(fn), done)
}

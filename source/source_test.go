package source

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// drain advances src until it reports Done, failing the test on error or
// on runaway sources.
func drain(t *testing.T, src Source) []any {
	t.Helper()

	var values []any
	for i := 0; i < 10000; i++ {
		step, err := src.Advance()
		require.NoError(t, err)
		if step.Done {
			return values
		}
		values = append(values, step.Value)
	}
	t.Fatal("source did not exhaust")
	return nil
}

func TestSlice_VisitsInOrder(t *testing.T) {
	type visit struct {
		v string
		i int
	}
	var got []visit
	src := Slice([]string{"a", "b", "c"}, func(v string, i int) error {
		got = append(got, visit{v, i})
		return nil
	})

	values := drain(t, src)

	assert.Equal(t, []visit{{"a", 0}, {"b", 1}, {"c", 2}}, got)
	assert.Equal(t, []any{"a", "b", "c"}, values)

	// Exhaustion is sticky.
	step, err := src.Advance()
	require.NoError(t, err)
	assert.True(t, step.Done)
}

func TestSlice_Empty(t *testing.T) {
	calls := 0
	src := Slice([]int(nil), func(int, int) error {
		calls++
		return nil
	})

	assert.Empty(t, drain(t, src))
	assert.Zero(t, calls)
}

func TestCollection_SkipsHoles(t *testing.T) {
	a, c, e := "a", "c", "e"
	items := Sparse[string]{&a, nil, &c, nil, &e}

	var indices []int
	drain(t, Collection[string](items, func(v string, i int) error {
		indices = append(indices, i)
		return nil
	}))

	assert.Equal(t, []int{0, 2, 4}, indices)
}

type growing struct {
	items []int
}

func (g *growing) Len() int             { return len(g.items) }
func (g *growing) At(i int) (int, bool) { return g.items[i], true }

func TestCollection_SeesGrowth(t *testing.T) {
	g := &growing{items: []int{1, 2}}

	var got []int
	drain(t, Collection[int](g, func(v int, i int) error {
		got = append(got, v)
		if v == 1 {
			g.items = append(g.items, 3)
		}
		return nil
	}))

	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestMap_SortedKeysCapturedOnce(t *testing.T) {
	m := map[string]int{"c": 3, "a": 1, "b": 2}

	var keys []string
	drain(t, Map(m, func(v int, k string) error {
		keys = append(keys, k)
		if k == "a" {
			m["d"] = 4     // added after capture: not visited
			delete(m, "c") // deleted after capture: skipped
			m["b"] = 20    // value read at visit time
		}
		if k == "b" {
			assert.Equal(t, 20, v)
		}
		return nil
	}))

	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestKeyed_CopiesKeys(t *testing.T) {
	keys := []int{3, 1, 2}
	lookup := func(k int) (string, bool) { return string(rune('a' + k)), true }

	src := Keyed(keys, lookup, func(string, int) error { return nil })
	keys[0] = 99

	assert.Equal(t, []any{"d", "b", "c"}, drain(t, src))
}

func TestStop_EndsEveryVariant(t *testing.T) {
	tests := []struct {
		name string
		src  func(calls *int) Source
	}{
		{
			name: "slice",
			src: func(calls *int) Source {
				return Slice([]int{0, 1, 2, 3}, func(v, _ int) error {
					*calls++
					if v == 2 {
						return ErrStop
					}
					return nil
				})
			},
		},
		{
			name: "map",
			src: func(calls *int) Source {
				return Map(map[int]int{0: 0, 1: 1, 2: 2, 3: 3}, func(v, _ int) error {
					*calls++
					if v == 2 {
						return ErrStop
					}
					return nil
				})
			},
		},
		{
			name: "range",
			src: func(calls *int) Source {
				return Range(Count(4), func(i int, _ bool, _ *RangeState[int]) (any, error) {
					*calls++
					if i == 2 {
						return nil, ErrStop
					}
					return nil, nil
				})
			},
		},
		{
			name: "counter",
			src: func(calls *int) Source {
				return Counter(func(i int) error {
					*calls++
					if i == 2 {
						return ErrStop
					}
					return nil
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			values := drain(t, tt.src(&calls))
			assert.Len(t, values, 2)
			assert.Equal(t, 3, calls)
		})
	}
}

func TestStop_Wrapped(t *testing.T) {
	src := Counter(func(i int) error {
		if i == 1 {
			return errors.Join(errors.New("done"), ErrStop)
		}
		return nil
	})
	assert.Len(t, drain(t, src), 1)
}

func TestFailure_Propagates(t *testing.T) {
	boom := errors.New("boom")
	src := Slice([]int{1, 2}, func(v, _ int) error {
		if v == 2 {
			return boom
		}
		return nil
	})

	step, err := src.Advance()
	require.NoError(t, err)
	assert.False(t, step.Done)

	_, err = src.Advance()
	assert.ErrorIs(t, err, boom)
}

func TestRange_StepFive(t *testing.T) {
	var (
		values []int
		lasts  []bool
	)
	drain(t, Range(Span(0, 30, 5), func(i int, last bool, _ *RangeState[int]) (any, error) {
		values = append(values, i)
		lasts = append(lasts, last)
		return nil, nil
	}))

	assert.Equal(t, []int{0, 5, 10, 15, 20, 25}, values)
	assert.Equal(t, []bool{false, false, false, false, false, true}, lasts)
}

func TestRange_Count(t *testing.T) {
	var values []int
	drain(t, Range(Count(10), func(i int, _ bool, _ *RangeState[int]) (any, error) {
		values = append(values, i)
		return nil, nil
	}))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, values)
}

func TestRange_PrevValue(t *testing.T) {
	var prevs []any
	drain(t, Range(Count(4), func(i int, _ bool, st *RangeState[int]) (any, error) {
		prevs = append(prevs, st.Prev)
		return i * i, nil
	}))
	assert.Equal(t, []any{nil, 0, 1, 4}, prevs)
}

func TestRange_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		b    Bounds[float64]
	}{
		{"zero step", Span(0.0, 10, 0)},
		{"negative step", Span(0.0, 10, -1)},
		{"descending bounds", Span(10.0, 0, -1)},
		{"begin past end", Span(10.0, 5, 1)},
		{"nan step", Span(0, 10, math.NaN())},
		{"nan end", Span(0, math.NaN(), 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			drain(t, Range(tt.b, func(float64, bool, *RangeState[float64]) (any, error) {
				calls++
				return nil, nil
			}))
			assert.Zero(t, calls)
		})
	}
}

func TestRange_NoOverflow(t *testing.T) {
	t.Run("int8", func(t *testing.T) {
		var values, lasts []int8
		drain(t, Range(Span[int8](100, 127, 20), func(i int8, last bool, _ *RangeState[int8]) (any, error) {
			values = append(values, i)
			if last {
				lasts = append(lasts, i)
			}
			return nil, nil
		}))
		assert.Equal(t, []int8{100, 120}, values)
		assert.Equal(t, []int8{120}, lasts)
	})

	t.Run("int near max", func(t *testing.T) {
		var values []int
		drain(t, Range(Span(math.MaxInt-5, math.MaxInt, 4), func(i int, _ bool, _ *RangeState[int]) (any, error) {
			values = append(values, i)
			return nil, nil
		}))
		assert.Equal(t, []int{math.MaxInt - 5, math.MaxInt - 1}, values)
	})
}

func TestRange_Fractional(t *testing.T) {
	var values []float64
	drain(t, Range(Span(0, 2, 0.5), func(i float64, _ bool, _ *RangeState[float64]) (any, error) {
		values = append(values, i)
		return nil, nil
	}))
	assert.Equal(t, []float64{0, 0.5, 1, 1.5}, values)
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want Bounds[float64]
	}{
		{"10", Bounds[float64]{0, 10, 1}},
		{"0:30:5", Bounds[float64]{0, 30, 5}},
		{"5:8", Bounds[float64]{5, 8, 1}},
		{"begin=0,end=30,step=5", Bounds[float64]{0, 30, 5}},
		{"start=2, stop=4", Bounds[float64]{2, 4, 1}},
		{"", Bounds[float64]{0, 0, 1}},
		{"abc", Bounds[float64]{0, 0, 1}},
		{"x:10:y", Bounds[float64]{0, 10, 1}},
		{"end=ten", Bounds[float64]{0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRange(tt.in))
		})
	}
}

func TestCounter_Wraps(t *testing.T) {
	var got []int
	c := &counter{i: math.MaxInt - 1, fn: func(i int) error {
		got = append(got, i)
		return nil
	}}

	for i := 0; i < 3; i++ {
		_, err := c.Advance()
		require.NoError(t, err)
	}

	assert.Equal(t, []int{math.MaxInt - 1, math.MaxInt, 0}, got)
}

func TestJSON_Array(t *testing.T) {
	doc := []byte(`{"users":[{"name":"ann"},{"name":"bob"}]}`)

	var got []string
	src, err := JSON(doc, "$.users", func(v gjson.Result, key string) error {
		got = append(got, key+"="+v.Get("name").String())
		return nil
	})
	require.NoError(t, err)
	drain(t, src)

	assert.Equal(t, []string{"0=ann", "1=bob"}, got)
}

func TestJSON_ObjectDocumentOrder(t *testing.T) {
	doc := []byte(`{"c":3,"a":1,"b":2}`)

	var keys []string
	src, err := JSON(doc, "", func(_ gjson.Result, key string) error {
		keys = append(keys, key)
		return nil
	})
	require.NoError(t, err)
	drain(t, src)

	assert.Equal(t, []string{"c", "a", "b"}, keys)
}

func TestJSON_MissingAndScalar(t *testing.T) {
	doc := []byte(`{"n":1}`)
	for _, path := range []string{"missing", "n"} {
		src, err := JSON(doc, path, func(gjson.Result, string) error {
			t.Fatalf("unexpected visit for %q", path)
			return nil
		})
		require.NoError(t, err)
		assert.Empty(t, drain(t, src))
	}
}

func TestJSON_Invalid(t *testing.T) {
	_, err := JSON([]byte(`{"broken":`), "", nil)
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestFunc(t *testing.T) {
	n := 0
	src := Func(func() (Step, error) {
		if n == 2 {
			return Step{Done: true}, nil
		}
		n++
		return Step{Value: n}, nil
	})
	assert.Equal(t, []any{1, 2}, drain(t, src))
}

package source

import (
	"cmp"
	"maps"
	"slices"
)

// Indexed is an ordered collection that may have holes.
//
// At reports false for indices that hold no value; those indices are
// skipped during traversal.
type Indexed[T any] interface {
	Len() int
	At(i int) (T, bool)
}

// Sparse is a slice whose nil entries are holes.
type Sparse[T any] []*T

// Len returns the slice length, holes included.
func (s Sparse[T]) Len() int { return len(s) }

// At returns the value at i, or false if i is a hole or out of range.
func (s Sparse[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(s) || s[i] == nil {
		return zero, false
	}
	return *s[i], true
}

// dense wraps a plain slice; every index holds a value.
type dense[T any] []T

func (d dense[T]) Len() int { return len(d) }

func (d dense[T]) At(i int) (T, bool) { return d[i], true }

// collection walks an Indexed in ascending index order.
type collection[T any] struct {
	items Indexed[T]
	fn    func(v T, i int) error
	index int
}

// Slice visits every element of items in ascending index order.
func Slice[T any](items []T, fn func(v T, i int) error) Source {
	return Collection[T](dense[T](items), fn)
}

// Collection visits the elements of c in ascending index order, skipping
// holes. Len is re-read on every step, so elements appended during the
// traversal are visited.
func Collection[T any](c Indexed[T], fn func(v T, i int) error) Source {
	return &collection[T]{items: c, fn: fn}
}

func (c *collection[T]) Advance() (Step, error) {
	for {
		if c.index >= c.items.Len() {
			return exhausted, nil
		}
		i := c.index
		c.index++

		v, ok := c.items.At(i)
		if !ok {
			continue
		}
		return settle(v, c.fn(v, i))
	}
}

// keyed walks a key list captured once at creation.
type keyed[K comparable, V any] struct {
	keys   []K
	lookup func(K) (V, bool)
	fn     func(v V, k K) error
	index  int
}

// Keyed visits keys in the given order, resolving each value through lookup
// at visit time. The key list is copied, so later changes to the caller's
// slice do not affect the traversal. Keys for which lookup reports false are
// skipped.
func Keyed[K comparable, V any](keys []K, lookup func(K) (V, bool), fn func(v V, k K) error) Source {
	return &keyed[K, V]{
		keys:   slices.Clone(keys),
		lookup: lookup,
		fn:     fn,
	}
}

func (k *keyed[K, V]) Advance() (Step, error) {
	for k.index < len(k.keys) {
		key := k.keys[k.index]
		k.index++

		v, ok := k.lookup(key)
		if !ok {
			continue
		}
		return settle(v, k.fn(v, key))
	}
	return exhausted, nil
}

// Map visits the entries of m in ascending key order. The key set is
// captured when Map is called: keys added afterwards are not visited and keys
// deleted afterwards are skipped. Values are read at visit time.
func Map[K cmp.Ordered, V any](m map[K]V, fn func(v V, k K) error) Source {
	keys := slices.Sorted(maps.Keys(m))
	return &keyed[K, V]{
		keys: keys,
		lookup: func(k K) (V, bool) {
			v, ok := m[k]
			return v, ok
		},
		fn: fn,
	}
}

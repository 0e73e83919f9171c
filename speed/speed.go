// Package speed defines the named interval budgets an executor burst may
// spend before it considers yielding to the host.
//
// Each profile pairs an interval with a nominal rest delay. The interval
// drives the executor's cutback decision; the delay is only applied when
// pacing is enabled.
//
// The normal profile (5ms) is the threshold between two regimes: below it a
// burst always cuts back once its interval is spent, at or above it the
// executor gambles on continuing.
package speed

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrUnknown is returned by Parse for labels that are neither known names
// nor numbers.
var ErrUnknown = errors.New("unknown speed")

// Profile is a named interval budget.
type Profile struct {
	// Name is the label the profile was resolved from. Numeric speeds carry
	// the text they were parsed from.
	Name string

	// Interval is the time a burst may run before a cutback is considered.
	// A negative interval means every step is followed by a cutback check.
	Interval time.Duration

	// Delay is the nominal rest between bursts, used as a floor when
	// pacing is enabled.
	Delay time.Duration
}

// Defensive reports whether the profile is in the always-cut-back regime.
func (p Profile) Defensive() bool {
	return p.Interval < Normal.Interval
}

// String returns the profile as "name (interval)".
func (p Profile) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Interval)
}

// Presets.
var (
	Limp   = Profile{Name: "limp", Interval: -1 * time.Millisecond, Delay: 1000 * time.Millisecond}
	Doze   = Profile{Name: "doze", Interval: 0, Delay: 100 * time.Millisecond}
	Slow   = Profile{Name: "slow", Interval: 2 * time.Millisecond, Delay: 13 * time.Millisecond}
	Normal = Profile{Name: "normal", Interval: 5 * time.Millisecond}
	Fast   = Profile{Name: "fast", Interval: 12 * time.Millisecond}
	Rapid  = Profile{Name: "rapid", Interval: 36 * time.Millisecond}
	Ninja  = Profile{Name: "ninja", Interval: 60 * time.Millisecond}
)

var presets = []Profile{Limp, Doze, Slow, Normal, Fast, Rapid, Ninja}

// Presets returns the built-in profiles from slowest to fastest.
func Presets() []Profile {
	out := make([]Profile, len(presets))
	copy(out, presets)
	return out
}

// Lookup returns the preset with the given name. Names are case-insensitive.
func Lookup(name string) (Profile, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// Table resolves speed labels against the presets plus any custom labels.
// A nil *Table resolves presets only.
type Table struct {
	custom map[string]Profile
}

// NewTable creates a table extending the presets with custom labels. Each
// custom entry maps a label to its interval; custom labels carry no delay.
// A custom label that matches a preset overrides the preset's interval.
func NewTable(custom map[string]time.Duration) *Table {
	t := &Table{custom: make(map[string]Profile, len(custom))}
	for name, interval := range custom {
		key := strings.ToLower(strings.TrimSpace(name))
		p := Profile{Name: key, Interval: interval}
		if preset, ok := Lookup(key); ok {
			p.Delay = preset.Delay
		}
		t.custom[key] = p
	}
	return t
}

// Profiles returns the presets followed by the custom labels in name
// order. Custom labels overriding a preset replace it in place.
func (t *Table) Profiles() []Profile {
	out := Presets()
	if t == nil {
		return out
	}

	var extra []Profile
	for name, p := range t.custom {
		replaced := false
		for i := range out {
			if out[i].Name == name {
				out[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			extra = append(extra, p)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Name < extra[j].Name })
	return append(out, extra...)
}

// Resolve maps s to a profile: a known label first, then a number of
// milliseconds, and otherwise the normal profile. It never fails.
func (t *Table) Resolve(s string) Profile {
	p, err := t.Parse(s)
	if err != nil {
		return Normal
	}
	return p
}

// Parse is the strict form of Resolve: it reports ErrUnknown instead of
// falling back to normal.
func (t *Table) Parse(s string) (Profile, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if t != nil {
		if p, ok := t.custom[key]; ok {
			return p, nil
		}
	}
	if p, ok := Lookup(key); ok {
		return p, nil
	}

	ms, err := strconv.ParseFloat(key, 64)
	if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknown, s)
	}
	return Profile{Name: key, Interval: Millis(ms)}, nil
}

// Resolve maps s against the presets only.
func Resolve(s string) Profile {
	var t *Table
	return t.Resolve(s)
}

// Millis converts a possibly fractional number of milliseconds to a
// Duration, saturating at the Duration range.
func Millis(ms float64) time.Duration {
	ns := ms * float64(time.Millisecond)
	switch {
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ns)
}

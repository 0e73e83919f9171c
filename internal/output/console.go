// Package output renders lazyiter command output for the console.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/lazyiter/metrics"
	"github.com/wesleyorama2/lazyiter/speed"
)

// Format is a report format.
type Format string

const (
	// FormatText is the default human-readable text format
	FormatText Format = "text"
	// FormatJSON outputs in JSON format
	FormatJSON Format = "json"
	// FormatYAML outputs in YAML format
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// Console writes step output, summaries and reports.
type Console struct {
	w       io.Writer
	scheme  *ColorScheme
	noColor bool
}

// NewConsole creates a console writing to w.
func NewConsole(w io.Writer, useColor bool) *Console {
	scheme := DefaultColorScheme()
	if !useColor {
		scheme = NoColorScheme()
	}
	return &Console{w: w, scheme: scheme, noColor: !useColor}
}

// Item prints one visited element as "key: value".
func (c *Console) Item(key, value string) {
	fmt.Fprintf(c.w, "%s: %s\n", c.scheme.Key.Sprint(key), c.scheme.Value.Sprint(value))
}

// Value prints one produced value.
func (c *Console) Value(value string, last bool) {
	line := c.scheme.Value.Sprint(value)
	if last {
		line += " " + c.scheme.Last.Sprint("(last)")
	}
	fmt.Fprintln(c.w, line)
}

// Done prints the completion summary.
func (c *Console) Done(steps int64, elapsed time.Duration, turns uint64) {
	fmt.Fprintf(c.w, "%s %s steps in %s over %s host turns\n",
		SuccessIcon(c.noColor),
		c.scheme.Highlight.Sprint(formatNumber(steps)),
		formatDurationShort(elapsed),
		formatNumber(int64(turns)),
	)
}

// Failed prints a run failure.
func (c *Console) Failed(err error) {
	fmt.Fprintf(c.w, "%s %s\n", ErrorIcon(c.noColor), c.scheme.Error.Sprint(err.Error()))
}

// Speeds prints the speed table, marking current.
func (c *Console) Speeds(profiles []speed.Profile, current string) error {
	tw := tabwriter.NewWriter(c.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SPEED\tINTERVAL\tDELAY\tREGIME\t")
	for _, p := range profiles {
		name := p.Name
		if p.Name == current {
			name = "*" + name
		}

		regime := c.scheme.Throughput.Sprint("throughput")
		if p.Defensive() {
			regime = c.scheme.Defensive.Sprint("defensive")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			c.scheme.Label.Sprint(name),
			formatInterval(p.Interval),
			formatInterval(p.Delay),
			regime,
		)
	}
	return tw.Flush()
}

// Report prints a burst statistics snapshot.
func (c *Console) Report(s metrics.Snapshot, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(c.w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(c.w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, c.scheme.Label.Sprint("Bursts:"))
	fmt.Fprintf(c.w, "  Total:     %s\n", formatNumber(s.Bursts))
	fmt.Fprintf(c.w, "  Steps:     %s\n", formatNumber(s.Steps))
	fmt.Fprintf(c.w, "  Asap:      %s\n", formatNumber(s.AsapResumes))
	fmt.Fprintf(c.w, "  Delayed:   %s\n", formatNumber(s.DelayedResumes))
	fmt.Fprintf(c.w, "  Completed: %s\n", formatNumber(s.Completed))
	fmt.Fprintln(c.w)

	c.distribution("Burst Length:", s.ElapsedMicros, func(v int64) string {
		return formatDurationShort(time.Duration(v) * time.Microsecond)
	})
	c.distribution("Steps per Burst:", s.StepsPerBurst, formatNumber)
	c.distribution("Rest Delay:", s.DelayMillis, func(v int64) string {
		return formatDurationShort(time.Duration(v) * time.Millisecond)
	})
	return nil
}

func (c *Console) distribution(title string, d metrics.Distribution, format func(int64) string) {
	fmt.Fprintln(c.w, c.scheme.Label.Sprint(title))
	if d.Count == 0 {
		fmt.Fprintln(c.w, c.scheme.Muted.Sprint("  (none)"))
		fmt.Fprintln(c.w)
		return
	}
	fmt.Fprintf(c.w, "  Min:  %s\n", format(d.Min))
	fmt.Fprintf(c.w, "  P50:  %s\n", format(d.P50))
	fmt.Fprintf(c.w, "  P90:  %s\n", format(d.P90))
	fmt.Fprintf(c.w, "  P99:  %s\n", format(d.P99))
	fmt.Fprintf(c.w, "  Max:  %s\n", format(d.Max))
	fmt.Fprintln(c.w)
}

// formatInterval formats a speed interval; negative intervals are shown
// as-is since limp relies on them.
func formatInterval(d time.Duration) string {
	if d == 0 {
		return "0ms"
	}
	if d < 0 {
		return "-" + formatDurationShort(-d)
	}
	return formatDurationShort(d)
}

// formatDurationShort formats a duration in a short format.
func formatDurationShort(d time.Duration) string {
	if d < time.Microsecond {
		return "0ms"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}

// formatNumber formats a number with thousands separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	offset := len(str) % 3
	if offset > 0 {
		result.WriteString(str[:offset])
	}
	for i := offset; i < len(str); i += 3 {
		if result.Len() > 0 {
			result.WriteString(",")
		}
		result.WriteString(str[i : i+3])
	}
	return result.String()
}

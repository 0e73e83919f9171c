package output

import (
	"github.com/fatih/color"
)

// ColorScheme defines the colors used for different elements in the output
type ColorScheme struct {
	Key        *color.Color
	Value      *color.Color
	Last       *color.Color
	Label      *color.Color
	Defensive  *color.Color
	Throughput *color.Color
	Muted      *color.Color
	Success    *color.Color
	Error      *color.Color
	Highlight  *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Key:        color.New(color.FgBlue),
		Value:      color.New(color.FgWhite),
		Last:       color.New(color.FgMagenta),
		Label:      color.New(color.FgCyan, color.Bold),
		Defensive:  color.New(color.FgYellow),
		Throughput: color.New(color.FgGreen),
		Muted:      color.New(color.FgHiBlack),
		Success:    color.New(color.FgGreen),
		Error:      color.New(color.FgRed),
		Highlight:  color.New(color.FgMagenta, color.Bold),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()

	for _, c := range []*color.Color{
		scheme.Key,
		scheme.Value,
		scheme.Last,
		scheme.Label,
		scheme.Defensive,
		scheme.Throughput,
		scheme.Muted,
		scheme.Success,
		scheme.Error,
		scheme.Highlight,
	} {
		c.DisableColor()
	}

	return scheme
}

// SuccessIcon returns a checkmark symbol with appropriate color
func SuccessIcon(noColor bool) string {
	if noColor {
		return "✓"
	}
	return color.New(color.FgGreen).Sprint("✓")
}

// ErrorIcon returns an X symbol with appropriate color
func ErrorIcon(noColor bool) string {
	if noColor {
		return "✗"
	}
	return color.New(color.FgRed).Sprint("✗")
}

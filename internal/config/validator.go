package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wesleyorama2/lazyiter/speed"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate checks the configuration for values the schema cannot express.
//
// Returns nil if valid, or a ValidationErrors containing all validation errors.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if c.RestBudget < 0 {
		errs.Add("restBudget", "must not be negative")
	}

	for name, ms := range c.Speeds {
		field := "speeds." + name
		label := strings.TrimSpace(name)
		switch {
		case label == "":
			errs.Add(field, "speed label must not be empty")
		case isNumber(label):
			errs.Add(field, "speed label must not be a number")
		}
		if math.IsNaN(ms) || math.IsInf(ms, 0) {
			errs.Add(field, "interval must be a finite number of milliseconds")
		}
	}

	if c.Speed != "" {
		if _, err := c.SpeedTable().Parse(string(c.Speed)); err != nil {
			errs.Add("speed", fmt.Sprintf("unknown speed %q (known: %s)", c.Speed, knownSpeeds(c.SpeedTable())))
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func knownSpeeds(t *speed.Table) string {
	var names []string
	for _, p := range t.Profiles() {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

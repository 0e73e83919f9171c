// Package config provides configuration loading and validation for the
// lazyiter command.
package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/wesleyorama2/lazyiter/executor"
	"github.com/wesleyorama2/lazyiter/speed"
)

// Config is the root configuration.
//
// Example YAML:
//
//	speed: fast
//	restBudget: 100ms
//	seed: 42
//	paced: false
//	speeds:
//	  turbo: 120
//	output:
//	  noColor: false
//	  report: true
type Config struct {
	// Speed is a speed label or a number of milliseconds (default: normal)
	Speed Speed `json:"speed,omitempty" yaml:"speed,omitempty"`

	// RestBudget caps the delay between bursts (default: 100ms)
	RestBudget Duration `json:"restBudget,omitempty" yaml:"restBudget,omitempty"`

	// Seed makes cutback and delay decisions reproducible when set
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	// Paced applies each speed's nominal delay as a minimum rest
	Paced bool `json:"paced,omitempty" yaml:"paced,omitempty"`

	// Speeds defines custom speed labels as intervals in milliseconds
	Speeds map[string]float64 `json:"speeds,omitempty" yaml:"speeds,omitempty"`

	// Output controls console output
	Output OutputConfig `json:"output,omitempty" yaml:"output,omitempty"`
}

// OutputConfig controls console output.
type OutputConfig struct {
	// NoColor disables colored output
	NoColor bool `json:"noColor,omitempty" yaml:"noColor,omitempty"`

	// Report prints burst statistics after a run
	Report bool `json:"report,omitempty" yaml:"report,omitempty"`

	// Verbose enables debug logging
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Speed:      Speed(speed.Normal.Name),
		RestBudget: Duration(executor.DefaultRestBudget),
	}
}

// SpeedTable returns the presets extended with the custom speeds.
func (c *Config) SpeedTable() *speed.Table {
	custom := make(map[string]time.Duration, len(c.Speeds))
	for name, ms := range c.Speeds {
		custom[name] = speed.Millis(ms)
	}
	return speed.NewTable(custom)
}

// Profile resolves the configured speed against SpeedTable.
func (c *Config) Profile() speed.Profile {
	return c.SpeedTable().Resolve(string(c.Speed))
}

// ExecutorOptions returns the executor options the configuration implies.
func (c *Config) ExecutorOptions() []executor.Option {
	var opts []executor.Option
	if c.RestBudget > 0 {
		opts = append(opts, executor.WithRestBudget(time.Duration(c.RestBudget)))
	}
	if c.Seed != nil {
		opts = append(opts, executor.WithRand(executor.SeededRand(*c.Seed)))
	}
	return opts
}

// Speed is a speed label. In JSON it may also be written as a number.
type Speed string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Speed) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = Speed(str)
		return nil
	}

	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("speed must be a string or a number: %s", b)
	}
	*s = Speed(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// Duration is a time.Duration that can be unmarshaled from JSON/YAML strings.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	if s == "" || s == "null" {
		*d = 0
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	if s == "" {
		*d = 0
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// String returns the duration as a string.
func (d Duration) String() string {
	return time.Duration(d).String()
}

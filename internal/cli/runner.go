package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/lazyiter"
	"github.com/wesleyorama2/lazyiter/eventloop"
	"github.com/wesleyorama2/lazyiter/executor"
	"github.com/wesleyorama2/lazyiter/internal/config"
	"github.com/wesleyorama2/lazyiter/internal/output"
	"github.com/wesleyorama2/lazyiter/metrics"
	"github.com/wesleyorama2/lazyiter/yield"
)

// settings is the configuration file merged with command-line flags.
type settings struct {
	config  *config.Config
	format  output.Format
	console *output.Console
	logger  *slog.Logger
}

// loadSettings reads --config, if any, and applies explicitly set flags
// on top of it.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Flags()

	cfg := config.DefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
		cfg = loaded
	}

	if flags.Changed("speed") {
		s, _ := flags.GetString("speed")
		cfg.Speed = config.Speed(s)
	}
	if flags.Changed("seed") {
		seed, _ := flags.GetUint64("seed")
		cfg.Seed = &seed
	}
	if flags.Changed("rest") {
		rest, _ := flags.GetDuration("rest")
		if rest <= 0 {
			return nil, fmt.Errorf("--rest must be positive, got %s", rest)
		}
		cfg.RestBudget = config.Duration(rest)
	}
	if flags.Changed("paced") {
		cfg.Paced, _ = flags.GetBool("paced")
	}
	if flags.Changed("report") {
		cfg.Output.Report, _ = flags.GetBool("report")
	}
	if flags.Changed("no-color") {
		cfg.Output.NoColor, _ = flags.GetBool("no-color")
	}
	if flags.Changed("verbose") {
		cfg.Output.Verbose, _ = flags.GetBool("verbose")
	}

	formatName, _ := flags.GetString("format")
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if _, err := cfg.SpeedTable().Parse(string(cfg.Speed)); err != nil && cfg.Speed != "" {
		logger.Warn("unknown speed, using normal", "speed", string(cfg.Speed))
	}

	out := cmd.OutOrStdout()
	return &settings{
		config:  cfg,
		format:  format,
		console: output.NewConsole(out, output.UseColor(out, cfg.Output.NoColor)),
		logger:  logger,
	}, nil
}

// iterator builds an iterator bound to loop with the merged settings and
// an observer for burst statistics.
func (s *settings) iterator(loop *eventloop.Loop, observer executor.Observer) *lazyiter.Iterator {
	opts := append(s.config.ExecutorOptions(),
		executor.WithLogger(s.logger),
		executor.WithObserver(observer),
	)
	return lazyiter.New(yield.ForHost(loop),
		lazyiter.WithSpeedTable(s.config.SpeedTable()),
		lazyiter.WithSpeed(string(s.config.Speed)),
		lazyiter.WithPacing(s.config.Paced),
		lazyiter.WithExecutorOptions(opts...),
	)
}

// run starts one loop through start and drives the event loop until it
// completes, then prints the summary and, if requested, the report.
func (s *settings) run(ctx context.Context, start func(it *lazyiter.Iterator, done func()) error) error {
	loop := eventloop.New(eventloop.WithLogger(s.logger))
	recorder := metrics.NewRecorder()
	it := s.iterator(loop, recorder)

	s.logger.Debug("starting loop", "speed", it.Profile().String(), "paced", s.config.Paced)

	began := time.Now()
	completed := false
	if err := start(it, func() { completed = true }); err != nil {
		return err
	}

	if err := loop.Run(ctx); err != nil {
		s.console.Failed(err)
		return err
	}
	if !completed {
		return fmt.Errorf("loop ended before completion")
	}

	snap := recorder.Snapshot()
	s.console.Done(snap.Steps, time.Since(began), loop.Turns())
	if s.config.Output.Report {
		return s.console.Report(snap, s.format)
	}
	return nil
}

// busyWait spins for d to simulate per-step work.
func busyWait(d time.Duration) {
	if d <= 0 {
		return
	}
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

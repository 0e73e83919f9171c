package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// NewRootCmd builds the lazyiter command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "lazyiter",
		Short:   "Run loops in cooperative, time-sliced bursts",
		Version: version,
		Long: `lazyiter drives loops over JSON documents, numeric ranges and counters
on a single-threaded event loop. Each loop runs in short bursts and yields
between them, so the loop never monopolizes the host.

The speed decides how long a burst may run before it considers yielding:
limp, doze, slow, normal, fast, rapid, ninja, or a number of milliseconds.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "Configuration file (YAML or JSON)")
	flags.StringP("speed", "s", "", "Speed label or interval in milliseconds (default normal)")
	flags.Uint64("seed", 0, "Seed for reproducible cutback and delay decisions")
	flags.Duration("rest", 0, "Upper bound for the delay between bursts (default 100ms)")
	flags.Bool("paced", false, "Apply each speed's nominal delay as a minimum rest")
	flags.Bool("report", false, "Print burst statistics after the run")
	flags.String("format", "text", "Report format: text, json or yaml")
	flags.Bool("no-color", false, "Disable colored output")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	root.AddCommand(newForEachCmd())
	root.AddCommand(newRepeatCmd())
	root.AddCommand(newForeverCmd())
	root.AddCommand(newSpeedsCmd())

	return root
}

// Execute runs the root command. Interrupts cancel the running loop.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}

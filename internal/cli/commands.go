package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/lazyiter"
	"github.com/wesleyorama2/lazyiter/source"
)

func newForEachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "foreach [file]",
		Short: "Visit the elements of a JSON array or object",
		Long: `Visit each element of the JSON array or object found at --path and print
it as "key: value". Arrays are keyed by index, objects by member name in
document order. The document is read from file, or from stdin when no file
is given.

  lazyiter foreach users.json --path data.users --speed fast`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("path")
			work, _ := cmd.Flags().GetDuration("work")

			doc, err := readDocument(cmd, args)
			if err != nil {
				return err
			}

			return s.run(cmd.Context(), func(it *lazyiter.Iterator, done func()) error {
				return lazyiter.ForEachJSON(it, doc, path, func(v gjson.Result, key string) error {
					busyWait(work)
					s.console.Item(key, v.String())
					return nil
				}, done)
			})
		},
	}
	cmd.Flags().StringP("path", "p", "", "Path of the array or object to visit (gjson syntax; \"$.\" prefix accepted)")
	cmd.Flags().Duration("work", 0, "Busy-wait this long in every step")
	return cmd
}

func readDocument(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return data, nil
}

func newRepeatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repeat <range>",
		Short: "Walk a numeric range",
		Long: `Walk a numeric range and print each value; the final value is marked
"(last)". Ranges are written as:

  10                     0 through 9
  0:30:5                 begin:end:step
  0:30                   begin:end, step 1
  begin=0,end=30,step=5  named fields (start and stop are aliases)

Parts that are not numbers fall back to begin 0, end 0 and step 1. A step
that is zero or negative walks nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			work, _ := cmd.Flags().GetDuration("work")

			bounds := source.ParseRange(args[0])
			return s.run(cmd.Context(), func(it *lazyiter.Iterator, done func()) error {
				return lazyiter.RepeatRange(it, bounds, func(i float64, last bool, _ *source.RangeState[float64]) (any, error) {
					busyWait(work)
					s.console.Value(strconv.FormatFloat(i, 'f', -1, 64), last)
					return nil, nil
				}, done)
			})
		},
	}
	cmd.Flags().Duration("work", 0, "Busy-wait this long in every step")
	return cmd
}

func newForeverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forever",
		Short: "Count upwards until a limit stops the loop",
		Long: `Count 0, 1, 2, ... on an unbounded counter. The step stops the loop when
the count reaches --until, so the values 0 through until-1 are printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			until, _ := cmd.Flags().GetInt("until")
			work, _ := cmd.Flags().GetDuration("work")
			if until < 0 {
				return fmt.Errorf("--until must not be negative, got %d", until)
			}

			return s.run(cmd.Context(), func(it *lazyiter.Iterator, done func()) error {
				return lazyiter.ForEver(it, func(i int) error {
					if i >= until {
						return lazyiter.ErrStop
					}
					busyWait(work)
					s.console.Value(strconv.Itoa(i), false)
					return nil
				}, done)
			})
		},
	}
	cmd.Flags().IntP("until", "n", 10, "Stop when the count reaches this value")
	cmd.Flags().Duration("work", 0, "Busy-wait this long in every step")
	return cmd
}

func newSpeedsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "speeds",
		Short: "List the available speeds",
		Long: `List the preset speeds and any custom speeds from the configuration file.
Intervals below normal (5ms) are defensive: a burst always yields once its
interval is spent. Faster speeds are throughput-seeking: the burst may keep
going depending on how far it overshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			table := s.config.SpeedTable()
			current := table.Resolve(string(s.config.Speed))
			return s.console.Speeds(table.Profiles(), current.Name)
		},
	}
}

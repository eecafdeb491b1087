package cmd

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/ta/journal"
	"github.com/rustyeddy/ta/pkg/id"
)

func newRunsCmd(rc *rootConfig) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Query journaled calculation runs",
		Long: `Query runs recorded by "ta calc --db".

Subcommands:
  list  - List every run, oldest first
  show  - Print the outputs of one run as CSV

Examples:
  ta runs list --db runs.sqlite
  ta runs show 01HV3K9Z4Q8X7W2M5N6P0R1S2T --db runs.sqlite`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "./ta.sqlite", "path to SQLite journal DB")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List journaled runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.NewSQLite(dbPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer j.Close()

			runs, err := j.ListRuns()
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tCREATED\tSOURCE\tBARS\tINDICATORS")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					r.RunID, r.Created.UTC().Format(time.RFC3339), r.Source, r.Bars, strings.Join(r.Indicators, ","))
			}
			return tw.Flush()
		},
	}

	var only []string
	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the outputs of a run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := args[0]
			if _, err := id.Time(runID); err != nil {
				rc.logger.Warn().Err(err).Msg("not a generated run id")
			}

			j, err := journal.NewSQLite(dbPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer j.Close()

			run, err := j.GetRun(runID)
			if err != nil {
				return err
			}

			names := run.Indicators
			if len(only) > 0 {
				names, err = pick(run.Indicators, only)
				if err != nil {
					return err
				}
			}
			cols := make([]journal.Column, 0, len(names))
			for _, name := range names {
				out, err := j.LoadOutput(runID, name)
				if err != nil {
					return err
				}
				cols = append(cols, journal.Column{Indicator: name, Output: out})
			}
			return journal.WriteCSV(cmd.OutOrStdout(), cols)
		},
	}
	showCmd.Flags().StringArrayVarP(&only, "indicator", "i", nil, "only these indicators (repeatable)")

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}

// pick resolves requested names against the labels recorded for a run,
// ignoring case.
func pick(recorded, want []string) ([]string, error) {
	out := make([]string, 0, len(want))
	for _, w := range want {
		i := slices.IndexFunc(recorded, func(r string) bool { return strings.EqualFold(r, w) })
		if i < 0 {
			return nil, fmt.Errorf("indicator %q not in run (have %s): %w", w, strings.Join(recorded, ","), journal.ErrNotFound)
		}
		out = append(out, recorded[i])
	}
	return out, nil
}

package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/ta/indicators"
	"github.com/rustyeddy/ta/market"
	"github.com/rustyeddy/ta/registry"
)

func newListCmd(rc *rootConfig) *cobra.Command {
	var (
		tags    []string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the available indicators",
		Long: `List prints every indicator with its required candle fields.

Filter by classification tag with --tag group=value; repeated tags must
all match.

Examples:
  ta list
  ta list --tag use_case=volatility_measurement
  ta list --tag data_input=price_volume --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			want := make([]indicators.Tag, 0, len(tags))
			for _, s := range tags {
				t, err := indicators.ParseTag(s)
				if err != nil {
					return err
				}
				want = append(want, t)
			}

			reg, err := registry.NewDefault(registry.WithLogger(&rc.logger))
			if err != nil {
				return err
			}
			found := reg.ByTag(want...)
			if len(found) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no indicators match")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDESCRIPTION\tFIELDS")
			for _, ind := range found {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", ind.ShortName(), ind.Name(), fieldNames(ind.RequiredFields()))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if verbose {
				for _, ind := range found {
					describe(cmd, ind)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "only indicators carrying group=value (repeatable)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also print tags, defaults and rules")
	return cmd
}

func fieldNames(fields []market.BarField) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return strings.Join(names, ",")
}

func describe(cmd *cobra.Command, ind indicators.Indicator) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", ind.ShortName())
	fmt.Fprintf(out, "  tags:     %s\n", ind.Tags())

	d, ok := ind.(indicators.Describer)
	if !ok {
		return
	}
	fmt.Fprintf(out, "  defaults: %s\n", d.Defaults())

	rules := d.Rules()
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.String()
	}
	if len(names) == 0 {
		names = []string{"none"}
	}
	fmt.Fprintf(out, "  rules:    %s\n", strings.Join(names, ", "))
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"inacovid/internal/gather"
	"inacovid/internal/gather/covid"
)

var offset int

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Collect the national daily series",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runOperations(cmd, func(a *app) []gather.Gatherer {
			return []gather.Gatherer{covid.NewDaily(a.deps)}
		})
	},
}

var cumulativeCmd = &cobra.Command{
	Use:   "cumulative",
	Short: "Collect the national running totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runOperations(cmd, func(a *app) []gather.Gatherer {
			return []gather.Gatherer{covid.NewCumulative(a.deps, offset)}
		})
	},
}

var provinceCmd = &cobra.Command{
	Use:   "province",
	Short: "Collect the per-province breakdown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runOperations(cmd, func(a *app) []gather.Gatherer {
			return []gather.Gatherer{covid.NewProvince(a.deps)}
		})
	},
}

func init() {
	cumulativeCmd.Flags().IntVar(&offset, "offset", 0, "reporting day relative to today")
	rootCmd.AddCommand(dailyCmd, cumulativeCmd, provinceCmd)
}

// runOperations wires the app, runs the selected operations in order and
// prints their status lines to stdout when all of them succeed.
func runOperations(cmd *cobra.Command, pick func(*app) []gather.Gatherer) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfgPath, logLevel)
	if err != nil {
		return err
	}
	defer a.Close()

	// Status lines are only reported once every selected operation succeeded.
	statuses, err := gather.RunAll(ctx, pick(a)...)
	if err != nil {
		return err
	}
	for _, s := range statuses {
		fmt.Fprintln(cmd.OutOrStdout(), s)
	}
	a.log.Info("collection run finished", "operations", len(statuses))
	return nil
}

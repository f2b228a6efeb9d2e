package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"inacovid/internal/gather"
	"inacovid/internal/gather/covid"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

var (
	cfgPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "inacovid",
	Short: "Collect Indonesian COVID-19 statistics",
	Long: "Fetches the daily series, the cumulative totals and the per-province breakdown " +
		"from the public ArcGIS feature services, upserts them into Postgres and writes " +
		"a dated JSON snapshot per operation.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runOperations(cmd, func(a *app) []gather.Gatherer {
			return covid.All(a.deps)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to the JSON or YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	_ = rootCmd.MarkPersistentFlagRequired("config")
}

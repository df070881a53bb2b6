package cmd

import (
	"github.com/spf13/cobra"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark [period]",
	Short: "Show the benchmark close series",
	Long: `Fetch the configured benchmark (benchmark.symbol) over a period.
Without dedicated benchmark credentials the first account's are used.

Periods: 1D, 1W, 1M, 3M, 1Y, all (default 1M).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBenchmark,
}

var benchmarkSymbol string

func init() {
	rootCmd.AddCommand(benchmarkCmd)
	benchmarkCmd.Flags().StringVarP(&benchmarkSymbol, "symbol", "s", "", "override the configured symbol")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	period, err := periodArg(args)
	if err != nil {
		return err
	}
	a, err := loadApp()
	if err != nil {
		return err
	}
	if benchmarkSymbol != "" {
		a.settings.BenchmarkSymbol = benchmarkSymbol
	}

	bench, _ := a.agg.BuildBenchmark(cmd.Context(), a.settings.BenchmarkAccounts(), a.settings.BenchmarkSymbol, period, period.Timeframe())
	return a.render.Benchmark(cmd.OutOrStdout(), bench)
}

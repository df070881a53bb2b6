package cmd

import (
	"github.com/rustyeddy/portfolio/market"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [period]",
	Short: "Show equity history and performance per account",
	Long: `Fetch the equity history of every account and report P&L, volatility,
Sharpe ratio, max drawdown and beta against the benchmark.

Periods: 1D, 1W, 1M, 3M, 1Y, all (default 1M).

Examples:
  portfolio history
  portfolio history 1Y --format csv > history.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyNoBenchmark bool

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolVar(&historyNoBenchmark, "no-benchmark", false, "skip the benchmark overlay and beta")
}

func periodArg(args []string) (market.Period, error) {
	if len(args) == 0 {
		return market.Period1M, nil
	}
	return market.ParsePeriod(args[0])
}

func runHistory(cmd *cobra.Command, args []string) error {
	period, err := periodArg(args)
	if err != nil {
		return err
	}
	a, err := loadApp()
	if err != nil {
		return err
	}
	return a.history(cmd, period)
}

func (a *app) history(cmd *cobra.Command, period market.Period) error {
	if err := a.requireAccounts(); err != nil {
		return err
	}
	ctx := cmd.Context()
	tf := period.Timeframe()

	histories := a.agg.BuildAccountHistories(ctx, a.settings.Accounts, period)

	var bench *market.BenchmarkSeries
	if !historyNoBenchmark && a.settings.BenchmarkSymbol != "" {
		if b, ok := a.agg.BuildBenchmark(ctx, a.settings.BenchmarkAccounts(), a.settings.BenchmarkSymbol, period, tf); ok {
			a.agg.AttachBeta(histories, b, tf)
			bench = b
		}
	}
	return a.render.History(cmd.OutOrStdout(), period, histories, bench)
}

package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/portfolio/broker/memory"
	"github.com/rustyeddy/portfolio/config"
	"github.com/rustyeddy/portfolio/market"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the reports against built-in sample accounts",
	Long: `Generate three sample accounts (Growth, Income, Balanced), one
unreachable account and an SPY series, then run the summary, history and
risk reports against them. No credentials or network access are needed.

Examples:
  portfolio demo
  portfolio demo --days 250 --period 1Y
  portfolio demo --serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

var (
	demoDays   int
	demoPeriod string
	demoServe  bool
	demoAddr   string
)

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().IntVar(&demoDays, "days", 60, "trading days of sample history")
	demoCmd.Flags().StringVar(&demoPeriod, "period", "1M", "history period")
	demoCmd.Flags().BoolVar(&demoServe, "serve", false, "serve the sample data over HTTP instead of printing")
	demoCmd.Flags().StringVar(&demoAddr, "addr", ":8080", "listen address with --serve")
}

// demoConfig mirrors the sample market in a registry.
func demoConfig(creds []string) *config.Config {
	cfg := config.Default()
	cfg.Accounts = cfg.Accounts[:0]
	for _, name := range creds {
		cfg.Accounts = append(cfg.Accounts, config.Account{Name: name, KeyID: "demo", SecretKey: "demo"})
	}
	cfg.Benchmark.Symbol = memory.DemoSymbol
	cfg.MarketIndex.Symbol = memory.DemoSymbol
	cfg.Timezone = "UTC"
	return cfg
}

func runDemo(cmd *cobra.Command, _ []string) error {
	if demoDays < 2 {
		return fmt.Errorf("--days must be at least 2")
	}
	period, err := market.ParsePeriod(demoPeriod)
	if err != nil {
		return err
	}

	m, creds := memory.Demo(time.Now(), demoDays)
	names := make([]string, len(creds))
	for i, c := range creds {
		names[i] = c.Name
	}
	a, err := newApp(demoConfig(names), m)
	if err != nil {
		return err
	}

	if demoServe {
		return a.serve(cmd.Context(), demoAddr)
	}

	if err := a.summary(cmd); err != nil {
		return err
	}
	if err := a.history(cmd, period); err != nil {
		return err
	}
	return a.risk(cmd)
}

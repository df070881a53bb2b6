package cmd

import (
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show live balances and day P&L per account",
	Long: `Fetch the current state of every account: equity, cash, buying power,
open positions and the change since the previous close. When a market index
is configured its latest quote is listed last.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	return a.summary(cmd)
}

func (a *app) summary(cmd *cobra.Command) error {
	if err := a.requireAccounts(); err != nil {
		return err
	}
	sums := a.agg.BuildAccountSummaries(cmd.Context(), a.settings.Accounts, a.settings.MarketIndex)
	return a.render.Summaries(cmd.OutOrStdout(), sums)
}

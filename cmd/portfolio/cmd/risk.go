package cmd

import (
	"github.com/spf13/cobra"
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Show asset allocation and top movers across accounts",
	Long: `Combine the holdings of every account into allocation buckets
(Equity, Fixed Income, Real Estate, Commodities, Other, Cash) and rank all
positions by today's change. Accounts that cannot be read are left out.

With --format csv every position is listed.`,
	Args: cobra.NoArgs,
	RunE: runRisk,
}

func init() {
	rootCmd.AddCommand(riskCmd)
}

func runRisk(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	return a.risk(cmd)
}

func (a *app) risk(cmd *cobra.Command) error {
	if err := a.requireAccounts(); err != nil {
		return err
	}
	return a.render.Risk(cmd.OutOrStdout(), a.agg.BuildRiskRollup(cmd.Context(), a.settings.Accounts))
}

package cmd

import (
	"fmt"

	"github.com/rustyeddy/portfolio/config"
	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the configured accounts",
	Args:  cobra.NoArgs,
	RunE:  runAccounts,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFromFile(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	out := cmd.OutOrStdout()
	for _, a := range cfg.Accounts {
		c := a.Credentials()
		fmt.Fprintf(out, "%-20s %s\n", c.Name, c.BaseURL)
	}
	return nil
}

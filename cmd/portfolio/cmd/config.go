package cmd

import (
	"fmt"

	"github.com/rustyeddy/portfolio/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage the account registry.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  portfolio config init -o portfolio.yaml
  portfolio config validate -c portfolio.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Create a configuration file with one paper account whose keys are
read from $ALPACA_KEY_ID and $ALPACA_SECRET_KEY.

Example:
  portfolio config init -o portfolio.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check that the configuration file (--config) loads and is valid.

Example:
  portfolio config validate -c portfolio.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var configInitOutput string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "portfolio.yaml", "output config file path")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nExport your keys and run:")
	fmt.Fprintf(out, "  portfolio summary -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFromFile(cfgFile)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration valid: %s\n", cfgFile)
	fmt.Fprintf(out, "  Accounts: %d\n", len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		fmt.Fprintf(out, "    %s (%s)\n", a.Name, a.BaseURL)
	}
	if cfg.Benchmark.Symbol != "" {
		fmt.Fprintf(out, "  Benchmark: %s\n", cfg.Benchmark.Symbol)
	}
	if cfg.MarketIndex.Symbol != "" {
		fmt.Fprintf(out, "  Market index: %s\n", cfg.MarketIndex.Symbol)
	}
	fmt.Fprintf(out, "  Concurrency: %d\n", cfg.Concurrency)
	return nil
}

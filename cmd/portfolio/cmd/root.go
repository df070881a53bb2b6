package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Multi-account portfolio analytics",
	Long: `Portfolio tracks several brokerage accounts side by side.

It provides:
  - Equity history with volatility, Sharpe ratio, max drawdown and beta
  - Live account summaries with day P&L and a market index quote
  - Asset allocation and top movers across all accounts
  - A JSON API serving the same reports

Accounts are read from a YAML configuration file (see "portfolio config init").`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

var (
	cfgFile  string
	logLevel string
	logJSON  bool
	format   string
	currency string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "portfolio.yaml", "configuration file")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.BoolVar(&logJSON, "log-json", false, "write logs as JSON")
	pf.StringVarP(&format, "format", "f", "table", "output format (table, markdown, json, csv)")
	pf.StringVar(&currency, "currency", "USD", "currency code for amounts in tables")
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = newLogger(cmd.ErrOrStderr(), logJSON)
	return nil
}

func newLogger(w io.Writer, asJSON bool) zerolog.Logger {
	if !asJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: w != os.Stderr}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

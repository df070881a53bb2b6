package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/portfolio/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reports as a JSON API",
	Long: `Start an HTTP server exposing:

  GET /api/accounts
  GET /api/portfolio-history/{period}
  GET /api/benchmark/{period}
  GET /api/account-summary
  GET /api/risk
  GET /healthz

The server stops on SIGINT or SIGTERM after draining open requests.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

const shutdownGrace = 10 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr from the config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	return a.serve(cmd.Context(), addr)
}

func (a *app) serve(ctx context.Context, addr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.agg, a.settings, log.Logger)
	return srv.ListenAndServe(ctx, addr, shutdownGrace)
}

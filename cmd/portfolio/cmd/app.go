package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/portfolio/aggregate"
	"github.com/rustyeddy/portfolio/broker"
	"github.com/rustyeddy/portfolio/broker/alpaca"
	"github.com/rustyeddy/portfolio/config"
	"github.com/rustyeddy/portfolio/internal/server"
	"github.com/rustyeddy/portfolio/report"
)

// app bundles what every report command needs.
type app struct {
	cfg      *config.Config
	agg      *aggregate.Aggregator
	settings server.Settings
	render   report.Renderer
}

func loadApp() (*app, error) {
	cfg, err := config.LoadFromFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}

	conn := alpaca.Connector(
		alpaca.WithDataURL(cfg.DataURL),
		alpaca.WithFeed(cfg.Feed),
		alpaca.WithTimeout(timeout),
	)
	return newApp(cfg, conn)
}

func newApp(cfg *config.Config, conn broker.Connector) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	settings := server.Settings{
		Accounts:        cfg.Credentials(),
		BenchmarkSymbol: cfg.Benchmark.Symbol,
	}
	if bc, ok := cfg.BenchmarkCredentials(); ok && cfg.Benchmark.KeyID != "" {
		settings.BenchmarkCredentials = &bc
	}
	if cfg.MarketIndex.Symbol != "" {
		settings.MarketIndex = &aggregate.MarketIndex{
			Symbol:      cfg.MarketIndex.Symbol,
			Name:        cfg.MarketIndex.Name,
			Credentials: settings.BenchmarkCredentials,
		}
	}

	agg := aggregate.New(conn,
		aggregate.WithLocation(loc),
		aggregate.WithConcurrency(cfg.Concurrency),
		aggregate.WithLogger(log.Logger),
	)

	return &app{
		cfg:      cfg,
		agg:      agg,
		settings: settings,
		render:   report.Renderer{Format: f, Currency: currency, Location: loc},
	}, nil
}

func (a *app) requireAccounts() error {
	if len(a.settings.Accounts) == 0 {
		return fmt.Errorf("no accounts configured in %s", cfgFile)
	}
	return nil
}

package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rustyeddy/portfolio/aggregate"
	"github.com/rustyeddy/portfolio/market"
)

func f(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// WriteHistoryCSV writes one row per account sample. Failed accounts
// contribute no rows.
func WriteHistoryCSV(w io.Writer, histories []aggregate.AccountHistory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"account", "timestamp", "equity", "pnl", "pnl_pct"}); err != nil {
		return err
	}
	for _, h := range histories {
		for i, ts := range h.Timestamps {
			if err := cw.Write([]string{h.Name, ts, f(h.Equity[i]), f(h.PnL[i]), f(h.PnLPct[i])}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes one row per summary, the market entry included.
func WriteSummaryCSV(w io.Writer, summaries []aggregate.AccountSummary) error {
	cw := csv.NewWriter(w)
	err := cw.Write([]string{"name", "type", "equity", "cash", "buying_power", "portfolio_value",
		"positions_count", "day_profit_loss", "day_profit_loss_pct", "error"})
	if err != nil {
		return err
	}
	for _, s := range summaries {
		err := cw.Write([]string{
			s.Name,
			s.Type,
			f(s.Equity),
			f(s.Cash),
			f(s.BuyingPower),
			f(s.PortfolioValue),
			strconv.Itoa(s.PositionsCount),
			f(s.DayProfitLoss),
			f(s.DayProfitLossPct),
			s.Error,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePositionsCSV writes every position of a risk rollup.
func WritePositionsCSV(w io.Writer, positions []market.Position) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"account", "symbol", "market_value", "unrealized_pl_pct", "change_today_pct"}); err != nil {
		return err
	}
	for _, p := range positions {
		if err := cw.Write([]string{p.Account, p.Symbol, f(p.MarketValue), f(p.UnrealizedPLPct), f(p.ChangeTodayPct)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBenchmarkCSV writes the close series with RFC 3339 timestamps.
func WriteBenchmarkCSV(w io.Writer, bench *market.BenchmarkSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"symbol", "time", "close"}); err != nil {
		return err
	}
	for i := 0; i < bench.Len(); i++ {
		if err := cw.Write([]string{bench.Symbol, bench.Timestamps[i].Format(time.RFC3339), f(bench.Closes[i])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

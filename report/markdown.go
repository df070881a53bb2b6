package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/portfolio/aggregate"
	"github.com/rustyeddy/portfolio/analytics"
	"github.com/rustyeddy/portfolio/market"
)

// table builds a GitHub flavoured markdown table.
type table struct {
	header []string
	rows   [][]string
}

func (t *table) add(cells ...string) { t.rows = append(t.rows, cells) }

func (t *table) write(b *strings.Builder) {
	line := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(strings.ReplaceAll(c, "|", `\|`))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	line(t.header)
	sep := make([]string, len(t.header))
	for i := range sep {
		sep[i] = "---"
	}
	line(sep)
	for _, r := range t.rows {
		line(r)
	}
	b.WriteString("\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// HistoryMarkdown renders per-account performance for a period, with the
// benchmark return when one is available.
func HistoryMarkdown(period market.Period, histories []aggregate.AccountHistory, bench *market.BenchmarkSeries, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio history (%s)\n\n", period)

	t := table{header: []string{"Account", "Points", "Equity", "P&L", "Return", "Volatility", "Sharpe", "Max drawdown", "Beta", "Error"}}
	for _, h := range histories {
		if h.Error != "" {
			t.add(h.Name, "0", "-", "-", "-", "-", "-", "-", "-", h.Error)
			continue
		}
		pnl, ret := 0.0, 0.0
		if n := len(h.PnL); n > 0 {
			pnl, ret = h.PnL[n-1], h.PnLPct[n-1]
		}
		t.add(
			h.Name,
			fmt.Sprint(len(h.Equity)),
			Money(h.CurrentEquity, currency),
			Money(pnl, currency),
			Percent(ret),
			Percent(h.Volatility),
			Ratio(h.SharpeRatio),
			Percent(h.MaxDrawdown),
			Ratio(h.Beta),
			"-",
		)
	}
	t.write(&b)

	if bench.Len() > 0 {
		first, last := bench.Closes[0], bench.Closes[bench.Len()-1]
		ret := 0.0
		if first > 0 {
			ret = (last - first) / first * 100
		}
		fmt.Fprintf(&b, "Benchmark %s: %s over %d bars.\n", bench.Symbol, Percent(ret), bench.Len())
	}
	return b.String()
}

// SummaryMarkdown renders the live account summaries, the market entry
// last.
func SummaryMarkdown(summaries []aggregate.AccountSummary, currency string) string {
	var b strings.Builder
	b.WriteString("# Account summary\n\n")

	t := table{header: []string{"Account", "Equity", "Cash", "Buying power", "Positions", "Day P&L", "Day %", "Error"}}
	var total, dayPL float64
	for _, s := range summaries {
		switch {
		case s.IsMarket():
			t.add(fmt.Sprintf("%s (%s)", s.Name, s.Symbol), Ratio(s.Equity), "-", "-", "-",
				Ratio(s.DayProfitLoss), Percent(s.DayProfitLossPct), "-")
		case s.Error != "":
			t.add(s.Name, "-", "-", "-", "-", "-", "-", s.Error)
		default:
			total += s.Equity
			dayPL += s.DayProfitLoss
			t.add(s.Name, Money(s.Equity, currency), Money(s.Cash, currency), Money(s.BuyingPower, currency),
				fmt.Sprint(s.PositionsCount), Money(s.DayProfitLoss, currency), Percent(s.DayProfitLossPct), "-")
		}
	}
	t.write(&b)
	fmt.Fprintf(&b, "Total equity %s, day P&L %s.\n", Money(total, currency), Money(dayPL, currency))
	return b.String()
}

// RiskMarkdown renders the allocation buckets and the top movers.
func RiskMarkdown(r aggregate.RiskRollup, currency string) string {
	var b strings.Builder
	b.WriteString("# Risk\n\n## Allocation\n\n")

	total := r.Allocation.Total()
	alloc := table{header: []string{"Asset class", "Value", "Weight"}}
	for _, c := range analytics.AssetClasses {
		v := r.Allocation[c]
		w := 0.0
		if total > 0 {
			w = v / total * 100
		}
		alloc.add(string(c), Money(v, currency), decimalPct(w))
	}
	alloc.write(&b)

	movers := func(title string, ps []market.Position) {
		fmt.Fprintf(&b, "## %s\n\n", title)
		t := table{header: []string{"Symbol", "Account", "Value", "Today", "Unrealized"}}
		for _, p := range ps {
			t.add(p.Symbol, orDash(p.Account), Money(p.MarketValue, currency), Percent(p.ChangeTodayPct), Percent(p.UnrealizedPLPct))
		}
		t.write(&b)
	}
	movers("Top gainers", r.TopGainers)
	movers("Top losers", r.TopLosers)
	return b.String()
}

// BenchmarkMarkdown renders the close series of a benchmark. An absent
// benchmark renders a single line.
func BenchmarkMarkdown(bench *market.BenchmarkSeries, loc *time.Location) string {
	if bench.Len() == 0 {
		return "No benchmark data for the period.\n"
	}
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Benchmark %s\n\n", bench.Symbol)
	t := table{header: []string{"Time", "Close", "Change"}}
	for i, ts := range bench.Timestamps {
		change := "-"
		if i > 0 && bench.Closes[i-1] > 0 {
			change = Percent((bench.Closes[i] - bench.Closes[i-1]) / bench.Closes[i-1] * 100)
		}
		t.add(ts.In(loc).Format(aggregate.TimestampLayout), Ratio(bench.Closes[i]), change)
	}
	t.write(&b)
	return b.String()
}

func decimalPct(v float64) string {
	return strings.TrimPrefix(Percent(v), "+")
}

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/portfolio/aggregate"
	"github.com/rustyeddy/portfolio/analytics"
	"github.com/rustyeddy/portfolio/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func histories() []aggregate.AccountHistory {
	return []aggregate.AccountHistory{
		{
			Name:          "Growth",
			Timestamps:    []string{"2024-06-10 00:00", "2024-06-11 00:00"},
			Equity:        []float64{100, 110},
			PnL:           []float64{0, 10},
			PnLPct:        []float64{0, 10},
			CurrentEquity: 110,
			PerformanceMetrics: analytics.PerformanceMetrics{
				Volatility:  12.5,
				SharpeRatio: 1.25,
				MaxDrawdown: -3,
			},
			Beta: 0.9,
		},
		{
			Name:       "Broken",
			Timestamps: []string{},
			Equity:     []float64{},
			PnL:        []float64{},
			PnLPct:     []float64{},
			Error:      "fetch account [Broken]: unauthorized",
		},
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{1234.5, "USD", "$1,234.50"},
		{-12, "USD", "-$12.00"},
		{0.005, "USD", "$0.01"},
		{99, "NOPE", "$99.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Money(tt.amount, tt.currency))
	}
}

func TestPercentAndRatio(t *testing.T) {
	assert.Equal(t, "+1.23%", Percent(1.234))
	assert.Equal(t, "-0.50%", Percent(-0.5))
	assert.Equal(t, "0.00%", Percent(0))
	assert.Equal(t, "0.00%", Percent(0.001))
	assert.Equal(t, "1.25", Ratio(1.25))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteHistoryCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistoryCSV(&buf, histories()))

	want := "account,timestamp,equity,pnl,pnl_pct\n" +
		"Growth,2024-06-10 00:00,100,0,0\n" +
		"Growth,2024-06-11 00:00,110,10,10\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSummaryCSV(&buf, []aggregate.AccountSummary{
		{Name: "Growth", Equity: 110, PositionsCount: 3, DayProfitLoss: 1.5},
		{Name: "S&P 500", Type: aggregate.MarketEntryType, Symbol: "SPY", Equity: 505},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Growth,,110,0,0,0,3,1.5,0,", lines[1])
	assert.Equal(t, "S&P 500,market,505,0,0,0,0,0,0,", lines[2])
}

func TestWriteBenchmarkCSV(t *testing.T) {
	var buf bytes.Buffer
	bench := &market.BenchmarkSeries{
		Symbol:     "SPY",
		Timestamps: []time.Time{time.Date(2024, 6, 10, 4, 0, 0, 0, time.UTC)},
		Closes:     []float64{512.25},
	}
	require.NoError(t, WriteBenchmarkCSV(&buf, bench))
	assert.Equal(t, "symbol,time,close\nSPY,2024-06-10T04:00:00Z,512.25\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteBenchmarkCSV(&buf, nil))
	assert.Equal(t, "symbol,time,close\n", buf.String())
}

func TestHistoryMarkdown(t *testing.T) {
	bench := &market.BenchmarkSeries{
		Symbol:     "SPY",
		Timestamps: []time.Time{time.Now(), time.Now()},
		Closes:     []float64{100, 105},
	}
	md := HistoryMarkdown(market.Period1M, histories(), bench, "USD")

	assert.Contains(t, md, "# Portfolio history (1M)")
	assert.Contains(t, md, "| Growth | 2 | $110.00 | $10.00 | +10.00% | +12.50% | 1.25 | -3.00% | 0.90 | - |")
	assert.Contains(t, md, "fetch account [Broken]: unauthorized")
	assert.Contains(t, md, "Benchmark SPY: +5.00% over 2 bars.")

	md = HistoryMarkdown(market.Period1M, histories(), nil, "USD")
	assert.NotContains(t, md, "Benchmark")
}

func TestSummaryMarkdown(t *testing.T) {
	md := SummaryMarkdown([]aggregate.AccountSummary{
		{Name: "Growth", Equity: 1000, Cash: 100, BuyingPower: 200, PositionsCount: 2, DayProfitLoss: 10, DayProfitLossPct: 1},
		{Name: "Broken", Error: "boom"},
		{Name: "S&P 500", Type: aggregate.MarketEntryType, Symbol: "SPY", Equity: 505, DayProfitLoss: 5, DayProfitLossPct: 1},
	}, "USD")

	assert.Contains(t, md, "| Growth | $1,000.00 | $100.00 | $200.00 | 2 | $10.00 | +1.00% | - |")
	assert.Contains(t, md, "| Broken | - | - | - | - | - | - | boom |")
	assert.Contains(t, md, "| S&P 500 (SPY) | 505.00 |")
	assert.Contains(t, md, "Total equity $1,000.00, day P&L $10.00.")
}

func TestRiskMarkdown(t *testing.T) {
	alloc := analytics.NewAssetAllocation()
	alloc.AddCash(25)
	alloc.AddPosition("SPY", 75)
	spy := market.Position{Symbol: "SPY", Account: "Growth", MarketValue: 75, ChangeTodayPct: 1}

	md := RiskMarkdown(aggregate.RiskRollup{
		Allocation: alloc,
		Positions:  []market.Position{spy},
		TopGainers: []market.Position{spy},
		TopLosers:  []market.Position{spy},
	}, "USD")

	assert.Contains(t, md, "| Equity | $75.00 | 75.00% |")
	assert.Contains(t, md, "| Cash | $25.00 | 25.00% |")
	assert.Contains(t, md, "| Fixed Income | $0.00 | 0.00% |")
	assert.Contains(t, md, "## Top gainers")
	assert.Contains(t, md, "| SPY | Growth | $75.00 | +1.00% | 0.00% |")
}

func TestBenchmarkMarkdown(t *testing.T) {
	assert.Equal(t, "No benchmark data for the period.\n", BenchmarkMarkdown(nil, nil))

	md := BenchmarkMarkdown(&market.BenchmarkSeries{
		Symbol:     "SPY",
		Timestamps: []time.Time{time.Date(2024, 6, 10, 4, 0, 0, 0, time.UTC), time.Date(2024, 6, 11, 4, 0, 0, 0, time.UTC)},
		Closes:     []float64{100, 101},
	}, time.UTC)
	assert.Contains(t, md, "| 2024-06-10 04:00 | 100.00 | - |")
	assert.Contains(t, md, "| 2024-06-11 04:00 | 101.00 | +1.00% |")
}

func TestMarkdownEscapesPipes(t *testing.T) {
	var b strings.Builder
	tb := table{header: []string{"a"}}
	tb.add("x|y")
	tb.write(&b)
	assert.Contains(t, b.String(), `| x\|y |`)
}

func TestRenderer_JSON(t *testing.T) {
	var buf bytes.Buffer
	r := Renderer{Format: FormatJSON}
	require.NoError(t, r.History(&buf, market.Period1M, histories(), nil))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Growth", got[0]["name"])
	assert.Equal(t, 12.5, got[0]["volatility"])
	assert.Equal(t, 1.25, got[0]["sharpe_ratio"])
	assert.NotContains(t, got[0], "error")
	assert.Equal(t, "fetch account [Broken]: unauthorized", got[1]["error"])

	buf.Reset()
	require.NoError(t, r.Benchmark(&buf, nil))
	assert.Equal(t, "null\n", buf.String())
}

func TestRenderer_Markdown(t *testing.T) {
	var buf bytes.Buffer
	r := Renderer{Format: FormatMarkdown, Currency: "USD"}
	require.NoError(t, r.Summaries(&buf, []aggregate.AccountSummary{{Name: "Growth", Equity: 1}}))
	assert.True(t, strings.HasPrefix(buf.String(), "# Account summary"))
}

func TestRenderer_Table(t *testing.T) {
	var buf bytes.Buffer
	r := Renderer{Format: FormatTable, Currency: "USD", Width: 120}
	require.NoError(t, r.Benchmark(&buf, &market.BenchmarkSeries{
		Symbol:     "SPY",
		Timestamps: []time.Time{time.Date(2024, 6, 10, 4, 0, 0, 0, time.UTC)},
		Closes:     []float64{100},
	}))
	assert.Contains(t, buf.String(), "Benchmark SPY")
	assert.Contains(t, buf.String(), "100.00")
	assert.NotContains(t, buf.String(), "| --- |")
}

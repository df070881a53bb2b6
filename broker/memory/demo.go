package memory

import (
	"errors"
	"maps"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/rustyeddy/portfolio/broker"
	"github.com/rustyeddy/portfolio/market"
)

// DemoSymbol is the index symbol populated by Demo.
const DemoSymbol = "SPY"

type demoAccount struct {
	name      string
	start     float64
	drift     float64
	vol       float64
	cashShare float64
	holdings  map[string]float64 // symbol -> weight of invested value
}

var demoAccounts = []demoAccount{
	{"Growth", 100_000, 0.0009, 0.015, 0.05, map[string]float64{"QQQ": 0.5, "NVDA": 0.2, "AAPL": 0.2, "ARKK": 0.1}},
	{"Income", 50_000, 0.0002, 0.004, 0.10, map[string]float64{"BND": 0.5, "TLT": 0.2, "VNQ": 0.2, "SCHD": 0.1}},
	{"Balanced", 75_000, 0.0005, 0.008, 0.08, map[string]float64{"VTI": 0.5, "AGG": 0.3, "GLD": 0.2}},
}

// Demo builds a deterministic market with three healthy accounts and one
// account whose calls fail. Series end on the trading day before now.
func Demo(now time.Time, days int) (*Market, []broker.Credentials) {
	rng := rand.New(rand.NewSource(42))
	m := New()

	dates := tradingDays(now, days)
	creds := make([]broker.Credentials, 0, len(demoAccounts)+1)

	for _, da := range demoAccounts {
		curve := make(market.EquityCurve, len(dates))
		v := da.start
		for i, d := range dates {
			if i > 0 {
				v *= 1 + da.drift + da.vol*rng.NormFloat64()
			}
			curve[i] = market.EquityPoint{Time: d, Equity: round2(v)}
		}

		last := curve[len(curve)-1].Equity
		prev := last
		if len(curve) > 1 {
			prev = curve[len(curve)-2].Equity
		}
		invested := last * (1 - da.cashShare)

		positions := make([]market.Position, 0, len(da.holdings))
		for _, sym := range slices.Sorted(maps.Keys(da.holdings)) {
			w := da.holdings[sym]
			positions = append(positions, market.Position{
				Symbol:          sym,
				MarketValue:     round2(invested * w),
				UnrealizedPLPct: round2(20 * rng.NormFloat64()),
				ChangeTodayPct:  round2(2 * rng.NormFloat64()),
			})
		}

		m.SetAccount(da.name, Account{
			Curve: curve,
			Snapshot: market.AccountSnapshot{
				Equity:         last,
				Cash:           round2(last * da.cashShare),
				BuyingPower:    round2(2 * last * da.cashShare),
				PortfolioValue: last,
				LastEquity:     prev,
				PositionsCount: len(positions),
			},
			Positions: positions,
		})
		creds = append(creds, broker.Credentials{Name: da.name, KeyID: "demo", SecretKey: "demo"})
	}

	m.SetAccount("Unreachable", Account{Err: errors.New("connection refused")})
	creds = append(creds, broker.Credentials{Name: "Unreachable", KeyID: "demo", SecretKey: "demo"})

	bars := make([]market.Bar, len(dates))
	p := 470.0
	for i, d := range dates {
		if i > 0 {
			p *= 1 + 0.0004 + 0.009*rng.NormFloat64()
		}
		bars[i] = market.Bar{Time: d.Add(5 * time.Hour), Open: p, High: p * 1.004, Low: p * 0.996, Close: round2(p), Volume: 1e6}
	}
	m.SetBars(DemoSymbol, bars)
	m.SetLatestTrade(DemoSymbol, round2(p*1.003))

	return m, creds
}

// tradingDays returns n weekdays at midnight UTC ending before now.
func tradingDays(now time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for len(out) < n {
		d = d.AddDate(0, 0, -1)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		out = append(out, d)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

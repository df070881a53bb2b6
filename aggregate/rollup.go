package aggregate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rustyeddy/portfolio/analytics"
	"github.com/rustyeddy/portfolio/broker"
	"github.com/rustyeddy/portfolio/market"
)

// MarketEntryType tags the synthetic index quote among account summaries.
const MarketEntryType = "market"

// AccountSummary is the live state of one account, or of the market index
// when Type is MarketEntryType.
type AccountSummary struct {
	Name             string  `json:"name"`
	Type             string  `json:"type,omitempty"`
	Symbol           string  `json:"symbol,omitempty"`
	Equity           float64 `json:"equity"`
	Cash             float64 `json:"cash"`
	BuyingPower      float64 `json:"buying_power"`
	PortfolioValue   float64 `json:"portfolio_value"`
	PositionsCount   int     `json:"positions_count"`
	DayProfitLoss    float64 `json:"day_profit_loss"`
	DayProfitLossPct float64 `json:"day_profit_loss_pct"`
	Error            string  `json:"error,omitempty"`
}

// IsMarket reports whether s is the synthetic index entry.
func (s AccountSummary) IsMarket() bool { return s.Type == MarketEntryType }

// MarshalJSON writes a failed summary as just its name and error.
func (s AccountSummary) MarshalJSON() ([]byte, error) {
	type plain AccountSummary
	if s.Error == "" {
		return json.Marshal(plain(s))
	}
	return json.Marshal(struct {
		Name  string `json:"name"`
		Error string `json:"error"`
	}{s.Name, s.Error})
}

// MarketIndex selects the reference quote appended to the summaries.
// Credentials, when nil, are borrowed from the first account.
type MarketIndex struct {
	Symbol      string
	Name        string
	Credentials *broker.Credentials
}

// BuildAccountSummaries returns one summary per account in registry order,
// followed by the market entry for index when it is non-nil and its quote
// could be fetched.
func (a *Aggregator) BuildAccountSummaries(ctx context.Context, accounts []broker.Credentials, index *MarketIndex) []AccountSummary {
	out := make([]AccountSummary, len(accounts))
	a.forEach(ctx, len(accounts), func(ctx context.Context, i int) {
		out[i] = a.buildSummary(ctx, accounts[i])
	})

	if index != nil {
		if entry, ok := a.BuildMarketEntry(ctx, accounts, *index); ok {
			out = append(out, entry)
		}
	}
	return out
}

func (a *Aggregator) buildSummary(ctx context.Context, creds broker.Credentials) AccountSummary {
	fail := func(msg string, err error) AccountSummary {
		a.log(ctx).Warn().Err(err).Str("account", creds.Name).Msg(msg)
		return AccountSummary{Name: creds.Name, Error: err.Error()}
	}

	src, err := a.connector.Connect(creds)
	if err != nil {
		return fail("connect failed", err)
	}
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return fail("account fetch failed", err)
	}
	positions, err := src.Positions(ctx)
	if err != nil {
		return fail("positions fetch failed", err)
	}

	return AccountSummary{
		Name:             creds.Name,
		Equity:           snap.Equity,
		Cash:             snap.Cash,
		BuyingPower:      snap.BuyingPower,
		PortfolioValue:   snap.PortfolioValue,
		PositionsCount:   len(positions),
		DayProfitLoss:    snap.DayProfitLoss(),
		DayProfitLossPct: snap.DayProfitLossPct(),
	}
}

// BuildMarketEntry quotes the index: Equity holds the latest trade price and
// the day figures compare it with the last daily close before the current
// exchange session day, whatever the display location. Any failure yields
// ok == false.
func (a *Aggregator) BuildMarketEntry(ctx context.Context, accounts []broker.Credentials, index MarketIndex) (entry AccountSummary, ok bool) {
	if index.Symbol == "" {
		return AccountSummary{}, false
	}
	log := a.log(ctx).With().Str("symbol", index.Symbol).Logger()

	var creds broker.Credentials
	switch {
	case index.Credentials != nil:
		creds = *index.Credentials
	case len(accounts) > 0:
		creds = accounts[0]
	default:
		log.Debug().Msg("market entry skipped: no credentials")
		return AccountSummary{}, false
	}

	src, err := a.connector.Connect(creds)
	if err != nil {
		log.Debug().Err(err).Msg("market entry skipped")
		return AccountSummary{}, false
	}

	price, err := src.LatestTrade(ctx, index.Symbol)
	if err != nil {
		log.Warn().Err(err).Msg("latest trade fetch failed")
		return AccountSummary{}, false
	}

	now := a.now().In(market.Exchange)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, market.Exchange)
	bars, err := src.PriceBars(ctx, broker.BarsRequest{
		Symbol:    index.Symbol,
		Timeframe: market.Timeframe1D,
		Start:     today.AddDate(0, 0, -10),
		End:       now,
	})
	if err != nil {
		log.Warn().Err(err).Msg("previous close fetch failed")
		return AccountSummary{}, false
	}

	prev := 0.0
	for _, b := range bars {
		if b.Time.Before(today) {
			prev = b.Close
		}
	}
	if prev <= 0 {
		log.Debug().Msg("market entry skipped: no previous close")
		return AccountSummary{}, false
	}

	name := index.Name
	if name == "" {
		name = index.Symbol
	}
	change := price - prev
	return AccountSummary{
		Name:             name,
		Type:             MarketEntryType,
		Symbol:           index.Symbol,
		Equity:           price,
		DayProfitLoss:    change,
		DayProfitLossPct: change / prev * 100,
	}, true
}

// RiskRollup combines the holdings of every reachable account.
type RiskRollup struct {
	Allocation analytics.AssetAllocation `json:"allocation"`
	Positions  []market.Position         `json:"positions"`
	TopGainers []market.Position         `json:"top_gainers"`
	TopLosers  []market.Position         `json:"top_losers"`
}

type holdings struct {
	cash      float64
	positions []market.Position
	ok        bool
}

// BuildRiskRollup buckets cash and position values by asset class and ranks
// every position by intraday change. Accounts that cannot be read are left
// out of the totals.
func (a *Aggregator) BuildRiskRollup(ctx context.Context, accounts []broker.Credentials) RiskRollup {
	slots := make([]holdings, len(accounts))
	a.forEach(ctx, len(accounts), func(ctx context.Context, i int) {
		slots[i] = a.fetchHoldings(ctx, accounts[i])
	})

	r := RiskRollup{
		Allocation: analytics.NewAssetAllocation(),
		Positions:  []market.Position{},
	}
	for _, h := range slots {
		if !h.ok {
			continue
		}
		r.Allocation.AddCash(h.cash)
		for _, p := range h.positions {
			r.Allocation.AddPosition(p.Symbol, p.MarketValue)
		}
		r.Positions = append(r.Positions, h.positions...)
	}
	r.TopGainers, r.TopLosers = analytics.TopMovers(r.Positions, analytics.TopMoversLimit)
	return r
}

func (a *Aggregator) fetchHoldings(ctx context.Context, creds broker.Credentials) holdings {
	src, err := a.connector.Connect(creds)
	if err != nil {
		a.log(ctx).Debug().Err(err).Str("account", creds.Name).Msg("risk rollup: connect failed")
		return holdings{}
	}
	snap, err := src.Snapshot(ctx)
	if err != nil {
		a.log(ctx).Debug().Err(err).Str("account", creds.Name).Msg("risk rollup: account skipped")
		return holdings{}
	}
	positions, err := src.Positions(ctx)
	if err != nil {
		a.log(ctx).Debug().Err(err).Str("account", creds.Name).Msg("risk rollup: account skipped")
		return holdings{}
	}
	return holdings{cash: snap.Cash, positions: positions, ok: true}
}

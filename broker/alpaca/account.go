package alpaca

import (
	"context"
	"net/url"
	"time"

	"github.com/rustyeddy/portfolio/broker"
	"github.com/rustyeddy/portfolio/market"
	"github.com/shopspring/decimal"
)

// accountResponse holds the fields of GET /v2/account we use. Alpaca encodes
// amounts as decimal strings.
type accountResponse struct {
	Equity         decimal.Decimal `json:"equity"`
	Cash           decimal.Decimal `json:"cash"`
	BuyingPower    decimal.Decimal `json:"buying_power"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	LastEquity     decimal.Decimal `json:"last_equity"`
}

// Snapshot fetches the current account balances.
func (c *Client) Snapshot(ctx context.Context) (market.AccountSnapshot, error) {
	var ar accountResponse
	if err := c.get(ctx, c.baseURL, "/v2/account", nil, &ar); err != nil {
		return market.AccountSnapshot{}, broker.Wrap("fetch account", c.name, err)
	}

	return market.AccountSnapshot{
		Equity:         ar.Equity.InexactFloat64(),
		Cash:           ar.Cash.InexactFloat64(),
		BuyingPower:    ar.BuyingPower.InexactFloat64(),
		PortfolioValue: ar.PortfolioValue.InexactFloat64(),
		LastEquity:     ar.LastEquity.InexactFloat64(),
	}, nil
}

type historyResponse struct {
	Timestamp []int64    `json:"timestamp"`
	Equity    []*float64 `json:"equity"`
	Timeframe string     `json:"timeframe"`
}

// historyPeriod translates a period into Alpaca's <n><unit> syntax, where
// years are written with the A unit.
func historyPeriod(p market.Period) string {
	switch p {
	case market.Period1Y:
		return "1A"
	case market.PeriodAll:
		return "5A"
	default:
		return string(p)
	}
}

// historyTimeframe translates a timeframe for the portfolio history
// endpoint, which has no weekly resolution.
func historyTimeframe(tf market.Timeframe) string {
	if tf == market.Timeframe1W {
		return string(market.Timeframe1D)
	}
	return string(tf)
}

// EquityCurve fetches the account's equity history. Samples without an
// equity value and samples that do not advance in time are dropped.
func (c *Client) EquityCurve(ctx context.Context, period market.Period, tf market.Timeframe) (market.EquityCurve, error) {
	params := url.Values{}
	params.Set("period", historyPeriod(period))
	params.Set("timeframe", historyTimeframe(tf))

	var hr historyResponse
	if err := c.get(ctx, c.baseURL, "/v2/account/portfolio/history", params, &hr); err != nil {
		return nil, broker.Wrap("fetch portfolio history", c.name, err)
	}

	curve := make(market.EquityCurve, 0, len(hr.Timestamp))
	var last int64
	for i, ts := range hr.Timestamp {
		if i >= len(hr.Equity) || hr.Equity[i] == nil {
			continue
		}
		if len(curve) > 0 && ts <= last {
			continue
		}
		curve = append(curve, market.EquityPoint{Time: time.Unix(ts, 0).UTC(), Equity: *hr.Equity[i]})
		last = ts
	}
	return curve, nil
}

type positionResponse struct {
	Symbol         string          `json:"symbol"`
	MarketValue    decimal.Decimal `json:"market_value"`
	UnrealizedPLPC decimal.Decimal `json:"unrealized_plpc"`
	ChangeToday    decimal.Decimal `json:"change_today"`
}

var hundred = decimal.NewFromInt(100)

// Positions fetches the open positions of the account. Fractional
// percentages from the API are converted to percent.
func (c *Client) Positions(ctx context.Context) ([]market.Position, error) {
	var prs []positionResponse
	if err := c.get(ctx, c.baseURL, "/v2/positions", nil, &prs); err != nil {
		return nil, broker.Wrap("fetch positions", c.name, err)
	}

	out := make([]market.Position, 0, len(prs))
	for _, p := range prs {
		out = append(out, market.Position{
			Symbol:          p.Symbol,
			Account:         c.name,
			MarketValue:     p.MarketValue.InexactFloat64(),
			UnrealizedPLPct: p.UnrealizedPLPC.Mul(hundred).InexactFloat64(),
			ChangeTodayPct:  p.ChangeToday.Mul(hundred).InexactFloat64(),
		})
	}
	return out, nil
}

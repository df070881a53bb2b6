package aggregate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rustyeddy/portfolio/analytics"
	"github.com/rustyeddy/portfolio/broker"
	"github.com/rustyeddy/portfolio/market"
)

// TimestampLayout formats history timestamps for presentation.
const TimestampLayout = "2006-01-02 15:04"

// AccountHistory is the equity history and performance of one account over
// a period. On failure the series are empty, the metrics zero and Error set.
type AccountHistory struct {
	Name          string    `json:"name"`
	Timestamps    []string  `json:"timestamps"`
	Equity        []float64 `json:"equity"`
	PnL           []float64 `json:"pnl"`
	PnLPct        []float64 `json:"pnl_pct"`
	CurrentEquity float64   `json:"current_equity"`
	CurrentCash   float64   `json:"current_cash"`
	BuyingPower   float64   `json:"buying_power"`
	analytics.PerformanceMetrics
	Beta  float64 `json:"beta"`
	Error string  `json:"error,omitempty"`

	times []time.Time
}

// Times returns the unformatted timestamps of the history.
func (h *AccountHistory) Times() []time.Time { return h.times }

// MarshalJSON writes a failed history as its name, empty series, zero
// metrics and the error; account figures are left out.
func (h AccountHistory) MarshalJSON() ([]byte, error) {
	type plain AccountHistory
	if h.Error == "" {
		return json.Marshal(plain(h))
	}
	return json.Marshal(struct {
		Name       string    `json:"name"`
		Timestamps []string  `json:"timestamps"`
		Equity     []float64 `json:"equity"`
		PnL        []float64 `json:"pnl"`
		PnLPct     []float64 `json:"pnl_pct"`
		analytics.PerformanceMetrics
		Error string `json:"error"`
	}{
		Name:       h.Name,
		Timestamps: []string{},
		Equity:     []float64{},
		PnL:        []float64{},
		PnLPct:     []float64{},
		Error:      h.Error,
	})
}

func failedHistory(name string, err error) AccountHistory {
	return AccountHistory{
		Name:       name,
		Timestamps: []string{},
		Equity:     []float64{},
		PnL:        []float64{},
		PnLPct:     []float64{},
		Error:      err.Error(),
	}
}

// BuildAccountHistory fetches one account's equity curve and snapshot and
// derives its metrics. It never fails; fetch errors are reported in the
// record.
func (a *Aggregator) BuildAccountHistory(ctx context.Context, creds broker.Credentials, period market.Period, tf market.Timeframe) AccountHistory {
	src, err := a.connector.Connect(creds)
	if err != nil {
		a.log(ctx).Warn().Err(err).Str("account", creds.Name).Msg("connect failed")
		return failedHistory(creds.Name, err)
	}

	curve, err := src.EquityCurve(ctx, period, tf)
	if err != nil {
		a.log(ctx).Warn().Err(err).Str("account", creds.Name).Msg("history fetch failed")
		return failedHistory(creds.Name, err)
	}
	snap, err := src.Snapshot(ctx)
	if err != nil {
		a.log(ctx).Warn().Err(err).Str("account", creds.Name).Msg("account fetch failed")
		return failedHistory(creds.Name, err)
	}

	values := curve.Values()
	pnl, pnlPct := analytics.DerivePnL(values)

	stamps := make([]string, len(curve))
	for i, p := range curve {
		stamps[i] = p.Time.In(a.location).Format(TimestampLayout)
	}

	return AccountHistory{
		Name:               creds.Name,
		Timestamps:         stamps,
		Equity:             values,
		PnL:                pnl,
		PnLPct:             pnlPct,
		CurrentEquity:      snap.Equity,
		CurrentCash:        snap.Cash,
		BuyingPower:        snap.BuyingPower,
		PerformanceMetrics: analytics.CurveMetrics(curve),
		times:              curve.Times(),
	}
}

// BuildAccountHistories builds one history per account, in registry order,
// at the timeframe associated with the period.
func (a *Aggregator) BuildAccountHistories(ctx context.Context, accounts []broker.Credentials, period market.Period) []AccountHistory {
	tf := period.Timeframe()
	out := make([]AccountHistory, len(accounts))
	a.forEach(ctx, len(accounts), func(ctx context.Context, i int) {
		out[i] = a.BuildAccountHistory(ctx, accounts[i], period, tf)
	})
	return out
}

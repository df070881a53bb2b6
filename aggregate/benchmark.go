package aggregate

import (
	"context"
	"time"

	"github.com/rustyeddy/portfolio/analytics"
	"github.com/rustyeddy/portfolio/broker"
	"github.com/rustyeddy/portfolio/market"
)

// BenchmarkBarLimit caps the number of bars fetched for a benchmark.
const BenchmarkBarLimit = 10000

// BuildBenchmark fetches the close series of symbol over the period. The
// data source is reached with the first credentials in accounts, so callers
// either pass dedicated benchmark credentials first or borrow an account's.
// Any failure, missing credentials or an empty range yields ok == false:
// the benchmark is simply absent.
func (a *Aggregator) BuildBenchmark(ctx context.Context, accounts []broker.Credentials, symbol string, period market.Period, tf market.Timeframe) (series *market.BenchmarkSeries, ok bool) {
	if symbol == "" {
		return nil, false
	}
	if len(accounts) == 0 {
		a.log(ctx).Debug().Str("symbol", symbol).Msg("benchmark skipped: no credentials")
		return nil, false
	}

	src, err := a.connector.Connect(accounts[0])
	if err != nil {
		a.log(ctx).Debug().Err(err).Str("symbol", symbol).Msg("benchmark skipped")
		return nil, false
	}

	now := a.now()
	bars, err := src.PriceBars(ctx, broker.BarsRequest{
		Symbol:    symbol,
		Timeframe: tf,
		Start:     period.Start(now),
		End:       now,
		Limit:     BenchmarkBarLimit,
	})
	if err != nil {
		a.log(ctx).Warn().Err(err).Str("symbol", symbol).Msg("benchmark fetch failed")
		return nil, false
	}
	if len(bars) == 0 {
		a.log(ctx).Debug().Str("symbol", symbol).Msg("benchmark has no bars in range")
		return nil, false
	}

	series = &market.BenchmarkSeries{
		Symbol:     symbol,
		Timestamps: make([]time.Time, len(bars)),
		Closes:     make([]float64, len(bars)),
	}
	for i, b := range bars {
		series.Timestamps[i] = b.Time
		series.Closes[i] = b.Close
	}
	return series, true
}

// AttachBeta sets the beta of every successful history against the
// benchmark. Both sides are reduced to the last sample of each timeframe
// bucket and matched by bucket, so a daily history lines up with weekly
// bars. Histories with fewer than three matched buckets keep a beta of 0.
func (a *Aggregator) AttachBeta(histories []AccountHistory, bench *market.BenchmarkSeries, tf market.Timeframe) {
	if bench.Len() == 0 {
		return
	}

	closes := make(map[string]float64, bench.Len())
	for i, t := range bench.Timestamps {
		closes[tf.Bucket(t, a.location)] = bench.Closes[i]
	}

	for i := range histories {
		h := &histories[i]
		if h.Error != "" || len(h.times) != len(h.Equity) {
			continue
		}

		var port, ref []float64
		last := ""
		for j, t := range h.times {
			key := tf.Bucket(t, a.location)
			c, ok := closes[key]
			if !ok {
				continue
			}
			if key == last {
				port[len(port)-1] = h.Equity[j]
				continue
			}
			port = append(port, h.Equity[j])
			ref = append(ref, c)
			last = key
		}
		pr, br := analytics.PairedReturns(port, ref)
		h.Beta = analytics.ComputeBeta(pr, br)
	}
}

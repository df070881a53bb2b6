package analytics

import (
	"slices"

	"github.com/rustyeddy/portfolio/market"
)

// TopMoversLimit is the number of positions kept in each ranked list.
const TopMoversLimit = 5

// TopMovers ranks positions by intraday change. Gainers are ordered by
// descending change, losers by ascending change, each truncated to n. Equal
// changes keep their input order. The input slice is not modified.
func TopMovers(positions []market.Position, n int) (gainers, losers []market.Position) {
	gainers = slices.Clone(positions)
	slices.SortStableFunc(gainers, func(a, b market.Position) int {
		return cmpFloat(b.ChangeTodayPct, a.ChangeTodayPct)
	})

	losers = slices.Clone(positions)
	slices.SortStableFunc(losers, func(a, b market.Position) int {
		return cmpFloat(a.ChangeTodayPct, b.ChangeTodayPct)
	})

	if n < 0 {
		n = 0
	}
	if len(gainers) > n {
		gainers = gainers[:n]
		losers = losers[:n]
	}
	if gainers == nil {
		gainers = []market.Position{}
		losers = []market.Position{}
	}
	return gainers, losers
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

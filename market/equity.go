package market

import "time"

// EquityPoint is a single observation of an account's total value.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// EquityCurve is the chronological equity history of one account over one
// period. Timestamps are strictly increasing. Equity is expected to be
// non-negative but upstream data is not checked.
type EquityCurve []EquityPoint

// Values returns the equity column of the curve.
func (c EquityCurve) Values() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.Equity
	}
	return out
}

// Times returns the timestamp column of the curve.
func (c EquityCurve) Times() []time.Time {
	out := make([]time.Time, len(c))
	for i, p := range c {
		out[i] = p.Time
	}
	return out
}

// BenchmarkSeries is a reference price series fetched independently of any
// account. Timestamps and Closes always have the same length.
type BenchmarkSeries struct {
	Symbol     string      `json:"symbol"`
	Timestamps []time.Time `json:"timestamps"`
	Closes     []float64   `json:"closes"`
}

// Len returns the number of observations in the series.
func (b *BenchmarkSeries) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Closes)
}

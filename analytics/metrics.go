package analytics

import (
	"math"

	"github.com/rustyeddy/portfolio/market"
)

// TradingDaysPerYear annualizes per-sample statistics. It is applied whatever
// the sampling timeframe of the series, so intraday curves are annualized as
// if each sample were one trading day.
const TradingDaysPerYear = 252

// PerformanceMetrics summarizes the risk and return of an equity curve.
// Volatility and MaxDrawdown are percentages; MaxDrawdown is never positive.
type PerformanceMetrics struct {
	Volatility  float64 `json:"volatility"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// Returns converts a value series into period-over-period fractional
// changes. A step whose base value is zero, or whose result is not finite,
// is a gap in the data and is left out.
func Returns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 0; i+1 < len(values); i++ {
		if values[i] == 0 {
			continue
		}
		r := (values[i+1] - values[i]) / values[i]
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ComputeMetrics derives volatility, Sharpe ratio (zero risk-free rate) and
// maximum drawdown from a series of equity values. Fewer than two values, or
// a curve with no usable returns, yields all-zero metrics.
func ComputeMetrics(values []float64) PerformanceMetrics {
	if len(values) < 2 {
		return PerformanceMetrics{}
	}
	returns := Returns(values)
	if len(returns) == 0 {
		return PerformanceMetrics{}
	}

	annual := math.Sqrt(TradingDaysPerYear)
	sd := StdDev(returns)

	m := PerformanceMetrics{
		Volatility:  sd * annual * 100,
		MaxDrawdown: MaxDrawdown(returns),
	}
	if sd > 0 {
		m.SharpeRatio = Mean(returns) / sd * annual
	}
	return m
}

// CurveMetrics is ComputeMetrics over the equity column of a curve.
func CurveMetrics(c market.EquityCurve) PerformanceMetrics {
	return ComputeMetrics(c.Values())
}

// MaxDrawdown returns the deepest decline, in percent, of the compounded
// return series from its running peak. The result is 0 or negative.
func MaxDrawdown(returns []float64) float64 {
	cum := 1.0
	peak := math.Inf(-1)
	worst := 0.0
	for _, r := range returns {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		if peak == 0 {
			continue
		}
		if dd := (cum - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst * 100
}

// ComputeBeta measures the sensitivity of portfolio returns to benchmark
// returns as cov(p, b) / var(b). It is 0 when the series differ in length,
// hold fewer than two observations, or the benchmark has no variance.
func ComputeBeta(portfolio, benchmark []float64) float64 {
	if len(portfolio) != len(benchmark) {
		return 0
	}
	n := min(len(portfolio), len(benchmark))
	if n < 2 {
		return 0
	}
	p, b := portfolio[:n], benchmark[:n]

	v := Variance(b)
	if v == 0 {
		return 0
	}
	return Covariance(p, b) / v
}

// PairedReturns computes returns of two aligned value series together. A
// step is dropped from both outputs when it is a gap in either series, so the
// results stay aligned and equally long.
func PairedReturns(a, b []float64) (ra, rb []float64) {
	n := min(len(a), len(b))
	if n < 2 {
		return nil, nil
	}
	ra = make([]float64, 0, n-1)
	rb = make([]float64, 0, n-1)
	for i := 0; i+1 < n; i++ {
		if a[i] == 0 || b[i] == 0 {
			continue
		}
		x := (a[i+1] - a[i]) / a[i]
		y := (b[i+1] - b[i]) / b[i]
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		ra = append(ra, x)
		rb = append(rb, y)
	}
	return ra, rb
}

package market

import (
	"fmt"
	"strings"
	"time"
)

// Period is the lookback window requested for a history.
type Period string

const (
	Period1D  Period = "1D"
	Period1W  Period = "1W"
	Period1M  Period = "1M"
	Period3M  Period = "3M"
	Period1Y  Period = "1Y"
	PeriodAll Period = "all"
)

// Periods lists the supported periods in display order.
var Periods = []Period{Period1D, Period1W, Period1M, Period3M, Period1Y, PeriodAll}

// ParsePeriod accepts a period name case-insensitively.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	for _, p := range Periods {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Timeframe returns the bar granularity used for a period. Unknown periods
// fall back to daily bars.
func (p Period) Timeframe() Timeframe {
	switch p {
	case Period1D:
		return Timeframe15Min
	case Period1W:
		return Timeframe1H
	case Period1M, Period3M, Period1Y:
		return Timeframe1D
	case PeriodAll:
		return Timeframe1W
	default:
		return Timeframe1D
	}
}

// Start returns the absolute start of the period relative to now. Unknown
// periods and PeriodAll reach back five years.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case Period1D:
		return now.AddDate(0, 0, -1)
	case Period1W:
		return now.AddDate(0, 0, -7)
	case Period1M:
		return now.AddDate(0, 0, -30)
	case Period3M:
		return now.AddDate(0, 0, -90)
	case Period1Y:
		return now.AddDate(0, 0, -365)
	default:
		return now.AddDate(-5, 0, 0)
	}
}

// Timeframe is the sampling interval of a series.
type Timeframe string

const (
	Timeframe1Min  Timeframe = "1Min"
	Timeframe5Min  Timeframe = "5Min"
	Timeframe15Min Timeframe = "15Min"
	Timeframe1H    Timeframe = "1H"
	Timeframe1D    Timeframe = "1D"
	Timeframe1W    Timeframe = "1W"
)

// Duration is the nominal length of one sample.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case Timeframe1Min:
		return time.Minute
	case Timeframe5Min:
		return 5 * time.Minute
	case Timeframe15Min:
		return 15 * time.Minute
	case Timeframe1H:
		return time.Hour
	case Timeframe1W:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Bucket returns a key identifying the sample interval t falls in. Daily
// samples are keyed by calendar date in loc, since upstream sources stamp the
// same session at different hours. Weekly samples are keyed by ISO week, so
// a bar stamped on Monday shares its key with every day of that week.
func (tf Timeframe) Bucket(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	switch d := tf.Duration(); {
	case d >= 7*24*time.Hour:
		year, week := t.In(loc).ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case d >= 24*time.Hour:
		return t.In(loc).Format(time.DateOnly)
	default:
		return t.Truncate(d).UTC().Format(time.RFC3339)
	}
}

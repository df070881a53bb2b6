package market

import (
	"time"
	_ "time/tzdata"
)

// Exchange is the zone US equity sessions and daily bars are defined in.
var Exchange = mustLoad("America/New_York")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Bar is an OHLCV price bar for a symbol.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

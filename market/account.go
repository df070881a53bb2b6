package market

// AccountSnapshot is the point-in-time state of a brokerage account.
type AccountSnapshot struct {
	Equity         float64
	Cash           float64
	BuyingPower    float64
	PortfolioValue float64
	LastEquity     float64 // equity at the previous close
	PositionsCount int
}

// DayProfitLoss is the change in equity since the previous close.
func (s AccountSnapshot) DayProfitLoss() float64 {
	return s.Equity - s.LastEquity
}

// DayProfitLossPct is DayProfitLoss as a percentage of LastEquity, or 0 when
// LastEquity is not positive.
func (s AccountSnapshot) DayProfitLossPct() float64 {
	if s.LastEquity <= 0 {
		return 0
	}
	return s.DayProfitLoss() / s.LastEquity * 100
}

// Position is an open holding in one account. Percentages are expressed in
// percent, not fractions.
type Position struct {
	Symbol          string  `json:"symbol"`
	Account         string  `json:"account"`
	MarketValue     float64 `json:"market_value"`
	UnrealizedPLPct float64 `json:"unrealized_pl_pct"`
	ChangeTodayPct  float64 `json:"change_today_pct"`
}

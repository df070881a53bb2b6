package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency code is configured.
const DefaultCurrency = money.USD

// Money formats an amount in the display convention of currency, e.g.
// "$1,234.50" for USD. Unknown codes fall back to DefaultCurrency.
func Money(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

// Percent formats a percentage with two decimals and an explicit sign on
// positive values.
func Percent(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}

// Ratio formats a unitless statistic such as a Sharpe ratio or beta.
func Ratio(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

package analytics

import "strings"

// DerivePnL returns the absolute and percentage profit/loss of every value
// relative to the first one. Percentages are 0 when the first value is not
// positive.
func DerivePnL(values []float64) (pnl, pnlPct []float64) {
	pnl = make([]float64, len(values))
	pnlPct = make([]float64, len(values))
	if len(values) == 0 {
		return pnl, pnlPct
	}

	initial := values[0]
	for i, v := range values {
		pnl[i] = v - initial
		if initial > 0 {
			pnlPct[i] = (v - initial) / initial * 100
		}
	}
	return pnl, pnlPct
}

// AssetClass is a coarse allocation bucket.
type AssetClass string

const (
	Equity      AssetClass = "Equity"
	FixedIncome AssetClass = "Fixed Income"
	RealEstate  AssetClass = "Real Estate"
	Commodities AssetClass = "Commodities"
	Other       AssetClass = "Other"
	Cash        AssetClass = "Cash"
)

// AssetClasses lists every bucket in display order.
var AssetClasses = []AssetClass{Equity, FixedIncome, RealEstate, Commodities, Other, Cash}

var assetClassBySymbol = map[string]AssetClass{
	// broad equity funds
	"SPY": Equity, "VOO": Equity, "IVV": Equity, "VTI": Equity, "QQQ": Equity,
	"DIA": Equity, "IWM": Equity, "VEA": Equity, "VWO": Equity, "EFA": Equity,
	"EEM": Equity, "VXUS": Equity, "SCHB": Equity, "SCHD": Equity, "VUG": Equity,
	"VTV": Equity, "VIG": Equity, "ITOT": Equity, "IXUS": Equity, "ACWI": Equity,
	// large caps
	"AAPL": Equity, "MSFT": Equity, "GOOGL": Equity, "GOOG": Equity, "AMZN": Equity,
	"NVDA": Equity, "META": Equity, "TSLA": Equity, "BRK.B": Equity, "JPM": Equity,
	"V": Equity, "JNJ": Equity, "UNH": Equity, "XOM": Equity, "PG": Equity,

	"BND": FixedIncome, "AGG": FixedIncome, "TLT": FixedIncome, "IEF": FixedIncome,
	"SHY": FixedIncome, "LQD": FixedIncome, "HYG": FixedIncome, "JNK": FixedIncome,
	"TIP": FixedIncome, "BNDX": FixedIncome, "VCIT": FixedIncome, "VCSH": FixedIncome,
	"MUB": FixedIncome, "GOVT": FixedIncome, "SCHZ": FixedIncome, "EMB": FixedIncome,
	"VGSH": FixedIncome, "VGIT": FixedIncome, "VGLT": FixedIncome, "BIL": FixedIncome,
	"SGOV": FixedIncome, "BSV": FixedIncome, "BIV": FixedIncome, "BLV": FixedIncome,

	"VNQ": RealEstate, "VNQI": RealEstate, "SCHH": RealEstate, "IYR": RealEstate,
	"XLRE": RealEstate, "RWR": RealEstate, "USRT": RealEstate, "REET": RealEstate,
	"O": RealEstate, "PLD": RealEstate, "AMT": RealEstate, "SPG": RealEstate,

	"GLD": Commodities, "IAU": Commodities, "GLDM": Commodities, "SGOL": Commodities,
	"SLV": Commodities, "DBC": Commodities, "PDBC": Commodities, "GSG": Commodities,
	"USO": Commodities, "UNG": Commodities, "DBA": Commodities, "CPER": Commodities,
}

// ClassifyAsset maps a ticker to its allocation bucket. Symbols outside the
// known table are Other; no symbol classifies as Cash.
func ClassifyAsset(symbol string) AssetClass {
	if c, ok := assetClassBySymbol[strings.ToUpper(strings.TrimSpace(symbol))]; ok {
		return c
	}
	return Other
}

// AssetAllocation accumulates market value per bucket.
type AssetAllocation map[AssetClass]float64

// NewAssetAllocation returns an allocation with every bucket present at 0.
func NewAssetAllocation() AssetAllocation {
	a := make(AssetAllocation, len(AssetClasses))
	for _, c := range AssetClasses {
		a[c] = 0
	}
	return a
}

// AddPosition adds a position's market value to its classified bucket.
func (a AssetAllocation) AddPosition(symbol string, marketValue float64) {
	a[ClassifyAsset(symbol)] += marketValue
}

// AddCash adds an account's cash balance to the Cash bucket.
func (a AssetAllocation) AddCash(cash float64) {
	a[Cash] += cash
}

// Total is the sum over all buckets.
func (a AssetAllocation) Total() float64 {
	var t float64
	for _, v := range a {
		t += v
	}
	return t
}

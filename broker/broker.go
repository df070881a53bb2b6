package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/portfolio/market"
)

// Credentials identify one brokerage account and how to reach it.
type Credentials struct {
	Name      string
	KeyID     string
	SecretKey string
	BaseURL   string
}

// AccountSource serves the account-scoped data of one set of credentials.
type AccountSource interface {
	EquityCurve(ctx context.Context, period market.Period, tf market.Timeframe) (market.EquityCurve, error)
	Snapshot(ctx context.Context) (market.AccountSnapshot, error)
	Positions(ctx context.Context) ([]market.Position, error)
}

// PriceSource serves market prices. PriceBars returns an empty slice, not an
// error, when the range holds no data.
type PriceSource interface {
	PriceBars(ctx context.Context, req BarsRequest) ([]market.Bar, error)
	LatestTrade(ctx context.Context, symbol string) (float64, error)
}

// Source is a complete market data source bound to one account.
type Source interface {
	AccountSource
	PriceSource
}

// Connector opens a Source for a set of credentials. Each call yields an
// independent source; nothing is shared between accounts.
type Connector interface {
	Connect(creds Credentials) (Source, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(Credentials) (Source, error)

// Connect calls f.
func (f ConnectorFunc) Connect(creds Credentials) (Source, error) { return f(creds) }

// BarsRequest selects historical bars for a symbol.
type BarsRequest struct {
	Symbol    string
	Timeframe market.Timeframe
	Start     time.Time
	End       time.Time // zero means now
	Limit     int       // 0 means no limit
}

var (
	ErrNoCredentials = errors.New("no credentials available")
	ErrNoData        = errors.New("no data")
)

// FetchError reports a failure to reach or decode the market data source.
type FetchError struct {
	Op      string
	Account string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Account == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Account, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Wrap returns err as a *FetchError, or nil when err is nil. An error that
// already is a *FetchError is returned unchanged.
func Wrap(op, account string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Op: op, Account: account, Err: err}
}

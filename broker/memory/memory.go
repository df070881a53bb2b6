// Package memory provides an in-process market data source backed by static
// fixtures. It is used by tests and by the demo command.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rustyeddy/portfolio/broker"
	"github.com/rustyeddy/portfolio/market"
)

// Account is the fixture data for one account.
type Account struct {
	Curve     market.EquityCurve
	Snapshot  market.AccountSnapshot
	Positions []market.Position

	// Err, when set, is returned from every account-scoped call.
	Err error
}

// Market holds fixtures for every account and symbol. It is safe for
// concurrent use once populated.
type Market struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	bars     map[string][]market.Bar
	trades   map[string]float64
	priceErr error
}

// New returns an empty market.
func New() *Market {
	return &Market{
		accounts: make(map[string]*Account),
		bars:     make(map[string][]market.Bar),
		trades:   make(map[string]float64),
	}
}

// SetAccount registers fixtures for an account name.
func (m *Market) SetAccount(name string, a Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[name] = &a
}

// SetBars registers the bar history of a symbol.
func (m *Market) SetBars(symbol string, bars []market.Bar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bars[strings.ToUpper(symbol)] = slices.Clone(bars)
}

// SetLatestTrade registers the last trade price of a symbol.
func (m *Market) SetLatestTrade(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades[strings.ToUpper(symbol)] = price
}

// FailPrices makes every price call fail with err; nil restores normal
// behaviour.
func (m *Market) FailPrices(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.priceErr = err
}

// Connect implements broker.Connector. Unknown account names still connect;
// their account calls fail.
func (m *Market) Connect(creds broker.Credentials) (broker.Source, error) {
	return &source{m: m, name: creds.Name}, nil
}

type source struct {
	m    *Market
	name string
}

func (s *source) account() (*Account, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	a, ok := s.m.accounts[s.name]
	if !ok {
		return nil, fmt.Errorf("unknown account %q", s.name)
	}
	if a.Err != nil {
		return nil, a.Err
	}
	return a, nil
}

func (s *source) EquityCurve(ctx context.Context, _ market.Period, _ market.Timeframe) (market.EquityCurve, error) {
	if err := ctx.Err(); err != nil {
		return nil, broker.Wrap("fetch portfolio history", s.name, err)
	}
	a, err := s.account()
	if err != nil {
		return nil, broker.Wrap("fetch portfolio history", s.name, err)
	}
	return slices.Clone(a.Curve), nil
}

func (s *source) Snapshot(ctx context.Context) (market.AccountSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return market.AccountSnapshot{}, broker.Wrap("fetch account", s.name, err)
	}
	a, err := s.account()
	if err != nil {
		return market.AccountSnapshot{}, broker.Wrap("fetch account", s.name, err)
	}
	return a.Snapshot, nil
}

func (s *source) Positions(ctx context.Context) ([]market.Position, error) {
	if err := ctx.Err(); err != nil {
		return nil, broker.Wrap("fetch positions", s.name, err)
	}
	a, err := s.account()
	if err != nil {
		return nil, broker.Wrap("fetch positions", s.name, err)
	}
	out := slices.Clone(a.Positions)
	for i := range out {
		out[i].Account = s.name
	}
	return out, nil
}

// PriceBars returns the registered bars that fall in [Start, End].
func (s *source) PriceBars(ctx context.Context, req broker.BarsRequest) ([]market.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, broker.Wrap("fetch bars", s.name, err)
	}
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	if s.m.priceErr != nil {
		return nil, broker.Wrap("fetch bars", s.name, s.m.priceErr)
	}

	out := []market.Bar{}
	for _, b := range s.m.bars[strings.ToUpper(req.Symbol)] {
		if !req.Start.IsZero() && b.Time.Before(req.Start) {
			continue
		}
		if !req.End.IsZero() && b.Time.After(req.End) {
			continue
		}
		out = append(out, b)
		if req.Limit > 0 && len(out) >= req.Limit {
			break
		}
	}
	return out, nil
}

func (s *source) LatestTrade(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, broker.Wrap("fetch latest trade", s.name, err)
	}
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	if s.m.priceErr != nil {
		return 0, broker.Wrap("fetch latest trade", s.name, s.m.priceErr)
	}
	p, ok := s.m.trades[strings.ToUpper(symbol)]
	if !ok {
		return 0, broker.Wrap("fetch latest trade", s.name, fmt.Errorf("%s: %w", symbol, broker.ErrNoData))
	}
	return p, nil
}

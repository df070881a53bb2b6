package alpaca

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rustyeddy/portfolio/broker"
	"github.com/rustyeddy/portfolio/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	return NewClient(broker.Credentials{
		Name:      "paper",
		KeyID:     "test-key",
		SecretKey: "test-secret",
		BaseURL:   server.URL,
	}, WithDataURL(server.URL), WithTimeout(5*time.Second))
}

func TestNewClient(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := NewClient(broker.Credentials{Name: "a", KeyID: "k", SecretKey: "s"})
		assert.Equal(t, PaperURL, c.baseURL)
		assert.Equal(t, DataURL, c.dataURL)
		assert.Equal(t, DefaultFeed, c.feed)
		assert.NotNil(t, c.httpClient)
	})

	t.Run("options", func(t *testing.T) {
		hc := &http.Client{}
		c := NewClient(broker.Credentials{BaseURL: LiveURL + "/"},
			WithDataURL("http://data.local/"), WithFeed("sip"), WithHTTPClient(hc))
		assert.Equal(t, LiveURL, c.baseURL)
		assert.Equal(t, "http://data.local", c.dataURL)
		assert.Equal(t, "sip", c.feed)
		assert.Same(t, hc, c.httpClient)
	})
}

func TestConnector_RequiresCredentials(t *testing.T) {
	_, err := Connector().Connect(broker.Credentials{Name: "empty"})
	require.Error(t, err)
	assert.ErrorIs(t, err, broker.ErrNoCredentials)

	src, err := Connector().Connect(broker.Credentials{Name: "ok", KeyID: "k", SecretKey: "s"})
	require.NoError(t, err)
	assert.NotNil(t, src)
}

func TestSnapshot_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/account", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "test-secret", r.Header.Get("APCA-API-SECRET-KEY"))

		w.Write([]byte(`{
			"id": "abc",
			"equity": "105000.50",
			"cash": "2500.25",
			"buying_power": "5000.5",
			"portfolio_value": "105000.50",
			"last_equity": "100000"
		}`))
	})

	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 105000.50, snap.Equity)
	assert.Equal(t, 2500.25, snap.Cash)
	assert.Equal(t, 5000.5, snap.BuyingPower)
	assert.Equal(t, 105000.50, snap.PortfolioValue)
	assert.Equal(t, 100000.0, snap.LastEquity)
}

func TestSnapshot_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code":40310000,"message":"forbidden"}`))
	})

	_, err := c.Snapshot(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPI)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "forbidden")

	var fe *broker.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "paper", fe.Account)
}

func TestSnapshot_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"equity": `))
	})

	_, err := c.Snapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestEquityCurve(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/account/portfolio/history", r.URL.Path)
		assert.Equal(t, "1A", r.URL.Query().Get("period"))
		assert.Equal(t, "1D", r.URL.Query().Get("timeframe"))

		w.Write([]byte(`{
			"timestamp": [1704171600, 1704258000, 1704344400, 1704344400, 1704430800],
			"equity": [100000, null, 101000, 999, 99500.5],
			"timeframe": "1D"
		}`))
	})

	curve, err := c.EquityCurve(context.Background(), market.Period1Y, market.Timeframe1D)
	require.NoError(t, err)
	require.Len(t, curve, 3)
	assert.Equal(t, []float64{100000, 101000, 99500.5}, curve.Values())
	assert.Equal(t, time.Unix(1704171600, 0).UTC(), curve[0].Time)
	assert.True(t, curve[2].Time.After(curve[1].Time))
}

func TestHistoryParams(t *testing.T) {
	assert.Equal(t, "1D", historyPeriod(market.Period1D))
	assert.Equal(t, "3M", historyPeriod(market.Period3M))
	assert.Equal(t, "1A", historyPeriod(market.Period1Y))
	assert.Equal(t, "5A", historyPeriod(market.PeriodAll))

	assert.Equal(t, "15Min", historyTimeframe(market.Timeframe15Min))
	assert.Equal(t, "1D", historyTimeframe(market.Timeframe1W))
}

func TestPositions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/positions", r.URL.Path)
		w.Write([]byte(`[
			{"symbol":"SPY","qty":"10","market_value":"4750.10","unrealized_plpc":"0.125","change_today":"-0.0125"},
			{"symbol":"BND","qty":"5","market_value":"360","unrealized_plpc":"-0.01","change_today":"0.002"}
		]`))
	})

	positions, err := c.Positions(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 2)

	assert.Equal(t, "SPY", positions[0].Symbol)
	assert.Equal(t, "paper", positions[0].Account)
	assert.Equal(t, 4750.10, positions[0].MarketValue)
	assert.InDelta(t, 12.5, positions[0].UnrealizedPLPct, 1e-9)
	assert.InDelta(t, -1.25, positions[0].ChangeTodayPct, 1e-9)
	assert.InDelta(t, 0.2, positions[1].ChangeTodayPct, 1e-9)
}

func TestPriceBars_Pagination(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v2/stocks/SPY/bars", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "1Day", q.Get("timeframe"))
		assert.Equal(t, "iex", q.Get("feed"))
		assert.Equal(t, "2024-01-01T00:00:00Z", q.Get("start"))

		resp := barsResponse{Symbol: "SPY"}
		if q.Get("page_token") == "" {
			token := "next"
			resp.NextPageToken = &token
			resp.Bars = []apiBar{{T: "2024-01-02T05:00:00Z", O: 470, H: 472, L: 468, C: 471, V: 1000}}
		} else {
			assert.Equal(t, "next", q.Get("page_token"))
			resp.Bars = []apiBar{{T: "2024-01-03T05:00:00Z", O: 471, H: 473, L: 466, C: 467.5, V: 1200}}
		}
		json.NewEncoder(w).Encode(resp)
	})

	bars, err := c.PriceBars(context.Background(), broker.BarsRequest{
		Symbol:    "spy",
		Timeframe: market.Timeframe1D,
		Start:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, bars, 2)
	assert.Equal(t, 471.0, bars[0].Close)
	assert.Equal(t, 467.5, bars[1].Close)
	assert.Equal(t, 1200.0, bars[1].Volume)
}

func TestPriceBars_LimitStopsPaging(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		token := "more"
		json.NewEncoder(w).Encode(barsResponse{
			Bars:          []apiBar{{T: "2024-01-02T05:00:00Z", C: 1}},
			NextPageToken: &token,
		})
	})

	bars, err := c.PriceBars(context.Background(), broker.BarsRequest{Symbol: "SPY", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, bars, 1)
	assert.Equal(t, 1, calls)
}

func TestPriceBars_RepeatedTokenStopsPaging(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		token := "stuck"
		json.NewEncoder(w).Encode(barsResponse{
			Bars:          []apiBar{{T: "2024-01-02T05:00:00Z", C: 1}},
			NextPageToken: &token,
		})
	})

	bars, err := c.PriceBars(context.Background(), broker.BarsRequest{Symbol: "SPY"})
	require.NoError(t, err)
	assert.Len(t, bars, 2)
	assert.Equal(t, 2, calls)
}

func TestPriceBars_EmptyIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bars": null, "symbol": "SPY", "next_page_token": null}`))
	})

	bars, err := c.PriceBars(context.Background(), broker.BarsRequest{Symbol: "SPY", Timeframe: market.Timeframe1H})
	require.NoError(t, err)
	assert.NotNil(t, bars)
	assert.Empty(t, bars)
}

func TestPriceBars_BadTime(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bars": [{"t": "yesterday", "c": 1}]}`))
	})

	_, err := c.PriceBars(context.Background(), broker.BarsRequest{Symbol: "SPY"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse time")
}

func TestPriceBars_RequiresSymbol(t *testing.T) {
	c := NewClient(broker.Credentials{})
	_, err := c.PriceBars(context.Background(), broker.BarsRequest{})
	assert.Error(t, err)
}

func TestBarTimeframe(t *testing.T) {
	assert.Equal(t, "15Min", barTimeframe(market.Timeframe15Min))
	assert.Equal(t, "1Hour", barTimeframe(market.Timeframe1H))
	assert.Equal(t, "1Day", barTimeframe(market.Timeframe1D))
	assert.Equal(t, "1Day", barTimeframe(""))
	assert.Equal(t, "1Week", barTimeframe(market.Timeframe1W))
}

func TestLatestTrade(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/stocks/SPY/trades/latest", r.URL.Path)
		w.Write([]byte(`{"symbol":"SPY","trade":{"t":"2024-01-03T20:59:59Z","p":467.28,"s":100}}`))
	})

	price, err := c.LatestTrade(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, 467.28, price)
}

func TestLatestTrade_Missing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"NOPE"}`))
	})

	_, err := c.LatestTrade(context.Background(), "NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, broker.ErrNoData)
}

func TestLatestTrade_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.LatestTrade(context.Background(), "NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPI)
}

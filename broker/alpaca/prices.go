package alpaca

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rustyeddy/portfolio/broker"
	"github.com/rustyeddy/portfolio/market"
)

// barTimeframe translates a timeframe into the bars endpoint syntax.
func barTimeframe(tf market.Timeframe) string {
	switch tf {
	case market.Timeframe1H:
		return "1Hour"
	case market.Timeframe1D, "":
		return "1Day"
	case market.Timeframe1W:
		return "1Week"
	default:
		return string(tf)
	}
}

type apiBar struct {
	T string  `json:"t"`
	O float64 `json:"o"`
	H float64 `json:"h"`
	L float64 `json:"l"`
	C float64 `json:"c"`
	V float64 `json:"v"`
}

type barsResponse struct {
	Symbol        string   `json:"symbol"`
	Bars          []apiBar `json:"bars"`
	NextPageToken *string  `json:"next_page_token"`
}

// PriceBars fetches historical bars for a symbol, following pagination
// until the range or the limit is exhausted. An empty range is not an error.
func (c *Client) PriceBars(ctx context.Context, req broker.BarsRequest) ([]market.Bar, error) {
	if req.Symbol == "" {
		return nil, broker.Wrap("fetch bars", c.name, fmt.Errorf("symbol is required"))
	}

	params := url.Values{}
	params.Set("timeframe", barTimeframe(req.Timeframe))
	params.Set("adjustment", "raw")
	params.Set("feed", c.feed)
	if !req.Start.IsZero() {
		params.Set("start", req.Start.UTC().Format(time.RFC3339))
	}
	if !req.End.IsZero() {
		params.Set("end", req.End.UTC().Format(time.RFC3339))
	}

	path := "/v2/stocks/" + url.PathEscape(strings.ToUpper(req.Symbol)) + "/bars"
	bars := []market.Bar{}
	prevToken := ""
	for {
		pageSize := maxPageSize
		if req.Limit > 0 {
			pageSize = min(pageSize, req.Limit-len(bars))
		}
		params.Set("limit", strconv.Itoa(pageSize))

		var br barsResponse
		if err := c.get(ctx, c.dataURL, path, params, &br); err != nil {
			return nil, broker.Wrap("fetch bars", c.name, err)
		}

		for _, ab := range br.Bars {
			t, err := time.Parse(time.RFC3339, ab.T)
			if err != nil {
				return nil, broker.Wrap("fetch bars", c.name, fmt.Errorf("parse time %s: %w", ab.T, err))
			}
			bars = append(bars, market.Bar{Time: t, Open: ab.O, High: ab.H, Low: ab.L, Close: ab.C, Volume: ab.V})
		}

		// a repeated token would page forever
		if br.NextPageToken == nil || *br.NextPageToken == "" || *br.NextPageToken == prevToken {
			break
		}
		if req.Limit > 0 && len(bars) >= req.Limit {
			break
		}
		prevToken = *br.NextPageToken
		params.Set("page_token", prevToken)
	}
	return bars, nil
}

// LatestTrade returns the price of the most recent trade of a symbol.
func (c *Client) LatestTrade(ctx context.Context, symbol string) (float64, error) {
	if symbol == "" {
		return 0, broker.Wrap("fetch latest trade", c.name, fmt.Errorf("symbol is required"))
	}

	params := url.Values{}
	params.Set("feed", c.feed)
	path := "/v2/stocks/" + url.PathEscape(strings.ToUpper(symbol)) + "/trades/latest"

	var jobj any
	if err := c.get(ctx, c.dataURL, path, params, &jobj); err != nil {
		return 0, broker.Wrap("fetch latest trade", c.name, err)
	}

	jval, err := jsonpath.Get("$.trade.p", jobj)
	if err != nil {
		return 0, broker.Wrap("fetch latest trade", c.name, fmt.Errorf("%s: %w", symbol, broker.ErrNoData))
	}
	price, ok := jval.(float64)
	if !ok || price <= 0 {
		return 0, broker.Wrap("fetch latest trade", c.name, fmt.Errorf("%s: invalid price %v", symbol, jval))
	}
	return price, nil
}

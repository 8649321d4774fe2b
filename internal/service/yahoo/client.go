// Package yahoo reads quotes and daily bars from the public chart endpoint.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"DeBrief/internal/domain/models"
	"DeBrief/internal/domain/repository"
	"DeBrief/internal/service/ratelimit"
	xhttp "DeBrief/pkg/http"
)

const provider = "yahoo"

// Client implements repository.MarketData.
type Client struct {
	http    *xhttp.Client
	baseURL string
	limiter *ratelimit.Limiter
	now     func() time.Time
}

// New builds a client; limiter may be nil.
func New(client *xhttp.Client, baseURL string, limiter *ratelimit.Limiter) *Client {
	return &Client{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: limiter,
		now:     time.Now,
	}
}

var _ repository.MarketData = (*Client)(nil)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Currency           string  `json:"currency"`
		Symbol             string  `json:"symbol"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		PreviousClose      float64 `json:"previousClose"`
		ChartPreviousClose float64 `json:"chartPreviousClose"`
		RegularMarketVol   float64 `json:"regularMarketVolume"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

func (c *Client) chart(ctx context.Context, symbol, rng string) (*chartResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, provider); err != nil {
			return nil, repository.Unavailable(provider, err)
		}
	}
	var resp chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(symbol)),
		QueryParams: map[string][]string{
			"range":    {rng},
			"interval": {"1d"},
		},
		Headers: map[string]string{"Accept": "application/json"},
	}, &resp)
	switch {
	case xhttp.IsStatus(err, http.StatusNotFound):
		return nil, repository.NotFound(provider, fmt.Errorf("symbol %s", symbol))
	case errors.Is(err, xhttp.ErrDecode):
		return nil, repository.Malformed(provider, err)
	case err != nil:
		return nil, repository.Unavailable(provider, err)
	}
	if resp.Chart.Error != nil {
		return nil, repository.NotFound(provider, errors.New(resp.Chart.Error.Description))
	}
	if len(resp.Chart.Result) == 0 {
		return nil, repository.NotFound(provider, fmt.Errorf("no chart for %s", symbol))
	}
	return &resp.Chart.Result[0], nil
}

// Quote returns the regular-market price against the previous session close.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	r, err := c.chart(ctx, symbol, "5d")
	if err != nil {
		return nil, err
	}
	q := &models.Quote{
		Symbol:        symbol,
		Last:          r.Meta.RegularMarketPrice,
		PreviousClose: r.Meta.PreviousClose,
		Volume:        r.Meta.RegularMarketVol,
		Currency:      r.Meta.Currency,
		Source:        provider,
		FetchedAt:     c.now(),
	}
	if q.PreviousClose == 0 {
		q.PreviousClose = previousSessionClose(r)
	}
	if !q.Available() {
		return nil, repository.NotFound(provider, fmt.Errorf("no price for %s", symbol))
	}
	return q, nil
}

// previousSessionClose is the close of the bar before the newest one.
func previousSessionClose(r *chartResult) float64 {
	bars := candles(r)
	if len(bars) < 2 {
		return r.Meta.ChartPreviousClose
	}
	return bars[len(bars)-2].Close
}

// DailyBars returns up to n trailing daily bars, oldest first.
func (c *Client) DailyBars(ctx context.Context, symbol string, n int) ([]models.Candle, error) {
	r, err := c.chart(ctx, symbol, rangeFor(n))
	if err != nil {
		return nil, err
	}
	bars := candles(r)
	if len(bars) == 0 {
		return nil, repository.NotFound(provider, fmt.Errorf("empty series for %s", symbol))
	}
	if n > 0 && len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	for i := range bars {
		bars[i].Symbol = symbol
	}
	return bars, nil
}

func rangeFor(n int) string {
	switch {
	case n <= 5:
		return "5d"
	case n <= 21:
		return "1mo"
	case n <= 63:
		return "3mo"
	case n <= 126:
		return "6mo"
	case n <= 252:
		return "1y"
	}
	return "2y"
}

// candles zips the column arrays, skipping bars with a missing close.
func candles(r *chartResult) []models.Candle {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]
	at := func(s []*float64, i int) float64 {
		if i < len(s) && s[i] != nil {
			return *s[i]
		}
		return 0
	}
	out := make([]models.Candle, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		cl := at(q.Close, i)
		if cl <= 0 {
			continue
		}
		out = append(out, models.Candle{
			Bucket: time.Unix(ts, 0).UTC(),
			Open:   at(q.Open, i),
			High:   at(q.High, i),
			Low:    at(q.Low, i),
			Close:  cl,
			Volume: at(q.Volume, i),
		})
	}
	return out
}

// Package finnhub is a REST client for quotes, daily candles, company news
// and the economic calendar.
package finnhub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"DeBrief/internal/domain/models"
	"DeBrief/internal/domain/repository"
	"DeBrief/internal/service/ratelimit"
	xhttp "DeBrief/pkg/http"
	"DeBrief/pkg/util"
)

const provider = "finnhub"

// Client implements MarketData, NewsProvider and CalendarProvider.
type Client struct {
	http    *xhttp.Client
	apiKey  string
	baseURL string
	limiter *ratelimit.Limiter
	now     func() time.Time
}

// New creates a Finnhub client; limiter may be nil.
func New(client *xhttp.Client, apiKey, baseURL string, limiter *ratelimit.Limiter) *Client {
	return &Client{
		http:    client,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: limiter,
		now:     time.Now,
	}
}

var (
	_ repository.MarketData       = (*Client)(nil)
	_ repository.NewsProvider     = (*Client)(nil)
	_ repository.CalendarProvider = (*Client)(nil)
)

func (c *Client) get(ctx context.Context, path string, params map[string][]string, dest interface{}) error {
	if c.apiKey == "" {
		return repository.Unavailable(provider, errors.New("api key not configured"))
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, provider); err != nil {
			return repository.Unavailable(provider, err)
		}
	}
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		QueryParams: params,
		Headers:     map[string]string{"X-Finnhub-Token": c.apiKey},
	}, dest)
	switch {
	case err == nil:
		return nil
	case xhttp.IsStatus(err, http.StatusNotFound):
		return repository.NotFound(provider, err)
	case errors.Is(err, xhttp.ErrDecode):
		return repository.Malformed(provider, err)
	}
	return repository.Unavailable(provider, err)
}

type quoteResponse struct {
	Current       float64 `json:"c"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var r quoteResponse
	if err := c.get(ctx, "/quote", map[string][]string{"symbol": {symbol}}, &r); err != nil {
		return nil, err
	}
	q := &models.Quote{
		Symbol:        symbol,
		Last:          r.Current,
		PreviousClose: r.PreviousClose,
		Source:        provider,
		FetchedAt:     c.now(),
	}
	if !q.Available() {
		return nil, repository.NotFound(provider, fmt.Errorf("no price for %s", symbol))
	}
	return q, nil
}

type candleResponse struct {
	Close  []float64 `json:"c"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Open   []float64 `json:"o"`
	Volume []float64 `json:"v"`
	Time   []int64   `json:"t"`
	Status string    `json:"s"`
}

// DailyBars fetches enough calendar days to cover n trading days.
func (c *Client) DailyBars(ctx context.Context, symbol string, n int) ([]models.Candle, error) {
	to := c.now()
	from := to.AddDate(0, 0, -(n*7/5 + 10))
	var r candleResponse
	err := c.get(ctx, "/stock/candle", map[string][]string{
		"symbol":     {symbol},
		"resolution": {"D"},
		"from":       {fmt.Sprint(from.Unix())},
		"to":         {fmt.Sprint(to.Unix())},
	}, &r)
	if err != nil {
		return nil, err
	}
	if r.Status != "ok" || len(r.Close) == 0 {
		return nil, repository.NotFound(provider, fmt.Errorf("no candles for %s", symbol))
	}
	if len(r.Time) != len(r.Close) || len(r.Volume) != len(r.Close) || len(r.High) != len(r.Close) {
		return nil, repository.Malformed(provider, errors.New("candle columns differ in length"))
	}
	out := make([]models.Candle, len(r.Close))
	for i := range r.Close {
		out[i] = models.Candle{
			Bucket: time.Unix(r.Time[i], 0).UTC(),
			Symbol: symbol,
			Open:   r.Open[i],
			High:   r.High[i],
			Low:    r.Low[i],
			Close:  r.Close[i],
			Volume: r.Volume[i],
		}
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

type newsItem struct {
	Headline string `json:"headline"`
	URL      string `json:"url"`
	Source   string `json:"source"`
	Datetime int64  `json:"datetime"`
}

// News returns company news of the last day.
func (c *Client) News(ctx context.Context, symbol string) ([]models.NewsItem, error) {
	to := c.now()
	var items []newsItem
	err := c.get(ctx, "/company-news", map[string][]string{
		"symbol": {symbol},
		"from":   {to.AddDate(0, 0, -1).Format("2006-01-02")},
		"to":     {to.Format("2006-01-02")},
	}, &items)
	if err != nil {
		return nil, err
	}
	out := make([]models.NewsItem, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Headline) == "" {
			continue
		}
		out = append(out, models.NewsItem{
			Symbol:      symbol,
			Title:       strings.TrimSpace(it.Headline),
			Link:        it.URL,
			Source:      it.Source,
			PublishedAt: util.ParseUnix(it.Datetime),
		})
	}
	return out, nil
}

type calendarResponse struct {
	EconomicCalendar []struct {
		Actual   *float64 `json:"actual"`
		Country  string   `json:"country"`
		Estimate *float64 `json:"estimate"`
		Event    string   `json:"event"`
		Impact   string   `json:"impact"`
		Prev     *float64 `json:"prev"`
		Time     string   `json:"time"`
		Unit     string   `json:"unit"`
	} `json:"economicCalendar"`
}

// EconomicCalendar lists macro events between from and to (inclusive dates).
// Event times are reported in UTC.
func (c *Client) EconomicCalendar(ctx context.Context, from, to time.Time) ([]models.EconomicEvent, error) {
	var r calendarResponse
	err := c.get(ctx, "/calendar/economic", map[string][]string{
		"from": {from.Format("2006-01-02")},
		"to":   {to.Format("2006-01-02")},
	}, &r)
	if err != nil {
		return nil, err
	}
	out := make([]models.EconomicEvent, 0, len(r.EconomicCalendar))
	for _, e := range r.EconomicCalendar {
		at, err := time.ParseInLocation("2006-01-02 15:04:05", e.Time, time.UTC)
		if err != nil {
			continue
		}
		out = append(out, models.EconomicEvent{
			Time:     at,
			Country:  strings.ToUpper(e.Country),
			Event:    e.Event,
			Impact:   models.Impact(strings.ToLower(e.Impact)),
			Actual:   e.Actual,
			Estimate: e.Estimate,
			Previous: e.Prev,
			Unit:     e.Unit,
		})
	}
	return out, nil
}

package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"DeBrief/internal/domain/repository"
	xhttp "DeBrief/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"result":[{
  "meta":{"currency":"USD","symbol":"TSLA","regularMarketPrice":103.0,"chartPreviousClose":90.0,"regularMarketVolume":1200},
  "timestamp":[1700000000,1700086400,1700172800,1700259200],
  "indicators":{"quote":[{
    "open":[95,96,null,99],
    "high":[96,98,null,104],
    "low":[94,95,null,98],
    "close":[95.5,100.0,null,103.0],
    "volume":[1000,1100,null,1200]
  }]}
}],"error":null}}`

func newServer(t *testing.T, status int, body string) (*Client, *string) {
	t.Helper()
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/TSLA", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(xhttp.NewClient(), srv.URL, nil), &gotQuery
}

func TestQuote_UsesPreviousBarWhenMetaLacksPreviousClose(t *testing.T) {
	c, _ := newServer(t, http.StatusOK, chartBody)
	q, err := c.Quote(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Equal(t, 103.0, q.Last)
	assert.Equal(t, 100.0, q.PreviousClose)
	assert.Equal(t, "USD", q.Currency)
	assert.Equal(t, "yahoo", q.Source)
}

func TestDailyBars_SkipsNullsAndTrims(t *testing.T) {
	c, query := newServer(t, http.StatusOK, chartBody)
	bars, err := c.DailyBars(context.Background(), "TSLA", 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 100.0, bars[0].Close)
	assert.Equal(t, 103.0, bars[1].Close)
	assert.Equal(t, "TSLA", bars[1].Symbol)
	assert.Contains(t, *query, "range=5d")
}

func TestErrorsAreClassified(t *testing.T) {
	c, _ := newServer(t, http.StatusNotFound, `{}`)
	_, err := c.Quote(context.Background(), "TSLA")
	assert.Equal(t, repository.KindNotFound, repository.KindOf(err))

	c, _ = newServer(t, http.StatusOK, `{not json`)
	_, err = c.Quote(context.Background(), "TSLA")
	assert.Equal(t, repository.KindMalformed, repository.KindOf(err))

	c, _ = newServer(t, http.StatusBadGateway, `oops`)
	_, err = c.DailyBars(context.Background(), "TSLA", 10)
	assert.Equal(t, repository.KindUnavailable, repository.KindOf(err))

	c, _ = newServer(t, http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	_, err = c.Quote(context.Background(), "TSLA")
	assert.Equal(t, repository.KindNotFound, repository.KindOf(err))
}

func TestRangeFor(t *testing.T) {
	assert.Equal(t, "1mo", rangeFor(20))
	assert.Equal(t, "1y", rangeFor(252))
	assert.Equal(t, "2y", rangeFor(260))
}

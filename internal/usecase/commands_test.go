package usecase

import (
	"context"
	"testing"
	"time"

	"DeBrief/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDigest struct {
	sent  bool
	calls int
}

func (s *stubDigest) Run(context.Context, bool) (bool, error) {
	s.calls++
	return s.sent, nil
}

func newCommands(store *memStore) (*Commands, *fakeMarket, *fakeNews, *stubDigest) {
	market := &fakeMarket{quotes: map[string]*models.Quote{"TSLA": {Last: 103, PreviousClose: 100}}}
	news := &fakeNews{items: map[string][]models.NewsItem{
		"TSLA": {{Title: "one", Link: "l1"}, {Title: "two", Link: "l2"}, {Title: "three", Link: "l3"}, {Title: "four", Link: "l4"}},
	}}
	dg := &stubDigest{}
	return NewCommands(store, market, news, dg, time.Second), market, news, dg
}

func TestCommands_AddRemove(t *testing.T) {
	store := newMemStore(configWith("TSLA"))
	c, _, _, _ := newCommands(store)
	ctx := context.Background()

	assert.Equal(t, "✅ Added AAPL, MSFT\nAlready watching TSLA", c.Handle(ctx, "/add aapl, msft TSLA"))
	assert.Len(t, store.snapshot().Tickers, 3)

	assert.Equal(t, "🗑 Removed AAPL\nNot watching NVDA", c.Handle(ctx, "/remove AAPL,NVDA"))
	assert.NotContains(t, store.snapshot().Tickers, "AAPL")

	assert.Equal(t, "Usage: /add TSLA[,AAPL]", c.Handle(ctx, "/add"))
}

func TestCommands_OnOffAndStatus(t *testing.T) {
	store := newMemStore(configWith("TSLA"))
	c, _, _, _ := newCommands(store)
	ctx := context.Background()

	assert.Equal(t, "⏸ Monitoring paused", c.Handle(ctx, "/off"))
	assert.False(t, store.snapshot().SystemActive)
	assert.Contains(t, c.Handle(ctx, "/status"), "System: off")

	assert.Equal(t, "▶️ Monitoring on", c.Handle(ctx, "/on@DeBriefBot"))
	assert.True(t, store.snapshot().SystemActive)
}

func TestCommands_Toggle(t *testing.T) {
	store := newMemStore(configWith("TSLA"))
	c, _, _, _ := newCommands(store)
	ctx := context.Background()

	assert.Equal(t, "🔧 TSLA rsi on", c.Handle(ctx, "/toggle tsla RSI on"))
	assert.True(t, store.snapshot().Tickers["TSLA"].RSI)

	assert.Equal(t, "🔧 TSLA macd on", c.Handle(ctx, "/toggle TSLA MACD on"))
	assert.Equal(t, "🔧 TSLA all alerts off", c.Handle(ctx, "/toggle TSLA all off"))
	assert.Equal(t, models.WatchSettings{}, store.snapshot().Tickers["TSLA"])

	assert.Contains(t, c.Handle(ctx, "/toggle TSLA sentiment on"), "Unknown alert")
	assert.Equal(t, "Not watching AAPL", c.Handle(ctx, "/toggle AAPL rsi on"))
	assert.Equal(t, "Usage: /toggle TSLA rsi on|off", c.Handle(ctx, "/toggle TSLA rsi maybe"))
}

func TestCommands_ListPriceNews(t *testing.T) {
	store := newMemStore(configWith("TSLA"))
	c, _, _, _ := newCommands(store)
	ctx := context.Background()

	assert.Equal(t, "📋 Watchlist\n👀 TSLA: news, filings, price_move, new_high", c.Handle(ctx, "/list"))
	assert.Equal(t, "💵 TSLA $103.00 (+3.00%)", c.Handle(ctx, "/price tsla"))
	assert.Equal(t, "No price for NOPE", c.Handle(ctx, "/price NOPE"))

	reply := c.Handle(ctx, "/news TSLA")
	assert.Contains(t, reply, "three")
	assert.NotContains(t, reply, "four")
}

func TestCommands_EconomicAndDigest(t *testing.T) {
	store := newMemStore(configWith())
	c, _, _, dg := newCommands(store)
	ctx := context.Background()

	assert.Equal(t, "🗓 Economic digest on", c.Handle(ctx, "/economic on"))
	assert.True(t, store.snapshot().EconomicMode)

	assert.Contains(t, c.Handle(ctx, "/digest"), "needs the system")
	dg.sent = true
	assert.Empty(t, c.Handle(ctx, "/digest"))
	assert.Equal(t, 2, dg.calls)
}

func TestCommands_IgnoresPlainText(t *testing.T) {
	c, _, _, _ := newCommands(newMemStore(configWith()))
	assert.Empty(t, c.Handle(context.Background(), "hello"))
	assert.Contains(t, c.Handle(context.Background(), "/frobnicate"), "Unknown command")
	require.Contains(t, c.Handle(context.Background(), "/start"), "/add")
}

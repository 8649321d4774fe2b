package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"DeBrief/internal/domain/models"
	drepo "DeBrief/internal/domain/repository"
)

// memStore is a ConfigStore that round-trips through JSON like the real one.
type memStore struct {
	mu     sync.Mutex
	doc    []byte
	writes int
	// onUpdate runs between the fresh read and the write of Update.
	onUpdate func()
}

func newMemStore(cfg *models.Configuration) *memStore {
	s := &memStore{}
	s.put(cfg)
	return s
}

func (s *memStore) put(cfg *models.Configuration) {
	b, _ := json.Marshal(cfg)
	s.doc = b
}

func (s *memStore) get() *models.Configuration {
	cfg := models.DefaultConfiguration()
	_ = json.Unmarshal(s.doc, cfg)
	return cfg
}

func (s *memStore) Load(context.Context) (*models.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(), nil
}

func (s *memStore) Update(_ context.Context, mutate func(*models.Configuration) error) (*models.Configuration, error) {
	s.mu.Lock()
	cfg := s.get()
	hook := s.onUpdate
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err := mutate(cfg); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(cfg)
	s.writes++
	return cfg, nil
}

func (s *memStore) snapshot() *models.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get()
}

type fakeMarket struct {
	mu        sync.Mutex
	quotes    map[string]*models.Quote
	bars      map[string][]models.Candle
	err       error
	panicOn   string
	quoteHits int
	barHits   int
	inflight  atomic.Int32
	maxFlight atomic.Int32
	delay     time.Duration
}

func (f *fakeMarket) Quote(_ context.Context, sym string) (*models.Quote, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		m := f.maxFlight.Load()
		if n <= m || f.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if sym == f.panicOn {
		panic("provider exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quoteHits++
	if f.err != nil {
		return nil, f.err
	}
	q, ok := f.quotes[sym]
	if !ok {
		return nil, drepo.NotFound("fake", nil)
	}
	cp := *q
	return &cp, nil
}

func (f *fakeMarket) DailyBars(_ context.Context, sym string, n int) ([]models.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.barHits++
	bars, ok := f.bars[sym]
	if !ok {
		return nil, drepo.NotFound("fake", nil)
	}
	out := append([]models.Candle(nil), bars...)
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

type fakeNews struct {
	items      map[string][]models.NewsItem
	err        error
	newsHits   atomic.Int32
	filingHits atomic.Int32
}

func (f *fakeNews) News(_ context.Context, sym string) ([]models.NewsItem, error) {
	f.newsHits.Add(1)
	return f.items[sym], f.err
}

func (f *fakeNews) Filings(_ context.Context, sym string) ([]models.NewsItem, error) {
	f.filingHits.Add(1)
	return f.items[sym], f.err
}

type recordingSink struct {
	mu        sync.Mutex
	alerts    []models.Alert
	texts     []string
	delivered bool
	onSend    func()
}

func (r *recordingSink) Dispatch(_ context.Context, _ models.TelegramCredentials, a *models.Alert) bool {
	r.mu.Lock()
	r.alerts = append(r.alerts, *a)
	hook := r.onSend
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return r.delivered
}

func (r *recordingSink) SendText(_ context.Context, _ models.TelegramCredentials, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

func (r *recordingSink) kinds() []models.AlertKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AlertKind, 0, len(r.alerts))
	for _, a := range r.alerts {
		out = append(out, a.Kind)
	}
	return out
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

func configWith(symbols ...string) *models.Configuration {
	cfg := models.DefaultConfiguration()
	cfg.Telegram = models.TelegramCredentials{BotToken: "token", ChatID: "42"}
	for _, s := range symbols {
		cfg.AddSymbol(s)
	}
	return cfg
}

func risingBars(n int) []models.Candle {
	out := make([]models.Candle, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		p := 100 + float64(i)
		out[i] = models.Candle{Bucket: start.AddDate(0, 0, i), Open: p, High: p, Low: p, Close: p, Volume: 1000}
	}
	return out
}

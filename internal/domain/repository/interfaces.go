package repository

import (
	"context"
	"time"

	"DeBrief/internal/domain/models"
)

// QuoteProvider returns the latest price snapshot for a symbol.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
}

// HistoryProvider returns up to n trailing daily bars, oldest first.
type HistoryProvider interface {
	DailyBars(ctx context.Context, symbol string, n int) ([]models.Candle, error)
}

type MarketData interface {
	QuoteProvider
	HistoryProvider
}

type NewsProvider interface {
	News(ctx context.Context, symbol string) ([]models.NewsItem, error)
}

type FilingProvider interface {
	Filings(ctx context.Context, symbol string) ([]models.NewsItem, error)
}

type CalendarProvider interface {
	EconomicCalendar(ctx context.Context, from, to time.Time) ([]models.EconomicEvent, error)
}

// Messenger is the chat transport.
type Messenger interface {
	SendMessage(ctx context.Context, creds models.TelegramCredentials, text string) error
	GetUpdates(ctx context.Context, token string, offset int64, timeout time.Duration) ([]models.ChatMessage, error)
	GetMe(ctx context.Context, token string) (string, error)
}

// AlertPublisher mirrors alerts to an event stream.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, a *models.Alert) error
	Close() error
}

// DocumentStore is a remote home for the configuration blob.
type DocumentStore interface {
	Name() string
	Get(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, doc []byte) error
}

// ConfigStore is the read-merge-write gateway to the persisted configuration.
type ConfigStore interface {
	Load(ctx context.Context) (*models.Configuration, error)
	Update(ctx context.Context, mutate func(*models.Configuration) error) (*models.Configuration, error)
}

type Metrics interface {
	RecordAlertSent(kind string, delivered bool)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordTick(outcome string, watched int)
	RecordStoreWrite(target string, ok bool)
}

// Package notify delivers alerts to the chat transport. Delivery is a single
// attempt: failures are logged and counted, never retried.
package notify

import (
	"context"
	"time"

	"DeBrief/internal/domain/models"
	"DeBrief/internal/domain/repository"
	"DeBrief/internal/service/ratelimit"
	"DeBrief/pkg/logger"
	"DeBrief/pkg/metrics"
)

type Dispatcher struct {
	messenger   repository.Messenger
	publisher   repository.AlertPublisher
	limiter     *ratelimit.Limiter
	metrics     repository.Metrics
	log         *logger.Logger
	waitTimeout time.Duration
}

type Option func(*Dispatcher)

// WithPublisher mirrors every alert to an event stream.
func WithPublisher(p repository.AlertPublisher) Option {
	return func(d *Dispatcher) { d.publisher = p }
}

// WithLimiter throttles sends per chat; waitTimeout bounds how long one send may queue.
func WithLimiter(l *ratelimit.Limiter, waitTimeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.limiter = l
		d.waitTimeout = waitTimeout
	}
}

func WithMetrics(m repository.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

func NewDispatcher(m repository.Messenger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		messenger: m,
		metrics:   metrics.Nop{},
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch formats and sends one alert and reports whether the transport
// accepted it. Callers must not retry.
func (d *Dispatcher) Dispatch(ctx context.Context, creds models.TelegramCredentials, a *models.Alert) bool {
	if a.OccurredAt.IsZero() {
		a.OccurredAt = time.Now()
	}
	err := d.SendText(ctx, creds, Format(a))
	delivered := err == nil
	d.metrics.RecordAlertSent(string(a.Kind), delivered)
	if err != nil {
		d.log.Warn("alert not delivered",
			logger.String("symbol", a.Symbol),
			logger.String("kind", string(a.Kind)),
			logger.Error(err))
	} else {
		d.log.Debug("alert delivered",
			logger.String("symbol", a.Symbol),
			logger.String("kind", string(a.Kind)))
	}

	if d.publisher != nil {
		if perr := d.publisher.PublishAlert(ctx, a); perr != nil {
			d.log.Warn("alert publish failed", logger.String("symbol", a.Symbol), logger.Error(perr))
		}
	}
	return delivered
}

// SendText sends free-form text through the same throttle.
func (d *Dispatcher) SendText(ctx context.Context, creds models.TelegramCredentials, text string) error {
	if d.limiter != nil {
		wctx := ctx
		if d.waitTimeout > 0 {
			var cancel context.CancelFunc
			wctx, cancel = context.WithTimeout(ctx, d.waitTimeout)
			defer cancel()
		}
		if err := d.limiter.Wait(wctx, creds.ChatID); err != nil {
			return err
		}
	}
	return d.messenger.SendMessage(ctx, creds, text)
}

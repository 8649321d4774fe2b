package usecase

import (
	"context"
	"fmt"
	"time"

	"DeBrief/internal/domain/models"
	drepo "DeBrief/internal/domain/repository"
	"DeBrief/internal/ledger"
	"DeBrief/internal/policy"
	"DeBrief/internal/services/indicators"
	"DeBrief/pkg/logger"
)

// AlertSink delivers one alert with a single attempt.
type AlertSink interface {
	Dispatch(ctx context.Context, creds models.TelegramCredentials, a *models.Alert) bool
}

// Sources are the providers consulted per symbol. Filings may be nil.
type Sources struct {
	Market  drepo.MarketData
	News    drepo.NewsProvider
	Filings drepo.FilingProvider
}

// Rules gathers the policy parameters.
type Rules struct {
	Price           policy.PriceRule
	News            policy.NewsRule
	RSI             policy.RSIRule
	Technical       policy.TechnicalRule
	HistoryBars     int
	ProviderTimeout time.Duration
}

func DefaultRules() Rules {
	return Rules{
		Price:           policy.DefaultPriceRule(),
		News:            policy.DefaultNewsRule(),
		RSI:             policy.DefaultRSIRule(),
		Technical:       policy.DefaultTechnicalRule(),
		HistoryBars:     260,
		ProviderTimeout: 10 * time.Second,
	}
}

// SymbolReport summarizes one symbol's evaluation within a tick.
type SymbolReport struct {
	Symbol  string
	Alerts  int
	Skipped bool
	Errors  []string
}

// SymbolEvaluator runs every enabled policy for one symbol against one ledger.
type SymbolEvaluator struct {
	src     Sources
	rules   Rules
	ledger  *ledger.Ledger
	sink    AlertSink
	metrics drepo.Metrics
	log     *logger.Logger
	now     func() time.Time
}

func NewSymbolEvaluator(src Sources, rules Rules, l *ledger.Ledger, sink AlertSink, metrics drepo.Metrics, log *logger.Logger) *SymbolEvaluator {
	return &SymbolEvaluator{
		src:     src,
		rules:   rules,
		ledger:  l,
		sink:    sink,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

func (e *SymbolEvaluator) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.rules.ProviderTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.rules.ProviderTimeout)
}

func (e *SymbolEvaluator) providerFailed(rep *SymbolReport, op string, err error) {
	kind := drepo.KindOf(err)
	e.metrics.RecordError(op)
	rep.Errors = append(rep.Errors, fmt.Sprintf("%s: %v", op, err))
	fields := []logger.Field{
		logger.String("symbol", rep.Symbol),
		logger.String("op", op),
		logger.String("kind", string(kind)),
		logger.Error(err),
	}
	if kind == drepo.KindNotFound {
		e.log.Debug("provider returned nothing", fields...)
		return
	}
	e.log.Warn("provider call failed", fields...)
}

func (e *SymbolEvaluator) emit(ctx context.Context, creds models.TelegramCredentials, rep *SymbolReport, a *models.Alert) {
	a.Symbol = rep.Symbol
	if a.OccurredAt.IsZero() {
		a.OccurredAt = e.now()
	}
	e.sink.Dispatch(ctx, creds, a)
	rep.Alerts++
}

// Evaluate runs news, price and technical policies for sym. history is the
// persisted news history; identities sent now are added to delta.
func (e *SymbolEvaluator) Evaluate(ctx context.Context, creds models.TelegramCredentials, sym string, ws models.WatchSettings, history []string, delta *ledger.Delta) SymbolReport {
	rep := SymbolReport{Symbol: sym}
	if !ws.Watch {
		rep.Skipped = true
		return rep
	}
	start := e.now()
	e.ledger.Seed(sym, history)

	if ws.News || ws.Filings {
		e.evaluateNews(ctx, creds, &rep, ws, delta)
	}

	needsHistory := ws.NeedsHistory()
	if !ws.PriceMove && !needsHistory {
		return rep
	}
	qctx, cancel := e.bounded(ctx)
	quote, err := e.src.Market.Quote(qctx, sym)
	cancel()
	if err != nil {
		e.providerFailed(&rep, "quote", err)
	} else {
		e.metrics.RecordLastPrice(sym, quote.Last)
		if ws.PriceMove {
			e.evaluatePrice(ctx, creds, &rep, quote)
		}
	}

	if needsHistory {
		last := 0.0
		if quote != nil {
			last = quote.Last
		}
		e.evaluateHistory(ctx, creds, &rep, ws, last)
	}
	e.metrics.RecordLatency("evaluate_symbol", e.now().Sub(start).Seconds())
	return rep
}

func (e *SymbolEvaluator) evaluateNews(ctx context.Context, creds models.TelegramCredentials, rep *SymbolReport, ws models.WatchSettings, delta *ledger.Delta) {
	var items []models.NewsItem
	if ws.News && e.src.News != nil {
		nctx, cancel := e.bounded(ctx)
		news, err := e.src.News.News(nctx, rep.Symbol)
		cancel()
		if err != nil {
			e.providerFailed(rep, "news", err)
		}
		for _, it := range news {
			it.IsFiling = false
			items = append(items, it)
		}
	}
	if ws.Filings && e.src.Filings != nil {
		fctx, cancel := e.bounded(ctx)
		filings, err := e.src.Filings.Filings(fctx, rep.Symbol)
		cancel()
		if err != nil {
			e.providerFailed(rep, "filings", err)
		}
		for _, it := range filings {
			it.IsFiling = true
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return
	}

	now := e.now()
	sel := policy.SelectNews(e.rules.News, items, func(id string) bool {
		return e.ledger.Seen(rep.Symbol, id)
	}, now)
	for i, it := range sel.Emit {
		id := sel.Identities[i]
		// marked before the attempt: a failed send is not retried
		e.ledger.MarkSeen(rep.Symbol, id)
		delta.Add(rep.Symbol, id)

		kind := models.AlertNews
		if it.IsFiling {
			kind = models.AlertFiling
		}
		e.emit(ctx, creds, rep, &models.Alert{
			Kind:     kind,
			Title:    it.Title,
			Link:     it.Link,
			Breaking: it.IsBreaking(now, e.rules.News.BreakingWindow),
		})
	}
	if held := sel.Fresh - len(sel.Emit); held > 0 {
		e.log.Debug("news held back by per-tick cap",
			logger.String("symbol", rep.Symbol), logger.Int("held", held))
	}
}

func (e *SymbolEvaluator) evaluatePrice(ctx context.Context, creds models.TelegramCredentials, rep *SymbolReport, q *models.Quote) {
	d := policy.EvaluatePrice(e.rules.Price, e.ledger.PriceMark(rep.Symbol), q.Last, q.PreviousClose)
	e.ledger.SetPriceMark(rep.Symbol, d.Next)
	if !d.Emit {
		return
	}
	e.emit(ctx, creds, rep, &models.Alert{
		Kind:  models.AlertPriceMove,
		Title: fmt.Sprintf("%+.2f%%", d.Pct),
		Body:  fmt.Sprintf("$%.2f (prev close $%.2f)", q.Last, q.PreviousClose),
		Value: d.Pct,
	})
}

func (e *SymbolEvaluator) evaluateHistory(ctx context.Context, creds models.TelegramCredentials, rep *SymbolReport, ws models.WatchSettings, last float64) {
	hctx, cancel := e.bounded(ctx)
	bars, err := e.src.Market.DailyBars(hctx, rep.Symbol, e.rules.HistoryBars)
	cancel()
	if err != nil {
		e.providerFailed(rep, "history", err)
		return
	}
	if len(bars) == 0 {
		return
	}

	if ws.RSI {
		closes := models.Closes(bars)
		if last > 0 {
			closes[len(closes)-1] = last
		}
		if rsi, ok := indicators.RSI(closes, e.rules.RSI.Period); ok {
			fire, next := policy.EvaluateRSI(e.rules.RSI, e.ledger.RSIState(rep.Symbol), rsi)
			e.ledger.SetRSIState(rep.Symbol, next)
			if fire {
				title := "RSI overbought"
				if next == ledger.RSIOversold {
					title = "RSI oversold"
				}
				e.emit(ctx, creds, rep, &models.Alert{Kind: models.AlertRSI, Title: title, Value: rsi})
			}
		}
	}

	signals := policy.EvaluateTechnicals(e.rules.Technical, ws, bars, last, func(t models.Toggle) string {
		return e.ledger.Signal(rep.Symbol, t)
	})
	for _, s := range signals {
		e.ledger.SetSignal(rep.Symbol, s.Toggle, s.State)
		if !s.Emit {
			continue
		}
		e.emit(ctx, creds, rep, &models.Alert{
			Kind:  alertKindFor(s.Toggle),
			Title: s.Detail,
			Value: s.Value,
		})
	}
}

func alertKindFor(t models.Toggle) models.AlertKind {
	switch t {
	case models.ToggleVolume:
		return models.AlertVolume
	case models.ToggleNewHigh:
		return models.AlertNewHigh
	case models.ToggleMACross:
		return models.AlertMACross
	case models.ToggleBollinger:
		return models.AlertBollinger
	case models.ToggleMACD:
		return models.AlertMACD
	}
	return models.AlertKind(t)
}

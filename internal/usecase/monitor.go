package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"DeBrief/internal/domain/models"
	drepo "DeBrief/internal/domain/repository"
	"DeBrief/internal/ledger"
	"DeBrief/pkg/logger"
)

// Tick outcomes.
const (
	TickOK            = "ok"
	TickInactive      = "inactive"
	TickNoCredentials = "no_credentials"
	TickLoadFailed    = "load_failed"
	TickMergeFailed   = "merge_failed"
)

// TickReport summarizes one scheduler pass.
type TickReport struct {
	Started  time.Time
	Duration time.Duration
	Outcome  string
	Watched  int
	Alerts   int
	Errors   int
	Panics   int
	Appended int
}

// Monitor is the background actor: every interval it reloads the
// configuration, evaluates watched symbols on a bounded pool and merges the
// resulting news history back with one read-merge-write.
type Monitor struct {
	store      drepo.ConfigStore
	eval       *SymbolEvaluator
	ledger     *ledger.Ledger
	metrics    drepo.Metrics
	log        *logger.Logger
	interval   time.Duration
	workers    int
	historyCap int
}

func NewMonitor(store drepo.ConfigStore, eval *SymbolEvaluator, l *ledger.Ledger, metrics drepo.Metrics, log *logger.Logger, interval time.Duration, workers, historyCap int) *Monitor {
	if workers < 1 {
		workers = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Monitor{
		store:      store,
		eval:       eval,
		ledger:     l,
		metrics:    metrics,
		log:        log,
		interval:   interval,
		workers:    workers,
		historyCap: historyCap,
	}
}

// Name identifies the actor to the supervisor.
func (m *Monitor) Name() string { return "monitor" }

// Run ticks immediately and then every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("monitor started",
		logger.Duration("interval", m.interval),
		logger.Int("workers", m.workers))
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		rep := m.Tick(ctx)
		m.logReport(rep)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Monitor) logReport(rep TickReport) {
	fields := []logger.Field{
		logger.String("outcome", rep.Outcome),
		logger.Int("watched", rep.Watched),
		logger.Int("alerts", rep.Alerts),
		logger.Int("errors", rep.Errors),
		logger.Int("appended", rep.Appended),
		logger.Duration("took", rep.Duration),
	}
	switch {
	case rep.Panics > 0:
		m.log.Error("tick finished with panics", append(fields, logger.Int("panics", rep.Panics))...)
	case rep.Outcome == TickLoadFailed || rep.Outcome == TickMergeFailed:
		m.log.Warn("tick incomplete", fields...)
	default:
		m.log.Debug("tick finished", fields...)
	}
}

// Tick runs one pass. In-flight work is not cancelled with ctx; provider
// timeouts bound it instead, so a shutdown never leaves a half-merged history.
func (m *Monitor) Tick(ctx context.Context) TickReport {
	rep := TickReport{Started: time.Now()}
	defer func() {
		rep.Duration = time.Since(rep.Started)
		m.metrics.RecordTick(rep.Outcome, rep.Watched)
	}()
	tctx := context.WithoutCancel(ctx)

	cfg, err := m.store.Load(tctx)
	if err != nil {
		rep.Outcome = TickLoadFailed
		m.log.Error("config load failed", logger.Error(err))
		return rep
	}
	if !cfg.SystemActive {
		rep.Outcome = TickInactive
		return rep
	}
	if !cfg.Telegram.Valid() {
		rep.Outcome = TickNoCredentials
		m.log.Warn("telegram credentials missing; skipping tick")
		return rep
	}

	m.ledger.Retain(cfg.Symbols())
	symbols := cfg.WatchedSymbols()
	rep.Watched = len(symbols)
	delta := ledger.NewDelta()

	var (
		wg     sync.WaitGroup
		sem    = make(chan struct{}, m.workers)
		alerts atomic.Int64
		errs   atomic.Int64
		panics atomic.Int64
	)
	for _, sym := range symbols {
		ws := cfg.Tickers[sym]
		history := cfg.NewsHistory[sym]
		wg.Add(1)
		sem <- struct{}{}
		go func(sym string, ws models.WatchSettings, history []string) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					panics.Add(1)
					m.metrics.RecordError("panic")
					m.log.Error("symbol evaluation panicked",
						logger.String("symbol", sym),
						logger.String("panic", fmt.Sprint(r)))
				}
			}()
			sr := m.eval.Evaluate(tctx, cfg.Telegram, sym, ws, history, delta)
			alerts.Add(int64(sr.Alerts))
			errs.Add(int64(len(sr.Errors)))
		}(sym, ws, history)
	}
	wg.Wait()

	rep.Alerts = int(alerts.Load())
	rep.Errors = int(errs.Load())
	rep.Panics = int(panics.Load())
	rep.Outcome = TickOK

	if delta.Empty() {
		return rep
	}
	_, err = m.store.Update(tctx, func(fresh *models.Configuration) error {
		delta.Apply(fresh, m.historyCap)
		return nil
	})
	if err != nil {
		rep.Outcome = TickMergeFailed
		m.log.Error("news history merge failed", logger.Error(err), logger.Int("pending", delta.Count()))
		return rep
	}
	rep.Appended = delta.Count()
	return rep
}

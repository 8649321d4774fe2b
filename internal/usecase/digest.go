package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"DeBrief/internal/domain/models"
	drepo "DeBrief/internal/domain/repository"
	"DeBrief/internal/policy"
	"DeBrief/internal/services/indicators"
	"DeBrief/pkg/logger"
	"DeBrief/pkg/util"

	"github.com/go-co-op/gocron"
)

const (
	digestMaxEvents = 15
	volWindow       = 20
)

// DigestGate lets at most one digest through per local calendar date.
type DigestGate struct {
	mu   sync.Mutex
	last string
}

// TryClaim reports whether date has not been claimed yet, claiming it.
func (g *DigestGate) TryClaim(date string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last == date {
		return false
	}
	g.last = date
	return true
}

// DigestOptions filter the calendar section.
type DigestOptions struct {
	Location  *time.Location
	Countries []string
	MinImpact models.Impact
	Timeout   time.Duration
}

// Digest composes and sends the once-a-day economic brief.
type Digest struct {
	store    drepo.ConfigStore
	calendar drepo.CalendarProvider
	market   drepo.MarketData
	sink     AlertSink
	opts     DigestOptions
	gate     DigestGate
	log      *logger.Logger
	now      func() time.Time
}

func NewDigest(store drepo.ConfigStore, calendar drepo.CalendarProvider, market drepo.MarketData, sink AlertSink, opts DigestOptions, log *logger.Logger) *Digest {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Digest{
		store:    store,
		calendar: calendar,
		market:   market,
		sink:     sink,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// Run sends today's digest if the system and economic mode are on and no
// digest went out today. force skips the date gate (manual trigger).
func (d *Digest) Run(ctx context.Context, force bool) (bool, error) {
	cfg, err := d.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load config: %w", err)
	}
	if !cfg.SystemActive || !cfg.EconomicMode || !cfg.Telegram.Valid() {
		return false, nil
	}
	now := d.now().In(d.opts.Location)
	if !force && !d.gate.TryClaim(now.Format("2006-01-02")) {
		return false, nil
	}
	text := d.Build(ctx, cfg, now)
	d.sink.Dispatch(ctx, cfg.Telegram, &models.Alert{
		Kind:       models.AlertDigest,
		Title:      text,
		OccurredAt: now,
	})
	d.log.Info("digest sent", logger.Int("symbols", len(cfg.WatchedSymbols())))
	return true, nil
}

// Build renders the digest text for the local day containing now.
func (d *Digest) Build(ctx context.Context, cfg *models.Configuration, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗓 Morning brief %s (%s)\n", now.Format("2006-01-02 Mon"), d.opts.Location)

	b.WriteString("\n📅 Economic calendar\n")
	events, err := d.events(ctx, now)
	switch {
	case err != nil:
		d.log.Warn("economic calendar unavailable", logger.Error(err))
		b.WriteString("• unavailable\n")
	case len(events) == 0:
		b.WriteString("• no scheduled events\n")
	}
	for _, e := range events {
		fmt.Fprintf(&b, "• %s %s %s [%s]%s\n",
			e.Time.In(d.opts.Location).Format("15:04"), e.Country, e.Event, e.Impact, figures(e))
	}

	symbols := cfg.WatchedSymbols()
	if len(symbols) == 0 {
		return strings.TrimRight(b.String(), "\n")
	}
	b.WriteString("\n📈 Watchlist\n")
	for _, sym := range symbols {
		b.WriteString(d.snapshot(ctx, sym))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *Digest) events(ctx context.Context, now time.Time) ([]models.EconomicEvent, error) {
	if d.calendar == nil {
		return nil, nil
	}
	dayStart, dayEnd := util.DayBounds(now, d.opts.Location)

	cctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()
	all, err := d.calendar.EconomicCalendar(cctx, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return nil, err
	}
	return FilterEvents(all, dayStart, dayEnd, d.opts.Countries, d.opts.MinImpact, digestMaxEvents), nil
}

// FilterEvents keeps events in [from, to) from the given countries (all when
// empty) at or above minImpact, sorted by time and capped at max.
func FilterEvents(events []models.EconomicEvent, from, to time.Time, countries []string, minImpact models.Impact, max int) []models.EconomicEvent {
	allowed := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		allowed[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}
	out := make([]models.EconomicEvent, 0, len(events))
	for _, e := range events {
		if e.Time.Before(from) || !e.Time.Before(to) {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[strings.ToUpper(e.Country)]; !ok {
				continue
			}
		}
		if e.Impact.Rank() < minImpact.Rank() {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

func figures(e models.EconomicEvent) string {
	var parts []string
	add := func(label string, v *float64) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s %g%s", label, *v, e.Unit))
		}
	}
	add("act", e.Actual)
	add("est", e.Estimate)
	add("prev", e.Previous)
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " / ")
}

func (d *Digest) snapshot(ctx context.Context, sym string) string {
	if d.market == nil {
		return "• " + sym
	}
	qctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	q, err := d.market.Quote(qctx, sym)
	cancel()
	if err != nil {
		return fmt.Sprintf("• %s n/a", sym)
	}
	line := fmt.Sprintf("• %s $%.2f (%+.2f%%)", sym, q.Last, policy.PercentChange(q.Last, q.PreviousClose))

	hctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	bars, err := d.market.DailyBars(hctx, sym, volWindow+1)
	cancel()
	if err == nil {
		returns := indicators.ComputeLogReturns(models.Closes(bars))
		if vol := indicators.RealizedVolatility(returns, volWindow, indicators.TradingDaysPerYear); vol > 0 {
			line += fmt.Sprintf(" vol %.1f%%", vol*100)
		}
	}
	return line
}

// DigestScheduler fires the digest once a day at a wall-clock time.
type DigestScheduler struct {
	digest *Digest
	cron   *gocron.Scheduler
	at     string
	log    *logger.Logger
}

func NewDigestScheduler(d *Digest, at string, log *logger.Logger) *DigestScheduler {
	return &DigestScheduler{
		digest: d,
		cron:   gocron.NewScheduler(d.opts.Location),
		at:     at,
		log:    log,
	}
}

// Start registers the daily job and runs the scheduler in the background.
func (s *DigestScheduler) Start(ctx context.Context) error {
	_, err := s.cron.Every(1).Day().At(s.at).Do(func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.digest.Run(ctx, false); err != nil {
			s.log.Error("digest failed", logger.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule digest at %s: %w", s.at, err)
	}
	s.cron.StartAsync()
	s.log.Info("digest scheduled", logger.String("at", s.at), logger.String("tz", s.digest.opts.Location.String()))
	return nil
}

func (s *DigestScheduler) Stop() {
	s.cron.Stop()
}

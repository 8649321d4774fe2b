package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"DeBrief/internal/domain/models"
	drepo "DeBrief/internal/domain/repository"
	"DeBrief/internal/policy"
)

const helpText = `Commands:
/on | /off - start or pause monitoring
/status - system state
/list - watched symbols and their alerts
/add TSLA,AAPL - watch symbols
/remove TSLA - stop watching
/price TSLA - latest price
/news TSLA - latest headlines
/toggle TSLA rsi on|off - switch one alert (or "all")
/economic on|off - daily economic digest
/digest - send the digest now`

// DigestRunner triggers a digest on demand.
type DigestRunner interface {
	Run(ctx context.Context, force bool) (bool, error)
}

// Commands answers chat commands. Every mutation is a read-merge-write
// through the config store.
type Commands struct {
	store   drepo.ConfigStore
	market  drepo.QuoteProvider
	news    drepo.NewsProvider
	digest  DigestRunner
	timeout time.Duration
}

func NewCommands(store drepo.ConfigStore, market drepo.QuoteProvider, news drepo.NewsProvider, digest DigestRunner, timeout time.Duration) *Commands {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Commands{store: store, market: market, news: news, digest: digest, timeout: timeout}
}

var errUsage = errors.New("usage")

// Handle returns the reply for one message; empty means no reply.
func (c *Commands) Handle(ctx context.Context, text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	args := fields[1:]

	var (
		reply string
		err   error
	)
	switch cmd {
	case "/start":
		reply = "🤖 DeBrief active\n\n" + helpText
	case "/help":
		reply = helpText
	case "/on", "/off":
		reply, err = c.setSystem(ctx, cmd == "/on")
	case "/status":
		reply, err = c.status(ctx)
	case "/list":
		reply, err = c.list(ctx)
	case "/add":
		reply, err = c.add(ctx, args)
	case "/remove":
		reply, err = c.remove(ctx, args)
	case "/price":
		reply, err = c.price(ctx, args)
	case "/news":
		reply, err = c.headlines(ctx, args)
	case "/toggle":
		reply, err = c.toggle(ctx, args)
	case "/economic":
		reply, err = c.economic(ctx, args)
	case "/digest":
		reply, err = c.runDigest(ctx)
	default:
		return "Unknown command. /help lists what I understand."
	}
	switch {
	case errors.Is(err, errUsage):
		return "Usage: " + strings.TrimPrefix(err.Error(), errUsage.Error()+": ")
	case err != nil:
		return "⚠️ " + err.Error()
	}
	return reply
}

func usage(s string) error { return fmt.Errorf("%w: %s", errUsage, s) }

func onOff(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "on", "true", "1", "yes":
		return true, true
	case "off", "false", "0", "no":
		return false, true
	}
	return false, false
}

func (c *Commands) setSystem(ctx context.Context, on bool) (string, error) {
	if _, err := c.store.Update(ctx, func(cfg *models.Configuration) error {
		cfg.SystemActive = on
		return nil
	}); err != nil {
		return "", err
	}
	if on {
		return "▶️ Monitoring on", nil
	}
	return "⏸ Monitoring paused", nil
}

func (c *Commands) status(ctx context.Context) (string, error) {
	cfg, err := c.store.Load(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("System: %s\nEconomic digest: %s\nWatching: %d of %d symbols",
		onLabel(cfg.SystemActive), onLabel(cfg.EconomicMode),
		len(cfg.WatchedSymbols()), len(cfg.Tickers)), nil
}

func onLabel(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (c *Commands) list(ctx context.Context) (string, error) {
	cfg, err := c.store.Load(ctx)
	if err != nil {
		return "", err
	}
	syms := cfg.Symbols()
	if len(syms) == 0 {
		return "Watchlist is empty. Try /add TSLA", nil
	}
	var b strings.Builder
	b.WriteString("📋 Watchlist")
	for _, sym := range syms {
		ws := cfg.Tickers[sym]
		mark := "👀"
		if !ws.Watch {
			mark = "💤"
		}
		var on []string
		for _, t := range ws.EnabledToggles() {
			if t != string(models.ToggleWatch) {
				on = append(on, t)
			}
		}
		fmt.Fprintf(&b, "\n%s %s: %s", mark, sym, strings.Join(on, ", "))
	}
	return b.String(), nil
}

func (c *Commands) add(ctx context.Context, args []string) (string, error) {
	syms := models.ParseSymbols(strings.Join(args, ","))
	if len(syms) == 0 {
		return "", usage("/add TSLA[,AAPL]")
	}
	var added, existing []string
	_, err := c.store.Update(ctx, func(cfg *models.Configuration) error {
		added, existing = added[:0], existing[:0]
		for _, s := range syms {
			if cfg.AddSymbol(s) {
				added = append(added, s)
			} else {
				existing = append(existing, s)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	var parts []string
	if len(added) > 0 {
		parts = append(parts, "✅ Added "+strings.Join(added, ", "))
	}
	if len(existing) > 0 {
		parts = append(parts, "Already watching "+strings.Join(existing, ", "))
	}
	return strings.Join(parts, "\n"), nil
}

func (c *Commands) remove(ctx context.Context, args []string) (string, error) {
	syms := models.ParseSymbols(strings.Join(args, ","))
	if len(syms) == 0 {
		return "", usage("/remove TSLA[,AAPL]")
	}
	var removed, missing []string
	_, err := c.store.Update(ctx, func(cfg *models.Configuration) error {
		removed, missing = removed[:0], missing[:0]
		for _, s := range syms {
			if cfg.RemoveSymbol(s) {
				removed = append(removed, s)
			} else {
				missing = append(missing, s)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	var parts []string
	if len(removed) > 0 {
		parts = append(parts, "🗑 Removed "+strings.Join(removed, ", "))
	}
	if len(missing) > 0 {
		parts = append(parts, "Not watching "+strings.Join(missing, ", "))
	}
	return strings.Join(parts, "\n"), nil
}

func (c *Commands) price(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 || c.market == nil {
		return "", usage("/price TSLA")
	}
	sym := models.NormalizeSymbol(args[0])
	qctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	q, err := c.market.Quote(qctx, sym)
	if err != nil {
		if drepo.KindOf(err) == drepo.KindNotFound {
			return fmt.Sprintf("No price for %s", sym), nil
		}
		return "", fmt.Errorf("price lookup failed for %s", sym)
	}
	return fmt.Sprintf("💵 %s $%.2f (%+.2f%%)", sym, q.Last, policy.PercentChange(q.Last, q.PreviousClose)), nil
}

func (c *Commands) headlines(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 || c.news == nil {
		return "", usage("/news TSLA")
	}
	sym := models.NormalizeSymbol(args[0])
	nctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	items, err := c.news.News(nctx, sym)
	if err != nil {
		return "", fmt.Errorf("news lookup failed for %s", sym)
	}
	if len(items) == 0 {
		return fmt.Sprintf("No recent news for %s", sym), nil
	}
	if len(items) > 3 {
		items = items[:3]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📰 %s", sym)
	for _, it := range items {
		fmt.Fprintf(&b, "\n• %s\n%s", it.Title, it.Link)
	}
	return b.String(), nil
}

func (c *Commands) toggle(ctx context.Context, args []string) (string, error) {
	if len(args) != 3 {
		return "", usage("/toggle TSLA rsi on|off")
	}
	on, ok := onOff(args[2])
	if !ok {
		return "", usage("/toggle TSLA rsi on|off")
	}
	sym := models.NormalizeSymbol(args[0])
	all := strings.EqualFold(args[1], "all")
	t, known := models.ParseToggle(args[1])
	if !all && !known {
		names := make([]string, 0, len(models.AllToggles))
		for _, t := range models.AllToggles {
			names = append(names, string(t))
		}
		return fmt.Sprintf("Unknown alert %q. Choose one of: %s, all", args[1], strings.Join(names, ", ")), nil
	}

	found := false
	_, err := c.store.Update(ctx, func(cfg *models.Configuration) error {
		ws, ok := cfg.Tickers[sym]
		found = ok
		if !ok {
			return nil
		}
		if all {
			ws.SetAll(on)
			cfg.Tickers[sym] = ws
			return nil
		}
		cfg.SetToggle(sym, t, on)
		return nil
	})
	if err != nil {
		return "", err
	}
	if !found {
		return fmt.Sprintf("Not watching %s", sym), nil
	}
	name := "all alerts"
	if !all {
		name = string(t)
	}
	return fmt.Sprintf("🔧 %s %s %s", sym, name, onLabel(on)), nil
}

func (c *Commands) economic(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("/economic on|off")
	}
	on, ok := onOff(args[0])
	if !ok {
		return "", usage("/economic on|off")
	}
	if _, err := c.store.Update(ctx, func(cfg *models.Configuration) error {
		cfg.EconomicMode = on
		return nil
	}); err != nil {
		return "", err
	}
	return "🗓 Economic digest " + onLabel(on), nil
}

func (c *Commands) runDigest(ctx context.Context) (string, error) {
	if c.digest == nil {
		return "Digest is not configured", nil
	}
	sent, err := c.digest.Run(ctx, true)
	if err != nil {
		return "", err
	}
	if !sent {
		return "Digest needs the system and economic mode on (/on, /economic on)", nil
	}
	return "", nil
}

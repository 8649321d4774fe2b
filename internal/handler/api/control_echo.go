package api

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	models "DeBrief/internal/domain/models"
	domrepo "DeBrief/internal/domain/repository"
	"DeBrief/internal/policy"
	"DeBrief/pkg/cache"
	xhttp "DeBrief/pkg/http"
	xlogger "DeBrief/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ControlOptions tunes the control handler.
type ControlOptions struct {
	LogFile      string
	QuoteTTL     time.Duration
	QuoteTimeout time.Duration
}

// ControlEchoHandler is the foreground editor: every mutation goes through
// ConfigStore.Update so it merges with the monitor's history writes.
type ControlEchoHandler struct {
	logger    *xlogger.Logger
	store     domrepo.ConfigStore
	messenger domrepo.Messenger
	quotes    domrepo.QuoteProvider
	cache     cache.Service
	opts      ControlOptions
}

func NewControlEchoHandler(
	logger *xlogger.Logger,
	store domrepo.ConfigStore,
	messenger domrepo.Messenger,
	quotes domrepo.QuoteProvider,
	c cache.Service,
	opts ControlOptions,
) *ControlEchoHandler {
	if opts.QuoteTTL <= 0 {
		opts.QuoteTTL = 15 * time.Second
	}
	if opts.QuoteTimeout <= 0 {
		opts.QuoteTimeout = 10 * time.Second
	}
	return &ControlEchoHandler{
		logger:    logger,
		store:     store,
		messenger: messenger,
		quotes:    quotes,
		cache:     c,
		opts:      opts,
	}
}

func (h *ControlEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/config", h.Config)
	g.PUT("/system", h.System)
	g.PUT("/economic", h.Economic)
	g.GET("/watchlist", h.Watchlist)
	g.POST("/watchlist", h.AddSymbols)
	g.POST("/watchlist/bulk", h.BulkToggles)
	g.PATCH("/watchlist/:symbol", h.PatchToggles)
	g.DELETE("/watchlist/:symbol", h.RemoveSymbol)
	g.PUT("/telegram", h.SaveTelegram)
	g.POST("/telegram/test", h.TestTelegram)
	g.GET("/quotes", h.Quotes)
	g.GET("/logs", h.Logs)
}

func (h *ControlEchoHandler) update(c echo.Context, op string, mutate func(*models.Configuration) error) (*models.Configuration, error) {
	cfg, err := h.store.Update(c.Request().Context(), mutate)
	if err != nil {
		h.logger.Warn("control update failed", xlogger.String("op", op), xlogger.Error(err))
	}
	return cfg, err
}

func (h *ControlEchoHandler) Config(c echo.Context) error {
	cfg, err := h.store.Load(c.Request().Context())
	if err != nil {
		h.logger.Error("load config failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not load configuration").WithError(err))
	}
	return xhttp.SuccessResponse(c, models.NewConfigView(cfg))
}

func (h *ControlEchoHandler) System(c echo.Context) error {
	req := &models.SwitchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	cfg, err := h.update(c, "system", func(cfg *models.Configuration) error {
		cfg.SystemActive = *req.Active
		return nil
	})
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	h.logger.Info("system switched", xlogger.Bool("active", cfg.SystemActive))
	return xhttp.SuccessResponse(c, models.NewConfigView(cfg))
}

func (h *ControlEchoHandler) Economic(c echo.Context) error {
	req := &models.SwitchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	cfg, err := h.update(c, "economic", func(cfg *models.Configuration) error {
		cfg.EconomicMode = *req.Active
		return nil
	})
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, models.NewConfigView(cfg))
}

func watchRows(cfg *models.Configuration) []models.WatchRow {
	syms := cfg.Symbols()
	rows := make([]models.WatchRow, 0, len(syms))
	for _, sym := range syms {
		rows = append(rows, models.WatchRow{Symbol: sym, WatchSettings: cfg.Tickers[sym]})
	}
	return rows
}

func (h *ControlEchoHandler) Watchlist(c echo.Context) error {
	cfg, err := h.store.Load(c.Request().Context())
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not load configuration").WithError(err))
	}
	rows := watchRows(cfg)
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// AddSymbolsResult reports which symbols were new.
type AddSymbolsResult struct {
	Added    []string `json:"added"`
	Existing []string `json:"existing"`
}

func (h *ControlEchoHandler) AddSymbols(c echo.Context) error {
	req := &models.AddSymbolsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbols := models.ParseSymbols(req.Symbols)

	res := AddSymbolsResult{Added: []string{}, Existing: []string{}}
	_, err := h.update(c, "add_symbols", func(cfg *models.Configuration) error {
		res = AddSymbolsResult{Added: []string{}, Existing: []string{}}
		for _, sym := range symbols {
			if cfg.AddSymbol(sym) {
				res.Added = append(res.Added, sym)
			} else {
				res.Existing = append(res.Existing, sym)
			}
		}
		return nil
	})
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	h.logger.Info("symbols added", xlogger.Strings("added", res.Added))
	return xhttp.CreatedResponse(c, res)
}

func (h *ControlEchoHandler) PatchToggles(c echo.Context) error {
	req := &models.PatchTogglesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sym := models.NormalizeSymbol(req.Symbol)

	changes := make(map[models.Toggle]bool, len(req.Toggles))
	var unknown []string
	for name, on := range req.Toggles {
		t, ok := models.ParseToggle(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		changes[t] = on
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("unknown toggles: %s", strings.Join(unknown, ", ")).
			WithParam("known", models.AllToggles))
	}

	cfg, err := h.update(c, "patch_toggles", func(cfg *models.Configuration) error {
		if _, ok := cfg.Tickers[sym]; !ok {
			return xhttp.NotFoundErrorf("%s is not on the watchlist", sym)
		}
		for t, on := range changes {
			cfg.SetToggle(sym, t, on)
		}
		return nil
	})
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, models.WatchRow{Symbol: sym, WatchSettings: cfg.Tickers[sym]})
}

func (h *ControlEchoHandler) RemoveSymbol(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sym := models.NormalizeSymbol(req.Symbol)

	_, err := h.update(c, "remove_symbol", func(cfg *models.Configuration) error {
		if !cfg.RemoveSymbol(sym) {
			return xhttp.NotFoundErrorf("%s is not on the watchlist", sym)
		}
		return nil
	})
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	h.logger.Info("symbol removed", xlogger.String("symbol", sym))
	return xhttp.SuccessResponse(c, map[string]string{"removed": sym})
}

func (h *ControlEchoHandler) BulkToggles(c echo.Context) error {
	req := &models.BulkTogglesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	cfg, err := h.update(c, "bulk_toggles", func(cfg *models.Configuration) error {
		cfg.SetAll(*req.Enabled)
		return nil
	})
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	rows := watchRows(cfg)
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *ControlEchoHandler) SaveTelegram(c echo.Context) error {
	req := &models.TelegramRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	cfg, err := h.update(c, "telegram", func(cfg *models.Configuration) error {
		cfg.Telegram = models.TelegramCredentials{
			BotToken: strings.TrimSpace(req.BotToken),
			ChatID:   strings.TrimSpace(req.ChatID),
		}
		return nil
	})
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	h.logger.Info("telegram credentials saved", xlogger.String("chat_id", cfg.Telegram.ChatID))
	return xhttp.SuccessResponse(c, models.NewConfigView(cfg).Telegram)
}

// TelegramTestResult is returned when the test message went out.
type TelegramTestResult struct {
	Bot    string `json:"bot"`
	ChatID string `json:"chat_id"`
	Sent   bool   `json:"sent"`
}

func (h *ControlEchoHandler) TestTelegram(c echo.Context) error {
	req := &models.TelegramTestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()
	cfg, err := h.store.Load(ctx)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not load configuration").WithError(err))
	}
	if !cfg.Telegram.Valid() {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("telegram bot token and chat id are not configured"))
	}

	bot, err := h.messenger.GetMe(ctx, cfg.Telegram.BotToken)
	if err != nil {
		h.logger.Warn("telegram test: getMe failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("telegram rejected the bot token").WithError(err))
	}
	if err := h.messenger.SendMessage(ctx, cfg.Telegram, req.Message); err != nil {
		h.logger.Warn("telegram test: send failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("telegram did not accept the test message").WithError(err))
	}
	return xhttp.SuccessResponse(c, TelegramTestResult{Bot: bot, ChatID: cfg.Telegram.ChatID, Sent: true})
}

func (h *ControlEchoHandler) Quotes(c echo.Context) error {
	ctx := c.Request().Context()
	cfg, err := h.store.Load(ctx)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not load configuration").WithError(err))
	}
	symbols := cfg.Symbols()
	if len(symbols) == 0 {
		return xhttp.ListResponse(c, []models.QuoteRow{}, 0)
	}

	key := cache.GenerateKey("quotes", cache.HashKey(strings.Join(symbols, ",")))
	load := func(ctx context.Context) ([]models.QuoteRow, error) {
		return h.snapshot(ctx, cfg, symbols), nil
	}
	var rows []models.QuoteRow
	if h.cache != nil {
		rows, _ = cache.GetOrLoad(ctx, h.cache, key, h.opts.QuoteTTL, load)
	} else {
		rows, _ = load(ctx)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, fmt.Sprintf("private, max-age=%d", int(h.opts.QuoteTTL.Seconds())))
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *ControlEchoHandler) snapshot(ctx context.Context, cfg *models.Configuration, symbols []string) []models.QuoteRow {
	rows := make([]models.QuoteRow, 0, len(symbols))
	for _, sym := range symbols {
		row := models.QuoteRow{Symbol: sym, Watching: cfg.Tickers[sym].Watch}
		qctx, cancel := context.WithTimeout(ctx, h.opts.QuoteTimeout)
		q, err := h.quotes.Quote(qctx, sym)
		cancel()
		switch {
		case err != nil:
			row.Error = string(domrepo.KindOf(err))
			h.logger.Debug("dashboard quote failed", xlogger.String("symbol", sym), xlogger.Error(err))
		case q == nil || !q.Available():
			row.Error = string(domrepo.KindUnavailable)
		default:
			row.Last = q.Last
			row.ChangePct = policy.PercentChange(q.Last, q.PreviousClose)
		}
		rows = append(rows, row)
	}
	return rows
}

func (h *ControlEchoHandler) Logs(c echo.Context) error {
	req := &models.LogsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	lines, err := xlogger.Tail(h.opts.LogFile, req.N)
	if err != nil {
		h.logger.Warn("log tail failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not read the log file").WithError(err))
	}
	return xhttp.ListResponse(c, lines, int64(len(lines)))
}

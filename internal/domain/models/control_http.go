package models

// Requests for the control HTTP endpoints. Defined in domain for consistency and reuse.

type SwitchRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type AddSymbolsRequest struct {
	Symbols string `json:"symbols" validate:"required,max=512,symbols"`
}

type SymbolRequest struct {
	Symbol string `param:"symbol" json:"-" validate:"required,max=16"`
}

// PatchTogglesRequest accepts current or legacy toggle names.
type PatchTogglesRequest struct {
	Symbol  string          `param:"symbol" json:"-" validate:"required,max=16"`
	Toggles map[string]bool `json:"toggles" validate:"required,min=1"`
}

type BulkTogglesRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type TelegramRequest struct {
	BotToken string `json:"bot_token" validate:"required,min=10,max=128"`
	ChatID   string `json:"chat_id" validate:"required,max=64"`
}

type TelegramTestRequest struct {
	Message string `json:"message" default:"DeBrief connection test" validate:"max=512"`
}

type LogsRequest struct {
	N int `query:"n" json:"n" default:"50" validate:"gte=1,lte=500"`
}

// ConfigView is the masked configuration returned to the editor.
type ConfigView struct {
	SystemActive bool                     `json:"system_active"`
	EconomicMode bool                     `json:"economic_mode"`
	Telegram     TelegramView             `json:"telegram"`
	Tickers      map[string]WatchSettings `json:"tickers"`
	HistorySizes map[string]int           `json:"history_sizes"`
}

type TelegramView struct {
	BotToken   string `json:"bot_token"`
	ChatID     string `json:"chat_id"`
	Configured bool   `json:"configured"`
}

// NewConfigView masks secrets out of cfg.
func NewConfigView(cfg *Configuration) *ConfigView {
	sizes := make(map[string]int, len(cfg.NewsHistory))
	for sym, h := range cfg.NewsHistory {
		sizes[sym] = len(h)
	}
	return &ConfigView{
		SystemActive: cfg.SystemActive,
		EconomicMode: cfg.EconomicMode,
		Telegram: TelegramView{
			BotToken:   cfg.Telegram.MaskedToken(),
			ChatID:     cfg.Telegram.ChatID,
			Configured: cfg.Telegram.Valid(),
		},
		Tickers:      cfg.Tickers,
		HistorySizes: sizes,
	}
}

// WatchRow is one line of the watchlist table.
type WatchRow struct {
	Symbol string `json:"symbol"`
	WatchSettings
}

// QuoteRow is one line of the dashboard snapshot.
type QuoteRow struct {
	Symbol    string  `json:"symbol"`
	Last      float64 `json:"last"`
	ChangePct float64 `json:"change_pct"`
	Watching  bool    `json:"watching"`
	Error     string  `json:"error,omitempty"`
}

package models

import (
	"sort"
	"strings"
)

// Toggle names one per-symbol alert switch.
type Toggle string

const (
	ToggleWatch     Toggle = "watch"
	ToggleNews      Toggle = "news"
	ToggleFilings   Toggle = "filings"
	TogglePriceMove Toggle = "price_move"
	ToggleVolume    Toggle = "volume"
	ToggleNewHigh   Toggle = "new_high"
	ToggleRSI       Toggle = "rsi"
	ToggleMACross   Toggle = "ma_cross"
	ToggleBollinger Toggle = "bollinger"
	ToggleMACD      Toggle = "macd"
)

// AllToggles lists every toggle in display order.
var AllToggles = []Toggle{
	ToggleWatch, ToggleNews, ToggleFilings, TogglePriceMove, ToggleVolume,
	ToggleNewHigh, ToggleRSI, ToggleMACross, ToggleBollinger, ToggleMACD,
}

// LegacyToggleNames maps first-schema keys to their current names.
var LegacyToggleNames = map[string]Toggle{
	"감시_ON":   ToggleWatch,
	"뉴스":      ToggleNews,
	"가격_3%":   TogglePriceMove,
	"거래량_2배":  ToggleVolume,
	"52주_신고가": ToggleNewHigh,
	"RSI":     ToggleRSI,
	"MA_크로스":  ToggleMACross,
	"볼린저":     ToggleBollinger,
	"MACD":    ToggleMACD,
}

// ParseToggle accepts a current name (any case) or a legacy name.
func ParseToggle(s string) (Toggle, bool) {
	s = strings.TrimSpace(s)
	if t, ok := LegacyToggleNames[s]; ok {
		return t, true
	}
	lower := Toggle(strings.ToLower(s))
	for _, t := range AllToggles {
		if t == lower {
			return t, true
		}
	}
	return "", false
}

// WatchSettings holds the toggles of one watched symbol.
type WatchSettings struct {
	Watch     bool `json:"watch"`
	News      bool `json:"news"`
	Filings   bool `json:"filings"`
	PriceMove bool `json:"price_move"`
	Volume    bool `json:"volume"`
	NewHigh   bool `json:"new_high"`
	RSI       bool `json:"rsi"`
	MACross   bool `json:"ma_cross"`
	Bollinger bool `json:"bollinger"`
	MACD      bool `json:"macd"`
}

// DefaultWatchSettings is the template applied to newly added symbols.
func DefaultWatchSettings() WatchSettings {
	return WatchSettings{
		Watch:     true,
		News:      true,
		Filings:   true,
		PriceMove: true,
		NewHigh:   true,
	}
}

func (w *WatchSettings) field(t Toggle) *bool {
	switch t {
	case ToggleWatch:
		return &w.Watch
	case ToggleNews:
		return &w.News
	case ToggleFilings:
		return &w.Filings
	case TogglePriceMove:
		return &w.PriceMove
	case ToggleVolume:
		return &w.Volume
	case ToggleNewHigh:
		return &w.NewHigh
	case ToggleRSI:
		return &w.RSI
	case ToggleMACross:
		return &w.MACross
	case ToggleBollinger:
		return &w.Bollinger
	case ToggleMACD:
		return &w.MACD
	}
	return nil
}

// Enabled reports the value of toggle t. Unknown toggles are off.
func (w WatchSettings) Enabled(t Toggle) bool {
	if p := w.field(t); p != nil {
		return *p
	}
	return false
}

// Set flips toggle t. It reports false for an unknown toggle.
func (w *WatchSettings) Set(t Toggle, on bool) bool {
	p := w.field(t)
	if p == nil {
		return false
	}
	*p = on
	return true
}

// SetAll sets every toggle, including watch.
func (w *WatchSettings) SetAll(on bool) {
	for _, t := range AllToggles {
		w.Set(t, on)
	}
}

// NeedsHistory reports whether any enabled toggle requires daily bars.
func (w WatchSettings) NeedsHistory() bool {
	return w.RSI || w.Volume || w.NewHigh || w.MACross || w.Bollinger || w.MACD
}

// EnabledToggles returns the names of enabled toggles in display order.
func (w WatchSettings) EnabledToggles() []string {
	out := make([]string, 0, len(AllToggles))
	for _, t := range AllToggles {
		if w.Enabled(t) {
			out = append(out, string(t))
		}
	}
	return out
}

// TelegramCredentials identify the bot and the single chat it talks to.
type TelegramCredentials struct {
	BotToken string `json:"bot_token"`
	ChatID   string `json:"chat_id"`
}

// Valid reports whether both fields are set.
func (c TelegramCredentials) Valid() bool {
	return c.BotToken != "" && c.ChatID != ""
}

// MaskedToken hides all but the last four characters of the bot token.
func (c TelegramCredentials) MaskedToken() string {
	if len(c.BotToken) <= 4 {
		return strings.Repeat("*", len(c.BotToken))
	}
	return strings.Repeat("*", len(c.BotToken)-4) + c.BotToken[len(c.BotToken)-4:]
}

// Configuration is the persisted aggregate shared by the monitor, the chat
// command listener and the HTTP editor.
type Configuration struct {
	SystemActive bool                     `json:"system_active"`
	EconomicMode bool                     `json:"economic_mode"`
	Telegram     TelegramCredentials      `json:"telegram"`
	Tickers      map[string]WatchSettings `json:"tickers"`
	NewsHistory  map[string][]string      `json:"news_history"`
}

// DefaultConfiguration is what a first run starts from.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		SystemActive: true,
		Tickers:      make(map[string]WatchSettings),
		NewsHistory:  make(map[string][]string),
	}
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseSymbols splits a comma or whitespace separated list into unique normalized symbols.
func ParseSymbols(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == ';'
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		sym := NormalizeSymbol(f)
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

// AddSymbol registers sym with the default template. It reports false if sym already exists.
func (c *Configuration) AddSymbol(sym string) bool {
	c.ensureMaps()
	sym = NormalizeSymbol(sym)
	if sym == "" {
		return false
	}
	if _, ok := c.Tickers[sym]; ok {
		return false
	}
	c.Tickers[sym] = DefaultWatchSettings()
	return true
}

// RemoveSymbol drops sym and its news history. It reports false if sym was not watched.
func (c *Configuration) RemoveSymbol(sym string) bool {
	c.ensureMaps()
	sym = NormalizeSymbol(sym)
	if _, ok := c.Tickers[sym]; !ok {
		return false
	}
	delete(c.Tickers, sym)
	delete(c.NewsHistory, sym)
	return true
}

// SetToggle updates one toggle of a watched symbol.
func (c *Configuration) SetToggle(sym string, t Toggle, on bool) bool {
	c.ensureMaps()
	sym = NormalizeSymbol(sym)
	ws, ok := c.Tickers[sym]
	if !ok {
		return false
	}
	if !ws.Set(t, on) {
		return false
	}
	c.Tickers[sym] = ws
	return true
}

// SetAll applies on to every toggle of every symbol.
func (c *Configuration) SetAll(on bool) {
	c.ensureMaps()
	for sym, ws := range c.Tickers {
		ws.SetAll(on)
		c.Tickers[sym] = ws
	}
}

// AppendHistory appends identities to sym's history, skipping ones already
// present, then trims the oldest entries so at most limit remain.
func (c *Configuration) AppendHistory(sym string, ids []string, limit int) {
	c.ensureMaps()
	hist := c.NewsHistory[sym]
	present := make(map[string]struct{}, len(hist))
	for _, h := range hist {
		present[h] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; ok {
			continue
		}
		present[id] = struct{}{}
		hist = append(hist, id)
	}
	if limit > 0 && len(hist) > limit {
		hist = append([]string(nil), hist[len(hist)-limit:]...)
	}
	c.NewsHistory[sym] = hist
}

// WatchedSymbols returns the sorted symbols whose watch toggle is on.
func (c *Configuration) WatchedSymbols() []string {
	out := make([]string, 0, len(c.Tickers))
	for sym, ws := range c.Tickers {
		if ws.Watch {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

// Symbols returns all configured symbols, sorted.
func (c *Configuration) Symbols() []string {
	out := make([]string, 0, len(c.Tickers))
	for sym := range c.Tickers {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy.
func (c *Configuration) Clone() *Configuration {
	out := *c
	out.Tickers = make(map[string]WatchSettings, len(c.Tickers))
	for k, v := range c.Tickers {
		out.Tickers[k] = v
	}
	out.NewsHistory = make(map[string][]string, len(c.NewsHistory))
	for k, v := range c.NewsHistory {
		out.NewsHistory[k] = append([]string(nil), v...)
	}
	return &out
}

func (c *Configuration) ensureMaps() {
	if c.Tickers == nil {
		c.Tickers = make(map[string]WatchSettings)
	}
	if c.NewsHistory == nil {
		c.NewsHistory = make(map[string][]string)
	}
}

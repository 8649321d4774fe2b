package configstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"DeBrief/internal/domain/models"
)

type rawConfiguration struct {
	SystemActive *bool                      `json:"system_active"`
	EconomicMode *bool                      `json:"economic_mode"`
	Telegram     models.TelegramCredentials `json:"telegram"`
	Tickers      map[string]json.RawMessage `json:"tickers"`
	NewsHistory  map[string][]string        `json:"news_history"`
}

// Decode parses a stored blob of any schema generation into the current
// Configuration. Ticker settings go through MigrateSettings; histories are
// trimmed to historyCap.
func Decode(b []byte, historyCap int) (*models.Configuration, error) {
	var raw rawConfiguration
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	cfg := models.DefaultConfiguration()
	if raw.SystemActive != nil {
		cfg.SystemActive = *raw.SystemActive
	}
	if raw.EconomicMode != nil {
		cfg.EconomicMode = *raw.EconomicMode
	}
	cfg.Telegram = models.TelegramCredentials{
		BotToken: strings.TrimSpace(raw.Telegram.BotToken),
		ChatID:   strings.TrimSpace(raw.Telegram.ChatID),
	}

	for sym, msg := range raw.Tickers {
		sym = models.NormalizeSymbol(sym)
		if sym == "" {
			continue
		}
		var settings map[string]interface{}
		if err := json.Unmarshal(msg, &settings); err != nil {
			settings = nil
		}
		cfg.Tickers[sym] = MigrateSettings(settings)
	}

	for sym, hist := range raw.NewsHistory {
		sym = models.NormalizeSymbol(sym)
		if sym == "" {
			continue
		}
		cfg.AppendHistory(sym, hist, historyCap)
	}

	return cfg, nil
}

// Encode renders the configuration as indented JSON without HTML escaping.
func Encode(cfg *models.Configuration) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode configuration: %w", err)
	}
	return buf.Bytes(), nil
}

// MigrateSettings builds typed settings from a raw toggle map. Deprecated keys
// are renamed, current keys win over deprecated ones, missing keys take the
// default template and unknown keys are dropped.
func MigrateSettings(raw map[string]interface{}) models.WatchSettings {
	ws := models.DefaultWatchSettings()

	for key, val := range raw {
		t, ok := models.LegacyToggleNames[key]
		if !ok {
			continue
		}
		if on, ok := coerceBool(val); ok {
			ws.Set(t, on)
		}
	}
	for _, t := range models.AllToggles {
		val, ok := raw[string(t)]
		if !ok {
			continue
		}
		if on, ok := coerceBool(val); ok {
			ws.Set(t, on)
		}
	}
	return ws
}

func coerceBool(v interface{}) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case float64:
		return x != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "on", "yes", "y":
			return true, true
		case "false", "0", "off", "no", "n":
			return false, true
		}
	}
	return false, false
}

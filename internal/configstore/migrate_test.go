package configstore

import (
	"testing"

	"DeBrief/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_LegacyAndCurrentBlobsAgree(t *testing.T) {
	legacy := []byte(`{
		"system_active": true,
		"telegram": {"bot_token": "t", "chat_id": "c"},
		"tickers": {"TSLA": {"감시_ON": true, "뉴스": false, "가격_3%": true, "거래량_2배": true,
			"52주_신고가": false, "RSI": true, "MA_크로스": false, "볼린저": true, "MACD": false}},
		"news_history": {"TSLA": ["one", "two"]}
	}`)
	current := []byte(`{
		"system_active": true,
		"telegram": {"bot_token": "t", "chat_id": "c"},
		"tickers": {"TSLA": {"watch": true, "news": false, "filings": true, "price_move": true, "volume": true,
			"new_high": false, "rsi": true, "ma_cross": false, "bollinger": true, "macd": false}},
		"news_history": {"TSLA": ["one", "two"]}
	}`)

	a, err := Decode(legacy, 50)
	require.NoError(t, err)
	b, err := Decode(current, 50)
	require.NoError(t, err)
	assert.Equal(t, b, a)

	// re-encoding a migrated blob is stable
	enc, err := Encode(a)
	require.NoError(t, err)
	again, err := Decode(enc, 50)
	require.NoError(t, err)
	assert.Equal(t, a, again)
}

func TestMigrateSettings(t *testing.T) {
	t.Run("missing keys take defaults", func(t *testing.T) {
		assert.Equal(t, models.DefaultWatchSettings(), MigrateSettings(nil))
	})

	t.Run("current key beats legacy key", func(t *testing.T) {
		ws := MigrateSettings(map[string]interface{}{"뉴스": true, "news": false})
		assert.False(t, ws.News)
	})

	t.Run("unknown keys dropped", func(t *testing.T) {
		ws := MigrateSettings(map[string]interface{}{"moonshot": true})
		assert.Equal(t, models.DefaultWatchSettings(), ws)
	})

	t.Run("coercion", func(t *testing.T) {
		ws := MigrateSettings(map[string]interface{}{
			"rsi":      "true",
			"macd":     float64(1),
			"watch":    "off",
			"news":     "maybe",
			"ma_cross": []interface{}{true},
		})
		assert.True(t, ws.RSI)
		assert.True(t, ws.MACD)
		assert.False(t, ws.Watch)
		assert.True(t, ws.News)
		assert.False(t, ws.MACross)
	})
}

func TestDecode_NormalizesAndCaps(t *testing.T) {
	cfg, err := Decode([]byte(`{
		"tickers": {" aapl ": {"watch": true}, "": {}, "MSFT": "garbage"},
		"news_history": {"aapl": ["a", "b", "c", "d"]}
	}`), 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Symbols())
	assert.Equal(t, models.DefaultWatchSettings(), cfg.Tickers["MSFT"])
	assert.Equal(t, []string{"c", "d"}, cfg.NewsHistory["AAPL"])
	assert.True(t, cfg.SystemActive)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte(`[1,2]`), 50)
	assert.Error(t, err)
}

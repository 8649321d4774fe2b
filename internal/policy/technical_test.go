package policy

import (
	"testing"
	"time"

	"DeBrief/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatBars(n int, price, volume float64) []models.Candle {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := range out {
		out[i] = models.Candle{
			Bucket: start.AddDate(0, 0, i),
			Open:   price, High: price, Low: price, Close: price,
			Volume: volume,
		}
	}
	return out
}

func only(t models.Toggle) models.WatchSettings {
	var ws models.WatchSettings
	ws.Set(models.ToggleWatch, true)
	ws.Set(t, true)
	return ws
}

func find(signals []Signal, t models.Toggle) (Signal, bool) {
	for _, s := range signals {
		if s.Toggle == t {
			return s, true
		}
	}
	return Signal{}, false
}

func TestVolumeSignal_FiresOnceAndRearms(t *testing.T) {
	rule := DefaultTechnicalRule()
	bars := flatBars(30, 10, 1000)
	bars[len(bars)-1].Volume = 2500
	ws := only(models.ToggleVolume)

	s, ok := find(EvaluateTechnicals(rule, ws, bars, 0, nil), models.ToggleVolume)
	require.True(t, ok)
	assert.True(t, s.Emit)
	assert.Equal(t, StateOn, s.State)
	assert.InDelta(t, 2.5, s.Value, 1e-9)

	prev := func(models.Toggle) string { return StateOn }
	s, _ = find(EvaluateTechnicals(rule, ws, bars, 0, prev), models.ToggleVolume)
	assert.False(t, s.Emit)

	bars[len(bars)-1].Volume = 1000
	s, _ = find(EvaluateTechnicals(rule, ws, bars, 0, prev), models.ToggleVolume)
	assert.False(t, s.Emit)
	assert.Equal(t, StateOff, s.State)
}

func TestNewHighSignal(t *testing.T) {
	rule := DefaultTechnicalRule()
	bars := flatBars(40, 10, 1000)
	bars[5].High = 12
	ws := only(models.ToggleNewHigh)

	s, ok := find(EvaluateTechnicals(rule, ws, bars, 11.5, nil), models.ToggleNewHigh)
	require.True(t, ok)
	assert.False(t, s.Emit)
	assert.Equal(t, StateOff, s.State)

	s, _ = find(EvaluateTechnicals(rule, ws, bars, 12.5, nil), models.ToggleNewHigh)
	assert.True(t, s.Emit)
	assert.Equal(t, 12.5, s.Value)
}

func TestMACrossSignal(t *testing.T) {
	rule := DefaultTechnicalRule()
	bars := flatBars(60, 100, 1000)
	for i := range bars {
		bars[i].Close = 100 - float64(i)*0.1
	}
	ws := only(models.ToggleMACross)

	s, ok := find(EvaluateTechnicals(rule, ws, bars, 0, nil), models.ToggleMACross)
	require.True(t, ok)
	assert.False(t, s.Emit, "no cross on the newest bar")
	assert.Equal(t, StateBelow, s.State)

	// a spike lifts SMA20 over SMA50
	s, _ = find(EvaluateTechnicals(rule, ws, bars, 200, func(models.Toggle) string { return StateBelow }), models.ToggleMACross)
	assert.True(t, s.Emit)
	assert.Equal(t, StateAbove, s.State)
	assert.Contains(t, s.Detail, "golden")

	s, _ = find(EvaluateTechnicals(rule, ws, bars, 200, func(models.Toggle) string { return StateAbove }), models.ToggleMACross)
	assert.False(t, s.Emit)
}

func TestBollingerSignal(t *testing.T) {
	rule := DefaultTechnicalRule()
	bars := flatBars(30, 100, 1000)
	for i := range bars {
		if i%2 == 0 {
			bars[i].Close = 101
		} else {
			bars[i].Close = 99
		}
	}
	ws := only(models.ToggleBollinger)

	s, ok := find(EvaluateTechnicals(rule, ws, bars, 0, nil), models.ToggleBollinger)
	require.True(t, ok)
	assert.False(t, s.Emit)
	assert.Equal(t, StateInside, s.State)

	s, _ = find(EvaluateTechnicals(rule, ws, bars, 120, nil), models.ToggleBollinger)
	assert.True(t, s.Emit)
	assert.Equal(t, StateUpper, s.State)

	s, _ = find(EvaluateTechnicals(rule, ws, bars, 120, func(models.Toggle) string { return StateUpper }), models.ToggleBollinger)
	assert.False(t, s.Emit)
}

func TestMACDSignal_FlipFromRecordedState(t *testing.T) {
	rule := DefaultTechnicalRule()
	bars := flatBars(80, 100, 1000)
	for i := range bars {
		bars[i].Close = 100 + float64(i*i)*0.05
	}
	ws := only(models.ToggleMACD)

	s, ok := find(EvaluateTechnicals(rule, ws, bars, 0, func(models.Toggle) string { return StateBelow }), models.ToggleMACD)
	require.True(t, ok)
	assert.Equal(t, StateAbove, s.State)
	assert.True(t, s.Emit)
}

func TestMACDSignal_LinearSeriesDoesNotCross(t *testing.T) {
	rule := DefaultTechnicalRule()
	bars := flatBars(40, 100, 1000)
	for i := range bars {
		bars[i].Close = 100 - float64(i)*0.5
	}
	ws := only(models.ToggleMACD)

	s, ok := find(EvaluateTechnicals(rule, ws, bars, 0, nil), models.ToggleMACD)
	require.True(t, ok)
	assert.False(t, s.Emit)
	assert.Empty(t, s.State)

	s, ok = find(EvaluateTechnicals(rule, ws, bars, 0, func(models.Toggle) string { return StateBelow }), models.ToggleMACD)
	require.True(t, ok)
	assert.False(t, s.Emit)
	assert.Equal(t, StateBelow, s.State)
}

func TestEvaluateTechnicals_SkipsDisabledAndShortHistory(t *testing.T) {
	rule := DefaultTechnicalRule()
	ws := models.DefaultWatchSettings()
	ws.Set(models.ToggleNewHigh, false)
	assert.Empty(t, EvaluateTechnicals(rule, ws, flatBars(60, 10, 10), 0, nil))

	ws.SetAll(true)
	signals := EvaluateTechnicals(rule, ws, flatBars(5, 10, 10), 0, nil)
	_, ok := find(signals, models.ToggleMACD)
	assert.False(t, ok)
	_, ok = find(signals, models.ToggleNewHigh)
	assert.True(t, ok)
	assert.Empty(t, EvaluateTechnicals(rule, ws, nil, 0, nil))
}

package policy

import (
	"fmt"

	"DeBrief/internal/domain/models"
	"DeBrief/internal/services/indicators"
)

// Technical signal states kept in the ledger.
const (
	StateOn     = "on"
	StateOff    = "off"
	StateAbove  = "above"
	StateBelow  = "below"
	StateUpper  = "upper"
	StateLower  = "lower"
	StateInside = "inside"
)

// TechnicalRule parameterizes the history-based signals.
type TechnicalRule struct {
	VolumeMultiple  float64
	VolumeWindow    int
	HighWindow      int
	FastMA          int
	SlowMA          int
	BollingerPeriod int
	BollingerK      float64
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
}

func DefaultTechnicalRule() TechnicalRule {
	return TechnicalRule{
		VolumeMultiple:  2,
		VolumeWindow:    20,
		HighWindow:      252,
		FastMA:          20,
		SlowMA:          50,
		BollingerPeriod: 20,
		BollingerK:      2,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
	}
}

// Signal is the evaluation of one toggle. State must be written back to the
// ledger whether or not Emit is set.
type Signal struct {
	Toggle models.Toggle
	Emit   bool
	State  string
	Value  float64
	Detail string
}

// EvaluateTechnicals evaluates every enabled history-based toggle except RSI.
// last, when positive, replaces the close of the newest bar. Toggles without
// enough history are left out of the result.
func EvaluateTechnicals(rule TechnicalRule, ws models.WatchSettings, bars []models.Candle, last float64, prev func(models.Toggle) string) []Signal {
	if len(bars) == 0 {
		return nil
	}
	closes := models.Closes(bars)
	if last > 0 {
		closes[len(closes)-1] = last
	}
	if prev == nil {
		prev = func(models.Toggle) string { return "" }
	}

	var out []Signal
	add := func(s Signal, ok bool) {
		if ok {
			out = append(out, s)
		}
	}
	if ws.Enabled(models.ToggleVolume) {
		add(volumeSignal(rule, bars, prev(models.ToggleVolume)))
	}
	if ws.Enabled(models.ToggleNewHigh) {
		add(newHighSignal(rule, bars, closes[len(closes)-1], prev(models.ToggleNewHigh)))
	}
	if ws.Enabled(models.ToggleMACross) {
		add(maCrossSignal(rule, closes, prev(models.ToggleMACross)))
	}
	if ws.Enabled(models.ToggleBollinger) {
		add(bollingerSignal(rule, closes, prev(models.ToggleBollinger)))
	}
	if ws.Enabled(models.ToggleMACD) {
		add(macdSignal(rule, closes, prev(models.ToggleMACD)))
	}
	return out
}

// level fires when a condition switches on and re-arms once it is off.
func level(prev string, on bool) (bool, string) {
	if on {
		return prev != StateOn, StateOn
	}
	return false, StateOff
}

// cross fires when the relation flips. With no previous observation it fires
// only if the flip happened on the newest bar.
func cross(prev string, before, now bool) (bool, string) {
	state := StateBelow
	if now {
		state = StateAbove
	}
	if prev == "" {
		return before != now, state
	}
	return prev != state, state
}

func volumeSignal(rule TechnicalRule, bars []models.Candle, prev string) (Signal, bool) {
	vols := models.Volumes(bars)
	if len(vols) < rule.VolumeWindow+1 {
		return Signal{}, false
	}
	avg, ok := indicators.SMA(vols[:len(vols)-1], rule.VolumeWindow)
	if !ok || avg <= 0 {
		return Signal{}, false
	}
	ratio := vols[len(vols)-1] / avg
	emit, state := level(prev, ratio >= rule.VolumeMultiple)
	return Signal{
		Toggle: models.ToggleVolume,
		Emit:   emit,
		State:  state,
		Value:  ratio,
		Detail: fmt.Sprintf("volume %.1fx the %d-day average", ratio, rule.VolumeWindow),
	}, true
}

func newHighSignal(rule TechnicalRule, bars []models.Candle, price float64, prev string) (Signal, bool) {
	if len(bars) < 2 {
		return Signal{}, false
	}
	highs := make([]float64, 0, len(bars)-1)
	for _, b := range bars[:len(bars)-1] {
		highs = append(highs, b.High)
	}
	peak, ok := indicators.Max(highs, rule.HighWindow-1)
	if !ok || peak <= 0 {
		return Signal{}, false
	}
	emit, state := level(prev, price > peak)
	return Signal{
		Toggle: models.ToggleNewHigh,
		Emit:   emit,
		State:  state,
		Value:  price,
		Detail: fmt.Sprintf("52-week high %.2f (previous %.2f)", price, peak),
	}, true
}

func maCrossSignal(rule TechnicalRule, closes []float64, prev string) (Signal, bool) {
	if len(closes) < rule.SlowMA+1 {
		return Signal{}, false
	}
	fastNow, _ := indicators.SMA(closes, rule.FastMA)
	slowNow, _ := indicators.SMA(closes, rule.SlowMA)
	fastBefore, _ := indicators.SMA(closes[:len(closes)-1], rule.FastMA)
	slowBefore, _ := indicators.SMA(closes[:len(closes)-1], rule.SlowMA)

	emit, state := cross(prev, fastBefore > slowBefore, fastNow > slowNow)
	detail := fmt.Sprintf("dead cross: SMA%d below SMA%d", rule.FastMA, rule.SlowMA)
	if state == StateAbove {
		detail = fmt.Sprintf("golden cross: SMA%d above SMA%d", rule.FastMA, rule.SlowMA)
	}
	return Signal{Toggle: models.ToggleMACross, Emit: emit, State: state, Value: fastNow - slowNow, Detail: detail}, true
}

func bollingerSignal(rule TechnicalRule, closes []float64, prev string) (Signal, bool) {
	bands, ok := indicators.Bollinger(closes, rule.BollingerPeriod, rule.BollingerK)
	if !ok {
		return Signal{}, false
	}
	price := closes[len(closes)-1]
	state, detail := StateInside, ""
	switch {
	case price > bands.Upper:
		state, detail = StateUpper, fmt.Sprintf("closed above upper band %.2f", bands.Upper)
	case price < bands.Lower:
		state, detail = StateLower, fmt.Sprintf("closed below lower band %.2f", bands.Lower)
	}
	return Signal{
		Toggle: models.ToggleBollinger,
		Emit:   state != StateInside && state != prev,
		State:  state,
		Value:  price,
		Detail: detail,
	}, true
}

func macdSignal(rule TechnicalRule, closes []float64, prev string) (Signal, bool) {
	before, now, ok := indicators.MACD(closes, rule.MACDFast, rule.MACDSlow, rule.MACDSignal)
	if !ok {
		return Signal{}, false
	}
	// A flat histogram is neither side of the signal line; keep the recorded state.
	if now.Sign() == 0 {
		return Signal{Toggle: models.ToggleMACD, State: prev, Value: now.Histogram()}, true
	}
	state := StateBelow
	if now.Sign() > 0 {
		state = StateAbove
	}
	emit := prev != state
	if prev == "" {
		emit = before.Sign() != now.Sign()
	}
	detail := "MACD crossed below signal"
	if state == StateAbove {
		detail = "MACD crossed above signal"
	}
	return Signal{Toggle: models.ToggleMACD, Emit: emit, State: state, Value: now.Histogram(), Detail: detail}, true
}

package policy

import (
	"testing"

	"DeBrief/internal/ledger"

	"github.com/stretchr/testify/assert"
)

func run(rule PriceRule, prev float64, prices ...float64) []bool {
	var mark ledger.PriceMark
	out := make([]bool, 0, len(prices))
	for _, p := range prices {
		d := EvaluatePrice(rule, mark, p, prev)
		mark = d.Next
		out = append(out, d.Emit)
	}
	return out
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 3.0, PercentChange(103, 100))
	assert.Equal(t, -2.5, PercentChange(97.5, 100))
	assert.Equal(t, 0.3333, PercentChange(301, 300))
	assert.Equal(t, 0.0, PercentChange(1, 0))
}

func TestEvaluatePrice_WatermarkWithWideStep(t *testing.T) {
	rule := PriceRule{Threshold: 3.0, RearmStep: 1.5}
	assert.Equal(t, []bool{true, false, false, true}, run(rule, 100, 103, 103.5, 104.2, 104.5))
}

func TestEvaluatePrice_DefaultStep(t *testing.T) {
	assert.Equal(t, []bool{true, false, true, false}, run(DefaultPriceRule(), 100, 103, 103.5, 104.2, 104.5))
}

func TestEvaluatePrice_BelowThreshold(t *testing.T) {
	assert.Equal(t, []bool{false, false}, run(DefaultPriceRule(), 100, 102.9, 97.1))
}

func TestEvaluatePrice_DirectionFlipFiresImmediately(t *testing.T) {
	assert.Equal(t, []bool{true, true, true}, run(DefaultPriceRule(), 100, 103.2, 96.9, 103.0))
}

func TestEvaluatePrice_DipUnderThresholdKeepsMark(t *testing.T) {
	assert.Equal(t, []bool{true, false, false}, run(DefaultPriceRule(), 100, 103.5, 101, 103.6))
}

func TestEvaluatePrice_NewSessionResets(t *testing.T) {
	rule := DefaultPriceRule()
	d := EvaluatePrice(rule, ledger.PriceMark{}, 103, 100)
	assert.True(t, d.Emit)

	d = EvaluatePrice(rule, d.Next, 106.1, 103)
	assert.True(t, d.Emit)
	assert.Equal(t, 103.0, d.Next.RefClose)
}

func TestEvaluatePrice_UnavailableQuote(t *testing.T) {
	mark := ledger.PriceMark{Pct: 3.1, RefClose: 100}
	d := EvaluatePrice(DefaultPriceRule(), mark, 0, 100)
	assert.False(t, d.Emit)
	assert.Equal(t, mark, d.Next)

	d = EvaluatePrice(DefaultPriceRule(), mark, 105, 0)
	assert.False(t, d.Emit)
	assert.Equal(t, mark, d.Next)
}

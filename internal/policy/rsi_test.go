package policy

import (
	"testing"

	"DeBrief/internal/ledger"

	"github.com/stretchr/testify/assert"
)

func rsiRun(values ...float64) ([]bool, ledger.RSIState) {
	rule := DefaultRSIRule()
	state := ledger.RSINormal
	out := make([]bool, 0, len(values))
	for _, v := range values {
		var emit bool
		emit, state = EvaluateRSI(rule, state, v)
		out = append(out, emit)
	}
	return out, state
}

func TestEvaluateRSI_OverboughtOnceThenReset(t *testing.T) {
	rule := DefaultRSIRule()
	emit, s := EvaluateRSI(rule, ledger.RSINormal, 72)
	assert.True(t, emit)
	assert.Equal(t, ledger.RSIOverbought, s)

	emit, s = EvaluateRSI(rule, s, 68)
	assert.False(t, emit)
	assert.Equal(t, ledger.RSIOverbought, s)

	emit, s = EvaluateRSI(rule, s, 62)
	assert.False(t, emit)
	assert.Equal(t, ledger.RSINormal, s)

	emit, s = EvaluateRSI(rule, s, 58)
	assert.False(t, emit)
	assert.Equal(t, ledger.RSINormal, s)
}

func TestEvaluateRSI_Oversold(t *testing.T) {
	emits, state := rsiRun(29, 25, 33, 36, 30)
	assert.Equal(t, []bool{true, false, false, false, true}, emits)
	assert.Equal(t, ledger.RSIOversold, state)
}

func TestEvaluateRSI_ResetBandIsExclusive(t *testing.T) {
	emits, state := rsiRun(71, 65, 72)
	assert.Equal(t, []bool{true, false, false}, emits)
	assert.Equal(t, ledger.RSIOverbought, state)
}

func TestEvaluateRSI_NoCrossZoneJump(t *testing.T) {
	emits, state := rsiRun(75, 20)
	assert.Equal(t, []bool{true, false}, emits)
	assert.Equal(t, ledger.RSIOverbought, state)
}

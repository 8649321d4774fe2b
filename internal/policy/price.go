package policy

import (
	"math"

	"DeBrief/internal/ledger"

	"github.com/shopspring/decimal"
)

// PriceRule configures the large-move alert.
type PriceRule struct {
	Threshold float64 // absolute percent change that triggers an alert
	RearmStep float64 // further percentage points needed to alert again in the same direction
}

// DefaultPriceRule re-arms after one further point: 103, 103.5, 104.2 alerts
// at 103 and 104.2. A RearmStep of 1.5 suppresses 104.2 and alerts at 104.5.
func DefaultPriceRule() PriceRule {
	return PriceRule{Threshold: 3.0, RearmStep: 1.0}
}

// PriceDecision carries the evaluated change and the ledger mark to keep.
type PriceDecision struct {
	Emit bool
	Pct  float64
	Next ledger.PriceMark
}

var hundred = decimal.NewFromInt(100)

// PercentChange returns (last-prev)/prev*100 rounded to four decimals.
func PercentChange(last, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	l := decimal.NewFromFloat(last)
	p := decimal.NewFromFloat(prev)
	pct, _ := l.Sub(p).Div(p).Mul(hundred).Round(4).Float64()
	return pct
}

// EvaluatePrice applies the watermark: the first move past the threshold in a
// session alerts; later moves in the same direction alert only after growing
// by RearmStep points; a move past the threshold in the other direction
// alerts immediately. A new previous close starts a new session. Falling back
// under the threshold keeps the mark so oscillation around it stays quiet.
func EvaluatePrice(rule PriceRule, mark ledger.PriceMark, last, prevClose float64) PriceDecision {
	if last <= 0 || prevClose <= 0 {
		return PriceDecision{Next: mark}
	}
	if mark.RefClose != prevClose {
		mark = ledger.PriceMark{}
	}
	pct := PercentChange(last, prevClose)
	d := PriceDecision{Pct: pct, Next: mark}
	if math.Abs(pct) < rule.Threshold {
		return d
	}

	emit := false
	switch {
	case !mark.Armed():
		emit = true
	case (pct > 0) != (mark.Pct > 0):
		emit = true
	default:
		emit = math.Abs(pct) >= math.Abs(mark.Pct)+rule.RearmStep-1e-9
	}
	if emit {
		d.Emit = true
		d.Next = ledger.PriceMark{Pct: pct, RefClose: prevClose}
	}
	return d
}

package policy

import "DeBrief/internal/ledger"

// RSIRule holds the alert zones and the neutral band that re-arms them.
type RSIRule struct {
	Period     int
	Overbought float64
	Oversold   float64
	ResetLow   float64
	ResetHigh  float64
}

func DefaultRSIRule() RSIRule {
	return RSIRule{Period: 14, Overbought: 70, Oversold: 30, ResetLow: 35, ResetHigh: 65}
}

// EvaluateRSI runs the zone state machine. Only NORMAL can alert; an alerted
// zone returns to NORMAL once RSI sits strictly inside the reset band.
func EvaluateRSI(rule RSIRule, state ledger.RSIState, rsi float64) (bool, ledger.RSIState) {
	switch state {
	case ledger.RSIOverbought, ledger.RSIOversold:
		if rsi > rule.ResetLow && rsi < rule.ResetHigh {
			return false, ledger.RSINormal
		}
		return false, state
	}
	switch {
	case rsi >= rule.Overbought:
		return true, ledger.RSIOverbought
	case rsi <= rule.Oversold:
		return true, ledger.RSIOversold
	}
	return false, ledger.RSINormal
}

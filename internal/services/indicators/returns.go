package indicators

import "math"

// TradingDaysPerYear annualizes daily series.
const TradingDaysPerYear = 252

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(closes)-1, or nil if insufficient data.
func ComputeLogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		cur := closes[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility computes annualized realized volatility over the latest
// window of log returns using the provided number of bars per year.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * barsPerYear)
}

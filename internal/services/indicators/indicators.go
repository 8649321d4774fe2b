package indicators

import "math"

// SMA returns the simple mean of the last n values.
func SMA(values []float64, n int) (float64, bool) {
	if n <= 0 || len(values) < n {
		return 0, false
	}
	sum := 0.0
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n), true
}

// RSI is the relative strength index over the last period price changes,
// using simple averages of gains and losses (not Wilder smoothing).
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	gain /= float64(period)
	loss /= float64(period)

	switch {
	case gain == 0 && loss == 0:
		return 50, true
	case loss == 0:
		return 100, true
	}
	rs := gain / loss
	return 100 - 100/(1+rs), true
}

// EMA returns the exponential moving average series seeded with the SMA of the first n values.
// The result is aligned with values; entries before index n-1 are NaN.
func EMA(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	if n <= 0 || len(values) < n {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	k := 2.0 / float64(n+1)
	seed, _ := SMA(values[:n], n)
	for i := 0; i < n-1; i++ {
		out[i] = math.NaN()
	}
	out[n-1] = seed
	for i := n; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// MACDPoint is the MACD line and its signal line at one bar.
type MACDPoint struct {
	MACD   float64
	Signal float64
}

// Histogram is MACD minus signal.
func (p MACDPoint) Histogram() float64 { return p.MACD - p.Signal }

// FlatHistogram is the magnitude under which MACD and its signal are treated
// as equal. On a linear series the two differ only by rounding.
const FlatHistogram = 1e-9

// Sign is 1 above the signal line, -1 below it and 0 when flat.
func (p MACDPoint) Sign() int {
	h := p.Histogram()
	switch {
	case h > FlatHistogram:
		return 1
	case h < -FlatHistogram:
		return -1
	}
	return 0
}

// MACD returns the last two points of MACD(fast, slow, signal) so callers can
// detect a crossover.
func MACD(closes []float64, fast, slow, signal int) (prev, last MACDPoint, ok bool) {
	if len(closes) < slow+signal {
		return MACDPoint{}, MACDPoint{}, false
	}
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	line := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		line = append(line, fastEMA[i]-slowEMA[i])
	}
	sig := EMA(line, signal)

	n := len(line)
	if n < signal+1 {
		return MACDPoint{}, MACDPoint{}, false
	}
	prev = MACDPoint{MACD: line[n-2], Signal: sig[n-2]}
	last = MACDPoint{MACD: line[n-1], Signal: sig[n-1]}
	return prev, last, true
}

// Bands is a Bollinger envelope.
type Bands struct {
	Lower  float64
	Middle float64
	Upper  float64
}

// Bollinger computes the n-period bands at k sample standard deviations.
func Bollinger(closes []float64, n int, k float64) (Bands, bool) {
	mid, ok := SMA(closes, n)
	if !ok || n < 2 {
		return Bands{}, false
	}
	ss := 0.0
	for _, v := range closes[len(closes)-n:] {
		d := v - mid
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(n-1))
	return Bands{Lower: mid - k*sd, Middle: mid, Upper: mid + k*sd}, true
}

// Max returns the largest of the last n values.
func Max(values []float64, n int) (float64, bool) {
	if n <= 0 || len(values) == 0 {
		return 0, false
	}
	if n > len(values) {
		n = len(values)
	}
	m := math.Inf(-1)
	for _, v := range values[len(values)-n:] {
		if v > m {
			m = v
		}
	}
	return m, true
}

package models

import "time"

// Quote is a point-in-time price snapshot. Zero prices mean the provider had
// nothing usable.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Last          float64   `json:"last"`
	PreviousClose float64   `json:"previous_close"`
	Volume        float64   `json:"volume"`
	Currency      string    `json:"currency,omitempty"`
	Source        string    `json:"source"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// Available reports whether the quote carries both prices.
func (q Quote) Available() bool {
	return q.Last > 0 && q.PreviousClose > 0
}

// Candle represents one daily OHLCV bar.
type Candle struct {
	Bucket time.Time `json:"bucket"`
	Symbol string    `json:"symbol"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Closes extracts the close series.
func Closes(candles []Candle) []float64 {
	out := make([]float64, 0, len(candles))
	for _, c := range candles {
		out = append(out, c.Close)
	}
	return out
}

// Volumes extracts the volume series.
func Volumes(candles []Candle) []float64 {
	out := make([]float64, 0, len(candles))
	for _, c := range candles {
		out = append(out, c.Volume)
	}
	return out
}

// Impact grades an economic calendar event.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Rank orders impacts; unknown values rank lowest.
func (i Impact) Rank() int {
	switch i {
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	case ImpactLow:
		return 1
	}
	return 0
}

// EconomicEvent is one macro calendar entry.
type EconomicEvent struct {
	Time     time.Time `json:"time"`
	Country  string    `json:"country"`
	Event    string    `json:"event"`
	Impact   Impact    `json:"impact"`
	Actual   *float64  `json:"actual,omitempty"`
	Estimate *float64  `json:"estimate,omitempty"`
	Previous *float64  `json:"previous,omitempty"`
	Unit     string    `json:"unit,omitempty"`
}

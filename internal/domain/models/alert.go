package models

import "time"

// AlertKind classifies an outbound notification.
type AlertKind string

const (
	AlertNews      AlertKind = "news"
	AlertFiling    AlertKind = "filing"
	AlertPriceMove AlertKind = "price_move"
	AlertVolume    AlertKind = "volume"
	AlertNewHigh   AlertKind = "new_high"
	AlertRSI       AlertKind = "rsi"
	AlertMACross   AlertKind = "ma_cross"
	AlertBollinger AlertKind = "bollinger"
	AlertMACD      AlertKind = "macd"
	AlertDigest    AlertKind = "digest"
)

// Alert is a decision of the policy engine that something is worth telling the user.
type Alert struct {
	Symbol     string    `json:"symbol"`
	Kind       AlertKind `json:"kind"`
	Title      string    `json:"title"`
	Body       string    `json:"body,omitempty"`
	Link       string    `json:"link,omitempty"`
	Value      float64   `json:"value,omitempty"`
	Breaking   bool      `json:"breaking,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ChatMessage is one inbound chat message from the long-poll listener.
type ChatMessage struct {
	UpdateID int64  `json:"update_id"`
	ChatID   string `json:"chat_id"`
	From     string `json:"from"`
	Text     string `json:"text"`
}

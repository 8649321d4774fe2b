package models

import (
	"strings"
	"time"
	"unicode"
)

// NewsItem is one headline or filing returned by a feed.
type NewsItem struct {
	Symbol      string    `json:"symbol"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	IsFiling    bool      `json:"is_filing"`
}

// Identity is the dedup key: the normalized title.
func (n NewsItem) Identity() string {
	return NormalizeTitle(n.Title)
}

// IsBreaking reports whether the item was published within window of now.
func (n NewsItem) IsBreaking(now time.Time, window time.Duration) bool {
	if n.PublishedAt.IsZero() {
		return false
	}
	age := now.Sub(n.PublishedAt)
	return age >= 0 && age <= window
}

// NormalizeTitle lower-cases, strips punctuation and symbols, and collapses
// whitespace so mirrors of the same headline collapse to one identity.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	space := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}

// SplitSourceSuffix splits a Google News style "Headline - Publisher" title.
func SplitSourceSuffix(title string) (headline, source string) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 {
		return strings.TrimSpace(title), ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}

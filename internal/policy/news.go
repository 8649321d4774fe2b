// Package policy decides, from fresh provider data and a symbol's ledger
// state, which events are worth an alert. Everything here is pure: callers
// own the ledger and apply the returned next state.
package policy

import (
	"sort"
	"strings"
	"time"

	"DeBrief/internal/domain/models"
)

// NewsRule tunes headline selection.
type NewsRule struct {
	MaxAge          time.Duration
	BreakingWindow  time.Duration
	ExcludeKeywords []string
}

// DefaultNewsRule drops day-old items and treats the last hour as breaking.
func DefaultNewsRule() NewsRule {
	return NewsRule{MaxAge: 24 * time.Hour, BreakingWindow: time.Hour}
}

// NewsSelection is the outcome of one symbol's headline pass.
type NewsSelection struct {
	Emit []models.NewsItem
	// Identities to record as sent, in emit order.
	Identities []string
	// Candidates that survived filtering and dedup, including ones held back by the cap.
	Fresh int
}

func (r NewsRule) excluded(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range r.ExcludeKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// SelectNews filters items to the unseen, in-window ones and applies the
// per-tick cap: every breaking item goes out, plus at most one other (the
// most recent). Items without a timestamp are never breaking and never too old.
func SelectNews(rule NewsRule, items []models.NewsItem, seen func(id string) bool, now time.Time) NewsSelection {
	var (
		breaking []models.NewsItem
		regular  []models.NewsItem
		batch    = make(map[string]struct{}, len(items))
	)
	for _, it := range items {
		if !it.PublishedAt.IsZero() && rule.MaxAge > 0 && now.Sub(it.PublishedAt) > rule.MaxAge {
			continue
		}
		if rule.excluded(it.Title) {
			continue
		}
		id := it.Identity()
		if id == "" {
			continue
		}
		if _, dup := batch[id]; dup {
			continue
		}
		batch[id] = struct{}{}
		if seen != nil && seen(id) {
			continue
		}
		if it.IsBreaking(now, rule.BreakingWindow) {
			breaking = append(breaking, it)
		} else {
			regular = append(regular, it)
		}
	}

	sel := NewsSelection{Fresh: len(breaking) + len(regular)}
	sort.SliceStable(breaking, func(i, j int) bool {
		return breaking[i].PublishedAt.Before(breaking[j].PublishedAt)
	})
	sel.Emit = append(sel.Emit, breaking...)
	if len(regular) > 0 {
		latest := regular[0]
		for _, it := range regular[1:] {
			if it.PublishedAt.After(latest.PublishedAt) {
				latest = it
			}
		}
		sel.Emit = append(sel.Emit, latest)
	}
	for _, it := range sel.Emit {
		sel.Identities = append(sel.Identities, it.Identity())
	}
	return sel
}

package ledger

import (
	"sort"
	"sync"

	"DeBrief/internal/domain/models"
)

// Delta collects news-history appends from all workers of one tick so they
// can be merged into the store with a single read-merge-write.
type Delta struct {
	mu   sync.Mutex
	news map[string][]string
}

func NewDelta() *Delta {
	return &Delta{news: make(map[string][]string)}
}

func (d *Delta) Add(sym string, ids ...string) {
	if len(ids) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.news[sym] = append(d.news[sym], ids...)
}

func (d *Delta) Empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.news) == 0
}

// Count returns the number of collected identities.
func (d *Delta) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, ids := range d.news {
		n += len(ids)
	}
	return n
}

// Apply appends the collected identities to cfg. Symbols removed from the
// watchlist since the tick started are skipped.
func (d *Delta) Apply(cfg *models.Configuration, historyCap int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	syms := make([]string, 0, len(d.news))
	for sym := range d.news {
		syms = append(syms, sym)
	}
	sort.Strings(syms)

	for _, sym := range syms {
		if _, ok := cfg.Tickers[sym]; !ok {
			continue
		}
		cfg.AppendHistory(sym, d.news[sym], historyCap)
	}
}

// Package ledger holds the in-memory dedup state of one monitor actor:
// which headlines were already sent, the last price-move watermark, the RSI
// zone and the last state of each technical signal. Losing it (on restart) costs at
// most one duplicate alert; news identities are re-seeded from the persisted
// history every tick.
package ledger

import (
	"sync"

	"DeBrief/internal/domain/models"
)

// RSIState is the hysteresis zone of a symbol's RSI.
type RSIState string

const (
	RSINormal     RSIState = "NORMAL"
	RSIOverbought RSIState = "OVERBOUGHT"
	RSIOversold   RSIState = "OVERSOLD"
)

// PriceMark remembers the last price-move alert of the current session.
type PriceMark struct {
	Pct      float64 // signed percent change at the last alert; 0 means not armed
	RefClose float64 // previous close the percentage was measured against
}

// Armed reports whether an alert has fired in the session anchored at RefClose.
func (m PriceMark) Armed() bool { return m.Pct != 0 }

const defaultSeenCap = 500

type symbolState struct {
	seen      map[string]struct{}
	seenOrder []string
	price     PriceMark
	rsi       RSIState
	signals   map[models.Toggle]string
}

// Ledger is safe for concurrent use; the monitor gives each symbol to one
// worker per tick, so per-symbol state sees no contention in practice.
type Ledger struct {
	mu      sync.Mutex
	seenCap int
	symbols map[string]*symbolState
}

func New() *Ledger {
	return &Ledger{seenCap: defaultSeenCap, symbols: make(map[string]*symbolState)}
}

func (l *Ledger) state(sym string) *symbolState {
	st, ok := l.symbols[sym]
	if !ok {
		st = &symbolState{
			seen:    make(map[string]struct{}),
			rsi:     RSINormal,
			signals: make(map[models.Toggle]string),
		}
		l.symbols[sym] = st
	}
	return st
}

func (l *Ledger) markLocked(st *symbolState, id string) {
	if _, ok := st.seen[id]; ok {
		return
	}
	st.seen[id] = struct{}{}
	st.seenOrder = append(st.seenOrder, id)
	if len(st.seenOrder) > l.seenCap {
		drop := st.seenOrder[0]
		st.seenOrder = st.seenOrder[1:]
		delete(st.seen, drop)
	}
}

// Seed marks persisted history identities as seen.
func (l *Ledger) Seed(sym string, history []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.state(sym)
	for _, id := range history {
		l.markLocked(st, id)
	}
}

// Seen reports whether the identity was already reported for sym.
func (l *Ledger) Seen(sym, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.state(sym).seen[id]
	return ok
}

// MarkSeen records identities as reported.
func (l *Ledger) MarkSeen(sym string, ids ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.state(sym)
	for _, id := range ids {
		l.markLocked(st, id)
	}
}

func (l *Ledger) PriceMark(sym string) PriceMark {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state(sym).price
}

func (l *Ledger) SetPriceMark(sym string, m PriceMark) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state(sym).price = m
}

func (l *Ledger) RSIState(sym string) RSIState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state(sym).rsi
}

func (l *Ledger) SetRSIState(sym string, s RSIState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state(sym).rsi = s
}

// Signal returns the last observed state of the technical signal behind
// toggle t; empty means never observed.
func (l *Ledger) Signal(sym string, t models.Toggle) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state(sym).signals[t]
}

func (l *Ledger) SetSignal(sym string, t models.Toggle, state string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state(sym).signals[t] = state
}

// Retain drops state for symbols not in keep.
func (l *Ledger) Retain(keep []string) {
	set := make(map[string]struct{}, len(keep))
	for _, s := range keep {
		set[s] = struct{}{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for sym := range l.symbols {
		if _, ok := set[sym]; !ok {
			delete(l.symbols, sym)
		}
	}
}

// Len returns the number of tracked symbols.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.symbols)
}

package experience

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/expmultiplier/internal/model"
)

// Record is one audited write to the ledger.
type Record struct {
	Player uuid.UUID
	Before int
	After  int
	Reason string
	At     time.Time
}

// Ledger is an in-memory Service.
//
// Thread-safe: all access goes through mu.
type Ledger struct {
	mu      sync.Mutex
	totals  map[uuid.UUID]int
	history []Record
	maxHist int
}

// NewLedger creates an empty ledger keeping at most maxHistory audit records
// (0 = unlimited).
func NewLedger(maxHistory int) *Ledger {
	return &Ledger{
		totals:  make(map[uuid.UUID]int, 32),
		maxHist: maxHistory,
	}
}

// Exp returns the player's experience total.
func (l *Ledger) Exp(p *model.Player) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals[p.ID()]
}

// SetExp overwrites the player's total.
func (l *Ledger) SetExp(p *model.Player, exp int, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writeLocked(p.ID(), exp, reason)
}

// AddExp adds exp to the player's total.
func (l *Ledger) AddExp(p *model.Player, exp int, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writeLocked(p.ID(), l.totals[p.ID()]+exp, reason)
}

// Commit applies an event's (possibly rewritten) amount. A zero amount is
// not recorded.
func (l *Ledger) Commit(ev *ChangeEvent) {
	if ev.Amount == 0 {
		return
	}
	l.AddExp(ev.Player, ev.Amount, "experience change")
}

// History returns audit records for a player, oldest first.
func (l *Ledger) History(id uuid.UUID) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Record
	for _, r := range l.history {
		if r.Player == id {
			out = append(out, r)
		}
	}
	return out
}

func (l *Ledger) writeLocked(id uuid.UUID, exp int, reason string) {
	before := l.totals[id]
	l.totals[id] = exp

	l.history = append(l.history, Record{
		Player: id,
		Before: before,
		After:  exp,
		Reason: reason,
		At:     time.Now(),
	})
	if l.maxHist > 0 && len(l.history) > l.maxHist {
		l.history = l.history[len(l.history)-l.maxHist:]
	}
}

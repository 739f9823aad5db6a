// Package lane exposes the pricing and settlement engine to the thin UI
// collaborator over HTTP. Each checkout lane gets its own basket session;
// a per-session mutex guarantees a basket is never mutated from two call
// sites at once.
package lane

import (
	"sync"

	"github.com/noah-isme/pos-lane/internal/basket"
)

// Session is one lane's in-flight sale.
type Session struct {
	ID     string
	Basket *basket.Ledger

	mu sync.Mutex
}

// Lock acquires the session for a single mutation or settlement.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// Registry hands out lane sessions, creating them on first use.
type Registry struct {
	NewLedger func() *basket.Ledger

	mu       sync.Mutex
	sessions map[string]*Session
}

// Session returns the session for a lane id, creating it if needed.
func (r *Registry) Session(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions == nil {
		r.sessions = make(map[string]*Session)
	}
	if s, ok := r.sessions[id]; ok {
		return s
	}
	var ledger *basket.Ledger
	if r.NewLedger != nil {
		ledger = r.NewLedger()
	} else {
		ledger = &basket.Ledger{}
	}
	s := &Session{ID: id, Basket: ledger}
	r.sessions[id] = s
	return s
}

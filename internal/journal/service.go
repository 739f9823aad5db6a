// Package journal records every basket mutation and settlement line, first to
// local storage and then as a best-effort line to the store log collector.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Journal action labels. These strings appear verbatim in the stored rows and
// the forwarded lines, so downstream reporting depends on them.
const (
	ActionAdded             = "Added"
	ActionQuantityIncreased = "Quantity Increased"
	ActionVoided            = "Voided"
	ActionQuantityChanged   = "Quantity Changed"
	ActionTransactionVoided = "Transaction Voided"

	// SystemVoidItemID marks a whole-transaction void, which has no single
	// item to attribute.
	SystemVoidItemID = "SYS_VOID_ALL"
)

// Entry is one journal row.
type Entry struct {
	ID     int64     `json:"id"`
	ItemID string    `json:"itemId"`
	Qty    int       `json:"qty"`
	Action string    `json:"action"`
	At     time.Time `json:"at"`
}

// Store defines the persistence operations the journal needs.
type Store interface {
	Insert(ctx context.Context, e Entry) error
	List(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error
}

// Forwarder ships a single journal line to the log collector.
type Forwarder interface {
	Send(line string) error
}

// Service is the audit journal. Local persistence is authoritative; the
// forwarded copy is best effort and its failures are swallowed.
type Service struct {
	Store     Store
	Forwarder Forwarder
	Logger    zerolog.Logger
	Now       func() time.Time
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Record stores one journal entry and forwards it. The insert error is
// returned to the caller; the forward runs regardless and never fails the
// record.
func (s Service) Record(ctx context.Context, itemID string, qty int, action string) error {
	if s.Store == nil {
		return errors.New("journal: store not configured")
	}
	entry := Entry{ItemID: itemID, Qty: qty, Action: action, At: s.now()}

	insertErr := s.Store.Insert(ctx, entry)
	if insertErr != nil {
		insertErr = fmt.Errorf("journal: insert: %w", insertErr)
	}

	if s.Forwarder != nil {
		line := fmt.Sprintf("ItemID: %s | Qty: %d | Action: %s", itemID, qty, action)
		if err := s.Forwarder.Send(line); err != nil {
			s.Logger.Debug().Err(err).Str("action", action).Msg("journal forward failed")
		}
	}
	return insertErr
}

// List returns all entries, newest first.
func (s Service) List(ctx context.Context) ([]Entry, error) {
	if s.Store == nil {
		return nil, errors.New("journal: store not configured")
	}
	return s.Store.List(ctx)
}

// Clear wipes the journal. Used by the audit display's reset action.
func (s Service) Clear(ctx context.Context) error {
	if s.Store == nil {
		return errors.New("journal: store not configured")
	}
	return s.Store.Clear(ctx)
}

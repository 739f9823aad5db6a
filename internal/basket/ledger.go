// Package basket holds the in-flight transaction: an ordered list of scanned
// lines, unique by item id. Every mutation is journaled. The ledger itself is
// not goroutine safe; the lane registry serializes access per lane.
package basket

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pos-lane/internal/journal"
	"github.com/noah-isme/pos-lane/internal/money"
	"github.com/noah-isme/pos-lane/internal/pricebook"
)

var (
	// ErrLineIndex indicates a void/quantity request for a line that does
	// not exist.
	ErrLineIndex = errors.New("basket: line index out of range")
	// ErrInvalidQuantity indicates a negative quantity.
	ErrInvalidQuantity = errors.New("basket: quantity must not be negative")
)

// Line is one basket row.
type Line struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Qty       int         `json:"qty"`
	UnitPrice money.Money `json:"unitPrice"`
}

// Subtotal is qty times unit price, exact cents.
func (l Line) Subtotal() money.Money {
	return l.UnitPrice.MulQty(l.Qty)
}

// Catalog resolves scanned ids and grid-button names to products.
type Catalog interface {
	Lookup(ctx context.Context, id string) (pricebook.Product, error)
	LookupByName(ctx context.Context, name string) (pricebook.Product, error)
}

// Recorder journals basket mutations.
type Recorder interface {
	Record(ctx context.Context, itemID string, qty int, action string) error
}

// Ledger is the basket for one lane session.
type Ledger struct {
	Catalog Catalog
	Journal Recorder
	Logger  zerolog.Logger

	lines []Line
}

// record journals best effort. A journal failure never undoes a mutation that
// already happened.
func (l *Ledger) record(ctx context.Context, itemID string, qty int, action string) {
	if l.Journal == nil {
		return
	}
	if err := l.Journal.Record(ctx, itemID, qty, action); err != nil {
		l.Logger.Warn().Err(err).Str("item_id", itemID).Str("action", action).Msg("basket journal failed")
	}
}

// Scan adds one unit of the identified product. A repeat scan bumps the
// existing line instead of appending a duplicate. An unknown id leaves the
// basket untouched and returns pricebook.ErrNotFound.
func (l *Ledger) Scan(ctx context.Context, id string) (Line, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Line{}, pricebook.ErrNotFound
	}
	if line, ok := l.bump(ctx, id); ok {
		return line, nil
	}
	if l.Catalog == nil {
		return Line{}, errors.New("basket: catalog not configured")
	}
	p, err := l.Catalog.Lookup(ctx, id)
	if err != nil {
		return Line{}, err
	}
	return l.add(ctx, p), nil
}

// ScanByName adds one unit of the product behind a grid button, which carries
// the display name rather than the item id. Semantics match Scan.
func (l *Ledger) ScanByName(ctx context.Context, name string) (Line, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Line{}, pricebook.ErrNotFound
	}
	if l.Catalog == nil {
		return Line{}, errors.New("basket: catalog not configured")
	}
	p, err := l.Catalog.LookupByName(ctx, name)
	if err != nil {
		return Line{}, err
	}
	if line, ok := l.bump(ctx, p.ID); ok {
		return line, nil
	}
	return l.add(ctx, p), nil
}

// bump increments an existing line for the id, reporting whether one existed.
func (l *Ledger) bump(ctx context.Context, id string) (Line, bool) {
	for i := range l.lines {
		if l.lines[i].ID == id {
			l.lines[i].Qty++
			l.record(ctx, id, l.lines[i].Qty, journal.ActionQuantityIncreased)
			return l.lines[i], true
		}
	}
	return Line{}, false
}

func (l *Ledger) add(ctx context.Context, p pricebook.Product) Line {
	line := Line{ID: p.ID, Name: p.Name, Qty: 1, UnitPrice: p.Price}
	l.lines = append(l.lines, line)
	l.record(ctx, p.ID, 1, journal.ActionAdded)
	return line
}

// VoidLine removes the line at index i, journaling its last quantity.
func (l *Ledger) VoidLine(ctx context.Context, i int) (Line, error) {
	if i < 0 || i >= len(l.lines) {
		return Line{}, ErrLineIndex
	}
	line := l.lines[i]
	l.record(ctx, line.ID, line.Qty, journal.ActionVoided)
	l.lines = append(l.lines[:i], l.lines[i+1:]...)
	return line, nil
}

// SetQuantity updates the line at index i. Zero voids the line; negative is
// rejected without touching the basket.
func (l *Ledger) SetQuantity(ctx context.Context, i, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if i < 0 || i >= len(l.lines) {
		return ErrLineIndex
	}
	if qty == 0 {
		_, err := l.VoidLine(ctx, i)
		return err
	}
	l.lines[i].Qty = qty
	l.record(ctx, l.lines[i].ID, qty, journal.ActionQuantityChanged)
	return nil
}

// Clear empties the basket. A non-payment clear of a non-empty basket is a
// whole-transaction void and is journaled as such; a payment clear is silent
// because settlement already journaled every line.
func (l *Ledger) Clear(ctx context.Context, isPayment bool) {
	if !isPayment && len(l.lines) > 0 {
		l.record(ctx, journal.SystemVoidItemID, 0, journal.ActionTransactionVoided)
	}
	l.lines = nil
}

// Total is the pre-discount, pre-tax subtotal.
func (l *Ledger) Total() money.Money {
	var total money.Money
	for _, line := range l.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Len reports the number of lines.
func (l *Ledger) Len() int {
	return len(l.lines)
}

// Snapshot returns a copy of the lines, safe to hand to the wire codec or a
// receipt while the basket keeps mutating.
func (l *Ledger) Snapshot() []Line {
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// Package receipt persists the immutable point-in-time record of a completed
// settlement: one row per basket line plus the tender figures.
package receipt

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-lane/internal/money"
)

// Line is one basket line frozen into a receipt.
type Line struct {
	ItemID    string      `json:"itemId"`
	Qty       int         `json:"qty"`
	UnitPrice money.Money `json:"unitPrice"`
}

// Subtotal is the line extension.
func (l Line) Subtotal() money.Money {
	return l.UnitPrice.MulQty(l.Qty)
}

// Snapshot is the full receipt, written once per settlement and never
// updated.
type Snapshot struct {
	ReceiptID  uuid.UUID   `json:"receiptId"`
	Lines      []Line      `json:"lines"`
	Subtotal   money.Money `json:"subtotal"`
	Tax        money.Money `json:"tax"`
	Total      money.Money `json:"total"`
	AmountPaid money.Money `json:"amountPaid"`
	ChangeDue  money.Money `json:"changeDue"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// NewSnapshot assigns a fresh receipt id and timestamp.
func NewSnapshot(lines []Line, subtotal, tax, total, paid, change money.Money, at time.Time) Snapshot {
	return Snapshot{
		ReceiptID:  uuid.New(),
		Lines:      lines,
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      total,
		AmountPaid: paid,
		ChangeDue:  change,
		CreatedAt:  at,
	}
}

// Store persists snapshots.
type Store interface {
	Save(ctx context.Context, s Snapshot) error
}

// ItemSales is the aggregated sales count for one item across all receipts.
// It feeds the popular-item buttons on the product grid.
type ItemSales struct {
	ItemID string `json:"itemId"`
	Sold   int64  `json:"sold"`
}

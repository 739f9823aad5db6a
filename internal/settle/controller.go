// Package settle finalizes a sale: discount resolution, tax, tender
// validation, change, journaling, receipt persistence and the payment-clear
// of the basket. The flow is a straight-line state machine; every rejection
// is a sentinel error and leaves the basket untouched.
package settle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pos-lane/internal/basket"
	"github.com/noah-isme/pos-lane/internal/discount"
	"github.com/noah-isme/pos-lane/internal/money"
	"github.com/noah-isme/pos-lane/internal/receipt"
	"github.com/noah-isme/pos-lane/internal/tax"
	"github.com/noah-isme/pos-lane/internal/wire"
)

var (
	// ErrEmptyBasket rejects settlement before any network or storage work.
	ErrEmptyBasket = errors.New("settle: basket is empty")
	// ErrInvalidAmount rejects non-numeric or negative cash tender.
	ErrInvalidAmount = money.ErrInvalidAmount
	// ErrInsufficientTender rejects cash below the computed total.
	ErrInsufficientTender = errors.New("settle: tendered amount below total")
	// ErrUnknownTender rejects tender types other than cash and credit.
	ErrUnknownTender = errors.New("settle: unknown tender type")
	// ErrAborted marks a settlement cancelled before any side effect.
	ErrAborted = errors.New("settle: aborted")
)

// Tender is the payment method.
type Tender string

const (
	TenderCash   Tender = "Cash"
	TenderCredit Tender = "Credit"
)

// Quick selects a precomputed cash amount.
type Quick string

const (
	QuickNone       Quick = ""
	QuickExact      Quick = "exact"
	QuickNextDollar Quick = "nextDollar"
)

// Resolver is the pricing-service surface the controller needs.
type Resolver interface {
	Resolve(ctx context.Context, items []wire.LineItem, subtotal money.Money, discountName string) (discount.Outcome, error)
}

// Recorder journals settlement lines.
type Recorder interface {
	Record(ctx context.Context, itemID string, qty int, action string) error
}

// Quote is the priced view of a basket before tender.
type Quote struct {
	Subtotal         money.Money      `json:"subtotal"`
	Discount         discount.Outcome `json:"discount"`
	Tax              money.Money      `json:"tax"`
	Total            money.Money      `json:"total"`
	NextDollarTotal  money.Money      `json:"nextDollarTotal"`
	DiscountResolved bool             `json:"discountResolved"`
}

// Request describes one settlement attempt.
type Request struct {
	DiscountName string
	Tender       Tender
	Amount       string // raw cash input; ignored for credit and quick tenders
	Quick        Quick
}

// Result is a completed settlement.
type Result struct {
	Receipt  receipt.Snapshot `json:"receipt"`
	Quote    Quote            `json:"quote"`
	Label    string           `json:"label"`
	Tendered money.Money      `json:"tendered"`
	Change   money.Money      `json:"change"`
}

// Controller orchestrates settlements for one lane.
type Controller struct {
	Resolver Resolver
	Tax      tax.Engine
	Journal  Recorder
	Receipts receipt.Store
	Logger   zerolog.Logger
	Now      func() time.Time
}

func (c *Controller) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func wireItems(lines []basket.Line) []wire.LineItem {
	items := make([]wire.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, wire.LineItem{
			ID:        l.ID,
			Name:      l.Name,
			Qty:       l.Qty,
			UnitPrice: l.UnitPrice,
			LineTotal: l.Subtotal(),
		})
	}
	return items
}

// Quote prices the given lines with the selected discount. Resolver failure
// degrades to the zero-discount outcome with locally computed tax; the sale
// is never blocked on pricing-service availability.
func (c *Controller) Quote(ctx context.Context, lines []basket.Line, discountName string) (Quote, error) {
	var subtotal money.Money
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
	}
	if len(lines) == 0 || subtotal.IsZero() {
		return Quote{}, ErrEmptyBasket
	}

	q := Quote{Subtotal: subtotal}
	if c.Resolver != nil {
		outcome, err := c.Resolver.Resolve(ctx, wireItems(lines), subtotal, discountName)
		if err == nil {
			q.Discount = outcome
			q.DiscountResolved = true
		} else {
			c.Logger.Warn().Err(err).Msg("pricing service unavailable, proceeding without discount")
		}
	}
	if !q.DiscountResolved {
		q.Discount = discount.ZeroOutcome(subtotal)
	}
	if q.Discount.DiscountName == "" {
		q.Discount.DiscountName = discountName
	}

	q.Tax = c.Tax.Tax(q.Discount.DiscountedSubtotal)
	q.Total = q.Discount.DiscountedSubtotal.Add(q.Tax)
	q.NextDollarTotal = q.Total.CeilDollar()
	return q, nil
}

// Settle runs the full settlement against the lane's basket. On success the
// basket has been cleared with the payment flag set.
func (c *Controller) Settle(ctx context.Context, ledger *basket.Ledger, req Request) (Result, error) {
	if c == nil || ledger == nil {
		return Result{}, errors.New("settle: controller not configured")
	}
	if ledger.Len() == 0 {
		return Result{}, ErrEmptyBasket
	}

	lines := ledger.Snapshot()
	quote, err := c.Quote(ctx, lines, req.DiscountName)
	if err != nil {
		return Result{}, err
	}

	tendered, label, err := c.validateTender(quote, req)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		// Caller walked away during tender; nothing has been written yet.
		return Result{}, fmt.Errorf("%w: %w", ErrAborted, err)
	}
	change := tendered.Sub(quote.Total)

	entry := fmt.Sprintf(
		"%s | Subtotal: $%s | Tax: $%s | %s | Discount: %s (%s%%) -$%s | Total: $%s",
		label, quote.Subtotal, quote.Tax, req.Tender,
		quote.Discount.DiscountName, formatPercent(quote.Discount.DiscountPercentage),
		quote.Discount.DiscountAmount, quote.Total)
	for _, line := range lines {
		if c.Journal == nil {
			break
		}
		if err := c.Journal.Record(ctx, line.ID, line.Qty, entry); err != nil {
			c.Logger.Error().Err(err).Str("item_id", line.ID).Msg("settlement journal write failed")
		}
	}

	receiptLines := make([]receipt.Line, 0, len(lines))
	for _, l := range lines {
		receiptLines = append(receiptLines, receipt.Line{ItemID: l.ID, Qty: l.Qty, UnitPrice: l.UnitPrice})
	}
	snap := receipt.NewSnapshot(receiptLines, quote.Subtotal, quote.Tax, quote.Total, tendered, change, c.now())
	if c.Receipts != nil {
		if err := c.Receipts.Save(ctx, snap); err != nil {
			c.Logger.Error().Err(err).Str("receipt_id", snap.ReceiptID.String()).Msg("receipt persist failed")
		}
	}

	ledger.Clear(ctx, true)
	SettlementTotal.WithLabelValues(string(req.Tender)).Inc()
	c.Logger.Info().
		Str("receipt_id", snap.ReceiptID.String()).
		Str("tender", string(req.Tender)).
		Str("total", quote.Total.String()).
		Str("change", change.String()).
		Msg("settlement complete")

	return Result{Receipt: snap, Quote: quote, Label: label, Tendered: tendered, Change: change}, nil
}

// formatPercent renders the percentage exactly as the resolver returned it,
// without padding or rounding: 10 → "10", 2.5 → "2.5".
func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func (c *Controller) validateTender(quote Quote, req Request) (money.Money, string, error) {
	switch req.Tender {
	case TenderCredit:
		return quote.Total, "Payment", nil
	case TenderCash:
		switch req.Quick {
		case QuickExact:
			return quote.Total, "Payment (Exact Dollar)", nil
		case QuickNextDollar:
			return quote.NextDollarTotal, "Payment (Next Dollar)", nil
		}
		tendered, err := money.Parse(req.Amount)
		if err != nil {
			return 0, "", err
		}
		if tendered.IsNegative() {
			return 0, "", fmt.Errorf("%w: negative tender", ErrInvalidAmount)
		}
		if tendered < quote.Total {
			return 0, "", ErrInsufficientTender
		}
		return tendered, "Payment", nil
	default:
		return 0, "", fmt.Errorf("%w: %q", ErrUnknownTender, req.Tender)
	}
}

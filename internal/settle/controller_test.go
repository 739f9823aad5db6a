package settle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pos-lane/internal/basket"
	"github.com/noah-isme/pos-lane/internal/discount"
	"github.com/noah-isme/pos-lane/internal/money"
	"github.com/noah-isme/pos-lane/internal/pricebook"
	"github.com/noah-isme/pos-lane/internal/receipt"
	"github.com/noah-isme/pos-lane/internal/tax"
	"github.com/noah-isme/pos-lane/internal/wire"
)

type stubResolver struct {
	outcome discount.Outcome
	err     error
	calls   int
}

func (r *stubResolver) Resolve(_ context.Context, _ []wire.LineItem, _ money.Money, _ string) (discount.Outcome, error) {
	r.calls++
	return r.outcome, r.err
}

type journalEntry struct {
	itemID string
	qty    int
	action string
}

type stubJournal struct {
	entries []journalEntry
	err     error
}

func (j *stubJournal) Record(_ context.Context, itemID string, qty int, action string) error {
	j.entries = append(j.entries, journalEntry{itemID, qty, action})
	return j.err
}

type stubReceipts struct {
	saved []receipt.Snapshot
	err   error
}

func (s *stubReceipts) Save(_ context.Context, snap receipt.Snapshot) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, snap)
	return nil
}

type stubCatalog struct{}

func (stubCatalog) Lookup(_ context.Context, id string) (pricebook.Product, error) {
	switch id {
	case "A":
		return pricebook.Product{ID: "A", Name: "Cola", Price: 300}, nil
	case "B":
		return pricebook.Product{ID: "B", Name: "Chips", Price: 500}, nil
	}
	return pricebook.Product{}, pricebook.ErrNotFound
}

func (stubCatalog) LookupByName(_ context.Context, name string) (pricebook.Product, error) {
	switch name {
	case "Cola":
		return pricebook.Product{ID: "A", Name: "Cola", Price: 300}, nil
	case "Chips":
		return pricebook.Product{ID: "B", Name: "Chips", Price: 500}, nil
	}
	return pricebook.Product{}, pricebook.ErrNotFound
}

// referenceLedger is {A qty2 @ $3.00, B qty1 @ $5.00}: subtotal $11.00.
func referenceLedger(t *testing.T) *basket.Ledger {
	t.Helper()
	l := &basket.Ledger{Catalog: stubCatalog{}}
	ctx := context.Background()
	for _, id := range []string{"A", "A", "B"} {
		_, err := l.Scan(ctx, id)
		require.NoError(t, err)
	}
	return l
}

func newController(r Resolver, j *stubJournal, rc *stubReceipts) *Controller {
	return &Controller{
		Resolver: r,
		Tax:      tax.Engine{RateBps: 700},
		Journal:  j,
		Receipts: rc,
		Now:      func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) },
	}
}

func TestSettleCashReferenceBasket(t *testing.T) {
	j := &stubJournal{}
	rc := &stubReceipts{}
	c := newController(&stubResolver{err: discount.ErrNoDiscount}, j, rc)
	ledger := referenceLedger(t)

	res, err := c.Settle(context.Background(), ledger, Request{
		DiscountName: "None",
		Tender:       TenderCash,
		Amount:       "12.00",
	})
	require.NoError(t, err)

	assert.Equal(t, money.Money(1100), res.Quote.Subtotal)
	assert.Equal(t, money.Money(77), res.Quote.Tax)
	assert.Equal(t, money.Money(1177), res.Quote.Total)
	assert.Equal(t, money.Money(1200), res.Tendered)
	assert.Equal(t, money.Money(23), res.Change)
	assert.False(t, res.Quote.DiscountResolved)

	assert.Equal(t, "Payment", res.Label)
	wantLabel := "Payment | Subtotal: $11.00 | Tax: $0.77 | Cash | Discount: None (0%) -$0.00 | Total: $11.77"
	require.Len(t, j.entries, 2, "one journal entry per basket line")
	assert.Equal(t, journalEntry{"A", 2, wantLabel}, j.entries[0])
	assert.Equal(t, journalEntry{"B", 1, wantLabel}, j.entries[1])

	require.Len(t, rc.saved, 1)
	snap := rc.saved[0]
	assert.Equal(t, money.Money(1100), snap.Subtotal)
	assert.Equal(t, money.Money(77), snap.Tax)
	assert.Equal(t, money.Money(1177), snap.Total)
	assert.Equal(t, money.Money(1200), snap.AmountPaid)
	assert.Equal(t, money.Money(23), snap.ChangeDue)
	require.Len(t, snap.Lines, 2)

	assert.Zero(t, ledger.Len(), "basket cleared after settlement")
}

func TestSettleWithDiscount(t *testing.T) {
	resolver := &stubResolver{outcome: discount.Outcome{
		OriginalSubtotal:   1100,
		DiscountedSubtotal: 990,
		DiscountAmount:     110,
		DiscountName:       "Gold Loyalty Tier",
		DiscountPercentage: 10,
	}}
	j := &stubJournal{}
	c := newController(resolver, j, &stubReceipts{})
	ledger := referenceLedger(t)

	res, err := c.Settle(context.Background(), ledger, Request{
		DiscountName: "Gold Loyalty Tier",
		Tender:       TenderCash,
		Amount:       "11.00",
	})
	require.NoError(t, err)

	// Tax is computed on the discounted subtotal.
	assert.Equal(t, money.Money(69), res.Quote.Tax)
	assert.Equal(t, money.Money(1059), res.Quote.Total)
	assert.Equal(t, money.Money(41), res.Change)
	assert.True(t, res.Quote.DiscountResolved)
	assert.Contains(t, j.entries[0].action, "Discount: Gold Loyalty Tier (10%) -$1.10")
}

func TestSettleFractionalDiscountPercent(t *testing.T) {
	resolver := &stubResolver{outcome: discount.Outcome{
		OriginalSubtotal:   1100,
		DiscountedSubtotal: 1072,
		DiscountAmount:     28,
		DiscountName:       "Staff Discount",
		DiscountPercentage: 2.5,
	}}
	j := &stubJournal{}
	c := newController(resolver, j, &stubReceipts{})

	_, err := c.Settle(context.Background(), referenceLedger(t), Request{
		Tender: TenderCash,
		Amount: "12.00",
	})
	require.NoError(t, err)
	require.NotEmpty(t, j.entries)
	assert.Contains(t, j.entries[0].action, "Discount: Staff Discount (2.5%) -$0.28")
}

func TestSettleCreditTender(t *testing.T) {
	c := newController(&stubResolver{err: discount.ErrNoDiscount}, &stubJournal{}, &stubReceipts{})
	ledger := referenceLedger(t)

	res, err := c.Settle(context.Background(), ledger, Request{Tender: TenderCredit})
	require.NoError(t, err)
	assert.Equal(t, res.Quote.Total, res.Tendered)
	assert.True(t, res.Change.IsZero())
	assert.Equal(t, "Payment", res.Label)
}

func TestSettleQuickTenders(t *testing.T) {
	c := newController(&stubResolver{err: discount.ErrNoDiscount}, &stubJournal{}, &stubReceipts{})

	res, err := c.Settle(context.Background(), referenceLedger(t), Request{Tender: TenderCash, Quick: QuickExact})
	require.NoError(t, err)
	assert.Equal(t, money.Money(1177), res.Tendered)
	assert.True(t, res.Change.IsZero())
	assert.Equal(t, "Payment (Exact Dollar)", res.Label)

	res, err = c.Settle(context.Background(), referenceLedger(t), Request{Tender: TenderCash, Quick: QuickNextDollar})
	require.NoError(t, err)
	assert.Equal(t, money.Money(1200), res.Tendered)
	assert.Equal(t, money.Money(23), res.Change)
	assert.Equal(t, "Payment (Next Dollar)", res.Label)
}

func TestSettleEmptyBasket(t *testing.T) {
	resolver := &stubResolver{}
	c := newController(resolver, &stubJournal{}, &stubReceipts{})

	_, err := c.Settle(context.Background(), &basket.Ledger{Catalog: stubCatalog{}}, Request{Tender: TenderCash, Amount: "1.00"})
	assert.ErrorIs(t, err, ErrEmptyBasket)
	assert.Zero(t, resolver.calls, "empty basket must be rejected before any network work")
}

func TestSettleRejectionsLeaveBasketUntouched(t *testing.T) {
	j := &stubJournal{}
	rc := &stubReceipts{}
	c := newController(&stubResolver{err: discount.ErrNoDiscount}, j, rc)
	ledger := referenceLedger(t)
	entriesBefore := len(j.entries)

	cases := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"insufficient", Request{Tender: TenderCash, Amount: "5.00"}, ErrInsufficientTender},
		{"non numeric", Request{Tender: TenderCash, Amount: "eleven"}, ErrInvalidAmount},
		{"empty amount", Request{Tender: TenderCash}, ErrInvalidAmount},
		{"negative", Request{Tender: TenderCash, Amount: "-1.00"}, ErrInvalidAmount},
		{"unknown tender", Request{Tender: Tender("Barter"), Amount: "20.00"}, ErrUnknownTender},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Settle(context.Background(), ledger, tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
	assert.Equal(t, 2, ledger.Len())
	assert.Equal(t, entriesBefore, len(j.entries), "rejections must not journal")
	assert.Empty(t, rc.saved, "rejections must not write receipts")
}

func TestSettleCancelledContextAborts(t *testing.T) {
	j := &stubJournal{}
	rc := &stubReceipts{}
	c := newController(&stubResolver{err: discount.ErrNoDiscount}, j, rc)
	ledger := referenceLedger(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Settle(ctx, ledger, Request{Tender: TenderCash, Amount: "12.00"})
	assert.ErrorIs(t, err, ErrAborted)
	assert.Empty(t, j.entries)
	assert.Empty(t, rc.saved)
	assert.Equal(t, 2, ledger.Len())
}

func TestSettleStorageFailuresDoNotBlockSale(t *testing.T) {
	j := &stubJournal{err: errors.New("db down")}
	rc := &stubReceipts{err: errors.New("db down")}
	c := newController(&stubResolver{err: discount.ErrNoDiscount}, j, rc)
	ledger := referenceLedger(t)

	res, err := c.Settle(context.Background(), ledger, Request{Tender: TenderCash, Amount: "12.00"})
	require.NoError(t, err, "storage failure is reported, not a gate")
	assert.Equal(t, money.Money(23), res.Change)
	assert.Zero(t, ledger.Len())
}

func TestQuoteDegradesWithoutResolver(t *testing.T) {
	c := newController(nil, &stubJournal{}, &stubReceipts{})
	lines := referenceLedger(t).Snapshot()

	q, err := c.Quote(context.Background(), lines, "None")
	require.NoError(t, err)
	assert.Equal(t, money.Money(1177), q.Total)
	assert.Equal(t, money.Money(1200), q.NextDollarTotal)
	assert.Equal(t, "None", q.Discount.DiscountName)
	assert.False(t, q.DiscountResolved)
}

func TestQuoteEmpty(t *testing.T) {
	c := newController(nil, nil, nil)
	_, err := c.Quote(context.Background(), nil, "None")
	assert.ErrorIs(t, err, ErrEmptyBasket)
}

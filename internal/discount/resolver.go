// Package discount resolves basket discounts through the remote pricing
// service. The contract is two-tiered: a basket endpoint that receives full
// line items, and a legacy endpoint fed a single synthetic line for the order
// total. Tiers are tried in order as explicit tagged attempts; the first
// usable result wins and any failure at the last tier surfaces as a resolver
// error, which callers turn into the zero-discount outcome. A sale is never
// blocked on pricing-service availability.
package discount

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pos-lane/internal/money"
	"github.com/noah-isme/pos-lane/internal/resilience"
	"github.com/noah-isme/pos-lane/internal/wire"
)

// DefaultBaseURL is used when no explicit pricing endpoint is configured.
const DefaultBaseURL = "http://localhost:8080"

// basketPathSuffix is the fixed route appended to a configured base URL.
const basketPathSuffix = "/discount/applyBasket"

// ErrNoDiscount indicates neither tier produced a usable discount.
var ErrNoDiscount = errors.New("discount: no usable discount")

// Outcome is the resolved result of applying a named discount to a subtotal.
type Outcome struct {
	OriginalSubtotal   money.Money
	DiscountedSubtotal money.Money
	DiscountAmount     money.Money
	DiscountName       string
	DiscountPercentage float64
}

// ZeroOutcome synthesizes the no-discount outcome for a subtotal. It is the
// fallback every caller applies when the resolver fails.
func ZeroOutcome(subtotal money.Money) Outcome {
	return Outcome{
		OriginalSubtotal:   subtotal,
		DiscountedSubtotal: subtotal,
		DiscountAmount:     0,
		DiscountName:       "None",
	}
}

// ResolveURL applies the endpoint precedence: an explicit full URL wins, then
// a configured base with the fixed suffix, then the built-in default.
func ResolveURL(fullOverride, base string) string {
	if trimmed := strings.TrimSpace(fullOverride); trimmed != "" {
		return trimmed
	}
	b := strings.TrimSpace(base)
	if b == "" {
		b = DefaultBaseURL
	}
	if strings.HasSuffix(b, "/") {
		return b + strings.TrimPrefix(basketPathSuffix, "/")
	}
	return b + basketPathSuffix
}

// Resolver talks to the pricing service. Both tiers POST to the same URL;
// they differ only in the request shape.
type Resolver struct {
	URL    string
	HTTP   resilience.HTTPClient
	Logger zerolog.Logger
}

// Resolve runs the tiered protocol for the given basket. On success the
// returned outcome always satisfies
// discountedSubtotal == max(0, originalSubtotal - discountAmount).
func (r *Resolver) Resolve(ctx context.Context, items []wire.LineItem, subtotal money.Money, discountName string) (Outcome, error) {
	if r == nil {
		return Outcome{}, errors.New("discount: resolver not configured")
	}

	result, err := r.post(ctx, items, subtotal, discountName)
	if err == nil && result.DiscountedSubtotal > 0 {
		TierTotal.WithLabelValues("basket", "ok").Inc()
		return outcomeFromBasket(result, subtotal), nil
	}
	if err != nil {
		TierTotal.WithLabelValues("basket", "error").Inc()
		r.Logger.Debug().Err(err).Msg("basket pricing tier failed, trying legacy tier")
	} else {
		// A discountedSubtotal of exactly zero is indistinguishable from an
		// absent field, so a fully-discounted basket also lands here. Known
		// quirk of the wire contract; pinned by tests.
		TierTotal.WithLabelValues("basket", "fallthrough").Inc()
	}

	legacy := []wire.LineItem{{
		ID:        "TOTAL",
		Name:      "Order Total",
		Qty:       1,
		UnitPrice: subtotal,
		LineTotal: subtotal,
	}}
	result, err = r.post(ctx, legacy, subtotal, discountName)
	if err != nil {
		TierTotal.WithLabelValues("legacy", "error").Inc()
		return Outcome{}, fmt.Errorf("%w: %w", ErrNoDiscount, err)
	}
	TierTotal.WithLabelValues("legacy", "ok").Inc()

	original := result.OriginalSubtotal
	if original <= 0 {
		original = subtotal
	}
	return Outcome{
		OriginalSubtotal:   original,
		DiscountedSubtotal: result.DiscountedSubtotal,
		DiscountAmount:     result.DiscountAmount,
		DiscountName:       result.DiscountName,
		DiscountPercentage: result.DiscountPercentage,
	}, nil
}

func outcomeFromBasket(result wire.BasketResult, subtotal money.Money) Outcome {
	original := result.OriginalSubtotal
	if original <= 0 {
		original = subtotal
	}
	amount := original.Sub(result.DiscountedSubtotal)
	if amount < 0 {
		amount = 0
	}
	return Outcome{
		OriginalSubtotal:   original,
		DiscountedSubtotal: result.DiscountedSubtotal,
		DiscountAmount:     amount,
		DiscountName:       result.DiscountName,
		DiscountPercentage: result.DiscountPercentage,
	}
}

func (r *Resolver) post(ctx context.Context, items []wire.LineItem, subtotal money.Money, discountName string) (wire.BasketResult, error) {
	body := wire.EncodeBasketRequest(items, subtotal, discountName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return wire.BasketResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.HTTP.Do(ctx, req)
	if err != nil {
		return wire.BasketResult{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return wire.BasketResult{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return wire.BasketResult{}, fmt.Errorf("pricing service: HTTP %d", resp.StatusCode)
	}
	return wire.DecodeBasketResponse(payload), nil
}

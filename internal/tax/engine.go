package tax

import "github.com/noah-isme/pos-lane/internal/money"

// DefaultRateBps is the flat sales tax rate in basis points (7%).
const DefaultRateBps = 700

// Engine computes flat-rate sales tax over a subtotal.
type Engine struct {
	RateBps int
}

func (e Engine) rate() int {
	if e.RateBps <= 0 {
		return DefaultRateBps
	}
	return e.RateBps
}

// Tax returns the tax owed on the subtotal, rounded half-up to the cent.
func (e Engine) Tax(subtotal money.Money) money.Money {
	return money.MulRoundBps(subtotal, e.rate())
}

// TotalWithTax returns subtotal plus tax.
func (e Engine) TotalWithTax(subtotal money.Money) money.Money {
	return subtotal.Add(e.Tax(subtotal))
}

// Package pricebook is the product catalog the lane scans against: a postgres
// table fronted by a redis read-through cache.
package pricebook

import (
	"context"
	"errors"

	"github.com/noah-isme/pos-lane/internal/money"
)

// ErrNotFound indicates the scanned id or name is not in the pricebook.
var ErrNotFound = errors.New("pricebook: item not found")

// Product is one pricebook row.
type Product struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Price money.Money `json:"price"`
}

// Store defines the persistence operations for the pricebook.
type Store interface {
	Lookup(ctx context.Context, id string) (Product, error)
	LookupByName(ctx context.Context, name string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	Upsert(ctx context.Context, p Product) error
}

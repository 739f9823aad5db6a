package pricebook

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Catalog is the lookup surface the basket ledger uses, read-through cached.
// Cache failures degrade to direct store reads.
type Catalog struct {
	Store  Store
	Cache  *Cache
	Logger zerolog.Logger
}

func itemKey(id string) string { return "pricebook:item:" + id }

// Lookup returns the product for a scanned id.
func (c Catalog) Lookup(ctx context.Context, id string) (Product, error) {
	if c.Store == nil {
		return Product{}, errors.New("pricebook: store not configured")
	}

	var cached Product
	hit, err := c.Cache.GetJSON(ctx, itemKey(id), &cached)
	if err != nil {
		c.Logger.Debug().Err(err).Str("item_id", id).Msg("pricebook cache read failed")
	}
	if hit {
		return cached, nil
	}

	p, err := c.Store.Lookup(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := c.Cache.SetJSON(ctx, itemKey(id), p); err != nil {
		c.Logger.Debug().Err(err).Str("item_id", id).Msg("pricebook cache write failed")
	}
	return p, nil
}

// LookupByName resolves a product by display name. Name lookups come from the
// manual-entry path and are not cached.
func (c Catalog) LookupByName(ctx context.Context, name string) (Product, error) {
	if c.Store == nil {
		return Product{}, errors.New("pricebook: store not configured")
	}
	return c.Store.LookupByName(ctx, name)
}

// List returns the whole pricebook, for the product grid.
func (c Catalog) List(ctx context.Context) ([]Product, error) {
	if c.Store == nil {
		return nil, errors.New("pricebook: store not configured")
	}
	return c.Store.List(ctx)
}

// Invalidate drops a cached item, used after a seeder upsert.
func (c Catalog) Invalidate(ctx context.Context, id string) {
	if err := c.Cache.Del(ctx, itemKey(id)); err != nil {
		c.Logger.Debug().Err(err).Str("item_id", id).Msg("pricebook cache invalidate failed")
	}
}

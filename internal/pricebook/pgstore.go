package pricebook

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore backs the pricebook with postgres. Prices are stored as integer
// cents.
type PGStore struct {
	Pool *pgxpool.Pool
}

func (s PGStore) Lookup(ctx context.Context, id string) (Product, error) {
	var p Product
	err := s.Pool.QueryRow(ctx,
		`SELECT id, name, price FROM pricebook WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("lookup pricebook item: %w", err)
	}
	return p, nil
}

func (s PGStore) LookupByName(ctx context.Context, name string) (Product, error) {
	var p Product
	err := s.Pool.QueryRow(ctx,
		`SELECT id, name, price FROM pricebook WHERE name = $1`, name).
		Scan(&p.ID, &p.Name, &p.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("lookup pricebook item by name: %w", err)
	}
	return p, nil
}

func (s PGStore) List(ctx context.Context) ([]Product, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, price FROM pricebook ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list pricebook: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("scan pricebook row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pricebook rows: %w", err)
	}
	return products, nil
}

func (s PGStore) Upsert(ctx context.Context, p Product) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO pricebook (id, name, price) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price`,
		p.ID, p.Name, p.Price)
	if err != nil {
		return fmt.Errorf("upsert pricebook item: %w", err)
	}
	return nil
}

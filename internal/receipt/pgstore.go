package receipt

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore writes receipt rows to postgres, one batch per settlement.
type PGStore struct {
	Pool *pgxpool.Pool
}

func (s PGStore) Save(ctx context.Context, snap Snapshot) error {
	batch := &pgx.Batch{}
	for _, line := range snap.Lines {
		batch.Queue(
			`INSERT INTO receipts (
				receipt_id, item_id, qty, unit_price, line_subtotal,
				subtotal, tax, total, amount_paid, change_due, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			snap.ReceiptID, line.ItemID, line.Qty, line.UnitPrice, line.Subtotal(),
			snap.Subtotal, snap.Tax, snap.Total, snap.AmountPaid, snap.ChangeDue, snap.CreatedAt)
	}
	results := s.Pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()
	for range snap.Lines {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save receipt %s: %w", snap.ReceiptID, err)
		}
	}
	return nil
}

// TopItems aggregates all receipt lines into the best sellers, ordered by
// total quantity sold.
func (s PGStore) TopItems(ctx context.Context, limit int) ([]ItemSales, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT item_id, SUM(qty)::bigint AS total_qty
		 FROM receipts
		 GROUP BY item_id
		 ORDER BY total_qty DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	defer rows.Close()

	var out []ItemSales
	for rows.Next() {
		var is ItemSales
		if err := rows.Scan(&is.ItemID, &is.Sold); err != nil {
			return nil, fmt.Errorf("top items: %w", err)
		}
		out = append(out, is)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	return out, nil
}

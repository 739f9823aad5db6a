package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists journal entries in postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

func (s PGStore) Insert(ctx context.Context, e Entry) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO journal (item_id, item_qty, action, datetime) VALUES ($1, $2, $3, $4)`,
		e.ItemID, e.Qty, e.Action, e.At)
	if err != nil {
		return fmt.Errorf("insert journal row: %w", err)
	}
	return nil
}

func (s PGStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, item_id, item_qty, action, datetime FROM journal ORDER BY datetime DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list journal rows: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ItemID, &e.Qty, &e.Action, &e.At); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return entries, nil
}

func (s PGStore) Clear(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, `DELETE FROM journal`); err != nil {
		return fmt.Errorf("clear journal: %w", err)
	}
	return nil
}

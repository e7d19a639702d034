//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/salescope/salescope/internal/logging"
	"github.com/salescope/salescope/internal/txn"
)

// DB is an interface that both *pgxpool.Pool and *pgx.Conn satisfy,
// so loaders work with a pool or a dedicated connection.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Load reads transactions matching the filter, returning fully
// normalized records (identifiers upper-cased, dates nullable).
// Filtering is pushed into the query; records come back in insertion
// order so downstream first-seen semantics are stable.
func Load(ctx context.Context, db DB, f txn.Filter) ([]txn.Transaction, error) {
	query := `
		SELECT customer_id, group_id, COALESCE(group_name, ''),
		       registered_at, last_purchase_at,
		       order_id, line_code, line_name, COALESCE(sku, ''),
		       quantity, sale_value
		FROM transactions`

	var conds []string
	var args []any

	switch {
	case f.CustomerID != "":
		args = append(args, txn.NormalizeID(f.CustomerID))
		conds = append(conds, fmt.Sprintf("UPPER(customer_id) = $%d", len(args)))
	case f.GroupID != "":
		args = append(args, txn.NormalizeID(f.GroupID))
		conds = append(conds, fmt.Sprintf("UPPER(group_id) = $%d", len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		conds = append(conds, fmt.Sprintf("registered_at >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		conds = append(conds, fmt.Sprintf("registered_at <= $%d", len(args)))
	}

	for i, c := range conds {
		if i == 0 {
			query += "\n\t\tWHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += "\n\t\tORDER BY id"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var records []txn.Transaction
	for rows.Next() {
		var t txn.Transaction
		var registeredAt, lastPurchaseAt *time.Time

		if err := rows.Scan(
			&t.CustomerID, &t.GroupID, &t.GroupName,
			&registeredAt, &lastPurchaseAt,
			&t.OrderID, &t.LineCode, &t.LineName, &t.SKU,
			&t.Quantity, &t.SaleValue,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if registeredAt != nil {
			t.RegisteredAt = *registeredAt
			t.HasRegisteredAt = true
		}
		if lastPurchaseAt != nil {
			t.LastPurchaseAt = *lastPurchaseAt
			t.HasLastPurchase = true
		}

		t.Normalize()
		records = append(records, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	logging.Debug().
		Int("records", len(records)).
		Str("customer", f.CustomerID).
		Str("group", f.GroupID).
		Msg("Loaded transactions")

	return records, nil
}

// Count returns the number of stored transactions.
func Count(ctx context.Context, db DB) (int64, error) {
	var count int64
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

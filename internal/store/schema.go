//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package store persists and loads the normalized transaction records
// backing every analysis session.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createSchemaSQL = `
-- Transactions: one row per sale line
CREATE TABLE IF NOT EXISTS transactions (
    id               BIGSERIAL PRIMARY KEY,
    customer_id      VARCHAR(30) NOT NULL,
    group_id         VARCHAR(30) NOT NULL,
    group_name       VARCHAR(120),
    registered_at    DATE,
    last_purchase_at DATE,
    order_id         VARCHAR(40) NOT NULL,
    line_code        VARCHAR(30) NOT NULL,
    line_name        VARCHAR(120) NOT NULL,
    sku              VARCHAR(60),
    quantity         NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    sale_value       NUMERIC(14,2) NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_transactions_customer ON transactions(customer_id);
CREATE INDEX IF NOT EXISTS idx_transactions_group ON transactions(group_id);
CREATE INDEX IF NOT EXISTS idx_transactions_registered ON transactions(registered_at);
`

const dropSchemaSQL = `
DROP TABLE IF EXISTS transactions CASCADE;
`

// CreateSchema creates the transactions table and its indexes.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// DropSchema drops the transactions table.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, dropSchemaSQL); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

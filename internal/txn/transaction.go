//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package txn defines the normalized sales transaction record and the
// filtering rules applied before analysis.
package txn

import (
	"strings"
	"time"
)

// Transaction is one sale line, normalized for analysis. Customer and
// group identifiers are upper-cased; registration and last-purchase
// dates are optional and carry a presence flag instead of a zero value.
type Transaction struct {
	// CustomerID identifies the customer (store), upper-cased.
	CustomerID string

	// GroupID identifies the customer group, upper-cased.
	GroupID string

	// GroupName is the display name of the customer group.
	GroupName string

	// RegisteredAt is the order registration date.
	RegisteredAt time.Time

	// HasRegisteredAt reports whether RegisteredAt is present.
	HasRegisteredAt bool

	// LastPurchaseAt is the customer's last purchase date as recorded
	// on this row.
	LastPurchaseAt time.Time

	// HasLastPurchase reports whether LastPurchaseAt is present.
	HasLastPurchase bool

	// OrderID is the order identifier, used as the frequency counting
	// key by the cohort engine.
	OrderID string

	// LineCode and LineName identify the product line.
	LineCode string
	LineName string

	// SKU is the product reference.
	SKU string

	// Quantity is the quantity sold, never negative.
	Quantity float64

	// SaleValue is the total sale amount for this line.
	SaleValue float64
}

// UnitPrice returns SaleValue / Quantity, or 0 when Quantity is 0.
func (t Transaction) UnitPrice() float64 {
	if t.Quantity > 0 {
		return t.SaleValue / t.Quantity
	}
	return 0
}

// Normalize upper-cases and trims identifiers in place.
func (t *Transaction) Normalize() {
	t.CustomerID = NormalizeID(t.CustomerID)
	t.GroupID = NormalizeID(t.GroupID)
	t.LineCode = strings.TrimSpace(t.LineCode)
	t.OrderID = strings.TrimSpace(t.OrderID)
	t.SKU = strings.TrimSpace(t.SKU)
}

// NormalizeID trims and upper-cases an identifier.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// NormalizeAll normalizes every record in the slice in place and
// returns the slice.
func NormalizeAll(records []Transaction) []Transaction {
	for i := range records {
		records[i].Normalize()
	}
	return records
}

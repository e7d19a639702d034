//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package txn

import "time"

// Filter selects transactions by customer, group and registration date
// range. A zero field means "no constraint". When both CustomerID and
// GroupID are set, the customer filter wins.
type Filter struct {
	CustomerID string
	GroupID    string

	// From and To bound the registration date, inclusive on both ends.
	From time.Time
	To   time.Time
}

// IsZero reports whether the filter has no constraints.
func (f Filter) IsZero() bool {
	return f.CustomerID == "" && f.GroupID == "" && f.From.IsZero() && f.To.IsZero()
}

// Matches reports whether a single transaction passes the filter.
// Records without a registration date are excluded by a date-bounded
// filter, since their position in the range is unknown.
func (f Filter) Matches(t Transaction) bool {
	switch {
	case f.CustomerID != "":
		if t.CustomerID != f.CustomerID {
			return false
		}
	case f.GroupID != "":
		if t.GroupID != f.GroupID {
			return false
		}
	}

	if !f.From.IsZero() || !f.To.IsZero() {
		if !t.HasRegisteredAt {
			return false
		}
		if !f.From.IsZero() && t.RegisteredAt.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && t.RegisteredAt.After(f.To) {
			return false
		}
	}

	return true
}

// Apply returns the transactions passing the filter, preserving order.
func (f Filter) Apply(records []Transaction) []Transaction {
	if f.IsZero() {
		return records
	}

	out := make([]Transaction, 0, len(records))
	for _, t := range records {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

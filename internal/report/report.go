//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package report computes the presentation-free aggregates of an
// analysis: the KPI summary, the top product lines by quantity sold,
// and CSV exports. Rendering and layout stay with the caller.
package report

import (
	"sort"
	"time"

	"github.com/salescope/salescope/internal/rfv"
	"github.com/salescope/salescope/internal/txn"
)

// Summary is the KPI block for a filtered selection.
type Summary struct {
	// GroupName is taken from the first record of the selection.
	GroupName string

	// StoreCount is the number of distinct customer identifiers.
	StoreCount int

	// LastPurchase is the most recent purchase date in the selection.
	LastPurchase    time.Time
	HasLastPurchase bool

	// PeriodStart and PeriodEnd bound the registration dates seen.
	PeriodStart time.Time
	PeriodEnd   time.Time
	HasPeriod   bool

	// TotalUnits is the summed quantity sold.
	TotalUnits float64

	// BestOfferMonth is the most frequent registration month. Ties
	// resolve to the smallest month number.
	BestOfferMonth    time.Month
	HasBestOfferMonth bool
}

// BuildSummary computes the KPI summary for a filtered selection.
// It returns rfv.ErrNoData on an empty selection.
func BuildSummary(filtered []txn.Transaction) (Summary, error) {
	if len(filtered) == 0 {
		return Summary{}, rfv.ErrNoData
	}

	s := Summary{GroupName: filtered[0].GroupName}

	customers := make(map[string]struct{})
	monthCounts := make(map[time.Month]int)

	for _, t := range filtered {
		customers[t.CustomerID] = struct{}{}
		s.TotalUnits += t.Quantity

		if t.HasLastPurchase && (!s.HasLastPurchase || t.LastPurchaseAt.After(s.LastPurchase)) {
			s.LastPurchase = t.LastPurchaseAt
			s.HasLastPurchase = true
		}

		if t.HasRegisteredAt {
			if !s.HasPeriod {
				s.PeriodStart = t.RegisteredAt
				s.PeriodEnd = t.RegisteredAt
				s.HasPeriod = true
			} else {
				if t.RegisteredAt.Before(s.PeriodStart) {
					s.PeriodStart = t.RegisteredAt
				}
				if t.RegisteredAt.After(s.PeriodEnd) {
					s.PeriodEnd = t.RegisteredAt
				}
			}
			monthCounts[t.RegisteredAt.Month()]++
		}
	}

	s.StoreCount = len(customers)

	best := 0
	for m := time.January; m <= time.December; m++ {
		if monthCounts[m] > best {
			best = monthCounts[m]
			s.BestOfferMonth = m
			s.HasBestOfferMonth = true
		}
	}

	return s, nil
}

// LineQuantity is one product line with its summed quantity sold.
type LineQuantity struct {
	Code     string
	Name     string
	Quantity float64
}

// TopLinesByQuantity ranks product lines by summed quantity sold,
// descending, ties by line name ascending, truncated to n (all lines
// when n <= 0).
func TopLinesByQuantity(records []txn.Transaction, n int) []LineQuantity {
	type key struct{ code, name string }
	sums := make(map[key]float64)
	var order []key

	for _, t := range records {
		k := key{t.LineCode, t.LineName}
		if _, ok := sums[k]; !ok {
			order = append(order, k)
		}
		sums[k] += t.Quantity
	}

	out := make([]LineQuantity, 0, len(order))
	for _, k := range order {
		out = append(out, LineQuantity{Code: k.code, Name: k.name, Quantity: sums[k]})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

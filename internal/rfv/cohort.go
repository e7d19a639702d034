//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package rfv implements Recency-Frequency-Value scoring of customers.
//
// Two engines exist and are kept deliberately separate. The cohort
// engine ranks every customer against the current population using
// quintiles, so its output is relative and changes as the population
// changes. The entity engine scores one filtered selection against
// fixed business thresholds, so its output is stable across runs.
// The two engines also use different frequency definitions: the cohort
// engine counts order records, the entity engine counts distinct
// registration dates.
package rfv

import (
	"fmt"
	"sort"
	"time"

	"github.com/salescope/salescope/internal/txn"
)

// MissingRecencyDays is the recency sentinel for customers without a
// parseable last-purchase date.
const MissingRecencyDays = 999

// quantileBuckets is the number of quantile buckets per metric.
const quantileBuckets = 5

// CohortEntry is the cohort engine's result for one customer.
type CohortEntry struct {
	CustomerID string

	// RecencyDays is days since the customer's most recent purchase,
	// or MissingRecencyDays when no purchase date exists.
	RecencyDays int

	// Frequency is the number of order records for the customer.
	Frequency int

	// Value is the summed sale value across the customer's records.
	Value float64

	// RecencyRank, FrequencyRank and ValueRank are quintile labels
	// in 1..5. RecencyRank is inverted: the most recent customers
	// get 5.
	RecencyRank   int
	FrequencyRank int
	ValueRank     int

	// Score is the three quantile labels concatenated in R, F, V
	// order.
	Score string

	// Segment is the digit-sum segment label.
	Segment string
}

// ComputeCohort scores every distinct customer in the record set and
// assigns a segment label. The asOf instant anchors the recency
// computation.
//
// Quantile boundaries are data-dependent: each metric is ranked with a
// stable first-seen tie-break and cut into 5 equal-size buckets. When
// fewer than 5 customers exist the bucket count collapses to the
// population size, so ranks stay well defined (and dense in 1..n)
// instead of failing. An empty record set yields an empty map.
func ComputeCohort(records []txn.Transaction, asOf time.Time) map[string]CohortEntry {
	// Aggregate per customer, keeping first-seen order for the rank
	// tie-break.
	var order []string
	agg := make(map[string]*CohortEntry)
	lastPurchase := make(map[string]time.Time)

	for _, t := range records {
		e, ok := agg[t.CustomerID]
		if !ok {
			e = &CohortEntry{
				CustomerID:  t.CustomerID,
				RecencyDays: MissingRecencyDays,
			}
			agg[t.CustomerID] = e
			order = append(order, t.CustomerID)
		}

		e.Frequency++
		e.Value += t.SaleValue

		if t.HasLastPurchase {
			if latest, ok := lastPurchase[t.CustomerID]; !ok || t.LastPurchaseAt.After(latest) {
				lastPurchase[t.CustomerID] = t.LastPurchaseAt
			}
		}
	}

	for id, latest := range lastPurchase {
		agg[id].RecencyDays = daysBetween(latest, asOf)
	}

	n := len(order)
	if n == 0 {
		return map[string]CohortEntry{}
	}

	buckets := quantileBuckets
	if n < buckets {
		buckets = n
	}

	// Recency: smaller is better, so labels are inverted.
	assignRanks(order, buckets, func(id string) float64 {
		return float64(agg[id].RecencyDays)
	}, func(id string, bucket int) {
		agg[id].RecencyRank = buckets - bucket
	})

	assignRanks(order, buckets, func(id string) float64 {
		return float64(agg[id].Frequency)
	}, func(id string, bucket int) {
		agg[id].FrequencyRank = bucket + 1
	})

	assignRanks(order, buckets, func(id string) float64 {
		return agg[id].Value
	}, func(id string, bucket int) {
		agg[id].ValueRank = bucket + 1
	})

	out := make(map[string]CohortEntry, n)
	for _, id := range order {
		e := agg[id]
		e.Score = fmt.Sprintf("%d%d%d", e.RecencyRank, e.FrequencyRank, e.ValueRank)
		e.Segment = SegmentForTotal(e.RecencyRank + e.FrequencyRank + e.ValueRank)
		out[id] = *e
	}
	return out
}

// assignRanks stable-sorts customers by metric ascending (ties keep
// first-seen order) and cuts the ranking into equal-size buckets.
// Every customer lands in exactly one bucket even under ties.
func assignRanks(order []string, buckets int, metric func(string) float64, set func(string, int)) {
	n := len(order)
	ranked := make([]string, n)
	copy(ranked, order)

	sort.SliceStable(ranked, func(i, j int) bool {
		return metric(ranked[i]) < metric(ranked[j])
	})

	for pos, id := range ranked {
		set(id, pos*buckets/n)
	}
}

// daysBetween returns whole days from a to b, negative when b precedes a.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

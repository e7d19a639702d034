//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package rfv

import (
	"errors"
	"fmt"
	"time"

	"github.com/salescope/salescope/internal/txn"
)

// ErrNoData is returned when a computation receives zero records.
var ErrNoData = errors.New("no data for these filters")

// Profile is the entity engine's scored profile for one customer or
// customer-group selection.
type Profile struct {
	// RecencyDays is days since the most recent purchase in the
	// selection, or MissingRecencyDays when no purchase date exists.
	RecencyDays int

	// Frequency is the number of distinct registration dates in the
	// selection. This is a different metric from the cohort engine's
	// order count and the two are never interchangeable.
	Frequency int

	// Value is the summed sale value of the selection.
	Value float64

	// RecencyScore, FrequencyScore and ValueScore are the absolute
	// threshold scores, each in 1..5.
	RecencyScore   int
	FrequencyScore int
	ValueScore     int

	// Score is the three digits concatenated in R, F, V order.
	Score string

	// Classification is the threshold-vocabulary label.
	Classification string
}

// thresholdBand maps a metric bound to a digit score. Bands are
// evaluated in order, first match wins; a miss on every band scores 1.
type thresholdBand struct {
	Bound float64
	Score int
}

// Recency: fewer days since purchase scores higher.
var recencyBands = []thresholdBand{
	{Bound: 30, Score: 5},
	{Bound: 90, Score: 4},
	{Bound: 180, Score: 3},
	{Bound: 365, Score: 2},
}

// Frequency: more distinct registration dates scores higher.
var frequencyBands = []thresholdBand{
	{Bound: 12, Score: 5},
	{Bound: 6, Score: 4},
	{Bound: 3, Score: 3},
	{Bound: 1, Score: 2},
}

// Value: higher summed sale value scores higher.
var valueBands = []thresholdBand{
	{Bound: 50000, Score: 5},
	{Bound: 20000, Score: 4},
	{Bound: 10000, Score: 3},
	{Bound: 5000, Score: 2},
}

// ComputeEntity scores a filtered selection against the fixed business
// thresholds. Unlike the cohort engine it never compares across the
// customer population, so results are comparable across sessions.
// It returns ErrNoData on an empty selection.
func ComputeEntity(filtered []txn.Transaction, asOf time.Time) (Profile, error) {
	if len(filtered) == 0 {
		return Profile{}, ErrNoData
	}

	recency := MissingRecencyDays
	var latest time.Time
	hasPurchase := false

	seen := make(map[time.Time]struct{})
	var value float64

	for _, t := range filtered {
		if t.HasLastPurchase && (!hasPurchase || t.LastPurchaseAt.After(latest)) {
			latest = t.LastPurchaseAt
			hasPurchase = true
		}
		if t.HasRegisteredAt {
			day := t.RegisteredAt.Truncate(24 * time.Hour)
			seen[day] = struct{}{}
		}
		value += t.SaleValue
	}

	if hasPurchase {
		recency = daysBetween(latest, asOf)
	}
	frequency := len(seen)

	return ScoreEntity(recency, frequency, value), nil
}

// ScoreEntity maps raw recency, frequency and value metrics to digit
// scores, the score string and a classification label. Thresholds are
// absolute constants, so the result is a pure function of its inputs.
func ScoreEntity(recencyDays, frequency int, value float64) Profile {
	p := Profile{
		RecencyDays: recencyDays,
		Frequency:   frequency,
		Value:       value,
	}

	p.RecencyScore = scoreAtMost(float64(recencyDays), recencyBands)
	p.FrequencyScore = scoreAtLeast(float64(frequency), frequencyBands)
	p.ValueScore = scoreAtLeast(value, valueBands)

	p.Score = fmt.Sprintf("%d%d%d", p.RecencyScore, p.FrequencyScore, p.ValueScore)
	p.Classification = ClassificationFor(p.RecencyScore, p.FrequencyScore, p.ValueScore)
	return p
}

// scoreAtMost scores a metric where smaller is better (<= bound).
func scoreAtMost(v float64, bands []thresholdBand) int {
	for _, b := range bands {
		if v <= b.Bound {
			return b.Score
		}
	}
	return 1
}

// scoreAtLeast scores a metric where larger is better (>= bound).
func scoreAtLeast(v float64, bands []thresholdBand) int {
	for _, b := range bands {
		if v >= b.Bound {
			return b.Score
		}
	}
	return 1
}

//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/salescope/salescope/internal/propensity"
	"github.com/salescope/salescope/internal/rfv"
)

// WriteCohortCSV writes the cohort RFV result as CSV, one row per
// customer, sorted by customer identifier.
func WriteCohortCSV(w io.Writer, entries map[string]rfv.CohortEntry) error {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"customer_id", "recency_days", "frequency", "value",
		"r_rank", "f_rank", "v_rank", "rfv_score", "segment",
	}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, id := range ids {
		e := entries[id]
		row := []string{
			e.CustomerID,
			strconv.Itoa(e.RecencyDays),
			strconv.Itoa(e.Frequency),
			strconv.FormatFloat(e.Value, 'f', 2, 64),
			strconv.Itoa(e.RecencyRank),
			strconv.Itoa(e.FrequencyRank),
			strconv.Itoa(e.ValueRank),
			e.Score,
			e.Segment,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row for %s: %w", id, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WritePredictionsCSV writes a ranked propensity prediction list as
// CSV, preserving rank order.
func WritePredictionsCSV(w io.Writer, scores []propensity.LineScore) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "line", "probability"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, s := range scores {
		row := []string{
			strconv.Itoa(i + 1),
			s.Line,
			strconv.FormatFloat(s.Probability, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

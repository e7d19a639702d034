package report

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/salescope/salescope/internal/propensity"
	"github.com/salescope/salescope/internal/rfv"
)

func TestWriteCohortCSV(t *testing.T) {
	entries := map[string]rfv.CohortEntry{
		"C2": {
			CustomerID: "C2", RecencyDays: 40, Frequency: 2, Value: 250.5,
			RecencyRank: 2, FrequencyRank: 3, ValueRank: 4,
			Score: "234", Segment: "Average Customer",
		},
		"C1": {
			CustomerID: "C1", RecencyDays: 10, Frequency: 5, Value: 1000,
			RecencyRank: 5, FrequencyRank: 5, ValueRank: 5,
			Score: "555", Segment: "Premium Customer",
		},
	}

	var buf strings.Builder
	if err := WriteCohortCSV(&buf, entries); err != nil {
		t.Fatalf("WriteCohortCSV failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}

	wantHeader := []string{
		"customer_id", "recency_days", "frequency", "value",
		"r_rank", "f_rank", "v_rank", "rfv_score", "segment",
	}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("Header column %d = %q, want %q", i, rows[0][i], col)
		}
	}

	// Rows are sorted by customer identifier.
	if rows[1][0] != "C1" || rows[2][0] != "C2" {
		t.Errorf("Rows not sorted by customer id: %v, %v", rows[1], rows[2])
	}
	if rows[1][7] != "555" || rows[1][8] != "Premium Customer" {
		t.Errorf("C1 row = %v", rows[1])
	}
	if rows[2][3] != "250.50" {
		t.Errorf("Value formatting = %q, want 250.50", rows[2][3])
	}
}

func TestWritePredictionsCSV(t *testing.T) {
	scores := []propensity.LineScore{
		{Line: "Sneakers", Probability: 0.91},
		{Line: "Boots", Probability: 0.5},
	}

	var buf strings.Builder
	if err := WritePredictionsCSV(&buf, scores); err != nil {
		t.Fatalf("WritePredictionsCSV failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}

	if rows[1][0] != "1" || rows[1][1] != "Sneakers" || rows[1][2] != "0.910000" {
		t.Errorf("First prediction row = %v", rows[1])
	}
	if rows[2][0] != "2" || rows[2][1] != "Boots" {
		t.Errorf("Second prediction row = %v", rows[2])
	}
}

func TestWriteCohortCSVEmpty(t *testing.T) {
	var buf strings.Builder
	if err := WriteCohortCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCohortCSV on empty input failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("Empty cohort should produce a header only, got %d lines", len(lines))
	}
}

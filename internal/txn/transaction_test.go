package txn

import (
	"testing"
	"time"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"c00042", "C00042"},
		{"  grp001  ", "GRP001"},
		{"ALREADY", "ALREADY"},
		{"", ""},
		{"  ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeID(tt.in); got != tt.want {
			t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTransactionNormalize(t *testing.T) {
	tr := Transaction{
		CustomerID: " c00001 ",
		GroupID:    "grp001",
		OrderID:    " ord1 ",
		LineCode:   " ln001 ",
		SKU:        " sku-1 ",
	}
	tr.Normalize()

	if tr.CustomerID != "C00001" {
		t.Errorf("CustomerID = %q, want C00001", tr.CustomerID)
	}
	if tr.GroupID != "GRP001" {
		t.Errorf("GroupID = %q, want GRP001", tr.GroupID)
	}
	if tr.OrderID != "ord1" {
		t.Errorf("OrderID = %q, want trimmed 'ord1'", tr.OrderID)
	}
	if tr.LineCode != "ln001" {
		t.Errorf("LineCode = %q, want trimmed 'ln001'", tr.LineCode)
	}
	if tr.SKU != "sku-1" {
		t.Errorf("SKU = %q, want trimmed 'sku-1'", tr.SKU)
	}
}

func TestUnitPrice(t *testing.T) {
	tr := Transaction{Quantity: 4, SaleValue: 100}
	if got := tr.UnitPrice(); got != 25 {
		t.Errorf("UnitPrice = %f, want 25", got)
	}
}

func TestUnitPriceZeroQuantity(t *testing.T) {
	tr := Transaction{Quantity: 0, SaleValue: 100}
	if got := tr.UnitPrice(); got != 0 {
		t.Errorf("UnitPrice with zero quantity = %f, want 0", got)
	}
}

func TestNormalizeAll(t *testing.T) {
	records := []Transaction{
		{CustomerID: "a1"},
		{CustomerID: "b2"},
	}
	out := NormalizeAll(records)

	if out[0].CustomerID != "A1" || out[1].CustomerID != "B2" {
		t.Errorf("NormalizeAll did not normalize in place: %+v", out)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFilterCustomerWinsOverGroup(t *testing.T) {
	records := []Transaction{
		{CustomerID: "C1", GroupID: "G1"},
		{CustomerID: "C2", GroupID: "G1"},
		{CustomerID: "C1", GroupID: "G2"},
	}

	f := Filter{CustomerID: "C1", GroupID: "G1"}
	got := f.Apply(records)

	if len(got) != 2 {
		t.Fatalf("Expected 2 records for customer C1, got %d", len(got))
	}
	for _, r := range got {
		if r.CustomerID != "C1" {
			t.Errorf("Unexpected record %+v: group filter should be ignored when customer is set", r)
		}
	}
}

func TestFilterGroupOnly(t *testing.T) {
	records := []Transaction{
		{CustomerID: "C1", GroupID: "G1"},
		{CustomerID: "C2", GroupID: "G2"},
	}

	got := Filter{GroupID: "G2"}.Apply(records)
	if len(got) != 1 || got[0].CustomerID != "C2" {
		t.Errorf("Group filter result = %+v, want only C2", got)
	}
}

func TestFilterDateRange(t *testing.T) {
	records := []Transaction{
		{CustomerID: "C1", RegisteredAt: date(2025, 1, 15), HasRegisteredAt: true},
		{CustomerID: "C2", RegisteredAt: date(2025, 3, 1), HasRegisteredAt: true},
		{CustomerID: "C3", RegisteredAt: date(2025, 6, 30), HasRegisteredAt: true},
	}

	f := Filter{From: date(2025, 2, 1), To: date(2025, 6, 30)}
	got := f.Apply(records)

	if len(got) != 2 {
		t.Fatalf("Expected 2 records in range, got %d", len(got))
	}
	if got[0].CustomerID != "C2" || got[1].CustomerID != "C3" {
		t.Errorf("Date range kept wrong records: %+v", got)
	}
}

func TestFilterDateRangeExcludesMissingDates(t *testing.T) {
	records := []Transaction{
		{CustomerID: "C1", RegisteredAt: date(2025, 1, 15), HasRegisteredAt: true},
		{CustomerID: "C2"},
	}

	got := Filter{From: date(2025, 1, 1)}.Apply(records)
	if len(got) != 1 || got[0].CustomerID != "C1" {
		t.Errorf("Records without a registration date must not pass a date-bounded filter, got %+v", got)
	}
}

func TestFilterZeroPassesEverything(t *testing.T) {
	records := []Transaction{{CustomerID: "C1"}, {CustomerID: "C2"}}

	f := Filter{}
	if !f.IsZero() {
		t.Error("Empty filter should report IsZero")
	}
	if got := f.Apply(records); len(got) != 2 {
		t.Errorf("Zero filter dropped records: got %d, want 2", len(got))
	}

	// A record without dates passes a filter with no date bounds.
	if !f.Matches(Transaction{CustomerID: "C3"}) {
		t.Error("Zero filter should match a record without dates")
	}
}

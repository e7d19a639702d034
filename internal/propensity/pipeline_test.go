package propensity

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/salescope/salescope/internal/txn"
)

// trainingRecords builds a synthetic history with a learnable signal:
// even-coded customers buy in the first half of the year, odd-coded
// ones in the second half.
func trainingRecords(n int) []txn.Transaction {
	rng := rand.New(rand.NewSource(7))
	lines := []string{"Boots", "Clogs", "Sandals", "Sneakers"}

	records := make([]txn.Transaction, 0, n)
	for i := 0; i < n; i++ {
		customer := rng.Intn(6)
		month := time.Month(rng.Intn(12) + 1)

		buys := (customer%2 == 0) == (month <= 6)
		quantity := 0.0
		if buys {
			quantity = float64(rng.Intn(10) + 1)
		}

		records = append(records, txn.Transaction{
			CustomerID:      string(rune('A' + customer)),
			GroupID:         string(rune('G' + customer%3)),
			LineName:        lines[rng.Intn(len(lines))],
			RegisteredAt:    time.Date(2025, month, 15, 0, 0, 0, 0, time.UTC),
			HasRegisteredAt: true,
			Quantity:        quantity,
		})
	}
	return records
}

// smallConfig keeps test runs fast.
func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Forest.NumTrees = 20
	return cfg
}

func TestTrainAndPredict(t *testing.T) {
	records := trainingRecords(300)

	model, enc, accuracy, err := Train(records, smallConfig())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	if accuracy < 0 || accuracy > 1 {
		t.Errorf("Holdout accuracy = %f, want within [0, 1]", accuracy)
	}

	scores, err := PredictTopLines(model, enc, "G", "A", time.March, enc.Line.Values(), 3)
	if err != nil {
		t.Fatalf("PredictTopLines failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 predictions, got %d", len(scores))
	}

	for i := 1; i < len(scores); i++ {
		if scores[i].Probability > scores[i-1].Probability {
			t.Errorf("Predictions not in descending probability order: %+v", scores)
		}
	}
	for _, s := range scores {
		if s.Probability < 0 || s.Probability > 1 {
			t.Errorf("Probability %f for %q outside [0, 1]", s.Probability, s.Line)
		}
	}
}

func TestTrainDeterministic(t *testing.T) {
	records := trainingRecords(300)
	cfg := smallConfig()

	m1, e1, a1, err := Train(records, cfg)
	if err != nil {
		t.Fatalf("First Train failed: %v", err)
	}
	m2, e2, a2, err := Train(records, cfg)
	if err != nil {
		t.Fatalf("Second Train failed: %v", err)
	}

	if a1 != a2 {
		t.Errorf("Holdout accuracy differs across runs: %f vs %f", a1, a2)
	}

	s1, err := PredictTopLines(m1, e1, "G", "A", time.March, e1.Line.Values(), 0)
	if err != nil {
		t.Fatalf("First PredictTopLines failed: %v", err)
	}
	s2, err := PredictTopLines(m2, e2, "G", "A", time.March, e2.Line.Values(), 0)
	if err != nil {
		t.Fatalf("Second PredictTopLines failed: %v", err)
	}

	if len(s1) != len(s2) {
		t.Fatalf("Ranking lengths differ: %d vs %d", len(s1), len(s2))
	}
	for i := range s1 {
		if s1[i] != s2[i] {
			t.Errorf("Ranking position %d differs: %+v vs %+v", i, s1[i], s2[i])
		}
	}
}

func TestTrainParallelismDoesNotChangeOutput(t *testing.T) {
	records := trainingRecords(200)

	serial := smallConfig()
	serial.Forest.NumWorkers = 1
	parallel := smallConfig()
	parallel.Forest.NumWorkers = 8

	m1, e1, _, err := Train(records, serial)
	if err != nil {
		t.Fatalf("Serial Train failed: %v", err)
	}
	m2, e2, _, err := Train(records, parallel)
	if err != nil {
		t.Fatalf("Parallel Train failed: %v", err)
	}

	s1, _ := PredictTopLines(m1, e1, "G", "B", time.October, e1.Line.Values(), 0)
	s2, _ := PredictTopLines(m2, e2, "G", "B", time.October, e2.Line.Values(), 0)

	for i := range s1 {
		if s1[i] != s2[i] {
			t.Errorf("Worker count changed the ranking at position %d: %+v vs %+v", i, s1[i], s2[i])
		}
	}
}

func TestTrainSeedChangesModel(t *testing.T) {
	records := trainingRecords(300)

	cfgA := smallConfig()
	cfgB := smallConfig()
	cfgB.Forest.Seed = 1234
	cfgB.SplitSeed = 1234

	_, _, a1, err := Train(records, cfgA)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	_, _, a2, err := Train(records, cfgB)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	// Not guaranteed in general, but with a different split and
	// bootstrap the exact holdout accuracy matching would be a
	// coincidence worth noticing.
	if a1 == a2 {
		t.Logf("Accuracies coincide across seeds: %f", a1)
	}
}

func TestTrainSkipsRecordsWithoutDates(t *testing.T) {
	records := trainingRecords(100)
	// A record without a registration date must not fail training.
	records = append(records, txn.Transaction{
		CustomerID: "A", GroupID: "G", LineName: "Boots", Quantity: 1,
	})

	if _, _, _, err := Train(records, smallConfig()); err != nil {
		t.Fatalf("Train failed on records with missing dates: %v", err)
	}
}

func TestTrainNoData(t *testing.T) {
	// Records exist but none carries a registration date.
	records := []txn.Transaction{
		{CustomerID: "A", GroupID: "G", LineName: "Boots", Quantity: 1},
	}

	if _, _, _, err := Train(records, smallConfig()); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

func TestPredictTopLinesUnknownCategory(t *testing.T) {
	records := trainingRecords(100)
	model, enc, _, err := Train(records, smallConfig())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	if _, err := PredictTopLines(model, enc, "G", "NOPE", time.March, enc.Line.Values(), 0); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Unknown customer: expected ErrUnknownCategory, got %v", err)
	}
	if _, err := PredictTopLines(model, enc, "NOPE", "A", time.March, enc.Line.Values(), 0); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Unknown group: expected ErrUnknownCategory, got %v", err)
	}
	if _, err := PredictTopLines(model, enc, "G", "A", time.March, []string{"Unicorn Boots"}, 0); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Unknown line: expected ErrUnknownCategory, got %v", err)
	}
}

func TestPredictTopLinesTieBreak(t *testing.T) {
	// Two candidate lists in different orders must rank identically.
	records := trainingRecords(200)
	model, enc, _, err := Train(records, smallConfig())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	forward := enc.Line.Values()
	backward := make([]string, len(forward))
	for i, v := range forward {
		backward[len(forward)-1-i] = v
	}

	s1, err := PredictTopLines(model, enc, "G", "A", time.March, forward, 0)
	if err != nil {
		t.Fatalf("PredictTopLines failed: %v", err)
	}
	s2, err := PredictTopLines(model, enc, "G", "A", time.March, backward, 0)
	if err != nil {
		t.Fatalf("PredictTopLines failed: %v", err)
	}

	for i := range s1 {
		if s1[i] != s2[i] {
			t.Errorf("Candidate order changed the ranking at position %d: %+v vs %+v", i, s1[i], s2[i])
		}
	}
}

func TestSplitFractions(t *testing.T) {
	train, test := split(100, 0.2, 42)

	if len(test) != 20 {
		t.Errorf("Holdout size = %d, want 20", len(test))
	}
	if len(train) != 80 {
		t.Errorf("Training size = %d, want 80", len(train))
	}

	seen := make(map[int]bool)
	for _, r := range append(append([]int{}, train...), test...) {
		if seen[r] {
			t.Errorf("Row %d appears twice in the split", r)
		}
		seen[r] = true
	}
	if len(seen) != 100 {
		t.Errorf("Split covers %d rows, want 100", len(seen))
	}
}

func TestSplitDeterministic(t *testing.T) {
	train1, test1 := split(50, 0.2, 42)
	train2, test2 := split(50, 0.2, 42)

	for i := range train1 {
		if train1[i] != train2[i] {
			t.Fatalf("Training split differs at %d", i)
		}
	}
	for i := range test1 {
		if test1[i] != test2[i] {
			t.Fatalf("Holdout split differs at %d", i)
		}
	}
}

func TestFitEncodersCoversPopulation(t *testing.T) {
	records := trainingRecords(100)
	enc := FitEncoders(records)

	for _, r := range records {
		if _, err := enc.Group.Encode(r.GroupID); err != nil {
			t.Fatalf("Group %q missing from fitted vocabulary", r.GroupID)
		}
		if _, err := enc.Customer.Encode(r.CustomerID); err != nil {
			t.Fatalf("Customer %q missing from fitted vocabulary", r.CustomerID)
		}
		if _, err := enc.Line.Encode(r.LineName); err != nil {
			t.Fatalf("Line %q missing from fitted vocabulary", r.LineName)
		}
	}
}

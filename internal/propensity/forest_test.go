package propensity

import "testing"

// separableData is a tiny learnable dataset: label is 1 when the two
// features agree. No single split separates it, but a depth-2 tree does.
func separableData() ([][]float64, []int) {
	var features [][]float64
	var labels []int
	for i := 0; i < 40; i++ {
		x := float64(i % 2)
		y := float64((i / 2) % 2)
		features = append(features, []float64{x, y})
		label := 0
		if x == y {
			label = 1
		}
		labels = append(labels, label)
	}
	return features, labels
}

func TestForestLearnsSeparableData(t *testing.T) {
	features, labels := separableData()

	f := NewForest(ForestConfig{NumTrees: 30, Seed: 42})
	f.Fit(features, labels)

	if f.NumTrees() != 30 {
		t.Fatalf("NumTrees = %d, want 30", f.NumTrees())
	}

	correct := 0
	for i, row := range features {
		if f.Predict(row) == labels[i] {
			correct++
		}
	}
	if correct < len(features)*9/10 {
		t.Errorf("Forest got %d/%d on separable training data", correct, len(features))
	}
}

func TestForestPureLabels(t *testing.T) {
	features := [][]float64{{1}, {2}, {3}}

	f := NewForest(ForestConfig{NumTrees: 5, Seed: 1})
	f.Fit(features, []int{1, 1, 1})
	if p := f.PredictProba([]float64{2}); p != 1 {
		t.Errorf("All-positive training: PredictProba = %f, want 1", p)
	}

	f = NewForest(ForestConfig{NumTrees: 5, Seed: 1})
	f.Fit(features, []int{0, 0, 0})
	if p := f.PredictProba([]float64{2}); p != 0 {
		t.Errorf("All-negative training: PredictProba = %f, want 0", p)
	}
}

func TestForestUnfitted(t *testing.T) {
	f := NewForest(DefaultForestConfig())

	if p := f.PredictProba([]float64{1, 2}); p != 0 {
		t.Errorf("Unfitted forest PredictProba = %f, want 0", p)
	}
	if f.NumTrees() != 0 {
		t.Errorf("Unfitted forest NumTrees = %d, want 0", f.NumTrees())
	}
}

func TestForestEmptyTrainingSet(t *testing.T) {
	f := NewForest(DefaultForestConfig())
	f.Fit(nil, nil)

	if f.NumTrees() != 0 {
		t.Errorf("Fit on empty data grew %d trees, want 0", f.NumTrees())
	}
}

func TestForestDeterministicAcrossFits(t *testing.T) {
	features, labels := separableData()

	f1 := NewForest(ForestConfig{NumTrees: 10, Seed: 42})
	f1.Fit(features, labels)
	f2 := NewForest(ForestConfig{NumTrees: 10, Seed: 42})
	f2.Fit(features, labels)

	for _, row := range features {
		if f1.PredictProba(row) != f2.PredictProba(row) {
			t.Fatalf("Same seed, different probabilities for row %v", row)
		}
	}
}

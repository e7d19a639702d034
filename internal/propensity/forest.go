//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package propensity

import (
	"math"
	"math/rand"
	"sort"
	"sync"
)

// ForestConfig contains configuration for the random forest.
type ForestConfig struct {
	// NumTrees is the ensemble size.
	NumTrees int

	// Seed drives every random choice in training. A fixed seed
	// produces bit-identical models; this is part of the contract.
	Seed int64

	// MaxDepth limits tree depth. 0 means unlimited.
	MaxDepth int

	// MinSamplesSplit is the minimum node size eligible for a split.
	MinSamplesSplit int

	// MaxFeatures is the number of features considered per split.
	// 0 means sqrt(total features).
	MaxFeatures int

	// NumWorkers is the number of parallel workers for tree fitting.
	// Parallelism never changes the numeric output: each tree derives
	// its RNG from Seed and its own index. If <= 0, defaults to 4.
	NumWorkers int
}

// DefaultForestConfig returns the default forest configuration.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		NumTrees:        100,
		Seed:            42,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MaxFeatures:     0,
		NumWorkers:      4,
	}
}

// Forest is a random forest binary classifier. Probability estimates
// average the positive-class fraction of each tree's reached leaf.
type Forest struct {
	cfg         ForestConfig
	trees       []tree
	numFeatures int
}

// tree is a decision tree stored as a flat node slice; index 0 is the
// root.
type tree struct {
	nodes []node
}

// node is either an internal split (left/right >= 0) or a leaf
// (left == -1) carrying the positive-class fraction of its training
// samples.
type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	prob      float64
}

// NewForest creates an untrained forest with the given configuration.
func NewForest(cfg ForestConfig) *Forest {
	if cfg.NumTrees <= 0 {
		cfg.NumTrees = 100
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 4
	}
	return &Forest{cfg: cfg}
}

// Fit trains the forest on the feature matrix and binary labels.
// Rows of features must all have the same length.
func (f *Forest) Fit(features [][]float64, labels []int) {
	if len(features) == 0 {
		f.trees = nil
		return
	}

	f.numFeatures = len(features[0])

	maxFeatures := f.cfg.MaxFeatures
	if maxFeatures <= 0 || maxFeatures > f.numFeatures {
		maxFeatures = int(math.Sqrt(float64(f.numFeatures)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	f.trees = make([]tree, f.cfg.NumTrees)

	var wg sync.WaitGroup
	sem := make(chan struct{}, f.cfg.NumWorkers)

	for i := 0; i < f.cfg.NumTrees; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(treeIdx int) {
			defer wg.Done()
			defer func() { <-sem }()

			// Per-tree RNG: deterministic regardless of scheduling.
			rng := rand.New(rand.NewSource(f.cfg.Seed + int64(treeIdx)))
			f.trees[treeIdx] = f.growTree(features, labels, maxFeatures, rng)
		}(i)
	}
	wg.Wait()
}

// growTree fits one tree on a bootstrap sample.
func (f *Forest) growTree(features [][]float64, labels []int, maxFeatures int, rng *rand.Rand) tree {
	n := len(features)
	sample := make([]int, n)
	for i := range sample {
		sample[i] = rng.Intn(n)
	}

	t := tree{}
	f.buildNode(&t, features, labels, sample, 0, maxFeatures, rng)
	return t
}

// buildNode appends a node for the given sample rows and returns its
// index.
func (f *Forest) buildNode(t *tree, features [][]float64, labels []int, rows []int, depth, maxFeatures int, rng *rand.Rand) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{left: -1, right: -1})

	positives := 0
	for _, r := range rows {
		positives += labels[r]
	}
	t.nodes[idx].prob = float64(positives) / float64(len(rows))

	// Stop on purity, node size or depth.
	if positives == 0 || positives == len(rows) {
		return idx
	}
	if len(rows) < f.cfg.MinSamplesSplit {
		return idx
	}
	if f.cfg.MaxDepth > 0 && depth >= f.cfg.MaxDepth {
		return idx
	}

	feature, threshold, ok := f.bestSplit(features, labels, rows, maxFeatures, rng)
	if !ok {
		return idx
	}

	var left, right []int
	for _, r := range rows {
		if features[r][feature] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	t.nodes[idx].feature = feature
	t.nodes[idx].threshold = threshold
	t.nodes[idx].left = f.buildNode(t, features, labels, left, depth+1, maxFeatures, rng)
	t.nodes[idx].right = f.buildNode(t, features, labels, right, depth+1, maxFeatures, rng)
	return idx
}

// bestSplit searches a random feature subset for the split with the
// lowest weighted Gini impurity. Candidate thresholds are midpoints
// between consecutive distinct values. Ties keep the first candidate
// found, with features scanned in sorted order for determinism.
func (f *Forest) bestSplit(features [][]float64, labels []int, rows []int, maxFeatures int, rng *rand.Rand) (int, float64, bool) {
	candidates := rng.Perm(f.numFeatures)[:maxFeatures]
	sort.Ints(candidates)

	bestGini := math.Inf(1)
	bestFeature := -1
	bestThreshold := 0.0

	type valueLabel struct {
		value float64
		label int
	}
	pairs := make([]valueLabel, len(rows))

	for _, feat := range candidates {
		for i, r := range rows {
			pairs[i] = valueLabel{features[r][feat], labels[r]}
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].value < pairs[j].value })

		totalPos := 0
		for _, p := range pairs {
			totalPos += p.label
		}
		total := len(pairs)

		leftPos, leftN := 0, 0
		for i := 0; i < total-1; i++ {
			leftPos += pairs[i].label
			leftN++

			if pairs[i].value == pairs[i+1].value {
				continue
			}

			rightPos := totalPos - leftPos
			rightN := total - leftN

			gini := weightedGini(leftPos, leftN, rightPos, rightN)
			if gini < bestGini {
				bestGini = gini
				bestFeature = feat
				bestThreshold = (pairs[i].value + pairs[i+1].value) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

// weightedGini returns the size-weighted Gini impurity of a binary
// split.
func weightedGini(leftPos, leftN, rightPos, rightN int) float64 {
	total := float64(leftN + rightN)
	return float64(leftN)/total*gini(leftPos, leftN) +
		float64(rightN)/total*gini(rightPos, rightN)
}

// gini returns the Gini impurity of a node with pos positives out of n.
func gini(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}

// PredictProba returns the positive-class probability for one feature
// row, averaged over all trees. An unfitted forest returns 0.
func (f *Forest) PredictProba(row []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}

	var sum float64
	for _, t := range f.trees {
		sum += t.leafProb(row)
	}
	return sum / float64(len(f.trees))
}

// Predict returns the predicted binary label for one feature row.
func (f *Forest) Predict(row []float64) int {
	if f.PredictProba(row) >= 0.5 {
		return 1
	}
	return 0
}

// NumTrees returns the number of fitted trees.
func (f *Forest) NumTrees() int {
	return len(f.trees)
}

// leafProb walks the tree to the leaf reached by the row.
func (t tree) leafProb(row []float64) float64 {
	if len(t.nodes) == 0 {
		return 0
	}

	idx := 0
	for {
		n := t.nodes[idx]
		if n.left < 0 {
			return n.prob
		}
		if row[n.feature] <= n.threshold {
			idx = n.left
		} else {
			idx = n.right
		}
	}
}

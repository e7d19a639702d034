//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package propensity trains a purchase-propensity classifier over the
// transaction history and ranks product lines by the model's estimated
// probability that a customer buys them in a given month.
//
// The pipeline is deterministic end to end: encoders assign codes from
// the sorted vocabulary, the train/test split shuffles with a fixed
// seed, and every tree in the forest derives its randomness from the
// configured seed. Two training runs over the same records produce
// bit-identical rankings.
package propensity

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/salescope/salescope/internal/txn"
)

// ErrNoData is returned when no trainable rows exist.
var ErrNoData = errors.New("no trainable records")

// numFeatures is the width of the feature matrix: group code,
// customer code, line code, month number.
const numFeatures = 4

// Config contains configuration for the propensity pipeline.
type Config struct {
	// Forest configures the tree ensemble.
	Forest ForestConfig

	// TestFraction is the holdout share of the 80/20 split.
	TestFraction float64

	// SplitSeed drives the train/test shuffle.
	SplitSeed int64
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Forest:       DefaultForestConfig(),
		TestFraction: 0.2,
		SplitSeed:    42,
	}
}

// Model is a trained propensity model bound to the encoders it was
// trained with.
type Model struct {
	forest *Forest
}

// FitEncoders fits the three categorical encoders over the full record
// population. The encoders are immutable once fit and must be shared
// between training and inference within a session.
func FitEncoders(records []txn.Transaction) Encoders {
	groups := make([]string, len(records))
	customers := make([]string, len(records))
	lines := make([]string, len(records))
	for i, t := range records {
		groups[i] = t.GroupID
		customers[i] = t.CustomerID
		lines[i] = t.LineName
	}

	return Encoders{
		Group:    FitEncoder(groups),
		Customer: FitEncoder(customers),
		Line:     FitEncoder(lines),
	}
}

// Train fits the encoders and the forest over the full record
// population and reports holdout accuracy. The accuracy is a
// diagnostic, not a gate: training succeeds and yields a usable model
// regardless of its value.
//
// Records without a registration date carry no month signal and are
// skipped. Train returns ErrNoData when nothing remains.
func Train(records []txn.Transaction, cfg Config) (*Model, Encoders, float64, error) {
	enc := FitEncoders(records)

	var features [][]float64
	var labels []int

	for _, t := range records {
		if !t.HasRegisteredAt {
			continue
		}

		groupCode, err := enc.Group.Encode(t.GroupID)
		if err != nil {
			return nil, Encoders{}, 0, fmt.Errorf("encoding group: %w", err)
		}
		customerCode, err := enc.Customer.Encode(t.CustomerID)
		if err != nil {
			return nil, Encoders{}, 0, fmt.Errorf("encoding customer: %w", err)
		}
		lineCode, err := enc.Line.Encode(t.LineName)
		if err != nil {
			return nil, Encoders{}, 0, fmt.Errorf("encoding line: %w", err)
		}

		label := 0
		if t.Quantity > 0 {
			label = 1
		}

		features = append(features, []float64{
			float64(groupCode),
			float64(customerCode),
			float64(lineCode),
			float64(t.RegisteredAt.Month()),
		})
		labels = append(labels, label)
	}

	if len(features) == 0 {
		return nil, Encoders{}, 0, ErrNoData
	}

	trainIdx, testIdx := split(len(features), cfg.TestFraction, cfg.SplitSeed)

	trainX := make([][]float64, len(trainIdx))
	trainY := make([]int, len(trainIdx))
	for i, r := range trainIdx {
		trainX[i] = features[r]
		trainY[i] = labels[r]
	}

	forest := NewForest(cfg.Forest)
	forest.Fit(trainX, trainY)
	model := &Model{forest: forest}

	accuracy := 0.0
	if len(testIdx) > 0 {
		correct := 0
		for _, r := range testIdx {
			if forest.Predict(features[r]) == labels[r] {
				correct++
			}
		}
		accuracy = float64(correct) / float64(len(testIdx))
	}

	return model, enc, accuracy, nil
}

// split shuffles row indices with a fixed seed and carves off the
// holdout set.
func split(n int, testFraction float64, seed int64) (train, test []int) {
	if testFraction < 0 {
		testFraction = 0
	}
	if testFraction > 1 {
		testFraction = 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	numTest := int(float64(n) * testFraction)

	return perm[numTest:], perm[:numTest]
}

// LineScore is one ranked prediction: a product line and the model's
// probability that the customer purchases it.
type LineScore struct {
	Line        string
	Probability float64
}

// DefaultTopN is the ranking truncation used when topN is not given.
const DefaultTopN = 10

// PredictTopLines scores every candidate product line for the customer
// and month and returns them ranked by descending purchase probability,
// truncated to topN (DefaultTopN when topN <= 0). Ties rank by line
// name ascending so the output is stable.
//
// A group, customer or candidate line absent from the fitted vocabulary
// returns ErrUnknownCategory; the model and encoders remain valid.
func PredictTopLines(m *Model, enc Encoders, groupID, customerID string, month time.Month, candidates []string, topN int) ([]LineScore, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	groupCode, err := enc.Group.Encode(groupID)
	if err != nil {
		return nil, fmt.Errorf("encoding group: %w", err)
	}
	customerCode, err := enc.Customer.Encode(customerID)
	if err != nil {
		return nil, fmt.Errorf("encoding customer: %w", err)
	}

	scores := make([]LineScore, 0, len(candidates))
	for _, line := range candidates {
		lineCode, err := enc.Line.Encode(line)
		if err != nil {
			return nil, fmt.Errorf("encoding line: %w", err)
		}

		row := []float64{
			float64(groupCode),
			float64(customerCode),
			float64(lineCode),
			float64(month),
		}
		scores = append(scores, LineScore{
			Line:        line,
			Probability: m.forest.PredictProba(row),
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Probability != scores[j].Probability {
			return scores[i].Probability > scores[j].Probability
		}
		return scores[i].Line < scores[j].Line
	})

	if len(scores) > topN {
		scores = scores[:topN]
	}
	return scores, nil
}

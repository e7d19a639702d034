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
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownCategory is returned when a value requested for encoding
// was not part of the fitted vocabulary. The condition is recoverable:
// the encoders and any trained model remain valid.
var ErrUnknownCategory = errors.New("unknown category")

// Encoder is an immutable bidirectional mapping between category
// values and dense integer codes. It is fit once over the observed
// vocabulary and must be reused unchanged at inference time.
type Encoder struct {
	index  map[string]int
	values []string
}

// FitEncoder builds an encoder from the observed values. Codes are
// assigned after sorting the distinct vocabulary, so the mapping is
// independent of input order.
func FitEncoder(observed []string) *Encoder {
	uniq := make(map[string]struct{}, len(observed))
	for _, v := range observed {
		uniq[v] = struct{}{}
	}

	values := make([]string, 0, len(uniq))
	for v := range uniq {
		values = append(values, v)
	}
	sort.Strings(values)

	index := make(map[string]int, len(values))
	for i, v := range values {
		index[v] = i
	}

	return &Encoder{index: index, values: values}
}

// Encode maps a category value to its integer code. A value outside
// the fitted vocabulary returns ErrUnknownCategory.
func (e *Encoder) Encode(v string) (int, error) {
	code, ok := e.index[v]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, v)
	}
	return code, nil
}

// Decode maps an integer code back to its category value.
func (e *Encoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.values) {
		return "", fmt.Errorf("%w: code %d", ErrUnknownCategory, code)
	}
	return e.values[code], nil
}

// Len returns the vocabulary size.
func (e *Encoder) Len() int {
	return len(e.values)
}

// Values returns a copy of the fitted vocabulary in code order.
func (e *Encoder) Values() []string {
	out := make([]string, len(e.values))
	copy(out, e.values)
	return out
}

// Encoders bundles the three categorical encoders used by the
// propensity pipeline. All three are fit over the full record
// population, not just a filtered subset.
type Encoders struct {
	Group    *Encoder
	Customer *Encoder
	Line     *Encoder
}

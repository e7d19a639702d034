//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package rfv

// SegmentRule maps a minimum digit sum of the RFV score to a segment
// label. Rules are evaluated in order, first match wins.
type SegmentRule struct {
	MinTotal int
	Label    string
}

// cohortSegmentRules is the digit-sum segmentation used by the cohort
// engine. Digit sums range 3..15.
var cohortSegmentRules = []SegmentRule{
	{MinTotal: 13, Label: "Premium Customer"},
	{MinTotal: 10, Label: "Valuable Customer"},
	{MinTotal: 7, Label: "Average Customer"},
	{MinTotal: 0, Label: "At-Risk Customer"},
}

// ClassificationRule maps a predicate over the three digit scores to a
// classification label. Rules are evaluated in order, first match wins.
type ClassificationRule struct {
	Matches func(recency, frequency, value int) bool
	Label   string
}

// entityClassificationRules is the threshold-based classification used
// by the entity engine. It is a distinct vocabulary from the cohort
// segments and the two are never merged.
var entityClassificationRules = []ClassificationRule{
	{
		Matches: func(r, f, v int) bool { return r == 5 && f == 5 && v == 5 },
		Label:   "VIP Customer",
	},
	{
		Matches: func(r, f, v int) bool { return r >= 4 && f >= 4 },
		Label:   "Loyal Customer",
	},
	{
		Matches: func(r, f, v int) bool { return r >= 3 },
		Label:   "Potential Customer",
	},
	{
		Matches: func(r, f, v int) bool { return true },
		Label:   "At-Risk Customer",
	},
}

// SegmentForTotal returns the cohort segment label for a digit sum.
func SegmentForTotal(total int) string {
	for _, rule := range cohortSegmentRules {
		if total >= rule.MinTotal {
			return rule.Label
		}
	}
	// Unreachable: the last rule has MinTotal 0 and digit sums are >= 3.
	return cohortSegmentRules[len(cohortSegmentRules)-1].Label
}

// ClassificationFor returns the entity classification label for the
// three digit scores.
func ClassificationFor(recency, frequency, value int) string {
	for _, rule := range entityClassificationRules {
		if rule.Matches(recency, frequency, value) {
			return rule.Label
		}
	}
	return entityClassificationRules[len(entityClassificationRules)-1].Label
}

// CohortSegmentRules returns a copy of the cohort segmentation rules,
// in evaluation order.
func CohortSegmentRules() []SegmentRule {
	out := make([]SegmentRule, len(cohortSegmentRules))
	copy(out, cohortSegmentRules)
	return out
}

// EntityClassificationLabels returns the entity classification labels,
// in evaluation order.
func EntityClassificationLabels() []string {
	out := make([]string, len(entityClassificationRules))
	for i, rule := range entityClassificationRules {
		out[i] = rule.Label
	}
	return out
}

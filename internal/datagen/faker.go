//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen provides fake transaction generation for the seed
// command and for test fixtures.
package datagen

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker provides fake data generation using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for
// reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// Company generates a random company name.
func (f *Faker) Company() string {
	return f.faker.Company()
}

// ProductCategory generates a random product category.
func (f *Faker) ProductCategory() string {
	return f.faker.ProductCategory()
}

// City generates a random city name.
func (f *Faker) City() string {
	return f.faker.City()
}

// Int generates a random integer between min and max (inclusive).
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Float64 generates a random float64 between min and max.
func (f *Faker) Float64(min, max float64) float64 {
	return f.faker.Float64Range(min, max)
}

// Bool generates a random boolean.
func (f *Faker) Bool() bool {
	return f.faker.Bool()
}

// DateRange generates a random date within a range.
func (f *Faker) DateRange(start, end time.Time) time.Time {
	return f.faker.DateRange(start, end)
}

// Digits generates a random string of digits of length n.
func (f *Faker) Digits(n int) string {
	return f.faker.DigitN(uint(n))
}

// Choose returns a random element from the given slice.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

// ChooseWeighted returns a random element based on weights.
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	if len(items) == 0 || len(weights) == 0 {
		var zero T
		return zero
	}

	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}

	r := f.Int(1, totalWeight)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return items[i]
		}
	}

	return items[len(items)-1]
}

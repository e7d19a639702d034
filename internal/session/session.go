//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package session scopes loaded records, fitted encoders and the
// trained propensity model to one analysis session. There is no
// process-wide cache: sessions never observe each other's state, and
// staleness is an explicit TTL parameter rather than an implicit
// cache default.
package session

import (
	"time"

	"github.com/salescope/salescope/internal/propensity"
	"github.com/salescope/salescope/internal/txn"
)

// Config contains session configuration.
type Config struct {
	// ModelTTL is how long a trained model stays valid. 0 means it
	// never expires within the session.
	ModelTTL time.Duration

	// Propensity configures the training pipeline.
	Propensity propensity.Config
}

// DefaultConfig returns the default session configuration. The 1 hour
// TTL mirrors the staleness window of the upstream data feed.
func DefaultConfig() Config {
	return Config{
		ModelTTL:   time.Hour,
		Propensity: propensity.DefaultConfig(),
	}
}

// Session holds one analysis session's loaded data and trained model.
// It is not safe for concurrent use; each session belongs to a single
// request/response flow.
type Session struct {
	cfg Config
	now func() time.Time

	records []txn.Transaction

	model     *propensity.Model
	encoders  propensity.Encoders
	accuracy  float64
	trainedAt time.Time
	trained   bool
}

// New creates a session using the wall clock.
func New(cfg Config) *Session {
	return NewWithClock(cfg, time.Now)
}

// NewWithClock creates a session with an injectable clock, used by
// tests to drive TTL expiry.
func NewWithClock(cfg Config, now func() time.Time) *Session {
	return &Session{cfg: cfg, now: now}
}

// SetRecords installs a freshly loaded record set and invalidates any
// trained model.
func (s *Session) SetRecords(records []txn.Transaction) {
	s.records = records
	s.trained = false
	s.model = nil
	s.encoders = propensity.Encoders{}
	s.accuracy = 0
}

// Records returns the session's record set.
func (s *Session) Records() []txn.Transaction {
	return s.records
}

// ModelExpired reports whether the trained model is absent or older
// than the TTL.
func (s *Session) ModelExpired() bool {
	if !s.trained {
		return true
	}
	if s.cfg.ModelTTL <= 0 {
		return false
	}
	return s.now().Sub(s.trainedAt) >= s.cfg.ModelTTL
}

// Model returns the session's trained model, encoders and holdout
// accuracy, training on first use and retraining after TTL expiry.
func (s *Session) Model() (*propensity.Model, propensity.Encoders, float64, error) {
	if !s.ModelExpired() {
		return s.model, s.encoders, s.accuracy, nil
	}

	model, encoders, accuracy, err := propensity.Train(s.records, s.cfg.Propensity)
	if err != nil {
		return nil, propensity.Encoders{}, 0, err
	}

	s.model = model
	s.encoders = encoders
	s.accuracy = accuracy
	s.trainedAt = s.now()
	s.trained = true

	return s.model, s.encoders, s.accuracy, nil
}

//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"github.com/salescope/salescope/internal/logging"
)

// ProgressReporter tracks and reports data generation progress.
type ProgressReporter struct {
	tableName        string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(tableName string, totalRows int64, interval int64) *ProgressReporter {
	if interval <= 0 {
		interval = 100000
	}
	return &ProgressReporter{
		tableName:        tableName,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(rowsInserted int64) {
	oldRow := p.currentRow
	p.currentRow += rowsInserted

	// Check if we crossed a progress interval
	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		pct := float64(p.currentRow) / float64(p.totalRows) * 100
		logging.Info().
			Str("table", p.tableName).
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Generating data")
	}
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("table", p.tableName).
		Int64("rows", p.currentRow).
		Msg("Table complete")
}

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/salescope/salescope/internal/db"
	"github.com/salescope/salescope/internal/logging"
	"github.com/salescope/salescope/internal/report"
	"github.com/salescope/salescope/internal/rfv"
	"github.com/salescope/salescope/internal/store"
	"github.com/salescope/salescope/internal/txn"
)

var (
	cohortAsOf   string
	cohortOutput string
)

var cohortCmd = &cobra.Command{
	Use:   "cohort",
	Short: "Score every customer with quantile RFV and export the result",
	Long: `Compute the cohort-level RFV score for every distinct customer in the
dataset. Each customer receives a quintile rank per metric (recency,
frequency, value), a 3-digit RFV score and a segment label, exported
as CSV.

Quintile boundaries are recomputed from the current customer
population on each run, so the ranking is relative, not absolute.

Example:
  salescope cohort --output rfv_customers.csv`,
	RunE: runCohort,
}

func init() {
	cohortCmd.Flags().StringVar(&cohortAsOf, "as-of", "",
		"reference date for recency (YYYY-MM-DD, default: today)")
	cohortCmd.Flags().StringVar(&cohortOutput, "output", "",
		"CSV output path (\"-\" for stdout)")
}

func runCohort(cmd *cobra.Command, args []string) error {
	if cohortOutput != "" {
		cfg.Cohort.Output = cohortOutput
	}
	if err := cfg.ValidateCohort(); err != nil {
		return err
	}

	asOf, err := parseDateFlag(cohortAsOf, time.Now())
	if err != nil {
		return fmt.Errorf("invalid --as-of: %w", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	records, err := store.Load(ctx, pool, txn.Filter{})
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	if len(records) == 0 {
		return rfv.ErrNoData
	}

	logging.Info().
		Int("records", len(records)).
		Time("as_of", asOf).
		Msg("Computing cohort RFV")

	entries := rfv.ComputeCohort(records, asOf)

	// Segment distribution for the log
	distribution := make(map[string]int)
	for _, e := range entries {
		distribution[e.Segment]++
	}
	for _, rule := range rfv.CohortSegmentRules() {
		logging.Info().
			Str("segment", rule.Label).
			Int("customers", distribution[rule.Label]).
			Msg("Segment size")
	}

	out := cmd.OutOrStdout()
	if cfg.Cohort.Output != "-" {
		f, err := os.Create(cfg.Cohort.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := report.WriteCohortCSV(out, entries); err != nil {
		return fmt.Errorf("failed to write cohort CSV: %w", err)
	}

	logging.Info().
		Int("customers", len(entries)).
		Str("output", cfg.Cohort.Output).
		Msg("Cohort RFV export complete")

	return nil
}

// parseDateFlag parses a YYYY-MM-DD flag value, falling back to def
// when the flag is empty.
func parseDateFlag(value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	return time.Parse("2006-01-02", value)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/salescope/salescope/internal/db"
	"github.com/salescope/salescope/internal/logging"
	"github.com/salescope/salescope/internal/propensity"
	"github.com/salescope/salescope/internal/report"
	"github.com/salescope/salescope/internal/rfv"
	"github.com/salescope/salescope/internal/session"
	"github.com/salescope/salescope/internal/store"
	"github.com/salescope/salescope/internal/txn"
)

var (
	analyzeCustomer string
	analyzeGroup    string
	analyzeFrom     string
	analyzeTo       string
	analyzeAsOf     string
	analyzeMonth    int
	analyzeTopN     int
	analyzeCSV      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one customer or customer group",
	Long: `Analyze the purchase history of one customer or customer group:
threshold-based RFV profile, KPI summary, top product lines by
quantity sold, and the propensity model's top product lines to offer
for the target month.

At least one of --customer or --group is required. When both are
given the customer filter wins.

Example:
  salescope analyze --customer C00042 --from 2024-01-01 --to 2025-12-31`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCustomer, "customer", "",
		"customer identifier")
	analyzeCmd.Flags().StringVar(&analyzeGroup, "group", "",
		"customer group identifier")
	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "",
		"start of the registration date range (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "",
		"end of the registration date range (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeAsOf, "as-of", "",
		"reference date for recency (YYYY-MM-DD, default: today)")
	analyzeCmd.Flags().IntVar(&analyzeMonth, "month", 0,
		"target month for propensity predictions (1-12, default: current)")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top", 0,
		"number of predicted product lines to show")
	analyzeCmd.Flags().StringVar(&analyzeCSV, "csv", "",
		"also write the prediction ranking to this CSV file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeTopN > 0 {
		cfg.Analyze.TopN = analyzeTopN
	}
	if err := cfg.ValidateAnalyze(); err != nil {
		return err
	}
	if analyzeCustomer == "" && analyzeGroup == "" {
		return fmt.Errorf("at least one of --customer or --group is required")
	}
	if analyzeMonth < 0 || analyzeMonth > 12 {
		return fmt.Errorf("month must be between 1 and 12")
	}

	asOf, err := parseDateFlag(analyzeAsOf, time.Now())
	if err != nil {
		return fmt.Errorf("invalid --as-of: %w", err)
	}
	from, err := parseDateFlag(analyzeFrom, time.Time{})
	if err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	to, err := parseDateFlag(analyzeTo, time.Time{})
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}

	month := time.Month(analyzeMonth)
	if analyzeMonth == 0 {
		month = asOf.Month()
	}

	filter := txn.Filter{
		CustomerID: txn.NormalizeID(analyzeCustomer),
		GroupID:    txn.NormalizeID(analyzeGroup),
		From:       from,
		To:         to,
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// The model trains on the full population; the RFV profile and
	// KPIs use only the filtered selection.
	allRecords, err := store.Load(ctx, pool, txn.Filter{})
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	filtered := filter.Apply(allRecords)

	profile, err := rfv.ComputeEntity(filtered, asOf)
	if err != nil {
		if errors.Is(err, rfv.ErrNoData) {
			return fmt.Errorf("no data for these filters")
		}
		return err
	}

	summary, err := report.BuildSummary(filtered)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printProfile(out, summary, profile)

	topLines := report.TopLinesByQuantity(filtered, cfg.Analyze.TopN)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Top %d lines by quantity sold:\n", len(topLines))
	for i, l := range topLines {
		fmt.Fprintf(out, "  %2d. %-20s %10.0f units\n", i+1, l.Name, l.Quantity)
	}

	// Propensity predictions
	sess := session.New(session.Config{
		ModelTTL:   time.Duration(cfg.Analyze.ModelTTLMinutes) * time.Minute,
		Propensity: analyzePipelineConfig(),
	})
	sess.SetRecords(allRecords)

	model, encoders, accuracy, err := sess.Model()
	if err != nil {
		// Training failure is reported but does not discard the
		// profile already printed.
		logging.Error().Err(err).Msg("Propensity training failed")
		return nil
	}

	logging.Info().
		Float64("holdout_accuracy", accuracy).
		Msg("Propensity model trained")

	groupID := filter.GroupID
	customerID := filter.CustomerID
	if groupID == "" && len(filtered) > 0 {
		groupID = filtered[0].GroupID
	}
	if customerID == "" && len(filtered) > 0 {
		customerID = filtered[0].CustomerID
	}

	predictions, err := propensity.PredictTopLines(
		model, encoders, groupID, customerID, month,
		encoders.Line.Values(), cfg.Analyze.TopN)
	if err != nil {
		if errors.Is(err, propensity.ErrUnknownCategory) {
			logging.Warn().Err(err).Msg("Predictions unavailable for this selection")
			return nil
		}
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Top %d lines to offer for %s (model accuracy %.2f%%):\n",
		len(predictions), month, accuracy*100)
	for i, p := range predictions {
		fmt.Fprintf(out, "  %2d. %-20s %6.2f%%\n", i+1, p.Line, p.Probability*100)
	}

	if analyzeCSV != "" {
		f, err := os.Create(analyzeCSV)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		if err := report.WritePredictionsCSV(f, predictions); err != nil {
			return fmt.Errorf("failed to write predictions CSV: %w", err)
		}
		logging.Info().Str("output", analyzeCSV).Msg("Prediction ranking written")
	}

	return nil
}

func printProfile(out io.Writer, summary report.Summary, profile rfv.Profile) {
	fmt.Fprintf(out, "Group: %s | Stores: %d\n", summary.GroupName, summary.StoreCount)

	lastPurchase := "no purchases"
	if summary.HasLastPurchase {
		lastPurchase = summary.LastPurchase.Format("2006-01-02")
	}
	period := "unknown"
	if summary.HasPeriod {
		period = fmt.Sprintf("%s to %s",
			summary.PeriodStart.Format("2006-01-02"),
			summary.PeriodEnd.Format("2006-01-02"))
	}
	fmt.Fprintf(out, "Last purchase: %s | Period: %s\n", lastPurchase, period)
	fmt.Fprintf(out, "Total units sold: %.0f\n", summary.TotalUnits)
	if summary.HasBestOfferMonth {
		fmt.Fprintf(out, "Best offer month: %s\n", summary.BestOfferMonth)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Recency:        %d days\n", profile.RecencyDays)
	fmt.Fprintf(out, "Frequency:      %d distinct order dates\n", profile.Frequency)
	fmt.Fprintf(out, "Value:          %.2f\n", profile.Value)
	fmt.Fprintf(out, "RFV score:      %s\n", profile.Score)
	fmt.Fprintf(out, "Classification: %s\n", profile.Classification)
}

func analyzePipelineConfig() propensity.Config {
	pc := propensity.DefaultConfig()
	pc.Forest.NumTrees = cfg.Analyze.Trees
	pc.Forest.Seed = cfg.Analyze.ModelSeed
	pc.SplitSeed = cfg.Analyze.ModelSeed
	return pc
}

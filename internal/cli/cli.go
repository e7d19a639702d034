//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for salescope.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salescope/salescope/internal/config"
	"github.com/salescope/salescope/internal/logging"
	"github.com/salescope/salescope/internal/rfv"
	"github.com/salescope/salescope/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "salescope",
		Short: "Customer engagement scoring and product-line recommendation",
		Long: `salescope analyzes customer purchase transactions to score customer
engagement and recommend product lines to offer.

It provides two independent scoring engines over the same transaction
dataset: a cohort-level RFV (Recency-Frequency-Value) engine that ranks
every customer against the population using quintiles, and an
interactive RFV engine that scores one customer or customer group
against fixed business thresholds. A purchase-propensity model ranks
product lines by the probability that a customer buys them in the
current month.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./salescope.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(cohortCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(segmentsCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "List the segment vocabularies and their rules",
	Long: `List both segment vocabularies: the quantile digit-sum segments used
by the cohort engine and the threshold classifications used by the
interactive engine. The two vocabularies are independent policies and
are never merged.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Cohort segments (digit sum of the RFV score, first match wins):")
		for _, rule := range rfv.CohortSegmentRules() {
			cmd.Println(fmt.Sprintf("  sum >= %-2d -> %s", rule.MinTotal, rule.Label))
		}
		cmd.Println()
		cmd.Println("Interactive classifications (threshold scores, first match wins):")
		cmd.Println("  score 555            -> VIP Customer")
		cmd.Println("  R >= 4 and F >= 4    -> Loyal Customer")
		cmd.Println("  R >= 3               -> Potential Customer")
		cmd.Println("  otherwise            -> At-Risk Customer")
	},
}

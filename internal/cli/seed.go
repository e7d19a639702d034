package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salescope/salescope/internal/config"
	"github.com/salescope/salescope/internal/datagen"
	"github.com/salescope/salescope/internal/db"
	"github.com/salescope/salescope/internal/logging"
	"github.com/salescope/salescope/internal/store"
)

var (
	seedRows         int
	seedCustomers    int
	seedGroups       int
	seedLines        int
	seedSeed         uint64
	seedDropExisting bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Initialize a database with schema and fake transaction data",
	Long: `Initialize a PostgreSQL database with the transaction schema and
generate fake purchase transactions for it. Generation is reproducible
for a fixed --seed value.

Example:
  salescope seed --rows 100000 --connection "postgres://..."`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedRows, "rows", 0,
		"number of transaction rows to generate")
	seedCmd.Flags().IntVar(&seedCustomers, "customers", 0,
		"number of distinct customers")
	seedCmd.Flags().IntVar(&seedGroups, "groups", 0,
		"number of distinct customer groups")
	seedCmd.Flags().IntVar(&seedLines, "lines", 0,
		"number of distinct product lines")
	seedCmd.Flags().Uint64Var(&seedSeed, "seed", 0,
		"random seed for reproducible generation")
	seedCmd.Flags().BoolVar(&seedDropExisting, "drop-existing", false,
		"drop existing schema before seeding")
}

func runSeed(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if seedRows > 0 {
		cfg.Seed.Rows = seedRows
	}
	if seedCustomers > 0 {
		cfg.Seed.Customers = seedCustomers
	}
	if seedGroups > 0 {
		cfg.Seed.Groups = seedGroups
	}
	if seedLines > 0 {
		cfg.Seed.Lines = seedLines
	}
	if seedSeed > 0 {
		cfg.Seed.Seed = seedSeed
	}
	if seedDropExisting {
		cfg.Seed.DropExisting = true
	}

	// Validate configuration
	if err := cfg.ValidateSeed(); err != nil {
		return err
	}

	logging.Info().
		Int("rows", cfg.Seed.Rows).
		Int("customers", cfg.Seed.Customers).
		Int("groups", cfg.Seed.Groups).
		Int("lines", cfg.Seed.Lines).
		Msg("Seeding database")

	// Connect to database
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Seed.DropExisting {
		logging.Info().Msg("Dropping existing schema")
		if err := store.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	logging.Info().Msg("Creating schema")
	if err := store.CreateSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	gen := datagen.NewGenerator(seedGeneratorConfig(cfg.Seed))
	if err := gen.GenerateData(ctx, pool); err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}

	count, err := store.Count(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to count transactions: %w", err)
	}

	logging.Info().
		Int64("transactions", count).
		Msg("Database seeding complete")

	return nil
}

func seedGeneratorConfig(sc config.SeedConfig) datagen.GeneratorConfig {
	gc := datagen.DefaultGeneratorConfig()
	gc.Rows = sc.Rows
	gc.Customers = sc.Customers
	gc.Groups = sc.Groups
	gc.Lines = sc.Lines
	gc.Seed = sc.Seed
	return gc
}

//-------------------------------------------------------------------------
//
// salescope - Customer Engagement Analytics
//
// Copyright (c) 2025 - 2026, Salescope Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for salescope.
// Configuration is loaded from config files and CLI flags (no environment
// variables). CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for salescope.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`

	// Cohort holds configuration for the cohort subcommand.
	Cohort CohortConfig `mapstructure:"cohort"`

	// Analyze holds configuration for the analyze subcommand.
	Analyze AnalyzeConfig `mapstructure:"analyze"`
}

// SeedConfig holds configuration for fake data generation.
type SeedConfig struct {
	// Rows is the number of transaction rows to generate.
	Rows int `mapstructure:"rows"`

	// Customers, Groups and Lines are vocabulary sizes.
	Customers int `mapstructure:"customers"`
	Groups    int `mapstructure:"groups"`
	Lines     int `mapstructure:"lines"`

	// Seed makes generation reproducible.
	Seed uint64 `mapstructure:"seed"`

	// DropExisting drops the existing schema before seeding.
	DropExisting bool `mapstructure:"drop_existing"`
}

// CohortConfig holds configuration for the cohort RFV export.
type CohortConfig struct {
	// Output is the CSV output path ("-" writes to stdout).
	Output string `mapstructure:"output"`
}

// AnalyzeConfig holds configuration for interactive analysis.
type AnalyzeConfig struct {
	// TopN is the number of product lines in the propensity ranking.
	TopN int `mapstructure:"top_n"`

	// ModelTTLMinutes is how long a trained model stays cached within
	// a session. 0 means it never expires.
	ModelTTLMinutes int `mapstructure:"model_ttl_minutes"`

	// Trees is the random forest ensemble size.
	Trees int `mapstructure:"trees"`

	// ModelSeed drives every random choice in training; a fixed seed
	// makes predictions reproducible.
	ModelSeed int64 `mapstructure:"model_seed"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Seed: SeedConfig{
			Rows:         100000,
			Customers:    500,
			Groups:       50,
			Lines:        15,
			Seed:         1,
			DropExisting: false,
		},
		Cohort: CohortConfig{
			Output: "rfv_customers.csv",
		},
		Analyze: AnalyzeConfig{
			TopN:            10,
			ModelTTLMinutes: 60,
			Trees:           100,
			ModelSeed:       42,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./salescope.yaml
// 3. ~/.config/salescope/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("salescope")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "salescope"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Seed.Rows < 1 {
		return fmt.Errorf("rows must be at least 1")
	}
	if c.Seed.Customers < 1 {
		return fmt.Errorf("customers must be at least 1")
	}
	if c.Seed.Groups < 1 {
		return fmt.Errorf("groups must be at least 1")
	}
	if c.Seed.Lines < 1 {
		return fmt.Errorf("lines must be at least 1")
	}
	return nil
}

// ValidateCohort checks configuration required for the cohort command.
func (c *Config) ValidateCohort() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Cohort.Output == "" {
		return fmt.Errorf("output path is required")
	}
	return nil
}

// ValidateAnalyze checks configuration required for the analyze command.
func (c *Config) ValidateAnalyze() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Analyze.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1")
	}
	if c.Analyze.ModelTTLMinutes < 0 {
		return fmt.Errorf("model_ttl_minutes must be non-negative")
	}
	if c.Analyze.Trees < 1 {
		return fmt.Errorf("trees must be at least 1")
	}
	return nil
}

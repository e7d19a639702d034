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
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salescope/salescope/internal/logging"
	"github.com/salescope/salescope/internal/txn"
)

// Reference data for product lines.
var lineCategories = []string{
	"Sneakers", "Sandals", "Boots", "Slippers", "School Shoes",
	"Sport Shoes", "Rain Boots", "Ballet Flats", "Baby Shoes", "Moccasins",
	"Flip Flops", "Dress Shoes", "Winter Boots", "Water Shoes", "Clogs",
}

// GeneratorConfig controls fake transaction generation.
type GeneratorConfig struct {
	// Rows is the number of transaction rows to generate.
	Rows int

	// Customers, Groups and Lines are vocabulary sizes.
	Customers int
	Groups    int
	Lines     int

	// Seed makes generation reproducible.
	Seed uint64

	// BatchSize is the number of rows per batch insert.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultGeneratorConfig returns default generation settings.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Rows:             100000,
		Customers:        500,
		Groups:           50,
		Lines:            15,
		Seed:             1,
		BatchSize:        1000,
		ProgressInterval: 100000,
	}
}

// Generator produces fake transaction data shaped like the production
// feed: customers grouped under customer groups, a closed product line
// vocabulary, and a share of zero-quantity rows so the propensity
// label has both classes.
type Generator struct {
	faker *Faker
	cfg   GeneratorConfig
}

// NewGenerator creates a generator with the given configuration.
func NewGenerator(cfg GeneratorConfig) *Generator {
	return &Generator{
		faker: NewFakerWithSeed(cfg.Seed),
		cfg:   cfg,
	}
}

type seedGroup struct {
	id   string
	name string
}

type seedCustomer struct {
	id    string
	group seedGroup

	// lastPurchase is empty for customers that never bought.
	lastPurchase time.Time
	hasPurchase  bool
}

type seedLine struct {
	code string
	name string
}

// Rows generates the configured number of transactions in memory.
// Useful for test fixtures; the seed command streams them to Postgres
// via GenerateData instead.
func (g *Generator) Rows() []txn.Transaction {
	customers, lines := g.rosters()

	now := time.Now().UTC().Truncate(24 * time.Hour)
	records := make([]txn.Transaction, 0, g.cfg.Rows)
	for i := 0; i < g.cfg.Rows; i++ {
		records = append(records, g.row(i, customers, lines, now))
	}
	return txn.NormalizeAll(records)
}

// GenerateData generates transactions and bulk-inserts them.
func (g *Generator) GenerateData(ctx context.Context, pool *pgxpool.Pool) error {
	customers, lines := g.rosters()

	logging.Info().
		Int("rows", g.cfg.Rows).
		Int("customers", len(customers)).
		Int("lines", len(lines)).
		Uint64("seed", g.cfg.Seed).
		Msg("Generating transactions")

	now := time.Now().UTC().Truncate(24 * time.Hour)
	progress := NewProgressReporter("transactions", int64(g.cfg.Rows), g.cfg.ProgressInterval)

	batch := make([]string, 0, g.cfg.BatchSize)
	for i := 0; i < g.cfg.Rows; i++ {
		t := g.row(i, customers, lines, now)
		t.Normalize()

		registered := "NULL"
		if t.HasRegisteredAt {
			registered = fmt.Sprintf("'%s'", t.RegisteredAt.Format("2006-01-02"))
		}
		purchased := "NULL"
		if t.HasLastPurchase {
			purchased = fmt.Sprintf("'%s'", t.LastPurchaseAt.Format("2006-01-02"))
		}

		batch = append(batch, fmt.Sprintf("('%s', '%s', '%s', %s, %s, '%s', '%s', '%s', '%s', %.2f, %.2f)",
			escapeSingleQuote(t.CustomerID),
			escapeSingleQuote(t.GroupID),
			escapeSingleQuote(t.GroupName),
			registered,
			purchased,
			escapeSingleQuote(t.OrderID),
			escapeSingleQuote(t.LineCode),
			escapeSingleQuote(t.LineName),
			escapeSingleQuote(t.SKU),
			t.Quantity,
			t.SaleValue,
		))

		if len(batch) >= g.cfg.BatchSize {
			if err := g.executeBatchInsert(ctx, pool, batch); err != nil {
				return err
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := g.executeBatchInsert(ctx, pool, batch); err != nil {
			return err
		}
		progress.Update(int64(len(batch)))
	}

	progress.Done()
	return nil
}

// rosters builds the customer and product line vocabularies. Customer
// groups are generated first and embedded in the customer roster.
func (g *Generator) rosters() ([]seedCustomer, []seedLine) {
	now := time.Now().UTC().Truncate(24 * time.Hour)

	groups := make([]seedGroup, g.cfg.Groups)
	for i := range groups {
		groups[i] = seedGroup{
			id:   fmt.Sprintf("GRP%03d", i+1),
			name: strings.ToUpper(g.faker.Company()),
		}
	}

	customers := make([]seedCustomer, g.cfg.Customers)
	for i := range customers {
		c := seedCustomer{
			id:    fmt.Sprintf("C%05d", i+1),
			group: Choose(g.faker, groups),
		}
		// Most customers have purchased at some point; a few never have.
		if g.faker.Int(1, 10) > 1 {
			c.lastPurchase = g.faker.DateRange(now.AddDate(-2, 0, 0), now)
			c.hasPurchase = true
		}
		customers[i] = c
	}

	lines := make([]seedLine, g.cfg.Lines)
	for i := range lines {
		name := lineCategories[i%len(lineCategories)]
		if i >= len(lineCategories) {
			name = fmt.Sprintf("%s %d", name, i/len(lineCategories)+1)
		}
		lines[i] = seedLine{
			code: fmt.Sprintf("LN%03d", i+1),
			name: name,
		}
	}

	return customers, lines
}

// row generates one transaction.
func (g *Generator) row(i int, customers []seedCustomer, lines []seedLine, now time.Time) txn.Transaction {
	customer := Choose(g.faker, customers)
	line := Choose(g.faker, lines)

	t := txn.Transaction{
		CustomerID: customer.id,
		GroupID:    customer.group.id,
		GroupName:  customer.group.name,
		OrderID:    fmt.Sprintf("ORD%08d", i+1),
		LineCode:   line.code,
		LineName:   line.name,
		SKU:        fmt.Sprintf("SKU-%s", g.faker.Digits(6)),
	}

	// A small share of rows lacks a registration date, mirroring the
	// unparseable dates of the production feed.
	if g.faker.Int(1, 100) > 3 {
		t.RegisteredAt = g.faker.DateRange(now.AddDate(-2, 0, 0), now)
		t.HasRegisteredAt = true
	}

	if customer.hasPurchase {
		t.LastPurchaseAt = customer.lastPurchase
		t.HasLastPurchase = true
	}

	// Roughly one row in five is an offer that did not convert.
	quantity := ChooseWeighted(g.faker, []int{0, 1, 2, 4, 6, 12, 24}, []int{20, 25, 20, 15, 10, 7, 3})
	t.Quantity = float64(quantity)
	if quantity > 0 {
		unitPrice := g.faker.Float64(10, 400)
		t.SaleValue = float64(quantity) * unitPrice
	}

	return t
}

// executeBatchInsert inserts a batch of value tuples.
func (g *Generator) executeBatchInsert(ctx context.Context, pool *pgxpool.Pool, batch []string) error {
	sql := fmt.Sprintf(
		`INSERT INTO transactions
		(customer_id, group_id, group_name, registered_at, last_purchase_at,
		 order_id, line_code, line_name, sku, quantity, sale_value)
		VALUES %s`,
		strings.Join(batch, ", "))

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to insert transactions: %w", err)
	}
	return nil
}

// escapeSingleQuote escapes single quotes for SQL string literals.
func escapeSingleQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

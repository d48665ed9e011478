/*
Package sqlite persists simulation outputs and reference data.

PURPOSE:
  The engine hands back plain output collections; this store is the bulk
  upsert collaborator that lands them in SQLite. The same statement shapes
  work on PostgreSQL with only dialect changes.

UPSERT SEMANTICS:
  Each output entity has a primary identifier (transaction id, line id,
  redemption id) and is written with ON CONFLICT DO NOTHING: replaying a
  run with the same seed re-produces the same ids, so re-upserting a batch
  is a no-op rather than a duplication.

KEY TABLES:
  transactions:          simulated visits, with optional origin link
  transaction_lines:     line items, decimal amounts stored as TEXT
  campaign_transactions: reward redemption records
  customers/cards/stations/cashiers/products/campaigns: reference data

CONCURRENCY:
  Uses sync.RWMutex for thread-safety; a server may run simulations while
  browse endpoints read.

USAGE:
  store, err := sqlite.New("./data/pos.db")
  ...
  err = store.UpsertRun(ctx, result)

SEE ALSO:
  - sim/engine.go: produces the RunResult written here
  - api/handlers.go: triggers runs and reads outputs back
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/forecourt/pos-engine/sim"
)

// Store persists datasets and run outputs in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps ":memory:" databases coherent across the pool.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transactions (
		transaction_id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		cashier_id TEXT NOT NULL,
		card_id TEXT NOT NULL,
		context_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_cashier
		ON transactions(cashier_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_timestamp
		ON transactions(timestamp);

	CREATE TABLE IF NOT EXISTS transaction_lines (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		product_id INTEGER NOT NULL,
		product TEXT NOT NULL,
		price TEXT NOT NULL,
		discount TEXT NOT NULL,
		quantity TEXT NOT NULL,
		total TEXT NOT NULL,
		campaign_transaction_id TEXT,
		context_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_lines_transaction
		ON transaction_lines(transaction_id);
	CREATE INDEX IF NOT EXISTS idx_lines_product
		ON transaction_lines(product_id);

	CREATE TABLE IF NOT EXISTS campaign_transactions (
		campaign_transaction_id TEXT PRIMARY KEY,
		campaign_id INTEGER NOT NULL,
		customer_id TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_campaign_txns_customer
		ON campaign_transactions(customer_id);

	CREATE TABLE IF NOT EXISTS customers (
		loyalty_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		region TEXT NOT NULL,
		primary_station INTEGER NOT NULL,
		segment_id INTEGER NOT NULL,
		signed_up TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cards (
		card_id TEXT PRIMARY KEY,
		card_number TEXT NOT NULL,
		card_type TEXT NOT NULL,
		loyalty_id TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cards_loyalty
		ON cards(loyalty_id);

	CREATE TABLE IF NOT EXISTS stations (
		pno INTEGER PRIMARY KEY,
		region TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cashiers (
		cashier_id TEXT PRIMARY KEY,
		pno INTEGER NOT NULL,
		type TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cashiers_pno
		ON cashiers(pno);

	CREATE TABLE IF NOT EXISTS products (
		product_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		price TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS campaigns (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		product_id INTEGER NOT NULL,
		number INTEGER NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RUN OUTPUT UPSERTS
// =============================================================================

// UpsertRun writes a run's transactions, lines, and redemptions in one
// database transaction. Conflicting primary ids are skipped, so replaying
// an identical run is idempotent.
func (s *Store) UpsertRun(ctx context.Context, result *sim.RunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, txn := range result.Transactions {
		var contextJSON any
		if txn.Origin != nil {
			b, _ := json.Marshal(map[string]string{
				"context":               txn.Origin.Reason,
				"former_transaction_id": txn.Origin.TransactionID,
			})
			contextJSON = string(b)
		}

		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO transactions (transaction_id, timestamp, cashier_id, card_id, context_json)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (transaction_id) DO NOTHING
		`, txn.ID, txn.Timestamp.Format(time.RFC3339), txn.CashierID, txn.CardID, contextJSON)
		if err != nil {
			return fmt.Errorf("failed to upsert transaction %s: %w", txn.ID, err)
		}
	}

	for _, line := range result.Lines {
		var contextJSON any
		if line.Context != nil {
			b, _ := json.Marshal(line.Context)
			contextJSON = string(b)
		}

		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO transaction_lines
			(id, transaction_id, product_id, product, price, discount, quantity, total, campaign_transaction_id, context_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING
		`, line.ID, line.TransactionID, line.ProductID, line.Product,
			line.Price.String(), line.Discount.String(), line.Quantity.String(), line.Total.String(),
			nullString(line.RedemptionID), contextJSON)
		if err != nil {
			return fmt.Errorf("failed to upsert line %s: %w", line.ID, err)
		}
	}

	for _, r := range result.Redemptions {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO campaign_transactions (campaign_transaction_id, campaign_id, customer_id)
			VALUES (?, ?, ?)
			ON CONFLICT (campaign_transaction_id) DO NOTHING
		`, r.ID, r.CampaignID, r.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to upsert redemption %s: %w", r.ID, err)
		}
	}

	return sqlTx.Commit()
}

// =============================================================================
// REFERENCE DATA UPSERTS
// =============================================================================

// UpsertDataset persists the reference collections a run was built from,
// keyed by each entity's primary identifier.
func (s *Store) UpsertDataset(ctx context.Context, ds *sim.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, c := range ds.Customers {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO customers (loyalty_id, name, email, region, primary_station, segment_id, signed_up)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (loyalty_id) DO UPDATE SET
				name = excluded.name,
				email = excluded.email,
				region = excluded.region,
				primary_station = excluded.primary_station,
				segment_id = excluded.segment_id,
				signed_up = excluded.signed_up
		`, c.LoyaltyID, c.Name, c.Email, c.Region, c.HomeStation, int(c.Segment.ID), c.SignedUp.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to upsert customer %s: %w", c.LoyaltyID, err)
		}
	}

	for _, card := range ds.Cards {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO cards (card_id, card_number, card_type, loyalty_id)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (card_id) DO NOTHING
		`, card.ID, card.Number, card.Type, card.LoyaltyID)
		if err != nil {
			return fmt.Errorf("failed to upsert card %s: %w", card.ID, err)
		}
	}

	for _, st := range ds.Stations {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO stations (pno, region) VALUES (?, ?)
			ON CONFLICT (pno) DO UPDATE SET region = excluded.region
		`, st.PNO, st.Region)
		if err != nil {
			return fmt.Errorf("failed to upsert station %d: %w", st.PNO, err)
		}
	}

	for _, c := range ds.Cashiers {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO cashiers (cashier_id, pno, type) VALUES (?, ?, ?)
			ON CONFLICT (cashier_id) DO UPDATE SET pno = excluded.pno, type = excluded.type
		`, c.ID, c.PNO, string(c.Category))
		if err != nil {
			return fmt.Errorf("failed to upsert cashier %s: %w", c.ID, err)
		}
	}

	for _, p := range ds.Products {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO products (product_id, name, type, price) VALUES (?, ?, ?, ?)
			ON CONFLICT (product_id) DO UPDATE SET
				name = excluded.name, type = excluded.type, price = excluded.price
		`, p.ID, p.Name, string(p.Category), p.Price.String())
		if err != nil {
			return fmt.Errorf("failed to upsert product %d: %w", p.ID, err)
		}
	}

	for _, c := range ds.Campaigns {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO campaigns (id, name, product_id, number) VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name, product_id = excluded.product_id, number = excluded.number
		`, c.ID, c.Name, c.ProductID, c.Threshold)
		if err != nil {
			return fmt.Errorf("failed to upsert campaign %d: %w", c.ID, err)
		}
	}

	return sqlTx.Commit()
}

// =============================================================================
// READS
// =============================================================================

// Counts returns row counts per table, for run summaries.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, table := range []string{"transactions", "transaction_lines", "campaign_transactions", "customers", "cards", "stations", "cashiers"} {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}

// ListTransactions returns the most recent transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, limit int) ([]sim.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, timestamp, cashier_id, card_id, context_json
		FROM transactions
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []sim.Transaction
	for rows.Next() {
		var txn sim.Transaction
		var ts string
		var contextJSON sql.NullString
		if err := rows.Scan(&txn.ID, &ts, &txn.CashierID, &txn.CardID, &contextJSON); err != nil {
			return nil, err
		}
		txn.Timestamp, _ = time.Parse(time.RFC3339, ts)
		if contextJSON.Valid && contextJSON.String != "" {
			var raw map[string]string
			if json.Unmarshal([]byte(contextJSON.String), &raw) == nil {
				txn.Origin = &sim.Origin{
					Reason:        raw["context"],
					TransactionID: raw["former_transaction_id"],
				}
			}
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// ListLines returns the line items of one transaction.
func (s *Store) ListLines(ctx context.Context, transactionID string) ([]sim.TransactionLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, product_id, product, price, discount, quantity, total, campaign_transaction_id, context_json
		FROM transaction_lines
		WHERE transaction_id = ?
		ORDER BY id
	`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []sim.TransactionLine
	for rows.Next() {
		var line sim.TransactionLine
		var priceStr, discountStr, quantityStr, totalStr string
		var redemptionID, contextJSON sql.NullString
		if err := rows.Scan(&line.ID, &line.TransactionID, &line.ProductID, &line.Product,
			&priceStr, &discountStr, &quantityStr, &totalStr, &redemptionID, &contextJSON); err != nil {
			return nil, err
		}
		line.Price = mustDecimal(priceStr)
		line.Discount = mustDecimal(discountStr)
		line.Quantity = mustDecimal(quantityStr)
		line.Total = mustDecimal(totalStr)
		line.RedemptionID = redemptionID.String
		if contextJSON.Valid && contextJSON.String != "" {
			json.Unmarshal([]byte(contextJSON.String), &line.Context)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// ListRedemptions returns redemption records for a customer, or all when
// customerID is empty.
func (s *Store) ListRedemptions(ctx context.Context, customerID string, limit int) ([]sim.CampaignRedemption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT campaign_transaction_id, campaign_id, customer_id
		FROM campaign_transactions
	`
	args := []any{}
	if customerID != "" {
		query += " WHERE customer_id = ?"
		args = append(args, customerID)
	}
	query += " ORDER BY campaign_transaction_id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var redemptions []sim.CampaignRedemption
	for rows.Next() {
		var r sim.CampaignRedemption
		if err := rows.Scan(&r.ID, &r.CampaignID, &r.CustomerID); err != nil {
			return nil, err
		}
		redemptions = append(redemptions, r)
	}
	return redemptions, rows.Err()
}

// Reset clears all data (for scenario reloads).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"transaction_lines", "campaign_transactions", "transactions",
		"cards", "customers", "cashiers", "stations", "products", "campaigns",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

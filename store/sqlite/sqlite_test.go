package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forecourt/pos-engine/factory"
	"github.com/forecourt/pos-engine/sim"
	"github.com/forecourt/pos-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun() *sim.RunResult {
	ts := time.Date(2026, time.June, 1, 14, 30, 0, 0, time.UTC)
	return &sim.RunResult{
		Transactions: []sim.Transaction{
			{ID: "txn-1", Timestamp: ts, CashierID: "1000-1", CardID: "card-1"},
			{
				ID: "txn-2", Timestamp: ts.Add(3 * time.Minute), CashierID: "1000-2", CardID: "card-1",
				Origin: &sim.Origin{Reason: sim.ReasonShopAfter, TransactionID: "txn-1"},
			},
		},
		Lines: []sim.TransactionLine{
			{
				ID: "line-1", TransactionID: "txn-1", ProductID: 1, Product: "miles 95",
				Price:    decimal.NewFromFloat(13.19),
				Discount: decimal.NewFromFloat(0.10),
				Quantity: decimal.NewFromFloat(41.5),
				Total:    decimal.NewFromFloat(543.24),
			},
			{
				ID: "line-2", TransactionID: "txn-2", ProductID: 10, Product: "coffee large",
				Price:        decimal.NewFromInt(25),
				Discount:     decimal.NewFromInt(1),
				Quantity:     decimal.NewFromInt(2),
				Total:        decimal.NewFromInt(25),
				RedemptionID: "red-1",
			},
			{
				ID: "line-3", TransactionID: "txn-2", ProductID: 3, Product: "ev charging",
				Price:    decimal.NewFromFloat(4.50),
				Discount: decimal.Zero,
				Quantity: decimal.NewFromInt(30),
				Total:    decimal.NewFromInt(135),
				Context: map[string]string{
					"type":       "charge",
					"start_time": ts.Add(-30 * time.Minute).Format(time.RFC3339),
					"end_time":   ts.Format(time.RFC3339),
				},
			},
		},
		Redemptions: []sim.CampaignRedemption{
			{ID: "red-1", CampaignID: 1, CustomerID: "LOYALTY-0001"},
		},
	}
}

// =============================================================================
// RUN OUTPUT TESTS
// =============================================================================

func TestUpsertRun_RoundTripsOutputs(t *testing.T) {
	// GIVEN: A run result with an origin link, a redemption, and a charge context
	// WHEN: Persisting and reading it back
	// THEN: Every field survives the round trip

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertRun(ctx, sampleRun()))

	txns, err := store.ListTransactions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	// newest first
	assert.Equal(t, "txn-2", txns[0].ID)
	require.NotNil(t, txns[0].Origin)
	assert.Equal(t, sim.ReasonShopAfter, txns[0].Origin.Reason)
	assert.Equal(t, "txn-1", txns[0].Origin.TransactionID)
	assert.Nil(t, txns[1].Origin)

	lines, err := store.ListLines(ctx, "txn-2")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	var coffee, charge sim.TransactionLine
	for _, l := range lines {
		switch l.ID {
		case "line-2":
			coffee = l
		case "line-3":
			charge = l
		}
	}

	assert.Equal(t, "red-1", coffee.RedemptionID)
	assert.True(t, coffee.Discount.Equal(decimal.NewFromInt(1)))
	assert.True(t, coffee.Total.Equal(decimal.NewFromInt(25)))

	assert.Empty(t, charge.RedemptionID)
	assert.Equal(t, "charge", charge.Context["type"])
	assert.True(t, charge.Price.Equal(decimal.NewFromFloat(4.50)))

	reds, err := store.ListRedemptions(ctx, "LOYALTY-0001", 10)
	require.NoError(t, err)
	require.Len(t, reds, 1)
	assert.Equal(t, int64(1), reds[0].CampaignID)
}

func TestUpsertRun_ReplayIsIdempotent(t *testing.T) {
	// GIVEN: A persisted run
	// WHEN: Upserting the identical run again
	// THEN: Row counts do not change

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertRun(ctx, sampleRun()))
	before, err := store.Counts(ctx)
	require.NoError(t, err)

	require.NoError(t, store.UpsertRun(ctx, sampleRun()))
	after, err := store.Counts(ctx)
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Equal(t, 2, after["transactions"])
	assert.Equal(t, 3, after["transaction_lines"])
	assert.Equal(t, 1, after["campaign_transactions"])
}

func TestListRedemptions_FiltersByCustomer(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := sampleRun()
	run.Redemptions = append(run.Redemptions,
		sim.CampaignRedemption{ID: "red-2", CampaignID: 8, CustomerID: "LOYALTY-0002"})
	require.NoError(t, store.UpsertRun(ctx, run))

	all, err := store.ListRedemptions(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := store.ListRedemptions(ctx, "LOYALTY-0002", 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "red-2", mine[0].ID)
}

// =============================================================================
// REFERENCE DATA TESTS
// =============================================================================

func TestUpsertDataset_PersistsAllCollections(t *testing.T) {
	// GIVEN: A generated dataset
	// WHEN: Upserting it twice (second time is an update pass)
	// THEN: Counts match the dataset sizes both times

	store := newTestStore(t)
	ctx := context.Background()

	ds := factory.New(42, time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)).Dataset(3, 20)

	for pass := 0; pass < 2; pass++ {
		require.NoError(t, store.UpsertDataset(ctx, ds))

		counts, err := store.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, len(ds.Customers), counts["customers"], "pass %d", pass)
		assert.Equal(t, len(ds.Cards), counts["cards"], "pass %d", pass)
		assert.Equal(t, len(ds.Stations), counts["stations"], "pass %d", pass)
		assert.Equal(t, len(ds.Cashiers), counts["cashiers"], "pass %d", pass)
	}
}

func TestReset_ClearsEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ds := factory.New(7, time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)).Dataset(2, 10)
	require.NoError(t, store.UpsertDataset(ctx, ds))
	require.NoError(t, store.UpsertRun(ctx, sampleRun()))

	require.NoError(t, store.Reset(ctx))

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	for table, n := range counts {
		assert.Zero(t, n, "table %s not cleared", table)
	}
}

// =============================================================================
// END-TO-END TEST
// =============================================================================

func TestStore_PersistsAFullSimulationRun(t *testing.T) {
	// GIVEN: A generated dataset and an engine run over it
	// WHEN: Persisting both
	// THEN: The stored row counts match the run's output sizes

	store := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	ds := factory.New(11, now).Dataset(3, 15)

	engine := &sim.Engine{Dataset: ds, Seed: 11, Now: now}
	result, err := engine.Run()
	require.NoError(t, err)

	require.NoError(t, store.UpsertDataset(ctx, ds))
	require.NoError(t, store.UpsertRun(ctx, result))

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(result.Transactions), counts["transactions"])
	assert.Equal(t, len(result.Lines), counts["transaction_lines"])
	assert.Equal(t, len(result.Redemptions), counts["campaign_transactions"])
}

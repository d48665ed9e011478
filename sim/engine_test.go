package sim_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forecourt/pos-engine/sim"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

// engineDataset builds a two-station, two-customer world with full cashier
// coverage and one campaign per reward mechanism.
func engineDataset() *sim.Dataset {
	stations := []sim.Station{
		{PNO: 1000, Region: "København"},
		{PNO: 1001, Region: "København"},
	}

	var cashiers []sim.Cashier
	for _, st := range stations {
		for i, cat := range sim.Categories {
			cashiers = append(cashiers, sim.Cashier{
				ID:       fmt.Sprintf("%d-%d", st.PNO, i),
				PNO:      st.PNO,
				Category: cat,
			})
		}
	}

	shopper := evenSegment()
	washer := evenSegment()
	washer.ID = sim.SegmentCarWashUser
	washer.CategoryWeights = sim.CategoryWeights{0.2, 0.5, 0, 0.3}

	customers := []sim.Customer{
		{
			LoyaltyID:   "LOYALTY-0001",
			Name:        "Shopper",
			Region:      "København",
			HomeStation: 1000,
			SignedUp:    time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
			Segment:     shopper,
		},
		{
			LoyaltyID:   "LOYALTY-0002",
			Name:        "Washer",
			Region:      "København",
			HomeStation: 1001,
			SignedUp:    time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
			Segment:     washer,
		},
	}

	cards := []sim.Card{
		{ID: "card-1", Number: "4000000000000001", Type: "private", LoyaltyID: "LOYALTY-0001"},
		{ID: "card-2", Number: "4000000000000002", Type: "business", LoyaltyID: "LOYALTY-0001"},
		{ID: "card-3", Number: "4000000000000003", Type: "private", LoyaltyID: "LOYALTY-0002"},
	}

	return &sim.Dataset{
		Customers: customers,
		Cards:     cards,
		Stations:  stations,
		Cashiers:  cashiers,
		Products: []sim.Product{
			{ID: 1, Name: "miles 95", Category: sim.CategoryGas, Price: decimal.NewFromFloat(13.19)},
			{ID: 3, Name: "ev charging", Category: sim.CategoryElectric, Price: decimal.NewFromFloat(4.50)},
			{ID: 5, Name: "car wash basic", Category: sim.CategoryService, Price: decimal.NewFromFloat(79)},
			{ID: 10, Name: "coffee large", Category: sim.CategoryCashier, Price: decimal.NewFromFloat(25)},
			{ID: 11, Name: "hot dog", Category: sim.CategoryCashier, Price: decimal.NewFromFloat(32)},
		},
		Campaigns: []sim.Campaign{
			{ID: 1, Name: "coffee club", ProductID: 10, Threshold: 3},
			{ID: 8, Name: "car wash loyalty", ProductID: 5, Threshold: 6},
		},
		CarWashCampaignID: 8,
	}
}

var runAnchor = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

// =============================================================================
// END-TO-END RUN TESTS
// =============================================================================

func TestEngine_RunProducesConsistentOutputs(t *testing.T) {
	// GIVEN: A small population over a full topology
	// WHEN: Running the simulation
	// THEN: Outputs are internally consistent - every line belongs to a
	//       transaction, every origin resolves, every redemption pairs with
	//       exactly one discounted line

	engine := &sim.Engine{Dataset: engineDataset(), Seed: 42, Now: runAnchor}
	result, err := engine.Run()
	require.NoError(t, err)
	require.NotEmpty(t, result.Transactions)
	require.NotEmpty(t, result.Lines)

	txnIDs := make(map[string]sim.Transaction, len(result.Transactions))
	for _, txn := range result.Transactions {
		require.NotContains(t, txnIDs, txn.ID, "transaction ids must be unique")
		txnIDs[txn.ID] = txn
	}

	linesPerTxn := make(map[string]int)
	lineRedemptions := make(map[string]bool)
	for _, line := range result.Lines {
		_, ok := txnIDs[line.TransactionID]
		require.True(t, ok, "line %s references unknown transaction", line.ID)
		linesPerTxn[line.TransactionID]++

		assert.False(t, line.Total.IsNegative(), "line totals never go negative")
		if line.RedemptionID != "" {
			assert.False(t, lineRedemptions[line.RedemptionID], "a redemption pays for one line only")
			lineRedemptions[line.RedemptionID] = true
		}
	}

	for id, txn := range txnIDs {
		assert.Greater(t, linesPerTxn[id], 0, "transaction %s has no lines", id)
		assert.LessOrEqual(t, linesPerTxn[id], 5)

		if txn.Origin != nil {
			base, ok := txnIDs[txn.Origin.TransactionID]
			require.True(t, ok, "origin must reference a transaction in the run")
			assert.True(t, txn.Timestamp.After(base.Timestamp), "derived visits follow their base")
			assert.Contains(t, []string{sim.ReasonShopBefore, sim.ReasonShopAfter}, txn.Origin.Reason)
		}
	}

	// redemption records and discounted lines form a bijection
	recorded := make(map[string]bool, len(result.Redemptions))
	for _, red := range result.Redemptions {
		recorded[red.ID] = true
	}
	assert.Equal(t, recorded, lineRedemptions)
}

func TestEngine_VolumeTracksSegmentRates(t *testing.T) {
	// GIVEN: A 4/month shopper with 2 months of history and a washer with 12
	// WHEN: Running the simulation
	// THEN: Base transaction volume lands in the expected band (~8 + ~48)

	engine := &sim.Engine{Dataset: engineDataset(), Seed: 7, Now: runAnchor}
	result, err := engine.Run()
	require.NoError(t, err)

	base := 0
	for _, txn := range result.Transactions {
		if txn.Origin == nil {
			base++
		}
	}
	assert.Greater(t, base, 20)
	assert.Less(t, base, 150)
}

func TestEngine_RegisterOnlyCustomerPaysFullPrice(t *testing.T) {
	// GIVEN: One register-only customer, two months of history, a single
	//        shop product with no campaign attached
	// WHEN: Running the simulation
	// THEN: Volume centers on 4/month x 2 months, every basket has 1-5
	//       lines, and with no campaign every line pays price x quantity

	segment := evenSegment()
	segment.CategoryWeights = sim.CategoryWeights{1, 0, 0, 0}

	ds := &sim.Dataset{
		Customers: []sim.Customer{{
			LoyaltyID:   "LOYALTY-0001",
			Name:        "Shopper",
			Region:      "København",
			HomeStation: 1000,
			SignedUp:    runAnchor.AddDate(0, -2, 0),
			Segment:     segment,
		}},
		Cards:    []sim.Card{{ID: "card-1", LoyaltyID: "LOYALTY-0001"}},
		Stations: []sim.Station{{PNO: 1000, Region: "København"}},
		Cashiers: []sim.Cashier{{ID: "1000-1", PNO: 1000, Category: sim.CategoryCashier}},
		Products: []sim.Product{
			{ID: 10, Name: "coffee large", Category: sim.CategoryCashier, Price: decimal.NewFromInt(10)},
		},
	}

	engine := &sim.Engine{Dataset: ds, Seed: 42, Now: runAnchor}
	result, err := engine.Run()
	require.NoError(t, err)

	// count ~ N(4, 1.5) * 2, floored at 1
	assert.GreaterOrEqual(t, len(result.Transactions), 1)
	assert.Less(t, len(result.Transactions), 25)
	assert.Empty(t, result.Redemptions)

	linesPerTxn := make(map[string]int)
	for _, line := range result.Lines {
		linesPerTxn[line.TransactionID]++
		assert.Empty(t, line.RedemptionID)
		assert.True(t, line.Discount.IsZero())
		assert.True(t, line.Total.Equal(line.Price.Mul(line.Quantity)),
			"uncampaigned lines pay full price")
	}
	for _, txn := range result.Transactions {
		assert.GreaterOrEqual(t, linesPerTxn[txn.ID], 1)
		assert.LessOrEqual(t, linesPerTxn[txn.ID], 5)
	}
}

func TestEngine_SameSeedReplaysIdentically(t *testing.T) {
	// GIVEN: Two engines with identical seed, anchor, and dataset
	// WHEN: Running both
	// THEN: The outputs match exactly, IDs included

	a := &sim.Engine{Dataset: engineDataset(), Seed: 1234, Now: runAnchor}
	b := &sim.Engine{Dataset: engineDataset(), Seed: 1234, Now: runAnchor}

	resultA, err := a.Run()
	require.NoError(t, err)
	resultB, err := b.Run()
	require.NoError(t, err)

	assert.Equal(t, resultA, resultB)
}

func TestEngine_DifferentSeedsDiverge(t *testing.T) {
	a := &sim.Engine{Dataset: engineDataset(), Seed: 1, Now: runAnchor}
	b := &sim.Engine{Dataset: engineDataset(), Seed: 2, Now: runAnchor}

	resultA, err := a.Run()
	require.NoError(t, err)
	resultB, err := b.Run()
	require.NoError(t, err)

	assert.NotEqual(t, resultA.Transactions, resultB.Transactions)
}

// =============================================================================
// ERROR POLICY TESTS
// =============================================================================

func TestEngine_CustomerWithoutCardsAbortsRun(t *testing.T) {
	// GIVEN: A dataset where one customer has no loyalty cards
	// WHEN: Running the simulation
	// THEN: The run fails with a missing-reference error

	ds := engineDataset()
	ds.Cards = ds.Cards[:2] // strip the washer's only card

	engine := &sim.Engine{Dataset: ds, Seed: 42, Now: runAnchor}
	_, err := engine.Run()

	require.Error(t, err)
	assert.True(t, errors.Is(err, sim.ErrMissingReference))

	var refErr *sim.MissingReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "card", refErr.Kind)
}

func TestEngine_MissingCatalogCategoryAbortsRun(t *testing.T) {
	// GIVEN: A dataset with no service products but service cashiers
	// WHEN: Running until a wash transaction composes
	// THEN: The run fails loudly instead of emitting an empty basket

	ds := engineDataset()
	var products []sim.Product
	for _, p := range ds.Products {
		if p.Category != sim.CategoryService {
			products = append(products, p)
		}
	}
	ds.Products = products

	engine := &sim.Engine{Dataset: ds, Seed: 42, Now: runAnchor}
	_, err := engine.Run()

	require.Error(t, err)
	assert.True(t, errors.Is(err, sim.ErrMissingReference))
}

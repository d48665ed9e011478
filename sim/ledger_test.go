package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forecourt/pos-engine/sim"
)

// =============================================================================
// ACCRUAL TESTS
// =============================================================================

func TestLedger_AccrualBelowThreshold(t *testing.T) {
	// GIVEN: An empty ledger with a threshold of 5
	// WHEN: Accruing 4 units
	// THEN: Nothing is pending and the accrual carries

	l := sim.NewCampaignLedger()
	l.Accrue("cust-1", 10, 4, 5)

	assert.Equal(t, 4, l.Accrual("cust-1", 10))
	assert.Equal(t, 0, l.Pending("cust-1", 10))
	assert.False(t, l.TryRedeem("cust-1", 10))
}

func TestLedger_ThresholdCrossingEarnsReward(t *testing.T) {
	// GIVEN: A threshold of 5
	// WHEN: Accruing 5, 1, 1, 1, 1 units across separate purchases
	// THEN: One reward is pending and 4 units have re-accrued

	l := sim.NewCampaignLedger()
	for _, units := range []int{5, 1, 1, 1, 1} {
		l.Accrue("cust-1", 10, units, 5)
	}

	assert.Equal(t, 1, l.Pending("cust-1", 10))
	assert.Equal(t, 4, l.Accrual("cust-1", 10))
}

func TestLedger_BulkPurchaseCrossesMultipleThresholds(t *testing.T) {
	// GIVEN: A threshold of 3
	// WHEN: Accruing 10 units in one call
	// THEN: Three rewards are pending with a remainder of 1

	l := sim.NewCampaignLedger()
	l.Accrue("cust-1", 7, 10, 3)

	assert.Equal(t, 3, l.Pending("cust-1", 7))
	assert.Equal(t, 1, l.Accrual("cust-1", 7))
}

func TestLedger_NonPositiveThresholdIsNoOp(t *testing.T) {
	l := sim.NewCampaignLedger()
	l.Accrue("cust-1", 7, 10, 0)
	l.Accrue("cust-1", 7, 10, -1)

	assert.Equal(t, 0, l.Accrual("cust-1", 7))
	assert.Equal(t, 0, l.Pending("cust-1", 7))
}

// =============================================================================
// REDEMPTION TESTS
// =============================================================================

func TestLedger_RedeemConsumesExactlyOneReward(t *testing.T) {
	// GIVEN: Two pending rewards
	// WHEN: Redeeming three times
	// THEN: The first two succeed, the third fails

	l := sim.NewCampaignLedger()
	l.Accrue("cust-1", 10, 10, 5) // 2 rewards, 0 remainder

	assert.True(t, l.TryRedeem("cust-1", 10))
	assert.True(t, l.TryRedeem("cust-1", 10))
	assert.False(t, l.TryRedeem("cust-1", 10))
	assert.Equal(t, 0, l.Pending("cust-1", 10))
}

func TestLedger_RedeemOnEmptyLedgerLeavesStateUntouched(t *testing.T) {
	l := sim.NewCampaignLedger()

	assert.False(t, l.TryRedeem("cust-1", 10))
	assert.Equal(t, 0, l.Accrual("cust-1", 10))
	assert.Equal(t, 0, l.Pending("cust-1", 10))
}

func TestLedger_KeysAreIndependent(t *testing.T) {
	// GIVEN: Accruals for several (customer, campaign) pairs
	// WHEN: Crossing the threshold for one pair only
	// THEN: Other pairs are unaffected

	l := sim.NewCampaignLedger()
	l.Accrue("cust-1", 10, 5, 5)
	l.Accrue("cust-1", 11, 2, 5)
	l.Accrue("cust-2", 10, 2, 5)

	assert.Equal(t, 1, l.Pending("cust-1", 10))
	assert.Equal(t, 0, l.Pending("cust-1", 11))
	assert.Equal(t, 0, l.Pending("cust-2", 10))
	assert.Equal(t, 2, l.Accrual("cust-1", 11))
	assert.Equal(t, 2, l.Accrual("cust-2", 10))
}

// =============================================================================
// VISIT COUNTER TESTS
// =============================================================================

func TestVisitCounter_CountsPerCustomer(t *testing.T) {
	v := make(sim.VisitCounter)

	assert.Equal(t, 1, v.Next("a"))
	assert.Equal(t, 2, v.Next("a"))
	assert.Equal(t, 1, v.Next("b"))
	assert.Equal(t, 3, v.Next("a"))
}

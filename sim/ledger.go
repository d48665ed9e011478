/*
ledger.go - Campaign accrual/reward state

PURPOSE:
  The CampaignLedger is the only shared mutable state in the engine. It
  tracks, per (customer, campaign) pair, how many qualifying units have
  been purchased since the last reward (accrual) and how many earned free
  units are still unredeemed (pending rewards).

INVARIANTS:
  1. accrual stays in [0, threshold) - crossing the threshold converts
     whole thresholds into pending rewards, remainder carries over
  2. pending rewards never go negative - TryRedeem only decrements when
     a reward exists
  3. Redemption is checked BEFORE accrual for a given line, and consumes
     at most one free unit per line regardless of quantity purchased

  The ledger never returns errors; only the additive/subtractive
  operations below exist, so the invariants hold by construction.

CONCURRENCY:
  The engine processes customers sequentially, so no locking is needed
  here. A parallel orchestrator must shard or lock per key; state for
  different (customer, campaign) pairs is fully independent.

SEE ALSO:
  - basket.go: the only caller of TryRedeem/Accrue
*/
package sim

// =============================================================================
// CAMPAIGN LEDGER
// =============================================================================

type ledgerKey struct {
	customerID string
	campaignID int64
}

type ledgerEntry struct {
	accrual int
	pending int
}

// CampaignLedger tracks per-(customer, campaign) accrual counts and
// pending reward queues. Unseen keys start at zero.
type CampaignLedger struct {
	entries map[ledgerKey]*ledgerEntry
}

func NewCampaignLedger() *CampaignLedger {
	return &CampaignLedger{entries: make(map[ledgerKey]*ledgerEntry)}
}

func (l *CampaignLedger) entry(customerID string, campaignID int64) *ledgerEntry {
	key := ledgerKey{customerID: customerID, campaignID: campaignID}
	e, ok := l.entries[key]
	if !ok {
		e = &ledgerEntry{}
		l.entries[key] = e
	}
	return e
}

// TryRedeem consumes one pending reward if any exists. The caller must
// record a CampaignRedemption when it returns true.
func (l *CampaignLedger) TryRedeem(customerID string, campaignID int64) bool {
	e := l.entry(customerID, campaignID)
	if e.pending > 0 {
		e.pending--
		return true
	}
	return false
}

// Accrue adds purchased units toward the next reward. Bulk quantities may
// cross several thresholds in one call; each crossing earns one pending
// reward and the remainder carries over.
func (l *CampaignLedger) Accrue(customerID string, campaignID int64, units, threshold int) {
	if threshold <= 0 {
		return
	}
	e := l.entry(customerID, campaignID)
	e.accrual += units
	for e.accrual >= threshold {
		e.accrual -= threshold
		e.pending++
	}
}

// Accrual reports the current accrual count (for inspection/tests).
func (l *CampaignLedger) Accrual(customerID string, campaignID int64) int {
	return l.entry(customerID, campaignID).accrual
}

// Pending reports the current pending reward count (for inspection/tests).
func (l *CampaignLedger) Pending(customerID string, campaignID int64) int {
	return l.entry(customerID, campaignID).pending
}

// =============================================================================
// SERVICE VISIT COUNTER
// =============================================================================

// VisitCounter counts raw service visits per customer. The every-6th-wash-
// free rule runs on this plain counter, independent of the campaign
// ledger's accrual mechanism.
type VisitCounter map[string]int

// Next increments and returns the visit number for a customer (1-based).
func (v VisitCounter) Next(customerID string) int {
	v[customerID]++
	return v[customerID]
}

/*
engine.go - The run orchestrator

PURPOSE:
  Wires the planner, composer, and ledger together for one simulation run:
  index the reference data, iterate customers sequentially, turn each
  customer's skeletons into transactions and line items, and aggregate the
  three output collections.

DETERMINISM:
  One Sampler seeded once, one pinned Now for the whole run. Customers are
  processed in input order. Replaying the same seed, Now, and Dataset
  reproduces byte-identical outputs.

ERROR POLICY:
  The engine validates references the composer cannot: a customer with no
  cards, or a skeleton whose cashier is absent from the roster, aborts the
  run with a missing-reference error. Planner-level sampling misses have
  already been dropped silently by this point.

SEE ALSO:
  - planner.go, basket.go, ledger.go: the stages wired here
*/
package sim

import (
	"time"
)

// Engine runs one simulation over a fixed dataset. The zero value is not
// usable; Dataset must be set. A zero Now pins the run to the current UTC
// time (pass an explicit Now for reproducible runs).
type Engine struct {
	Dataset *Dataset
	Seed    int64
	Now     time.Time
}

// Run simulates the whole population and returns the collected outputs.
func (e *Engine) Run() (*RunResult, error) {
	now := e.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	sampler := NewSampler(e.Seed)
	ledger := NewCampaignLedger()
	composer := NewComposer(e.Dataset, sampler, ledger)

	cashiersByStation := make(map[int][]Cashier)
	cashierByID := make(map[string]Cashier, len(e.Dataset.Cashiers))
	for _, c := range e.Dataset.Cashiers {
		cashiersByStation[c.PNO] = append(cashiersByStation[c.PNO], c)
		cashierByID[c.ID] = c
	}

	stationsByRegion := make(map[string][]Station)
	for _, s := range e.Dataset.Stations {
		stationsByRegion[s.Region] = append(stationsByRegion[s.Region], s)
	}

	cardsByCustomer := make(map[string][]Card)
	for _, c := range e.Dataset.Cards {
		cardsByCustomer[c.LoyaltyID] = append(cardsByCustomer[c.LoyaltyID], c)
	}

	planner := &Planner{
		Sampler:           sampler,
		Now:               now,
		CashiersByStation: cashiersByStation,
		StationsByRegion:  stationsByRegion,
	}

	result := &RunResult{}

	for _, customer := range e.Dataset.Customers {
		cards := cardsByCustomer[customer.LoyaltyID]
		if len(cards) == 0 {
			return nil, missingRef("card", "customer "+customer.LoyaltyID+" has no cards")
		}

		for _, sk := range planner.Plan(customer, cards) {
			cashier, ok := cashierByID[sk.CashierID]
			if !ok {
				return nil, missingRef("cashier", sk.CashierID)
			}

			txn := Transaction{
				ID:        sk.TransactionID,
				Timestamp: sk.Timestamp,
				CashierID: sk.CashierID,
				CardID:    sk.CardID,
				Origin:    sk.Origin,
			}
			result.Transactions = append(result.Transactions, txn)

			lines, redemptions, err := composer.Compose(txn, customer.LoyaltyID, cashier.Category)
			if err != nil {
				return nil, err
			}
			result.Lines = append(result.Lines, lines...)
			result.Redemptions = append(result.Redemptions, redemptions...)
		}
	}

	return result, nil
}

/*
Package sim provides the core retail transaction simulation engine.

PURPOSE:
  This package contains the stateful algorithm that turns a customer
  population, a station/cashier topology, a product catalog, and a set of
  frequency-reward campaigns into a behaviorally plausible stream of
  transactions, line items, and campaign redemption records.

KEY CONCEPTS IN THIS FILE (types.go):
  - Customer/Card/Station/Cashier/Product/Campaign: read-only inputs
  - Skeleton: a planned transaction (time, cashier, card) before its lines
  - Transaction/TransactionLine/CampaignRedemption: immutable outputs
  - Dataset: the fully-materialized input collections for one run

DESIGN PRINCIPLES:
  1. Determinism: all randomness flows through one seeded Sampler, so the
     same seed and inputs reproduce byte-identical outputs
  2. Precision: uses decimal.Decimal for prices and totals to avoid
     floating-point drift in money math
  3. Immutability: outputs are created once and never mutated; the only
     mutable state is the CampaignLedger and the service VisitCounter
  4. Closed dispatch: CashierCategory is a closed enum with one basket
     handler per variant

USAGE:
  engine := &sim.Engine{Dataset: ds, Seed: 42, Now: runDate}
  result, err := engine.Run()

SEE ALSO:
  - sampler.go: biased date/time-of-day sampling
  - planner.go: per-customer transaction scheduling
  - ledger.go: campaign accrual/reward state
  - basket.go: per-category line composition
  - engine.go: the run orchestrator
*/
package sim

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CASHIER CATEGORIES - Closed set, one basket handler per variant
// =============================================================================

type CashierCategory string

const (
	CategoryCashier  CashierCategory = "cashier"
	CategoryService  CashierCategory = "service"
	CategoryElectric CashierCategory = "electric"
	CategoryGas      CashierCategory = "gas"
)

// Categories lists every category in a fixed order. Weighted draws iterate
// this slice, never a map, so results are reproducible for a given seed.
var Categories = []CashierCategory{CategoryCashier, CategoryService, CategoryElectric, CategoryGas}

// CategoryWeights holds a preference weight per category, indexed in
// Categories order.
type CategoryWeights [4]float64

func (w CategoryWeights) Weight(c CashierCategory) float64 {
	for i, cat := range Categories {
		if cat == c {
			return w[i]
		}
	}
	return 0
}

// =============================================================================
// SEGMENTS - Behavioral parameters shared by a group of customers
// =============================================================================

type SegmentID int

const (
	SegmentEVCommuter     SegmentID = 1
	SegmentFuelOnly       SegmentID = 2
	SegmentHeavyShopper   SegmentID = 3
	SegmentCarWashUser    SegmentID = 4
	SegmentPriceSensitive SegmentID = 5
)

// Segment describes how a group of customers behaves: how often they
// transact, when during the week and day, and which cashier categories
// they prefer.
type Segment struct {
	ID             SegmentID
	Name           string
	AvgTxnPerMonth float64

	// WeekdayWeights index 0 is Monday.
	WeekdayWeights [7]float64
	PeakHours      []int
	HourWeights    []float64

	CategoryWeights CategoryWeights
}

// =============================================================================
// REFERENCE DATA - Read-only for the duration of a run
// =============================================================================

type Customer struct {
	LoyaltyID   string
	Name        string
	Email       string
	Region      string
	HomeStation int
	SignedUp    time.Time
	Segment     Segment
}

// Card belongs to exactly one customer; any of a customer's cards may be
// used on any of their transactions.
type Card struct {
	ID        string
	Number    string
	Type      string
	LoyaltyID string
}

type Station struct {
	PNO    int
	Region string
}

type Cashier struct {
	ID       string
	PNO      int
	Category CashierCategory
}

type Product struct {
	ID       int64
	Name     string
	Category CashierCategory
	Price    decimal.Decimal
}

// Campaign is a frequency reward: after Threshold qualifying units of the
// target product, the next unit is free.
type Campaign struct {
	ID        int64
	Name      string
	ProductID int64
	Threshold int
}

// Dataset bundles the fully-materialized inputs for one simulation run.
// The engine performs no I/O; callers load these collections up front.
type Dataset struct {
	Customers []Customer
	Cards     []Card
	Stations  []Station
	Cashiers  []Cashier
	Products  []Product
	Campaigns []Campaign

	// CarWashCampaignID identifies the campaign that every-6th-free
	// service visits redeem against.
	CarWashCampaignID int64
}

// =============================================================================
// SKELETONS - Planned transactions before line composition
// =============================================================================

// Origin reasons for derived transactions.
const (
	ReasonShopBefore = "bought in shop before"
	ReasonShopAfter  = "bought in shop after"
)

// Origin links a derived transaction back to the visit that triggered it.
type Origin struct {
	Reason        string
	TransactionID string
}

// Skeleton is a planned transaction: the planner has fixed its time, card
// and cashier, but no line items exist yet. The cashier is carried by ID
// and re-resolved at composition time; an unresolvable ID is a data error.
type Skeleton struct {
	TransactionID string
	Timestamp     time.Time
	CashierID     string
	CardID        string
	Origin        *Origin
}

// =============================================================================
// OUTPUTS - Created once, never mutated
// =============================================================================

type Transaction struct {
	ID        string
	Timestamp time.Time
	CashierID string
	CardID    string
	Origin    *Origin
}

type TransactionLine struct {
	ID            string
	TransactionID string
	ProductID     int64
	Product       string
	Price         decimal.Decimal
	Discount      decimal.Decimal
	Quantity      decimal.Decimal
	Total         decimal.Decimal

	// RedemptionID is set when this line consumed a campaign reward.
	RedemptionID string

	// Context carries descriptive metadata (e.g. charge session times).
	Context map[string]string
}

// CampaignRedemption is recorded exactly when a reward is granted against
// a line item (one per consumed free unit).
type CampaignRedemption struct {
	ID         string
	CampaignID int64
	CustomerID string
}

// RunResult aggregates everything one simulation run produced.
type RunResult struct {
	Transactions []Transaction
	Lines        []TransactionLine
	Redemptions  []CampaignRedemption
}

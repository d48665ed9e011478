/*
Package factory builds the reference data a simulation run consumes:
segments, stations, cashier rosters, customers with their payment cards,
the product catalog, and campaign definitions.

PURPOSE:
  The sim package takes fully-materialized collections and performs no
  I/O. This package is where those collections come from when no real
  data warehouse is attached: everything is generated from a seed, so a
  whole dataset is reproducible.

KEY KNOBS:
  - Region weights skew the station/customer geography toward the
    population centers
  - Segment weights control the behavioral mix of the customer base
  - Per-station cashier counts shape how often a sampled category
    resolves to an actual cashier

SEE ALSO:
  - population.go: station/cashier/customer/card generation
  - catalog.go: products and campaigns
*/
package factory

import "github.com/forecourt/pos-engine/sim"

// =============================================================================
// GEOGRAPHY
// =============================================================================

// Regions and their share of stations and customers. Ordered slices, not
// maps, so weighted draws stay deterministic for a given seed.
var (
	Regions       = []string{"København", "Sjælland", "Fyn", "Midtjylland", "Sydjylland", "Nordjylland"}
	RegionWeights = []float64{0.35, 0.25, 0.10, 0.15, 0.10, 0.05}
)

// =============================================================================
// SEGMENT PRESETS
// =============================================================================

// SegmentWeights gives each preset's share of the customer base, indexed
// parallel to Segments.
var SegmentWeights = []float64{0.25, 0.35, 0.10, 0.10, 0.20}

// Segments are the five behavioral presets. Weekday weights index 0 is
// Monday; category weights follow sim.Categories order
// (cashier, service, electric, gas).
var Segments = []sim.Segment{
	{
		ID:              sim.SegmentEVCommuter,
		Name:            "EV Commuter",
		AvgTxnPerMonth:  6,
		WeekdayWeights:  [7]float64{0.18, 0.18, 0.18, 0.18, 0.16, 0.06, 0.06},
		PeakHours:       []int{7, 17},
		HourWeights:     []float64{0.55, 0.45},
		CategoryWeights: sim.CategoryWeights{0.45, 0.05, 0.45, 0.05},
	},
	{
		ID:              sim.SegmentFuelOnly,
		Name:            "Fuel-Only Driver",
		AvgTxnPerMonth:  4,
		WeekdayWeights:  [7]float64{0.15, 0.15, 0.15, 0.15, 0.20, 0.12, 0.08},
		PeakHours:       []int{8, 16},
		HourWeights:     []float64{0.50, 0.50},
		CategoryWeights: sim.CategoryWeights{0.15, 0.05, 0.00, 0.80},
	},
	{
		ID:              sim.SegmentHeavyShopper,
		Name:            "Heavy Shopper",
		AvgTxnPerMonth:  10,
		WeekdayWeights:  [7]float64{0.13, 0.13, 0.13, 0.13, 0.18, 0.18, 0.12},
		PeakHours:       []int{12, 18},
		HourWeights:     []float64{0.40, 0.60},
		CategoryWeights: sim.CategoryWeights{0.80, 0.05, 0.05, 0.10},
	},
	{
		ID:              sim.SegmentCarWashUser,
		Name:            "Car Wash User",
		AvgTxnPerMonth:  3,
		WeekdayWeights:  [7]float64{0.10, 0.10, 0.12, 0.12, 0.16, 0.24, 0.16},
		PeakHours:       []int{10, 15},
		HourWeights:     []float64{0.50, 0.50},
		CategoryWeights: sim.CategoryWeights{0.20, 0.50, 0.00, 0.30},
	},
	{
		ID:              sim.SegmentPriceSensitive,
		Name:            "Price Sensitive",
		AvgTxnPerMonth:  2,
		WeekdayWeights:  [7]float64{0.14, 0.14, 0.14, 0.14, 0.14, 0.16, 0.14},
		PeakHours:       []int{9, 20},
		HourWeights:     []float64{0.45, 0.55},
		CategoryWeights: sim.CategoryWeights{0.40, 0.10, 0.10, 0.40},
	},
}

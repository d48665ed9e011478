/*
population.go - Station, cashier, customer, and card generation

PURPOSE:
  Builds a synthetic station network and customer base with the shape the
  planner expects: stations weighted toward the population centers,
  per-station cashier rosters of all four categories, customers assigned
  a behavioral segment and a home station, and 1-4 payment cards each.

DETERMINISM:
  All draws go through one sim.Sampler, so a Generator seed fully
  determines the dataset it produces.
*/
package factory

import (
	"fmt"
	"strings"
	"time"

	"github.com/forecourt/pos-engine/sim"
)

var (
	firstNames = []string{"Mette", "Lars", "Anna", "Søren", "Freja", "Mikkel", "Ida", "Jonas", "Clara", "Emil", "Sofie", "Magnus"}
	lastNames  = []string{"Nielsen", "Jensen", "Hansen", "Pedersen", "Andersen", "Christensen", "Larsen", "Sørensen"}
	cardTypes  = []string{"Visa", "MasterCard", "Dankort", "Amex"}
)

// Generator produces reproducible reference data from one seed.
type Generator struct {
	sampler *sim.Sampler
	now     time.Time
}

func New(seed int64, now time.Time) *Generator {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return &Generator{sampler: sim.NewSampler(seed), now: now}
}

// Dataset assembles a complete simulation input: stations, cashiers,
// customers, cards, and the default catalog and campaigns.
func (g *Generator) Dataset(numStations, numCustomers int) *sim.Dataset {
	stations := g.Stations(numStations)
	cashiers := g.Cashiers(stations)
	customers, cards := g.Customers(numCustomers, stations)

	return &sim.Dataset{
		Customers:         customers,
		Cards:             cards,
		Stations:          stations,
		Cashiers:          cashiers,
		Products:          Products(),
		Campaigns:         Campaigns(),
		CarWashCampaignID: CarWashCampaignID,
	}
}

// =============================================================================
// STATIONS & CASHIERS
// =============================================================================

// Stations generates n stations with four-digit pno identifiers, regions
// drawn by weight.
func (g *Generator) Stations(n int) []sim.Station {
	stations := make([]sim.Station, 0, n)
	for i := 0; i < n; i++ {
		region := Regions[g.sampler.WeightedIndex(RegionWeights)]
		stations = append(stations, sim.Station{PNO: 1000 + i, Region: region})
	}
	return stations
}

// Cashiers builds each station's roster: 2-4 registers, 1-2 wash bays,
// 1-10 chargers, and an even number (2-12) of pumps. Cashier IDs are
// "pno-index", the index resetting per station.
func (g *Generator) Cashiers(stations []sim.Station) []sim.Cashier {
	var cashiers []sim.Cashier

	for _, station := range stations {
		index := 1
		add := func(count int, category sim.CashierCategory) {
			for i := 0; i < count; i++ {
				cashiers = append(cashiers, sim.Cashier{
					ID:       fmt.Sprintf("%d-%d", station.PNO, index),
					PNO:      station.PNO,
					Category: category,
				})
				index++
			}
		}

		add(g.sampler.IntBetween(2, 4), sim.CategoryCashier)
		add(g.sampler.IntBetween(1, 2), sim.CategoryService)
		add(g.sampler.IntBetween(1, 10), sim.CategoryElectric)
		add(g.sampler.IntBetween(1, 6)*2, sim.CategoryGas)
	}

	return cashiers
}

// =============================================================================
// CUSTOMERS & CARDS
// =============================================================================

// Customers generates n customers with weighted segment membership, a
// weighted-region home station, a signup timestamp shaped by the
// segment's weekday/hour profile within the past two years, and 1-4
// payment cards each.
func (g *Generator) Customers(n int, stations []sim.Station) ([]sim.Customer, []sim.Card) {
	byRegion := make(map[string][]sim.Station)
	for _, s := range stations {
		byRegion[s.Region] = append(byRegion[s.Region], s)
	}

	// Only regions that actually have stations participate in the draw.
	var regions []string
	var weights []float64
	for i, r := range Regions {
		if len(byRegion[r]) > 0 {
			regions = append(regions, r)
			weights = append(weights, RegionWeights[i])
		}
	}

	customers := make([]sim.Customer, 0, n)
	var cards []sim.Card

	for i := 0; i < n; i++ {
		segment := Segments[g.sampler.WeightedIndex(SegmentWeights)]

		region := regions[g.sampler.WeightedIndex(weights)]
		pool := byRegion[region]
		home := pool[g.sampler.Pick(len(pool))]

		first := firstNames[g.sampler.Pick(len(firstNames))]
		last := lastNames[g.sampler.Pick(len(lastNames))]

		baseDay := g.now.AddDate(0, 0, -g.sampler.IntBetween(0, 729))
		signupDay := g.sampler.BiasedDate(baseDay, segment.WeekdayWeights)
		signedUp := g.sampler.BiasedTimeOfDay(signupDay, segment.PeakHours, segment.HourWeights)

		customer := sim.Customer{
			LoyaltyID:   g.loyaltyID(),
			Name:        first + " " + last,
			Email:       fmt.Sprintf("%s.%s%d@example.dk", strings.ToLower(first), strings.ToLower(last), i),
			Region:      home.Region,
			HomeStation: home.PNO,
			SignedUp:    signedUp,
			Segment:     segment,
		}
		customers = append(customers, customer)

		for c := g.sampler.IntBetween(1, 4); c > 0; c-- {
			cards = append(cards, sim.Card{
				ID:        g.sampler.NewID(),
				Number:    g.cardNumber(),
				Type:      cardTypes[g.sampler.Pick(len(cardTypes))],
				LoyaltyID: customer.LoyaltyID,
			})
		}
	}

	return customers, cards
}

func (g *Generator) loyaltyID() string {
	return fmt.Sprintf("LOYALTY-%04X%04X", g.sampler.Pick(1<<16), g.sampler.Pick(1<<16))
}

func (g *Generator) cardNumber() string {
	var b strings.Builder
	for i := 0; i < 16; i++ {
		fmt.Fprintf(&b, "%d", g.sampler.Pick(10))
	}
	return b.String()
}

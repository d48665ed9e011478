/*
planner.go - Per-customer transaction scheduling

PURPOSE:
  The planner decides, for one customer, how many transactions happened
  since signup and where/when each took place. It emits transaction
  skeletons - time, card, cashier - which the basket composer later fills
  with line items.

HOW MANY:
  Monthly transaction rate comes from the customer's segment; the count
  for the run is a normal draw around rate * whole-months-since-signup,
  floored at one so even brand-new customers produce activity.

WHERE:
  Half the time the customer visits their home station; otherwise a
  uniformly chosen station in their region. If the chosen station has no
  cashier of the sampled category the iteration is dropped silently -
  that is an expected sampling miss, not an error.

DERIVED VISITS:
  Two follow-on rules chain extra skeletons to a base visit:
  - EV commuters who shopped at a register may start a charge session
    5-30 minutes later ("bought in shop before")
  - fuel and car-wash visits may be followed by a register purchase
    1-5 minutes later ("bought in shop after")
  Both carry an Origin link back to the base transaction.

SEE ALSO:
  - sampler.go: the date/time and weighted draws used here
  - engine.go: iterates customers and feeds skeletons to the composer
*/
package sim

import (
	"math"
	"time"
)

// Planner schedules transactions for individual customers against a fixed
// station/cashier topology.
type Planner struct {
	Sampler           *Sampler
	Now               time.Time
	CashiersByStation map[int][]Cashier
	StationsByRegion  map[string][]Station
}

// Plan emits zero or more transaction skeletons for one customer. A
// customer whose sampled stations never have a matching cashier yields an
// empty plan. cards must be non-empty; the engine validates that before
// planning.
func (p *Planner) Plan(c Customer, cards []Card) []Skeleton {
	var skeletons []Skeleton

	months := wholeMonthsBetween(c.SignedUp, p.Now)
	if months < 0 {
		months = 0
	}

	count := int(math.Round(p.Sampler.Normal(c.Segment.AvgTxnPerMonth, 1.5) * float64(months)))
	if count < 1 {
		count = 1
	}

	signupDay := dateOnly(c.SignedUp)
	windowDays := int(dateOnly(p.Now).Sub(signupDay).Hours() / 24)
	if windowDays < 0 {
		windowDays = 0
	}

	for i := 0; i < count; i++ {
		baseDay := signupDay.AddDate(0, 0, p.Sampler.IntBetween(0, windowDays))
		txnDate := p.Sampler.BiasedDate(baseDay, c.Segment.WeekdayWeights)
		ts := p.Sampler.BiasedTimeOfDay(txnDate, c.Segment.PeakHours, c.Segment.HourWeights)

		card := cards[p.Sampler.Pick(len(cards))]
		category := Categories[p.Sampler.WeightedIndex(c.Segment.CategoryWeights[:])]

		candidates := p.candidateCashiers(c)
		options := filterByCategory(candidates, category)
		if len(options) == 0 {
			// expected sampling miss: no such cashier at this station
			continue
		}
		cashier := options[p.Sampler.Pick(len(options))]

		base := Skeleton{
			TransactionID: p.Sampler.NewID(),
			Timestamp:     ts,
			CashierID:     cashier.ID,
			CardID:        card.ID,
		}
		skeletons = append(skeletons, base)

		// EV commuters shop at the register, then plug in.
		if c.Segment.ID == SegmentEVCommuter && category == CategoryCashier {
			if p.Sampler.Float64() < c.Segment.CategoryWeights.Weight(CategoryElectric) {
				if derived, ok := p.derive(base, candidates, CategoryElectric, 5, 30, ReasonShopBefore); ok {
					skeletons = append(skeletons, derived)
				}
			}
		}

		// Fuel and car-wash visits often end with a shop purchase.
		if category == CategoryGas || category == CategoryService {
			if p.Sampler.Float64() < c.Segment.CategoryWeights.Weight(CategoryCashier) {
				if derived, ok := p.derive(base, candidates, CategoryCashier, 1, 5, ReasonShopAfter); ok {
					skeletons = append(skeletons, derived)
				}
			}
		}
	}

	return skeletons
}

// candidateCashiers picks the station for one visit: the home station with
// probability 0.5, otherwise a uniform choice among the customer's region.
func (p *Planner) candidateCashiers(c Customer) []Cashier {
	if p.Sampler.Float64() < 0.5 {
		return p.CashiersByStation[c.HomeStation]
	}
	regionStations := p.StationsByRegion[c.Region]
	if len(regionStations) == 0 {
		return nil
	}
	alt := regionStations[p.Sampler.Pick(len(regionStations))]
	return p.CashiersByStation[alt.PNO]
}

// derive emits a follow-on skeleton on a cashier of the wanted category at
// the same candidate station, offset by a uniform number of minutes.
func (p *Planner) derive(base Skeleton, candidates []Cashier, want CashierCategory, minOffset, maxOffset int, reason string) (Skeleton, bool) {
	options := filterByCategory(candidates, want)
	if len(options) == 0 {
		return Skeleton{}, false
	}
	cashier := options[p.Sampler.Pick(len(options))]
	offset := time.Duration(p.Sampler.IntBetween(minOffset, maxOffset)) * time.Minute

	return Skeleton{
		TransactionID: p.Sampler.NewID(),
		Timestamp:     base.Timestamp.Add(offset),
		CashierID:     cashier.ID,
		CardID:        base.CardID,
		Origin:        &Origin{Reason: reason, TransactionID: base.TransactionID},
	}, true
}

func filterByCategory(cashiers []Cashier, category CashierCategory) []Cashier {
	var out []Cashier
	for _, c := range cashiers {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

// wholeMonthsBetween counts whole calendar months from a to b, the way a
// billing cycle would: (year delta * 12) + month delta.
func wholeMonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

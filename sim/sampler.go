/*
sampler.go - Seeded randomness for the whole simulation

PURPOSE:
  Every random draw in a run - dates, times of day, weighted picks,
  quantities, and record IDs - flows through one Sampler owning a single
  seeded source. Replaying a seed against identical inputs therefore
  reproduces byte-identical output collections, which is what makes
  simulation runs usable as test fixtures.

INTRADAY MODEL:
  Times of day come from a multi-peaked distribution built from a small
  parameter set instead of a full histogram: pick one peak hour by weighted
  draw, then draw minutes-past-midnight from a normal centered on that
  peak. Morning peaks are tighter (std dev 45 min) than afternoon/evening
  ones (60 min). Results are clamped into opening hours [06:00, 22:00].

SEE ALSO:
  - planner.go: the main consumer of date/time sampling
  - basket.go: quantity and price draws
*/
package sim

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

type Sampler struct {
	rng *rand.Rand
}

func NewSampler(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// NewID returns a UUID drawn from the seeded source, so IDs are
// reproducible per seed.
func (s *Sampler) NewID() string {
	id, err := uuid.NewRandomFromReader(s.rng)
	if err != nil {
		// math/rand sources never fail to read
		panic(err)
	}
	return id.String()
}

// =============================================================================
// PRIMITIVE DRAWS
// =============================================================================

func (s *Sampler) Float64() float64 { return s.rng.Float64() }

// Uniform returns a draw in [lo, hi).
func (s *Sampler) Uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Normal returns a draw from N(mean, stddev).
func (s *Sampler) Normal(mean, stddev float64) float64 {
	return s.rng.NormFloat64()*stddev + mean
}

// IntBetween returns an integer in [lo, hi] inclusive.
func (s *Sampler) IntBetween(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo+1)
}

// Pick returns a uniformly chosen index into a collection of length n.
func (s *Sampler) Pick(n int) int { return s.rng.Intn(n) }

// WeightedIndex chooses an index by weighted categorical draw.
// A degenerate weight vector (all zero or negative) falls back to uniform.
func (s *Sampler) WeightedIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return s.rng.Intn(len(weights))
	}

	target := s.rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		if target < cum {
			return i
		}
	}
	return len(weights) - 1
}

// =============================================================================
// CALENDAR SAMPLING
// =============================================================================

// BiasedDate picks a target weekday by weighted draw (index 0 = Monday),
// then walks backward day-by-day from anchor until that weekday is hit.
// The result is always <= anchor and lands on the sampled weekday.
func (s *Sampler) BiasedDate(anchor time.Time, weekdayWeights [7]float64) time.Time {
	target := s.WeightedIndex(weekdayWeights[:])

	d := anchor
	for mondayIndexed(d.Weekday()) != target {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// mondayIndexed converts Go's Sunday-first weekday to a Monday=0 index,
// matching the weight vector layout.
func mondayIndexed(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// BiasedTimeOfDay places a timestamp on the given date using the
// multi-peak intraday model described in the file header.
func (s *Sampler) BiasedTimeOfDay(date time.Time, peakHours []int, hourWeights []float64) time.Time {
	var peak int
	if len(hourWeights) == len(peakHours) && len(hourWeights) > 0 {
		peak = peakHours[s.WeightedIndex(hourWeights)]
	} else {
		peak = peakHours[s.Pick(len(peakHours))]
	}

	stddev := 60.0
	if peak < 12 {
		stddev = 45.0
	}

	minutes := s.Normal(float64(peak)*60, stddev)
	if minutes < 6*60 {
		minutes = 6 * 60
	}
	if minutes > 22*60 {
		minutes = 22 * 60
	}

	hour := int(minutes) / 60
	minute := int(minutes) % 60
	second := s.IntBetween(0, 59)

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, second, 0, date.Location())
}

package engine

import (
	"time"

	"github.com/rustyeddy/clo/scenario"
)

// Schedule maps period indices to payment dates. Period 0 is the as-of
// date; period k falls k payment intervals later. Dates are always derived
// from the as-of date so month-end clamping never drifts.
type Schedule struct {
	AsOf      time.Time
	Frequency scenario.Frequency
	Last      int // first period on or after legal maturity
}

func NewSchedule(asOf, legalMaturity time.Time, f scenario.Frequency) Schedule {
	s := Schedule{AsOf: asOf, Frequency: f}
	s.Last = s.PeriodOf(legalMaturity)
	return s
}

// Date returns the payment date of period k.
func (s Schedule) Date(k int) time.Time {
	return scenario.AddMonths(s.AsOf, k*s.Frequency.Months())
}

// PeriodOf returns the first period k >= 1 whose date is on or after t.
// It may be beyond Last.
func (s Schedule) PeriodOf(t time.Time) int {
	if !t.After(s.AsOf) {
		return 1
	}
	step := s.Frequency.Months()
	months := (t.Year()-s.AsOf.Year())*12 + int(t.Month()) - int(s.AsOf.Month())

	k := max(1, months/step)
	for k > 1 && !s.Date(k-1).Before(t) {
		k--
	}
	for s.Date(k).Before(t) {
		k++
	}
	return k
}

// Periods converts a number of months to whole periods, rounding up.
func (s Schedule) Periods(months int) int {
	step := s.Frequency.Months()
	return (months + step - 1) / step
}

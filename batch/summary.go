package batch

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the equity IRRs of a sweep. The statistics cover
// defined IRRs only and are zero when there are none.
type Summary struct {
	Runs      int
	Succeeded int
	Failed    int
	Undefined int // simulated, but the IRR has no solution

	Mean   float64
	Median float64
	Min    float64
	Max    float64
	StdDev float64
}

// IRRs returns the defined equity IRRs of the outcomes in order.
func IRRs(outcomes []Outcome) []float64 {
	var out []float64
	for _, o := range outcomes {
		if o.OK() && o.Result.IRR.Defined() {
			out = append(out, o.Result.IRR.Rate)
		}
	}
	return out
}

func Summarize(outcomes []Outcome) Summary {
	s := Summary{Runs: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case !o.OK():
			s.Failed++
		case !o.Result.IRR.Defined():
			s.Succeeded++
			s.Undefined++
		default:
			s.Succeeded++
		}
	}

	irrs := IRRs(outcomes)
	if len(irrs) == 0 {
		return s
	}
	sort.Float64s(irrs)

	s.Mean = stat.Mean(irrs, nil)
	s.Median = median(irrs)
	s.Min = floats.Min(irrs)
	s.Max = floats.Max(irrs)
	if len(irrs) > 1 {
		s.StdDev = stat.StdDev(irrs, nil)
	}
	return s
}

// median of sorted values; the two middle values are averaged when the
// count is even.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

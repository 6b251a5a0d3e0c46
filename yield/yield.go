// Package yield solves for the internal rate of return of a dated
// cashflow stream.
package yield

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrEmptyCashflows = errors.New("no cashflows")
	ErrNoSignChange   = errors.New("cashflows do not change sign")
	ErrNotConverged   = errors.New("root search did not converge")
)

// ConvergenceError reports why an IRR could not be found.
type ConvergenceError struct {
	Reason     error
	Iterations int
}

func (e *ConvergenceError) Error() string {
	if e.Iterations > 0 {
		return fmt.Sprintf("irr undefined: %v after %d iterations", e.Reason, e.Iterations)
	}
	return fmt.Sprintf("irr undefined: %v", e.Reason)
}

func (e *ConvergenceError) Unwrap() error { return e.Reason }

// Flow is a single dated cash amount. Outflows are negative.
type Flow struct {
	Date   time.Time
	Amount float64
}

// IRR is the solver outcome. When Err is non-nil the rate is undefined and
// Rate must not be used.
type IRR struct {
	Rate       float64 // annualized
	Iterations int
	Err        error
}

func (r IRR) Defined() bool { return r.Err == nil }

func (r IRR) String() string {
	if !r.Defined() {
		return "undefined"
	}
	return fmt.Sprintf("%.4f%%", r.Rate*100)
}

// Search domain and budget.
const (
	MinRate = -0.99
	MaxRate = 10.0

	scanPoints    = 400
	maxIterations = 200
	relTolerance  = 1e-10
)

// NPV discounts flows at an annual rate, measuring time from the earliest flow.
func NPV(flows []Flow, rate float64, dc DayCount) float64 {
	if len(flows) == 0 {
		return 0
	}
	times := yearFractions(flows, dc)
	v, _ := npvLog(flows, times, math.Log1p(rate))
	return v
}

// Solve finds the annualized rate r at which the NPV of flows is zero.
//
// The search runs in x = ln(1+r) over [ln(1+MinRate), ln(1+MaxRate)]. A
// uniform scan locates the lowest-rate sign change, then a Newton iteration
// refines it, falling back to bisection whenever a step leaves the bracket.
func Solve(flows []Flow, dc DayCount) IRR {
	if len(flows) == 0 {
		return undefined(ErrEmptyCashflows, 0)
	}

	var pos, neg bool
	var scale float64
	for _, f := range flows {
		switch {
		case f.Amount > 0:
			pos = true
		case f.Amount < 0:
			neg = true
		}
		scale += math.Abs(f.Amount)
	}
	if !pos || !neg {
		return undefined(ErrNoSignChange, 0)
	}
	tol := relTolerance * scale

	times := yearFractions(flows, dc)
	npv := func(x float64) (float64, float64) { return npvLog(flows, times, x) }

	lo, hi, ok := bracket(npv, math.Log1p(MinRate), math.Log1p(MaxRate))
	if !ok {
		return undefined(ErrNotConverged, 0)
	}

	flo, _ := npv(lo)
	if flo == 0 {
		return IRR{Rate: math.Expm1(lo)}
	}

	x := (lo + hi) / 2
	for i := 1; i <= maxIterations; i++ {
		fx, dfx := npv(x)
		if math.Abs(fx) <= tol || hi-lo < 1e-15 {
			return IRR{Rate: math.Expm1(x), Iterations: i}
		}

		if (fx < 0) == (flo < 0) {
			lo, flo = x, fx
		} else {
			hi = x
		}

		next := x - fx/dfx
		if dfx == 0 || math.IsNaN(next) || next <= lo || next >= hi {
			next = (lo + hi) / 2
		}
		x = next
	}
	return undefined(ErrNotConverged, maxIterations)
}

// PeriodicRate converts an annual rate to the equivalent rate per period
// for the given number of periods per year.
func PeriodicRate(annual float64, periodsPerYear int) float64 {
	return math.Pow(1+annual, 1/float64(periodsPerYear)) - 1
}

func undefined(reason error, iterations int) IRR {
	return IRR{Err: &ConvergenceError{Reason: reason, Iterations: iterations}}
}

// bracket scans [a, b] in ascending order and returns the first interval
// whose endpoints straddle (or touch) a root.
func bracket(npv func(float64) (float64, float64), a, b float64) (float64, float64, bool) {
	step := (b - a) / scanPoints
	prevX := a
	prevF, _ := npv(a)
	if prevF == 0 {
		return a, a + step, true
	}
	for i := 1; i <= scanPoints; i++ {
		x := a + float64(i)*step
		fx, _ := npv(x)
		if math.IsNaN(fx) || math.IsInf(fx, 0) {
			prevX, prevF = x, fx
			continue
		}
		if fx == 0 || (!math.IsNaN(prevF) && !math.IsInf(prevF, 0) && (fx < 0) != (prevF < 0)) {
			return prevX, x, true
		}
		prevX, prevF = x, fx
	}
	return 0, 0, false
}

// npvLog returns NPV and dNPV/dx where the discount factor is exp(-x t).
func npvLog(flows []Flow, times []float64, x float64) (float64, float64) {
	var v, dv float64
	for i, f := range flows {
		d := math.Exp(-x * times[i])
		v += f.Amount * d
		dv -= times[i] * f.Amount * d
	}
	return v, dv
}

func yearFractions(flows []Flow, dc DayCount) []float64 {
	start := flows[0].Date
	for _, f := range flows[1:] {
		if f.Date.Before(start) {
			start = f.Date
		}
	}
	out := make([]float64, len(flows))
	for i, f := range flows {
		out[i] = dc.YearFraction(start, f.Date)
	}
	return out
}

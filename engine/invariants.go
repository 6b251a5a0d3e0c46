package engine

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Invariant names reported in InvariantViolation.
const (
	InvCollections           = "collections are non-negative"
	InvCollateralNonNegative = "collateral balance is non-negative"
	InvCollateralRoll        = "collateral balance rolls forward"
	InvPrincipalConservation = "principal is conserved"
	InvInterestConservation  = "interest is conserved"
	InvTrancheBalance        = "tranche closing equals opening less principal"
	InvInterestCap           = "interest paid does not exceed interest due"
	InvSeniority             = "tranches are paid in rank order"
)

// checker validates one period against every invariant. Tolerance scales
// with the initial collateral balance.
type checker struct {
	tol   float64
	names []string
}

func newChecker(initialCollateral float64, names []string) checker {
	return checker{tol: 1e-6 * math.Max(1, initialCollateral), names: names}
}

func bad(x float64) bool { return math.IsNaN(x) || math.IsInf(x, 0) }

func (c checker) collections(cf CollateralCashflow) error {
	vals := []float64{cf.Scheduled, cf.Prepaid, cf.Defaulted, cf.Recovered, cf.Interest, cf.Liquidation}
	for _, v := range vals {
		if bad(v) || v < 0 {
			return violation(InvCollections, cf, "", nil)
		}
	}
	return nil
}

func (c checker) collateral(cf CollateralCashflow) error {
	if bad(cf.EndingBalance) || cf.EndingBalance < -c.tol {
		return violation(InvCollateralNonNegative, cf, "", nil)
	}
	want := cf.OpeningBalance - cf.Scheduled - cf.Prepaid - cf.Defaulted + cf.Reinvested - cf.Liquidated
	if math.Abs(want-cf.EndingBalance) > c.tol {
		return violation(InvCollateralRoll, cf, "", map[string]float64{"expected_ending": want})
	}
	return nil
}

func (c checker) waterfall(cf CollateralCashflow, states []TrancheState, a Allocation) error {
	var principal, interest []float64
	for _, s := range states {
		principal = append(principal, s.PrincipalPaid)
		interest = append(interest, s.InterestPaid)
	}

	sources := floats.Sum([]float64{cf.Scheduled, cf.Prepaid, cf.Recovered, cf.Liquidation})
	uses := floats.Sum(principal) + cf.Reinvested + a.CatchUp + a.PrincipalResidual
	if math.Abs(sources-uses) > c.tol {
		return violation(InvPrincipalConservation, cf, "", allocValues(a, map[string]float64{
			"principal_sources": sources,
			"principal_uses":    uses,
		}))
	}

	spent := floats.Sum(interest) - a.CatchUp + a.Expense + a.InterestResidual
	if math.Abs(cf.Interest-spent) > c.tol {
		return violation(InvInterestConservation, cf, "", allocValues(a, map[string]float64{
			"interest_spent": spent,
		}))
	}

	for i, s := range states {
		if bad(s.Closing) || s.Closing < -c.tol || math.Abs(s.Opening-s.PrincipalPaid-s.Closing) > c.tol || s.Closing > s.Opening+c.tol {
			return violation(InvTrancheBalance, cf, c.names[i], stateValues(s))
		}
		if s.InterestPaid > s.Due()+c.tol {
			return violation(InvInterestCap, cf, c.names[i], stateValues(s))
		}
	}

	// A junior payment in a step requires every senior to be satisfied in
	// that step.
	for j := 1; j < len(states); j++ {
		junior := states[j]
		for i := 0; i < j; i++ {
			senior := states[i]
			if junior.PrincipalPaid > c.tol && senior.Closing > c.tol {
				return violation(InvSeniority, cf, c.names[j], stateValues(senior))
			}
			if junior.InterestPaid > c.tol && senior.Due()-senior.InterestPaid > c.tol {
				return violation(InvSeniority, cf, c.names[j], stateValues(senior))
			}
		}
	}
	if last := len(states) - 1; last > 0 && states[last].Residual > c.tol {
		for i := 0; i < last; i++ {
			s := states[i]
			if s.Due()-s.InterestPaid > c.tol || (a.PrincipalResidual > c.tol && s.Closing > c.tol) {
				return violation(InvSeniority, cf, c.names[last], stateValues(s))
			}
		}
	}
	return nil
}

func violation(name string, cf CollateralCashflow, tranche string, extra map[string]float64) *InvariantViolation {
	v := map[string]float64{
		"opening_balance": cf.OpeningBalance,
		"scheduled":       cf.Scheduled,
		"prepaid":         cf.Prepaid,
		"defaulted":       cf.Defaulted,
		"recovered":       cf.Recovered,
		"interest":        cf.Interest,
		"reinvested":      cf.Reinvested,
		"liquidated":      cf.Liquidated,
		"liquidation":     cf.Liquidation,
		"ending_balance":  cf.EndingBalance,
	}
	for k, x := range extra {
		v[k] = x
	}
	return &InvariantViolation{
		Invariant: name,
		Period:    cf.Period,
		Date:      cf.Date,
		Tranche:   tranche,
		Values:    v,
	}
}

func stateValues(s TrancheState) map[string]float64 {
	return map[string]float64{
		"tranche_opening":          s.Opening,
		"tranche_accrued":          s.Accrued,
		"tranche_deferred_in":      s.DeferredIn,
		"tranche_interest_paid":    s.InterestPaid,
		"tranche_principal_paid":   s.PrincipalPaid,
		"tranche_liquidation_paid": s.LiquidationPaid,
		"tranche_closing":          s.Closing,
	}
}

func allocValues(a Allocation, extra map[string]float64) map[string]float64 {
	v := map[string]float64{
		"interest_available":  a.InterestAvailable,
		"expense":             a.Expense,
		"principal_available": a.PrincipalAvailable,
		"interest_residual":   a.InterestResidual,
		"catch_up":            a.CatchUp,
		"principal_residual":  a.PrincipalResidual,
	}
	for k, x := range extra {
		v[k] = x
	}
	return v
}

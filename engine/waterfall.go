package engine

import (
	"time"

	"github.com/rustyeddy/clo/deal"
	"github.com/rustyeddy/clo/scenario"
)

// Collections is the cash the waterfall distributes in one period.
type Collections struct {
	Period int
	Date   time.Time

	Interest    float64
	Principal   float64 // pass-through principal plus recovery
	Liquidation float64 // termination sale proceeds

	CollateralBalance float64 // opening performing balance, the expense base
}

// Waterfall allocates collections across tranches in strict rank order.
// The last tranche is equity: it accrues no coupon, takes principal only
// after every rated tranche is retired and keeps whatever remains.
type Waterfall struct {
	Tranches     []deal.Tranche
	Fraction     float64
	ExpenseRate  float64
	ExpenseFixed float64
}

func NewWaterfall(tranches []deal.Tranche, a scenario.Assumptions) Waterfall {
	return Waterfall{
		Tranches:     tranches,
		Fraction:     a.Frequency.Fraction(),
		ExpenseRate:  a.SeniorExpenseRate,
		ExpenseFixed: a.SeniorExpenseFixed,
	}
}

// cash draws from ordinary principal first, then termination proceeds.
type cash struct {
	regular     float64
	liquidation float64
}

func (c *cash) total() float64 { return c.regular + c.liquidation }

// take removes up to want, split by source.
func (c *cash) take(want float64) (regular, liquidation float64) {
	if want <= 0 {
		return 0, 0
	}
	regular = min(want, c.regular)
	c.regular -= regular
	liquidation = min(want-regular, c.liquidation)
	c.liquidation -= liquidation
	return regular, liquidation
}

// Allocate runs one period of the waterfall against the prior closing row.
//
// Steps: accrue coupon on opening balances; pay the senior expense out of
// interest; pay rated interest by rank, deferring any shortfall; pay rated
// principal by rank from ordinary principal, then from termination
// proceeds; use leftover principal cash for unpaid rated interest by rank;
// pay down equity; hand the rest to equity as residual.
func (w Waterfall) Allocate(prev []TrancheState, c Collections) ([]TrancheState, Allocation) {
	n := len(w.Tranches)
	equity := n - 1
	states := make([]TrancheState, n)
	for i, tr := range w.Tranches {
		open := prev[i].Closing
		s := TrancheState{
			Period:     c.Period,
			Date:       c.Date,
			Opening:    open,
			DeferredIn: prev[i].Deferred,
		}
		if i != equity {
			s.Accrued = open * tr.Spread * w.Fraction
		}
		states[i] = s
	}

	alloc := Allocation{
		Period:             c.Period,
		Date:               c.Date,
		InterestAvailable:  c.Interest,
		PrincipalAvailable: c.Principal,
		Liquidation:        c.Liquidation,
	}

	// Senior expense, capped at interest collected.
	expense := (w.ExpenseRate*c.CollateralBalance + w.ExpenseFixed) * w.Fraction
	alloc.Expense = min(expense, c.Interest)
	interest := c.Interest - alloc.Expense

	unpaid := make([]float64, n)
	for i := 0; i < equity; i++ {
		due := states[i].Due()
		pay := min(interest, due)
		states[i].InterestPaid = pay
		unpaid[i] = due - pay
		interest -= pay
	}
	alloc.InterestResidual = interest

	principal := cash{regular: c.Principal, liquidation: c.Liquidation}
	remaining := make([]float64, n)
	for i := range states {
		remaining[i] = states[i].Opening
	}

	for i := 0; i < equity; i++ {
		got := min(principal.regular, remaining[i])
		principal.regular -= got
		remaining[i] -= got
		states[i].PrincipalPaid += got
	}
	for i := 0; i < equity; i++ {
		got := min(principal.liquidation, remaining[i])
		principal.liquidation -= got
		remaining[i] -= got
		states[i].PrincipalPaid += got
		states[i].LiquidationPaid += got
	}

	for i := 0; i < equity; i++ {
		r, l := principal.take(unpaid[i])
		unpaid[i] -= r
		unpaid[i] -= l
		states[i].InterestPaid += r + l
		alloc.CatchUp += r + l
	}

	r, l := principal.take(remaining[equity])
	remaining[equity] -= r
	remaining[equity] -= l
	states[equity].PrincipalPaid += r + l
	states[equity].LiquidationPaid += l

	alloc.PrincipalResidual = principal.total()
	states[equity].Residual = alloc.InterestResidual + alloc.PrincipalResidual

	for i := range states {
		states[i].Deferred = unpaid[i]
		states[i].Closing = remaining[i]
	}
	return states, alloc
}

// Package engine projects collateral and tranche cashflows for a single
// deal under one set of assumptions. A run is a pure function of its
// inputs: it holds no shared state, performs no I/O and is safe to call
// from many goroutines at once.
package engine

import (
	"fmt"
	"time"

	"github.com/rustyeddy/clo/deal"
	"github.com/rustyeddy/clo/scenario"
	"github.com/rustyeddy/clo/yield"
)

// Analytics are deal-level figures recorded at the close of each period.
type Analytics struct {
	Period            int
	Date              time.Time
	CollateralBalance float64
	Spread            float64 // weighted average spread of the performing pool
	RatedDebt         float64 // outstanding rated principal
	EquityParNAV      float64 // collateral less rated debt
}

// Result is the complete output of one run.
type Result struct {
	Deal        deal.Deal
	Assumptions scenario.Assumptions

	Par        float64 // collateral balance at as-of
	RatedDebt  float64 // original notional senior to equity
	LoanSpread float64 // balance-weighted loan spread

	Collateral  []CollateralCashflow
	Ledger      *Ledger
	Analytics   []Analytics
	Termination Termination

	EquityFlows []yield.Flow
	IRR         yield.IRR
}

// Simulate resolves overrides for one deal in the loaded tables and runs it.
// Data integrity, lookup and assumption errors are returned before any
// projection starts. An undefined IRR is reported in Result.IRR, not as an
// error.
func Simulate(ticker string, tables deal.Tables, o scenario.Overrides) (*Result, error) {
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	set, err := tables.Lookup(ticker)
	if err != nil {
		return nil, err
	}
	a, err := scenario.Resolve(set.Deal, o)
	if err != nil {
		return nil, err
	}
	return Run(set, a)
}

// Run projects a validated deal period by period until call, legal
// maturity or exhaustion of the collateral.
func Run(set deal.Set, a scenario.Assumptions) (*Result, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if err := a.Validate(set.Deal); err != nil {
		return nil, err
	}

	sched := NewSchedule(a.AsOf, set.Deal.LegalMaturity, a.Frequency)
	pool := NewPool(set.Loans, sched, a)
	ledger := NewLedger(set.Tranches, a.AsOf)
	wf := NewWaterfall(set.Tranches, a)
	term := newTerminator(a, sched)
	reinvestEnd := a.ReinvestmentEnd(set.Deal)
	termPeriods := sched.Periods(a.ReinvestmentTermMonths)
	liqPrice := a.Liquidation.Price(set.Deal)

	names := make([]string, len(set.Tranches))
	for i, tr := range set.Tranches {
		names[i] = tr.Name
	}

	res := &Result{
		Deal:        set.Deal,
		Assumptions: a,
		Ledger:      ledger,
		Par:         set.CollateralBalance(),
		RatedDebt:   set.RatedDebt(),
		LoanSpread:  set.LoanSpread(),
	}

	if !pool.Next() {
		return nil, fmt.Errorf("engine: pool produced no opening period")
	}
	opening := pool.Cashflow()
	res.Collateral = append(res.Collateral, opening)
	res.Analytics = append(res.Analytics, analytics(opening, ledger, 0))
	check := newChecker(opening.OpeningBalance, names)

	if pool.Exhausted() {
		res.Termination = Termination{Kind: CollateralExhausted, Period: 0, Date: a.AsOf}
	}

	for res.Termination.Kind == Running && pool.Next() {
		cf := pool.Cashflow()
		if err := check.collections(cf); err != nil {
			return nil, err
		}

		end := term.check(cf.Period, cf.Date)
		principal := cf.Recovered
		var proceeds float64
		if end.Liquidates() {
			// Recovery still outstanding is collected with the sale.
			principal += pool.Pending()
			proceeds = pool.Liquidate(liqPrice)
			principal += cf.PrincipalProceeds()
		} else {
			split := SplitProceeds(cf.PrincipalProceeds(), cf.Date, reinvestEnd)
			pool.Reinvest(split.Reinvested, a.ReinvestmentSpread, termPeriods)
			principal += split.PassThrough
		}
		cf = pool.Cashflow()

		if err := check.collateral(cf); err != nil {
			return nil, err
		}

		states, alloc := wf.Allocate(ledger.Last(), Collections{
			Period:            cf.Period,
			Date:              cf.Date,
			Interest:          cf.Interest,
			Principal:         principal,
			Liquidation:       proceeds,
			CollateralBalance: cf.OpeningBalance,
		})
		if err := check.waterfall(cf, states, alloc); err != nil {
			return nil, err
		}
		if err := ledger.Append(states, alloc); err != nil {
			return nil, err
		}

		res.Collateral = append(res.Collateral, cf)
		res.Analytics = append(res.Analytics, analytics(cf, ledger, cf.Period))

		if end.Liquidates() {
			res.Termination = end
		} else if ex := term.exhausted(pool, cf.Period, cf.Date); ex.Kind != Running {
			res.Termination = ex
		}
	}

	res.EquityFlows = equityFlows(set, a, ledger)
	res.IRR = yield.Solve(res.EquityFlows, a.DayCount)
	return res, nil
}

func analytics(cf CollateralCashflow, l *Ledger, k int) Analytics {
	rated := l.RatedOutstanding(k)
	return Analytics{
		Period:            cf.Period,
		Date:              cf.Date,
		CollateralBalance: cf.EndingBalance,
		Spread:            cf.Spread,
		RatedDebt:         rated,
		EquityParNAV:      cf.EndingBalance - rated,
	}
}

// equityFlows is the purchase at the as-of date followed by every
// equity distribution.
func equityFlows(set deal.Set, a scenario.Assumptions, l *Ledger) []yield.Flow {
	hist := l.Equity()
	flows := make([]yield.Flow, 0, len(hist))
	flows = append(flows, yield.Flow{Date: a.AsOf, Amount: -a.Price * set.Equity().Notional})
	for _, s := range hist[1:] {
		flows = append(flows, yield.Flow{Date: s.Date, Amount: s.Cashflow()})
	}
	return flows
}

package engine

import (
	"sort"
	"time"

	"github.com/rustyeddy/clo/deal"
	"github.com/rustyeddy/clo/scenario"
)

// CollateralCashflow is the pool's activity for one period.
type CollateralCashflow struct {
	Period int
	Date   time.Time

	OpeningBalance float64
	Scheduled      float64
	Prepaid        float64
	Defaulted      float64
	Recovered      float64 // recovery cash received this period
	Interest       float64

	Reinvested  float64
	Liquidated  float64 // par sold on termination
	Liquidation float64 // proceeds of that sale

	EndingBalance float64
	Spread        float64 // weighted average spread of the opening pool
}

// PrincipalProceeds is scheduled plus prepaid principal, the amount eligible
// for reinvestment.
func (c CollateralCashflow) PrincipalProceeds() float64 {
	return c.Scheduled + c.Prepaid
}

// bucket aggregates every loan that matures in the same period.
type bucket struct {
	maturity   int
	balance    float64
	spread     float64
	amort      deal.Amortization
	reinvested bool
}

// Pool is the portfolio amortization model. It is an iterator over
// periods: each call to Next runs off one period and exposes the result
// through Cashflow. Reinvest and Liquidate adjust the current period
// before the next call to Next.
type Pool struct {
	sched        Schedule
	defaultRate  float64 // per period
	prepayRate   float64 // per period
	recoveryRate float64
	recoveryLag  int
	fraction     float64

	// no defaults or prepayments in periods ending on or before these dates
	cdrLockoutEnd time.Time
	cprLockoutEnd time.Time

	initial []bucket
	buckets []bucket
	pending float64 // recovery cash due next period
	period  int
	started bool
	done    bool
	cf      CollateralCashflow
}

// NewPool buckets loans by maturity period. Original collateral earns the
// assumed weighted average spread; loan-level spreads only feed deal
// analytics.
func NewPool(loans []deal.Loan, sched Schedule, a scenario.Assumptions) *Pool {
	type key struct {
		maturity int
		amort    deal.Amortization
	}
	agg := map[key]float64{}
	for _, l := range loans {
		if l.Balance == 0 {
			continue
		}
		k := key{maturity: sched.PeriodOf(l.Maturity), amort: l.Amortization}
		agg[k] += l.Balance
	}

	initial := make([]bucket, 0, len(agg))
	for k, bal := range agg {
		initial = append(initial, bucket{
			maturity: k.maturity,
			balance:  bal,
			spread:   a.WAS,
			amort:    k.amort,
		})
	}
	sort.Slice(initial, func(i, j int) bool {
		if initial[i].maturity != initial[j].maturity {
			return initial[i].maturity < initial[j].maturity
		}
		return initial[i].amort < initial[j].amort
	})

	p := &Pool{
		sched:        sched,
		defaultRate:  a.Frequency.PeriodRate(a.CDR),
		prepayRate:   a.Frequency.PeriodRate(a.CPR),
		recoveryRate: a.RecoveryRate,
		recoveryLag:  a.RecoveryLag,
		fraction:     a.Frequency.Fraction(),
		initial:      initial,

		cdrLockoutEnd: lockoutEnd(a.AsOf, a.CDRLockoutMonths),
		cprLockoutEnd: lockoutEnd(a.AsOf, a.CPRLockoutMonths),
	}
	p.Reset()
	return p
}

func lockoutEnd(asOf time.Time, months int) time.Time {
	if months <= 0 {
		return time.Time{}
	}
	return scenario.AddMonths(asOf, months)
}

// Reset rewinds the pool to period 0.
func (p *Pool) Reset() {
	p.buckets = append(p.buckets[:0], p.initial...)
	p.pending = 0
	p.period = 0
	p.started = false
	p.done = false
	p.cf = CollateralCashflow{}
}

// Next advances one period. The first call yields period 0, the opening
// position. It returns false once the pool is liquidated, legal maturity
// has passed, or the balance is gone with no recovery outstanding.
func (p *Pool) Next() bool {
	if p.done {
		return false
	}
	if !p.started {
		p.started = true
		bal := p.Balance()
		p.cf = CollateralCashflow{
			Period:         0,
			Date:           p.sched.Date(0),
			OpeningBalance: bal,
			EndingBalance:  bal,
			Spread:         p.Spread(),
		}
		return true
	}
	if p.period >= p.sched.Last || p.Exhausted() {
		p.done = true
		return false
	}

	p.period++
	p.runoff()
	return true
}

func (p *Pool) runoff() {
	k := p.period
	cf := CollateralCashflow{
		Period:    k,
		Date:      p.sched.Date(k),
		Spread:    p.Spread(),
		Recovered: p.pending,
	}
	p.pending = 0

	defaultRate, prepayRate := p.defaultRate, p.prepayRate
	if !cf.Date.After(p.cdrLockoutEnd) {
		defaultRate = 0
	}
	if !cf.Date.After(p.cprLockoutEnd) {
		prepayRate = 0
	}

	var recovered float64
	kept := p.buckets[:0]
	for _, b := range p.buckets {
		open := b.balance
		cf.OpeningBalance += open
		cf.Interest += open * b.spread * p.fraction

		def := open * defaultRate
		prep := (open - def) * prepayRate
		rem := open - def - prep

		var sched float64
		switch {
		case k >= b.maturity:
			sched = rem
		case b.amort == deal.Linear:
			sched = rem / float64(b.maturity-k+1)
		}

		cf.Defaulted += def
		cf.Prepaid += prep
		cf.Scheduled += sched
		recovered += def * p.recoveryRate

		b.balance = rem - sched
		if b.balance > 0 {
			kept = append(kept, b)
		}
	}
	p.buckets = kept

	if p.recoveryLag == 0 {
		cf.Recovered += recovered
	} else {
		p.pending = recovered
	}

	cf.EndingBalance = p.Balance()
	p.cf = cf
}

// Cashflow returns the current period's record.
func (p *Pool) Cashflow() CollateralCashflow { return p.cf }

// Period returns the current period index.
func (p *Pool) Period() int { return p.period }

// Reinvest buys a synthetic bullet asset earning spread and maturing
// termPeriods after the current period, capped at legal maturity.
func (p *Pool) Reinvest(amount, spread float64, termPeriods int) {
	if amount <= 0 {
		return
	}
	maturity := min(p.period+termPeriods, p.sched.Last)
	p.buckets = append(p.buckets, bucket{
		maturity:   maturity,
		balance:    amount,
		spread:     spread,
		amort:      deal.Bullet,
		reinvested: true,
	})
	p.cf.Reinvested += amount
	p.cf.EndingBalance += amount
}

// Liquidate sells the remaining balance at price (fraction of par) and
// collects any recovery still outstanding. The pool is finished afterwards.
// It returns the sale proceeds.
func (p *Pool) Liquidate(price float64) float64 {
	par := p.Balance()
	proceeds := par * price

	p.cf.Liquidated = par
	p.cf.Liquidation = proceeds
	p.cf.Recovered += p.pending
	p.cf.EndingBalance -= par

	p.pending = 0
	p.buckets = p.buckets[:0]
	p.done = true
	return proceeds
}

// Balance is the current performing balance.
func (p *Pool) Balance() float64 {
	var total float64
	for _, b := range p.buckets {
		total += b.balance
	}
	return total
}

// Pending is recovery cash due in the next period.
func (p *Pool) Pending() float64 { return p.pending }

// Exhausted reports whether nothing further can be collected.
func (p *Pool) Exhausted() bool {
	return p.Balance() == 0 && p.pending == 0
}

// Spread is the balance-weighted spread of the performing pool.
func (p *Pool) Spread() float64 {
	var total, weighted float64
	for _, b := range p.buckets {
		total += b.balance
		weighted += b.balance * b.spread
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// ScheduledBalances is the amortization-only balance curve: the performing
// balance at the end of periods 0..Last with no defaults, prepayments or
// reinvestment.
func ScheduledBalances(loans []deal.Loan, sched Schedule) []float64 {
	out := make([]float64, sched.Last+1)
	for _, l := range loans {
		m := sched.PeriodOf(l.Maturity)
		for k := 0; k <= sched.Last && k < m; k++ {
			if l.Amortization == deal.Linear {
				out[k] += l.Balance * float64(m-k) / float64(m)
			} else {
				out[k] += l.Balance
			}
		}
	}
	return out
}

package engine

import (
	"time"

	"github.com/rustyeddy/clo/scenario"
)

// TerminationKind is the reason a projection stopped.
type TerminationKind int

const (
	Running TerminationKind = iota
	Called
	Matured
	CollateralExhausted
)

func (k TerminationKind) String() string {
	switch k {
	case Called:
		return "call"
	case Matured:
		return "legal maturity"
	case CollateralExhausted:
		return "collateral exhausted"
	default:
		return "running"
	}
}

// Termination records when and why the deal ended.
type Termination struct {
	Kind   TerminationKind
	Period int
	Date   time.Time
}

// Liquidates reports whether the termination forced a sale of the pool.
func (t Termination) Liquidates() bool {
	return t.Kind == Called || t.Kind == Matured
}

// terminator decides at each period boundary whether the deal is forced
// to liquidate. Call takes precedence over legal maturity.
type terminator struct {
	callDate time.Time
	last     int
}

func newTerminator(a scenario.Assumptions, sched Schedule) terminator {
	return terminator{callDate: a.CallDate, last: sched.Last}
}

// check is evaluated before the period's waterfall runs.
func (t terminator) check(period int, date time.Time) Termination {
	switch {
	case !t.callDate.IsZero() && !date.Before(t.callDate):
		return Termination{Kind: Called, Period: period, Date: date}
	case period >= t.last:
		return Termination{Kind: Matured, Period: period, Date: date}
	}
	return Termination{Kind: Running}
}

// exhausted is evaluated after the waterfall: a pool with nothing left to
// collect ends the deal whatever the tranches still owe.
func (t terminator) exhausted(p *Pool, period int, date time.Time) Termination {
	if p.Exhausted() {
		return Termination{Kind: CollateralExhausted, Period: period, Date: date}
	}
	return Termination{Kind: Running}
}

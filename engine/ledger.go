package engine

import (
	"fmt"
	"time"

	"github.com/rustyeddy/clo/deal"
)

// TrancheState is one tranche's position and payments for one period.
type TrancheState struct {
	Period int
	Date   time.Time

	Opening    float64
	Accrued    float64 // this period's interest on the opening balance
	DeferredIn float64 // unpaid interest carried from earlier periods

	InterestPaid    float64
	Deferred        float64 // unpaid interest carried forward
	PrincipalPaid   float64
	LiquidationPaid float64 // portion of PrincipalPaid funded by the termination sale
	Residual        float64 // equity only: collections left after every other claim

	Closing float64
}

// Due is the interest owed this period.
func (s TrancheState) Due() float64 { return s.Accrued + s.DeferredIn }

// Cashflow is the total cash the tranche received this period.
func (s TrancheState) Cashflow() float64 {
	return s.InterestPaid + s.PrincipalPaid + s.Residual
}

// Allocation records how one period's collections were spent.
type Allocation struct {
	Period int
	Date   time.Time

	InterestAvailable  float64
	Expense            float64
	PrincipalAvailable float64 // pass-through principal plus recovery
	Liquidation        float64

	InterestResidual  float64 // interest left after rated interest, to equity
	CatchUp           float64 // principal cash used to pay unpaid rated interest
	PrincipalResidual float64 // principal left after every balance, to equity
}

// Ledger is the append-only history of tranche states. Row 0 holds the
// original notionals.
type Ledger struct {
	Tranches []deal.Tranche

	rows   [][]TrancheState
	allocs []Allocation
}

func NewLedger(tranches []deal.Tranche, asOf time.Time) *Ledger {
	row := make([]TrancheState, len(tranches))
	for i, tr := range tranches {
		row[i] = TrancheState{
			Period:  0,
			Date:    asOf,
			Opening: tr.Notional,
			Closing: tr.Notional,
		}
	}
	return &Ledger{
		Tranches: tranches,
		rows:     [][]TrancheState{row},
		allocs:   []Allocation{{Period: 0, Date: asOf}},
	}
}

// Append closes the next period. Periods must arrive in order.
func (l *Ledger) Append(states []TrancheState, a Allocation) error {
	if len(states) != len(l.Tranches) {
		return fmt.Errorf("ledger: got %d tranche states, want %d", len(states), len(l.Tranches))
	}
	if a.Period != len(l.rows) {
		return fmt.Errorf("ledger: got period %d, want %d", a.Period, len(l.rows))
	}
	row := make([]TrancheState, len(states))
	copy(row, states)
	l.rows = append(l.rows, row)
	l.allocs = append(l.allocs, a)
	return nil
}

// Len is the number of recorded periods including period 0.
func (l *Ledger) Len() int { return len(l.rows) }

// Last returns a copy of the most recent row.
func (l *Ledger) Last() []TrancheState {
	return l.Period(len(l.rows) - 1)
}

// Period returns a copy of the row for period k.
func (l *Ledger) Period(k int) []TrancheState {
	out := make([]TrancheState, len(l.rows[k]))
	copy(out, l.rows[k])
	return out
}

// History returns the states of tranche i across every period.
func (l *Ledger) History(i int) []TrancheState {
	out := make([]TrancheState, len(l.rows))
	for k, row := range l.rows {
		out[k] = row[i]
	}
	return out
}

// Equity is the history of the most junior tranche.
func (l *Ledger) Equity() []TrancheState {
	return l.History(len(l.Tranches) - 1)
}

// Allocation returns the allocation record for period k.
func (l *Ledger) Allocation(k int) Allocation { return l.allocs[k] }

// RatedOutstanding is the closing balance of every rated tranche in period k.
func (l *Ledger) RatedOutstanding(k int) float64 {
	row := l.rows[k]
	var total float64
	for _, s := range row[:len(row)-1] {
		total += s.Closing
	}
	return total
}

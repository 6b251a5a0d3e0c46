// Package journal persists simulation runs: the run header, the collateral
// cashflow table and the tranche ledger.
package journal

import (
	"time"
)

// RunRecord is one simulation: its inputs, how it ended and the equity
// yield. Failed sweep combinations are recorded with Error set.
type RunRecord struct {
	RunID   string
	SweepID string // empty for single runs
	Created time.Time
	Deal    string

	AsOf               time.Time
	Frequency          string
	CDR                float64
	CPR                float64
	RecoveryRate       float64
	WAS                float64
	ReinvestmentSpread float64
	CallDate           time.Time // zero when the deal runs to maturity
	Price              float64
	Liquidation        string
	DayCount           string

	Par        float64 // collateral balance at as-of
	RatedDebt  float64 // original rated notional
	LoanSpread float64 // balance-weighted loan spread

	Termination       string
	TerminationPeriod int
	TerminationDate   time.Time

	IRR        float64
	IRRDefined bool
	IRRError   string

	Error string
}

// CollateralRecord is one period of the pool projection.
type CollateralRecord struct {
	RunID  string
	Period int
	Date   time.Time

	Opening     float64
	Scheduled   float64
	Prepaid     float64
	Defaulted   float64
	Recovered   float64
	Interest    float64
	Reinvested  float64
	Liquidation float64
	Ending      float64

	Spread       float64 // weighted average spread of the opening pool
	RatedDebt    float64 // rated principal outstanding at period end
	EquityParNAV float64 // ending collateral less rated debt
}

// TrancheRecord is one tranche's ledger row for one period.
type TrancheRecord struct {
	RunID  string
	Period int
	Date   time.Time
	Rank   int
	Name   string

	Opening       float64
	Accrued       float64
	InterestPaid  float64
	Deferred      float64
	PrincipalPaid float64
	Residual      float64
	Closing       float64
}

// Cashflow is the cash the tranche received in the period.
func (r TrancheRecord) Cashflow() float64 {
	return r.InterestPaid + r.PrincipalPaid + r.Residual
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordCollateral(CollateralRecord) error
	RecordTranche(TrancheRecord) error
	Close() error
}

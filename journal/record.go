package journal

import (
	"time"

	"github.com/rustyeddy/clo/engine"
	"github.com/rustyeddy/clo/scenario"
)

// Run identifies one journal entry.
type Run struct {
	ID      string
	SweepID string
	Created time.Time
	Deal    string
}

// NewRunRecord builds the header row for a run. A nil result records a
// failed run with only its inputs and err.
func NewRunRecord(run Run, a scenario.Assumptions, res *engine.Result, err error) RunRecord {
	rec := RunRecord{
		RunID:              run.ID,
		SweepID:            run.SweepID,
		Created:            run.Created,
		Deal:               run.Deal,
		AsOf:               a.AsOf,
		Frequency:          a.Frequency.String(),
		CDR:                a.CDR,
		CPR:                a.CPR,
		RecoveryRate:       a.RecoveryRate,
		WAS:                a.WAS,
		ReinvestmentSpread: a.ReinvestmentSpread,
		CallDate:           a.CallDate,
		Price:              a.Price,
		Liquidation:        a.Liquidation.String(),
		DayCount:           a.DayCount.String(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if res == nil {
		return rec
	}

	rec.Deal = res.Deal.Ticker
	rec.Par = res.Par
	rec.RatedDebt = res.RatedDebt
	rec.LoanSpread = res.LoanSpread
	rec.Termination = res.Termination.Kind.String()
	rec.TerminationPeriod = res.Termination.Period
	rec.TerminationDate = res.Termination.Date
	if res.IRR.Defined() {
		rec.IRR, rec.IRRDefined = res.IRR.Rate, true
	} else {
		rec.IRRError = res.IRR.Err.Error()
	}
	return rec
}

// RecordResult writes a completed run: the header, every collateral
// period and every tranche row.
func RecordResult(j Journal, run Run, res *engine.Result) error {
	if err := j.RecordRun(NewRunRecord(run, res.Assumptions, res, nil)); err != nil {
		return err
	}
	for _, c := range CollateralRecords(run.ID, res) {
		if err := j.RecordCollateral(c); err != nil {
			return err
		}
	}
	for _, t := range TrancheRecords(run.ID, res) {
		if err := j.RecordTranche(t); err != nil {
			return err
		}
	}
	return nil
}

// CollateralRecords flattens the pool projection of a result together
// with the deal analytics of each period.
func CollateralRecords(runID string, res *engine.Result) []CollateralRecord {
	out := make([]CollateralRecord, 0, len(res.Collateral))
	for i, cf := range res.Collateral {
		an := res.Analytics[i]
		out = append(out, CollateralRecord{
			RunID:       runID,
			Period:      cf.Period,
			Date:        cf.Date,
			Opening:     cf.OpeningBalance,
			Scheduled:   cf.Scheduled,
			Prepaid:     cf.Prepaid,
			Defaulted:   cf.Defaulted,
			Recovered:   cf.Recovered,
			Interest:    cf.Interest,
			Reinvested:  cf.Reinvested,
			Liquidation: cf.Liquidation,
			Ending:      cf.EndingBalance,

			Spread:       an.Spread,
			RatedDebt:    an.RatedDebt,
			EquityParNAV: an.EquityParNAV,
		})
	}
	return out
}

// TrancheRecords flattens the ledger of a result, period by period in
// rank order.
func TrancheRecords(runID string, res *engine.Result) []TrancheRecord {
	out := make([]TrancheRecord, 0, res.Ledger.Len()*len(res.Ledger.Tranches))
	for k := 0; k < res.Ledger.Len(); k++ {
		for i, s := range res.Ledger.Period(k) {
			tr := res.Ledger.Tranches[i]
			out = append(out, TrancheRecord{
				RunID:         runID,
				Period:        s.Period,
				Date:          s.Date,
				Rank:          tr.Rank,
				Name:          tr.Name,
				Opening:       s.Opening,
				Accrued:       s.Accrued,
				InterestPaid:  s.InterestPaid,
				Deferred:      s.Deferred,
				PrincipalPaid: s.PrincipalPaid,
				Residual:      s.Residual,
				Closing:       s.Closing,
			})
		}
	}
	return out
}

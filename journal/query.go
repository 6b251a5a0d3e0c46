package journal

import (
	"database/sql"
	"fmt"
)

const runColumns = `run_id, sweep_id, created, deal, as_of, frequency, cdr, cpr, recovery_rate, was,
	reinvestment_spread, call_date, price, liquidation, day_count, par, rated_debt, loan_spread,
	termination, termination_period, termination_date, irr, irr_error, error`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var (
		rec      RunRecord
		callDate sql.NullTime
		termDate sql.NullTime
		irr      sql.NullFloat64
	)
	err := s.Scan(
		&rec.RunID, &rec.SweepID, &rec.Created, &rec.Deal, &rec.AsOf, &rec.Frequency,
		&rec.CDR, &rec.CPR, &rec.RecoveryRate, &rec.WAS, &rec.ReinvestmentSpread,
		&callDate, &rec.Price, &rec.Liquidation, &rec.DayCount, &rec.Par, &rec.RatedDebt, &rec.LoanSpread,
		&rec.Termination, &rec.TerminationPeriod,
		&termDate, &irr, &rec.IRRError, &rec.Error,
	)
	if err != nil {
		return RunRecord{}, err
	}
	if callDate.Valid {
		rec.CallDate = callDate.Time
	}
	if termDate.Valid {
		rec.TerminationDate = termDate.Time
	}
	rec.IRR, rec.IRRDefined = irr.Float64, irr.Valid
	return rec, nil
}

// GetRun returns a single run header by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	row := j.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	rec, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (j *SQLite) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	return j.queryRuns(`SELECT `+runColumns+` FROM runs ORDER BY created DESC, run_id DESC LIMIT ?`, limit)
}

// ListSweep returns every run recorded under a sweep, in run order.
func (j *SQLite) ListSweep(sweepID string) ([]RunRecord, error) {
	return j.queryRuns(`SELECT `+runColumns+` FROM runs WHERE sweep_id = ? ORDER BY run_id ASC`, sweepID)
}

func (j *SQLite) queryRuns(query string, args ...any) ([]RunRecord, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCollateral returns the pool projection of a run by period.
func (j *SQLite) ListCollateral(runID string) ([]CollateralRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, period, date, opening, scheduled, prepaid, defaulted, recovered, interest, reinvested, liquidation, ending,
			spread, rated_debt, equity_par_nav
		FROM collateral
		WHERE run_id = ?
		ORDER BY period ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CollateralRecord
	for rows.Next() {
		var rec CollateralRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Period,
			&rec.Date,
			&rec.Opening,
			&rec.Scheduled,
			&rec.Prepaid,
			&rec.Defaulted,
			&rec.Recovered,
			&rec.Interest,
			&rec.Reinvested,
			&rec.Liquidation,
			&rec.Ending,
			&rec.Spread,
			&rec.RatedDebt,
			&rec.EquityParNAV,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTranches returns the ledger of a run ordered by period then rank.
// rank <= 0 returns every tranche.
func (j *SQLite) ListTranches(runID string, rank int) ([]TrancheRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, period, date, rank, name, opening, accrued, interest_paid, deferred, principal_paid, residual, closing
		FROM tranches
		WHERE run_id = ? AND (? <= 0 OR rank = ?)
		ORDER BY period ASC, rank ASC`, runID, rank, rank)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrancheRecord
	for rows.Next() {
		var rec TrancheRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Period,
			&rec.Date,
			&rec.Rank,
			&rec.Name,
			&rec.Opening,
			&rec.Accrued,
			&rec.InterestPaid,
			&rec.Deferred,
			&rec.PrincipalPaid,
			&rec.Residual,
			&rec.Closing,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityCashflows returns the most junior tranche's ledger rows.
func (j *SQLite) ListEquityCashflows(runID string) ([]TrancheRecord, error) {
	var rank sql.NullInt64
	if err := j.db.QueryRow(`SELECT MAX(rank) FROM tranches WHERE run_id = ?`, runID).Scan(&rank); err != nil {
		return nil, err
	}
	if !rank.Valid {
		return nil, fmt.Errorf("run %q has no tranche rows", runID)
	}
	return j.ListTranches(runID, int(rank.Int64))
}

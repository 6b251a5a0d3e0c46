package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	var irr sql.NullFloat64
	if r.IRRDefined {
		irr = sql.NullFloat64{Float64: r.IRR, Valid: true}
	}
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, sweep_id, created, deal, as_of, frequency, cdr, cpr, recovery_rate, was,
		 reinvestment_spread, call_date, price, liquidation, day_count, par, rated_debt, loan_spread,
		 termination, termination_period, termination_date, irr, irr_error, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.SweepID, r.Created, r.Deal, r.AsOf, r.Frequency, r.CDR, r.CPR, r.RecoveryRate, r.WAS,
		r.ReinvestmentSpread, nullTime(r.CallDate), r.Price, r.Liquidation, r.DayCount, r.Par, r.RatedDebt, r.LoanSpread,
		r.Termination, r.TerminationPeriod,
		nullTime(r.TerminationDate), irr, r.IRRError, r.Error,
	)
	return err
}

func (j *SQLite) RecordCollateral(c CollateralRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO collateral
		(run_id, period, date, opening, scheduled, prepaid, defaulted, recovered, interest, reinvested, liquidation, ending,
		 spread, rated_debt, equity_par_nav)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.RunID, c.Period, c.Date, c.Opening, c.Scheduled, c.Prepaid, c.Defaulted,
		c.Recovered, c.Interest, c.Reinvested, c.Liquidation, c.Ending,
		c.Spread, c.RatedDebt, c.EquityParNAV,
	)
	return err
}

func (j *SQLite) RecordTranche(t TrancheRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO tranches
		(run_id, period, date, rank, name, opening, accrued, interest_paid, deferred, principal_paid, residual, closing)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Period, t.Date, t.Rank, t.Name, t.Opening, t.Accrued,
		t.InterestPaid, t.Deferred, t.PrincipalPaid, t.Residual, t.Closing,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

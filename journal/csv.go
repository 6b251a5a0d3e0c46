package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/multierr"
)

var (
	runHeader = []string{"run_id", "sweep_id", "created", "deal", "as_of", "frequency", "cdr", "cpr",
		"recovery_rate", "was", "reinvestment_spread", "call_date", "price", "liquidation",
		"day_count", "par", "rated_debt", "loan_spread", "termination", "termination_period", "termination_date", "irr", "irr_error", "error"}
	collateralHeader = []string{"run_id", "period", "date", "opening", "scheduled", "prepaid",
		"defaulted", "recovered", "interest", "reinvested", "liquidation", "ending",
		"spread", "rated_debt", "equity_par_nav"}
	trancheHeader = []string{"run_id", "period", "date", "rank", "name", "opening", "accrued",
		"interest_paid", "deferred", "principal_paid", "residual", "closing"}
)

// CSVJournal writes runs.csv, collateral.csv and tranches.csv into a
// directory.
type CSVJournal struct {
	runs       *csv.Writer
	collateral *csv.Writer
	tranches   *csv.Writer
	files      []*os.File
}

func NewCSV(dir string) (*CSVJournal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	j := &CSVJournal{}
	open := func(name string, header []string) (*csv.Writer, error) {
		fh, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		j.files = append(j.files, fh)

		w := csv.NewWriter(fh)
		if err := w.Write(header); err != nil {
			return nil, err
		}
		w.Flush()
		return w, w.Error()
	}

	var err error
	if j.runs, err = open("runs.csv", runHeader); err != nil {
		return nil, multierr.Append(err, j.closeFiles())
	}
	if j.collateral, err = open("collateral.csv", collateralHeader); err != nil {
		return nil, multierr.Append(err, j.closeFiles())
	}
	if j.tranches, err = open("tranches.csv", trancheHeader); err != nil {
		return nil, multierr.Append(err, j.closeFiles())
	}
	return j, nil
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	irr := ""
	if r.IRRDefined {
		irr = f(r.IRR)
	}
	return write(j.runs, []string{
		r.RunID,
		r.SweepID,
		ts(r.Created),
		r.Deal,
		day(r.AsOf),
		r.Frequency,
		f(r.CDR),
		f(r.CPR),
		f(r.RecoveryRate),
		f(r.WAS),
		f(r.ReinvestmentSpread),
		day(r.CallDate),
		f(r.Price),
		r.Liquidation,
		r.DayCount,
		f(r.Par),
		f(r.RatedDebt),
		f(r.LoanSpread),
		r.Termination,
		strconv.Itoa(r.TerminationPeriod),
		day(r.TerminationDate),
		irr,
		r.IRRError,
		r.Error,
	})
}

func (j *CSVJournal) RecordCollateral(c CollateralRecord) error {
	return write(j.collateral, []string{
		c.RunID,
		strconv.Itoa(c.Period),
		day(c.Date),
		f(c.Opening),
		f(c.Scheduled),
		f(c.Prepaid),
		f(c.Defaulted),
		f(c.Recovered),
		f(c.Interest),
		f(c.Reinvested),
		f(c.Liquidation),
		f(c.Ending),
		f(c.Spread),
		f(c.RatedDebt),
		f(c.EquityParNAV),
	})
}

func (j *CSVJournal) RecordTranche(t TrancheRecord) error {
	return write(j.tranches, []string{
		t.RunID,
		strconv.Itoa(t.Period),
		day(t.Date),
		strconv.Itoa(t.Rank),
		t.Name,
		f(t.Opening),
		f(t.Accrued),
		f(t.InterestPaid),
		f(t.Deferred),
		f(t.PrincipalPaid),
		f(t.Residual),
		f(t.Closing),
	})
}

func (j *CSVJournal) Close() error {
	var err error
	for _, w := range []*csv.Writer{j.runs, j.collateral, j.tranches} {
		if w == nil {
			continue
		}
		w.Flush()
		err = multierr.Append(err, w.Error())
	}
	return multierr.Append(err, j.closeFiles())
}

func (j *CSVJournal) closeFiles() error {
	var err error
	for _, fh := range j.files {
		err = multierr.Append(err, fh.Close())
	}
	j.files = nil
	return err
}

func write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

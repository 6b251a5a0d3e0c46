package report

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/clo/batch"
	"github.com/rustyeddy/clo/journal"
	"github.com/rustyeddy/clo/scenario"
	"github.com/rustyeddy/clo/yield"
)

const rule = "--------------------------------------------------"

func PrintRun(w io.Writer, r journal.RunRecord, totals []TrancheTotal) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " CLO Run")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	if r.SweepID != "" {
		fmt.Fprintf(w, "Sweep ID:      %s\n", r.SweepID)
	}
	fmt.Fprintf(w, "Created:       %s\n", r.Created.Format(time.RFC3339))
	fmt.Fprintf(w, "Deal:          %s\n", r.Deal)
	if r.Par > 0 {
		fmt.Fprintf(w, "Collateral:    %s\n", money(r.Par))
		fmt.Fprintf(w, "Rated Debt:    %s\n", money(r.RatedDebt))
		fmt.Fprintf(w, "Loan Spread:   %s\n", pct(r.LoanSpread))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Assumptions")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "As of:         %s\n", day(r.AsOf))
	fmt.Fprintf(w, "Frequency:     %s\n", r.Frequency)
	fmt.Fprintf(w, "CDR:           %s\n", pct(r.CDR))
	fmt.Fprintf(w, "CPR:           %s\n", pct(r.CPR))
	fmt.Fprintf(w, "Recovery:      %s\n", pct(r.RecoveryRate))
	fmt.Fprintf(w, "WAS:           %s\n", pct(r.WAS))
	fmt.Fprintf(w, "Reinv Spread:  %s\n", pct(r.ReinvestmentSpread))
	fmt.Fprintf(w, "Call Date:     %s\n", day(r.CallDate))
	fmt.Fprintf(w, "Price:         %s\n", pct(r.Price))
	fmt.Fprintf(w, "Liquidation:   %s\n", r.Liquidation)
	if r.DayCount != "" {
		fmt.Fprintf(w, "Day Count:     %s\n", r.DayCount)
	}

	if r.Error != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Error:         %s\n", r.Error)
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Outcome")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Termination:   %s\n", r.Termination)
	fmt.Fprintf(w, "Ended:         period %d, %s\n", r.TerminationPeriod, day(r.TerminationDate))
	fmt.Fprintf(w, "Equity IRR:    %s\n", irr(r))
	if f, err := scenario.ParseFrequency(r.Frequency); err == nil && r.IRRDefined {
		fmt.Fprintf(w, "Period IRR:    %s\n", pct(yield.PeriodicRate(r.IRR, int(f))))
	}
	if r.IRRError != "" {
		fmt.Fprintf(w, "IRR Note:      %s\n", r.IRRError)
	}

	if len(totals) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tranches")
		fmt.Fprintln(w, rule)
		for _, t := range totals {
			fmt.Fprintf(w, "%-6s notional %14s  paid %14s  closing %14s\n",
				t.Name, money(t.Notional), money(t.Cashflow()), money(t.Closing))
		}
	}

	fmt.Fprintln(w)
}

func PrintSummary(w io.Writer, s batch.Summary) {
	fmt.Fprintln(w, "Sweep Summary")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Runs:          %d\n", s.Runs)
	fmt.Fprintf(w, "Succeeded:     %d\n", s.Succeeded)
	fmt.Fprintf(w, "Failed:        %d\n", s.Failed)
	if s.Undefined > 0 {
		fmt.Fprintf(w, "Undefined IRR: %d\n", s.Undefined)
	}
	if s.Succeeded-s.Undefined > 0 {
		fmt.Fprintf(w, "Mean IRR:      %s\n", pct(s.Mean))
		fmt.Fprintf(w, "Median IRR:    %s\n", pct(s.Median))
		fmt.Fprintf(w, "Min IRR:       %s\n", pct(s.Min))
		fmt.Fprintf(w, "Max IRR:       %s\n", pct(s.Max))
		fmt.Fprintf(w, "Std Dev:       %s\n", pct(s.StdDev))
	}
	fmt.Fprintln(w)
}

package report

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/rustyeddy/clo/batch"
	"github.com/rustyeddy/clo/journal"
)

// DefaultStyle is a plain rounded table.
func DefaultStyle() *table.Style {
	style := table.StyleRounded
	return &style
}

// ColorStyle is DefaultStyle with alternating row colors.
func ColorStyle() *table.Style {
	style := table.Style{
		Name:    "StyleRoundedColor",
		Box:     table.StyleBoxRounded,
		Format:  table.FormatOptionsDefault,
		HTML:    table.DefaultHTMLOptions,
		Options: table.OptionsDefault,
		Title:   table.TitleOptionsDefault,
		Color:   table.ColorOptionsYellowWhiteOnBlack,
	}
	style.Color.Row = text.Colors{text.FgHiYellow, text.BgHiBlack}
	style.Color.RowAlternate = text.Colors{text.FgYellow, text.BgBlack}
	return &style
}

func newTable(w io.Writer, style *table.Style, title string, numeric ...int) table.Writer {
	if style == nil {
		style = DefaultStyle()
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(*style)
	t.SetTitle(title)

	configs := make([]table.ColumnConfig, 0, len(numeric))
	for _, n := range numeric {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	t.SetColumnConfigs(configs)
	return t
}

func span(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, n)
	}
	return out
}

// CollateralTable prints the pool projection one row per period, with
// the pool spread, rated debt and equity par NAV at period end.
func CollateralTable(w io.Writer, style *table.Style, rows []journal.CollateralRecord) {
	t := newTable(w, style, "Collateral", span(3, 14)...)
	t.AppendHeader(table.Row{"#", "Date", "Opening", "Scheduled", "Prepaid", "Defaulted", "Recovered", "Interest",
		"Reinvested", "Liquidation", "Ending", "WAS", "Rated Debt", "Equity NAV"})

	var total journal.CollateralRecord
	for _, r := range rows {
		t.AppendRow(table.Row{
			r.Period, day(r.Date), money(r.Opening), money(r.Scheduled), money(r.Prepaid),
			money(r.Defaulted), money(r.Recovered), money(r.Interest), money(r.Reinvested),
			money(r.Liquidation), money(r.Ending), pct(r.Spread), money(r.RatedDebt), money(r.EquityParNAV),
		})
		total.Scheduled += r.Scheduled
		total.Prepaid += r.Prepaid
		total.Defaulted += r.Defaulted
		total.Recovered += r.Recovered
		total.Interest += r.Interest
		total.Reinvested += r.Reinvested
		total.Liquidation += r.Liquidation
	}
	t.AppendFooter(table.Row{
		"", "Total", "", money(total.Scheduled), money(total.Prepaid), money(total.Defaulted),
		money(total.Recovered), money(total.Interest), money(total.Reinvested), money(total.Liquidation), "",
		"", "", "",
	})
	t.Render()
}

// LedgerTable prints tranche ledger rows, period by period.
func LedgerTable(w io.Writer, style *table.Style, rows []journal.TrancheRecord) {
	t := newTable(w, style, "Tranche ledger", span(5, 11)...)
	t.AppendHeader(table.Row{"#", "Date", "Rank", "Tranche", "Opening", "Accrued", "Interest", "Deferred", "Principal", "Residual", "Closing"})
	for _, r := range rows {
		t.AppendRow(table.Row{
			r.Period, day(r.Date), r.Rank, r.Name, money(r.Opening), money(r.Accrued),
			money(r.InterestPaid), money(r.Deferred), money(r.PrincipalPaid), money(r.Residual), money(r.Closing),
		})
	}
	t.Render()
}

// TotalsTable prints each tranche's payments over the run.
func TotalsTable(w io.Writer, style *table.Style, totals []TrancheTotal) {
	t := newTable(w, style, "Tranches", span(3, 9)...)
	t.AppendHeader(table.Row{"Rank", "Tranche", "Notional", "Interest", "Principal", "Residual", "Cashflow", "Deferred", "Closing"})
	for _, tt := range totals {
		t.AppendRow(table.Row{
			tt.Rank, tt.Name, money(tt.Notional), money(tt.Interest), money(tt.Principal),
			money(tt.Residual), money(tt.Cashflow()), money(tt.Deferred), money(tt.Closing),
		})
	}
	t.Render()
}

// RunsTable lists run headers.
func RunsTable(w io.Writer, style *table.Style, runs []journal.RunRecord) {
	t := newTable(w, style, "Runs", 6, 7, 8, 11)
	t.AppendHeader(table.Row{"Run ID", "Sweep", "Created", "Deal", "As of", "CDR", "CPR", "Price", "Termination", "Ended", "IRR"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.RunID, r.SweepID, r.Created.Format("2006-01-02 15:04"), r.Deal, day(r.AsOf),
			pct(r.CDR), pct(r.CPR), pct(r.Price), status(r), day(r.TerminationDate), irr(r),
		})
	}
	t.Render()
}

func status(r journal.RunRecord) string {
	if r.Error != "" {
		return "error"
	}
	return r.Termination
}

// SweepTable prints one row per combination followed by the summary.
func SweepTable(w io.Writer, style *table.Style, outcomes []batch.Outcome) {
	t := newTable(w, style, "Sweep", 1, 3, 4, 5, 7, 9)
	t.AppendHeader(table.Row{"#", "Deal", "CDR", "CPR", "WAS", "Call", "Price", "Termination", "IRR"})
	for _, o := range outcomes {
		if !o.OK() {
			t.AppendRow(table.Row{o.Index, o.Deal, "", "", "", "", "", "error", o.Err.Error()})
			continue
		}
		a := o.Assumptions
		t.AppendRow(table.Row{
			o.Index, o.Deal, pct(a.CDR), pct(a.CPR), pct(a.WAS), day(a.CallDate), pct(a.Price),
			o.Result.Termination.Kind.String(), o.Result.IRR.String(),
		})
	}

	s := batch.Summarize(outcomes)
	t.AppendFooter(table.Row{"", "runs " + strconv.Itoa(s.Runs), "ok " + strconv.Itoa(s.Succeeded), "failed " + strconv.Itoa(s.Failed), "", "", "", "mean", pct(s.Mean)})
	t.Render()
}

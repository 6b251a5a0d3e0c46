// Package report renders runs, ledgers and sweeps for the terminal and as
// org-mode summaries.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/clo/journal"
)

// money rounds half away from zero to cents.
func money(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

func pct(x float64) string {
	return decimal.NewFromFloat(x*100).StringFixed(2) + "%"
}

func irr(r journal.RunRecord) string {
	if !r.IRRDefined {
		return "undefined"
	}
	return fmt.Sprintf("%.4f%%", r.IRR*100)
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// TrancheTotal is one tranche's payments over a whole run.
type TrancheTotal struct {
	Rank      int
	Name      string
	Notional  float64
	Interest  float64
	Principal float64
	Residual  float64
	Deferred  float64 // unpaid interest at the end of the run
	Closing   float64
}

// Cashflow is everything the tranche received.
func (t TrancheTotal) Cashflow() float64 {
	return t.Interest + t.Principal + t.Residual
}

// Totals sums ledger rows per tranche in rank order. Rows must be ordered
// by period as the journal returns them.
func Totals(rows []journal.TrancheRecord) []TrancheTotal {
	var out []TrancheTotal
	index := map[int]int{}
	for _, r := range rows {
		i, ok := index[r.Rank]
		if !ok {
			i = len(out)
			index[r.Rank] = i
			out = append(out, TrancheTotal{Rank: r.Rank, Name: r.Name, Notional: r.Opening})
		}
		t := &out[i]
		t.Interest += r.InterestPaid
		t.Principal += r.PrincipalPaid
		t.Residual += r.Residual
		t.Deferred = r.Deferred
		t.Closing = r.Closing
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

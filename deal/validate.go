package deal

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Validate checks a single deal's data. Tranches must already be sorted by rank.
func (s Set) Validate() error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	d := s.Deal
	if strings.TrimSpace(d.Ticker) == "" {
		add("empty ticker")
	}
	if d.LegalMaturity.IsZero() {
		add("missing legal maturity date")
	}
	if !d.CallDate.IsZero() && !d.LegalMaturity.IsZero() && d.CallDate.After(d.LegalMaturity) {
		add("call date %s is after legal maturity %s",
			d.CallDate.Format("2006-01-02"), d.LegalMaturity.Format("2006-01-02"))
	}
	if bad(d.AvgSpread) || d.AvgSpread < 0 {
		add("average portfolio spread %v must be non-negative", d.AvgSpread)
	}
	if bad(d.AvgPrice) || d.AvgPrice < 0 {
		add("average portfolio price %v must be non-negative", d.AvgPrice)
	}

	if len(s.Tranches) == 0 {
		add("no tranches")
	}
	seen := make(map[int]bool, len(s.Tranches))
	for i, tr := range s.Tranches {
		if tr.Rank < 1 {
			add("tranche %q rank %d must be >= 1", tr.Name, tr.Rank)
		} else if seen[tr.Rank] {
			add("duplicate tranche rank %d", tr.Rank)
		} else if tr.Rank != i+1 {
			add("tranche ranks are not contiguous: expected rank %d, got %d", i+1, tr.Rank)
		}
		seen[tr.Rank] = true

		if bad(tr.Notional) || tr.Notional < 0 {
			add("tranche %q notional %v must be non-negative", tr.Name, tr.Notional)
		}
		if bad(tr.Spread) || tr.Spread < 0 {
			add("tranche %q spread %v must be non-negative", tr.Name, tr.Spread)
		}
	}

	for i, l := range s.Loans {
		if bad(l.Balance) || l.Balance < 0 {
			add("loan %d balance %v must be non-negative", i+1, l.Balance)
		}
		if l.Maturity.IsZero() {
			add("loan %d has no maturity date", i+1)
		}
		if bad(l.Spread) {
			add("loan %d spread is not a number", i+1)
		}
	}

	return NewIntegrityError(d.Ticker, problems...)
}

// Validate checks the relationships between the three tables.
func (t Tables) Validate() error {
	var problems []error

	deals := make(map[string]bool, len(t.Deals))
	for _, d := range t.Deals {
		key := strings.ToUpper(strings.TrimSpace(d.Ticker))
		if deals[key] {
			problems = append(problems, fmt.Errorf("duplicate deal ticker %q", d.Ticker))
		}
		deals[key] = true
	}

	orphans := map[string]int{}
	for _, l := range t.Loans {
		if !deals[strings.ToUpper(strings.TrimSpace(l.DealTicker))] {
			orphans[l.DealTicker]++
		}
	}
	tickers := make([]string, 0, len(orphans))
	for ticker := range orphans {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	for _, ticker := range tickers {
		problems = append(problems, fmt.Errorf("%d loan(s) reference unknown deal %q", orphans[ticker], ticker))
	}

	for _, tr := range t.Tranches {
		if !deals[strings.ToUpper(strings.TrimSpace(tr.DealTicker))] {
			problems = append(problems, fmt.Errorf("tranche %q references unknown deal %q", tr.Name, tr.DealTicker))
		}
	}

	return NewIntegrityError("", problems...)
}

func bad(x float64) bool {
	return math.IsNaN(x) || math.IsInf(x, 0)
}

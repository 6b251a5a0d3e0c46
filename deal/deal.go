package deal

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Deal is the static reference data for one CLO.
type Deal struct {
	Ticker          string
	ReinvestmentEnd time.Time
	LegalMaturity   time.Time
	CallDate        time.Time // zero means no call

	// NAV and NAV90 are equity net asset values as a fraction of equity notional.
	NAV   float64
	NAV90 float64

	AvgPrice  float64 // fraction of par
	AvgSpread float64
}

// Tranche is one seniority-ranked slice of the liabilities. Rank 1 is the most senior.
type Tranche struct {
	DealTicker string
	Rank       int
	Name       string
	Notional   float64
	Spread     float64
	MVOC       float64 // informational only
}

// Amortization describes how a loan returns principal before maturity.
type Amortization int

const (
	Bullet Amortization = iota
	Linear
)

func (a Amortization) String() string {
	switch a {
	case Linear:
		return "linear"
	default:
		return "bullet"
	}
}

// ParseAmortization accepts "bullet", "linear" or an empty string (bullet).
func ParseAmortization(s string) (Amortization, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bullet":
		return Bullet, nil
	case "linear":
		return Linear, nil
	default:
		return Bullet, fmt.Errorf("unknown amortization %q (supported: bullet, linear)", s)
	}
}

// Loan is one collateral position. Loans are only used in aggregate.
type Loan struct {
	DealTicker   string
	Balance      float64
	Maturity     time.Time
	Spread       float64
	Amortization Amortization
}

// Tables holds the three loaded reference extracts.
type Tables struct {
	Deals    []Deal
	Tranches []Tranche
	Loans    []Loan
}

// Set is everything needed to simulate a single deal.
// Tranches are sorted by rank, most senior first.
type Set struct {
	Deal     Deal
	Tranches []Tranche
	Loans    []Loan
}

func sameTicker(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Lookup selects one deal and its tranches and loans, then checks the
// deal's integrity.
func (t Tables) Lookup(ticker string) (Set, error) {
	var (
		set   Set
		found bool
	)
	for _, d := range t.Deals {
		if sameTicker(d.Ticker, ticker) {
			set.Deal = d
			found = true
			break
		}
	}
	if !found {
		return Set{}, &NotFoundError{Ticker: ticker}
	}

	for _, tr := range t.Tranches {
		if sameTicker(tr.DealTicker, ticker) {
			set.Tranches = append(set.Tranches, tr)
		}
	}
	for _, l := range t.Loans {
		if sameTicker(l.DealTicker, ticker) {
			set.Loans = append(set.Loans, l)
		}
	}

	sort.SliceStable(set.Tranches, func(i, j int) bool {
		return set.Tranches[i].Rank < set.Tranches[j].Rank
	})

	if err := set.Validate(); err != nil {
		return Set{}, err
	}
	return set, nil
}

// Tickers returns every deal ticker in load order.
func (t Tables) Tickers() []string {
	out := make([]string, 0, len(t.Deals))
	for _, d := range t.Deals {
		out = append(out, d.Ticker)
	}
	return out
}

// Equity returns the most junior tranche.
func (s Set) Equity() Tranche {
	return s.Tranches[len(s.Tranches)-1]
}

// Rated returns every tranche senior to equity.
func (s Set) Rated() []Tranche {
	return s.Tranches[:len(s.Tranches)-1]
}

// CollateralBalance is the sum of current loan balances.
func (s Set) CollateralBalance() float64 {
	var total float64
	for _, l := range s.Loans {
		total += l.Balance
	}
	return total
}

// LoanSpread is the balance-weighted average of the loan spreads.
func (s Set) LoanSpread() float64 {
	var total, weighted float64
	for _, l := range s.Loans {
		total += l.Balance
		weighted += l.Balance * l.Spread
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// RatedDebt is the original notional of every tranche senior to equity.
func (s Set) RatedDebt() float64 {
	var total float64
	for _, tr := range s.Rated() {
		total += tr.Notional
	}
	return total
}

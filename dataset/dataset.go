// Package dataset loads the deal, tranche and loan extracts into typed
// reference tables.
//
//	deals.csv:    ticker,reinvestment_end_date,legal_maturity_date,call_date,nav,nav90,avg_portfolio_price,avg_portfolio_spread
//	tranches.csv: deal_ticker,rank,name,notional,spread,mvoc
//	loans.csv:    deal_ticker,balance,maturity_date,spread[,amortization]
//
// Column order is free and header names are case-insensitive. Malformed
// rows are collected and reported together as a deal.DataIntegrityError.
package dataset

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/clo/deal"
)

var log = logrus.WithField("component", "dataset")

// Paths locates the three extracts.
type Paths struct {
	Deals    string
	Tranches string
	Loans    string
}

// Load reads all three extracts and checks the relationships between them.
func Load(p Paths) (deal.Tables, error) {
	var (
		tables deal.Tables
		err    error
	)

	if tables.Deals, err = readFile(p.Deals, ReadDeals); err != nil {
		return deal.Tables{}, err
	}
	if tables.Tranches, err = readFile(p.Tranches, ReadTranches); err != nil {
		return deal.Tables{}, err
	}
	if tables.Loans, err = readFile(p.Loans, ReadLoans); err != nil {
		return deal.Tables{}, err
	}

	log.WithFields(logrus.Fields{
		"deals":    len(tables.Deals),
		"tranches": len(tables.Tranches),
		"loans":    len(tables.Loans),
	}).Debug("loaded reference data")

	if err := tables.Validate(); err != nil {
		return deal.Tables{}, err
	}
	return tables, nil
}

func readFile[T any](path string, read func(io.Reader, string) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()
	return read(f, path)
}

// ReadDeals parses a deals extract. name labels errors.
func ReadDeals(r io.Reader, name string) ([]deal.Deal, error) {
	t, err := newTable(r, name, "ticker", "reinvestment_end_date", "legal_maturity_date", "avg_portfolio_price", "avg_portfolio_spread")
	if err != nil {
		return nil, err
	}

	var out []deal.Deal
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		ticker, _ := t.required("ticker")
		out = append(out, deal.Deal{
			Ticker:          ticker,
			ReinvestmentEnd: t.date("reinvestment_end_date"),
			LegalMaturity:   t.date("legal_maturity_date"),
			CallDate:        t.optDate("call_date"),
			NAV:             t.optNumber("nav"),
			NAV90:           t.optNumber("nav90"),
			AvgPrice:        t.number("avg_portfolio_price"),
			AvgSpread:       t.number("avg_portfolio_spread"),
		})
	}
	return out, deal.NewIntegrityError("", t.errors...)
}

// ReadTranches parses a tranches extract. A missing name defaults to the rank.
func ReadTranches(r io.Reader, name string) ([]deal.Tranche, error) {
	t, err := newTable(r, name, "deal_ticker", "rank", "notional", "spread")
	if err != nil {
		return nil, err
	}

	var out []deal.Tranche
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		ticker, _ := t.required("deal_ticker")
		tr := deal.Tranche{
			DealTicker: ticker,
			Rank:       t.integer("rank"),
			Name:       t.str("name"),
			Notional:   t.number("notional"),
			Spread:     t.optNumber("spread"),
			MVOC:       t.optNumber("mvoc"),
		}
		if tr.Name == "" {
			tr.Name = fmt.Sprintf("T%d", tr.Rank)
		}
		out = append(out, tr)
	}
	return out, deal.NewIntegrityError("", t.errors...)
}

// ReadLoans parses a loans extract.
func ReadLoans(r io.Reader, name string) ([]deal.Loan, error) {
	t, err := newTable(r, name, "deal_ticker", "balance", "maturity_date", "spread")
	if err != nil {
		return nil, err
	}

	var out []deal.Loan
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		ticker, _ := t.required("deal_ticker")
		l := deal.Loan{
			DealTicker: ticker,
			Balance:    t.number("balance"),
			Maturity:   t.date("maturity_date"),
			Spread:     t.optNumber("spread"),
		}
		if t.has("amortization") {
			a, err := deal.ParseAmortization(t.str("amortization"))
			if err != nil {
				t.fail("amortization", err)
			}
			l.Amortization = a
		}
		out = append(out, l)
	}
	return out, deal.NewIntegrityError("", t.errors...)
}

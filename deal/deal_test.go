package deal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testTables() Tables {
	return Tables{
		Deals: []Deal{
			{Ticker: "TEST1", ReinvestmentEnd: date(2024, 1, 1), LegalMaturity: date(2026, 7, 1), AvgPrice: 0.97, AvgSpread: 0.04},
			{Ticker: "TEST2", ReinvestmentEnd: date(2025, 1, 1), LegalMaturity: date(2030, 1, 1), AvgPrice: 0.95, AvgSpread: 0.035},
		},
		Tranches: []Tranche{
			{DealTicker: "TEST1", Rank: 2, Name: "EQ", Notional: 30},
			{DealTicker: "TEST1", Rank: 1, Name: "A", Notional: 70, Spread: 0.02},
			{DealTicker: "TEST2", Rank: 1, Name: "A", Notional: 60, Spread: 0.015},
			{DealTicker: "TEST2", Rank: 2, Name: "B", Notional: 20, Spread: 0.03},
			{DealTicker: "TEST2", Rank: 3, Name: "EQ", Notional: 20},
		},
		Loans: []Loan{
			{DealTicker: "TEST1", Balance: 60, Maturity: date(2025, 1, 1), Spread: 0.04},
			{DealTicker: "TEST1", Balance: 40, Maturity: date(2026, 1, 1), Spread: 0.05},
			{DealTicker: "TEST2", Balance: 100, Maturity: date(2029, 1, 1), Spread: 0.035},
		},
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	set, err := testTables().Lookup("test1")
	require.NoError(t, err)

	assert.Equal(t, "TEST1", set.Deal.Ticker)
	require.Len(t, set.Tranches, 2)
	assert.Equal(t, "A", set.Tranches[0].Name)
	assert.Equal(t, "EQ", set.Equity().Name)
	assert.Len(t, set.Rated(), 1)
	assert.Len(t, set.Loans, 2)

	assert.InDelta(t, 100.0, set.CollateralBalance(), 1e-12)
	assert.InDelta(t, 0.044, set.LoanSpread(), 1e-12)
	assert.InDelta(t, 70.0, set.RatedDebt(), 1e-12)
}

func TestLookupNotFound(t *testing.T) {
	t.Parallel()

	_, err := testTables().Lookup("NOPE")
	require.Error(t, err)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "NOPE", nf.Ticker)
	assert.Contains(t, err.Error(), `"NOPE" not found`)
}

func TestSetValidate(t *testing.T) {
	t.Parallel()

	base := func() Set {
		set, err := testTables().Lookup("TEST2")
		if err != nil {
			t.Fatal(err)
		}
		return set
	}

	tests := []struct {
		name    string
		mutate  func(*Set)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid",
			mutate: func(*Set) {},
		},
		{
			name:    "duplicate rank",
			mutate:  func(s *Set) { s.Tranches[1].Rank = 1 },
			wantErr: true,
			errMsg:  "duplicate tranche rank 1",
		},
		{
			name:    "gap in ranks",
			mutate:  func(s *Set) { s.Tranches[2].Rank = 5 },
			wantErr: true,
			errMsg:  "not contiguous",
		},
		{
			name:    "negative notional",
			mutate:  func(s *Set) { s.Tranches[0].Notional = -1 },
			wantErr: true,
			errMsg:  "notional -1 must be non-negative",
		},
		{
			name:    "negative spread",
			mutate:  func(s *Set) { s.Tranches[1].Spread = -0.01 },
			wantErr: true,
			errMsg:  "spread -0.01 must be non-negative",
		},
		{
			name:    "negative loan balance",
			mutate:  func(s *Set) { s.Loans[0].Balance = -5 },
			wantErr: true,
			errMsg:  "loan 1 balance -5",
		},
		{
			name:    "missing loan maturity",
			mutate:  func(s *Set) { s.Loans[0].Maturity = time.Time{} },
			wantErr: true,
			errMsg:  "loan 1 has no maturity date",
		},
		{
			name:    "no tranches",
			mutate:  func(s *Set) { s.Tranches = nil },
			wantErr: true,
			errMsg:  "no tranches",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := base()
			tt.mutate(&set)

			err := set.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var die *DataIntegrityError
			require.True(t, errors.As(err, &die))
			assert.Equal(t, "TEST2", die.Ticker)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSetValidateCollectsAllProblems(t *testing.T) {
	t.Parallel()

	set := Set{
		Deal: Deal{Ticker: "BAD", LegalMaturity: date(2030, 1, 1)},
		Tranches: []Tranche{
			{Rank: 1, Name: "A", Notional: -1},
			{Rank: 1, Name: "B", Spread: -1},
		},
	}

	err := set.Validate()
	var die *DataIntegrityError
	require.True(t, errors.As(err, &die))
	assert.Len(t, die.Problems(), 3)
}

func TestTablesValidate(t *testing.T) {
	t.Parallel()

	tables := testTables()
	assert.NoError(t, tables.Validate())

	tables.Loans = append(tables.Loans, Loan{DealTicker: "GHOST", Balance: 1, Maturity: date(2030, 1, 1)})
	tables.Deals = append(tables.Deals, Deal{Ticker: "test1"})

	err := tables.Validate()
	var die *DataIntegrityError
	require.True(t, errors.As(err, &die))
	assert.Contains(t, err.Error(), `unknown deal "GHOST"`)
	assert.Contains(t, err.Error(), `duplicate deal ticker "test1"`)
}

func TestTablesValidateOrphansInTickerOrder(t *testing.T) {
	t.Parallel()

	tables := testTables()
	for _, ticker := range []string{"ZED", "ALPHA", "MID", "ALPHA"} {
		tables.Loans = append(tables.Loans, Loan{DealTicker: ticker, Balance: 1, Maturity: date(2030, 1, 1)})
	}

	var die *DataIntegrityError
	require.True(t, errors.As(tables.Validate(), &die))
	assert.Equal(t, []string{
		`2 loan(s) reference unknown deal "ALPHA"`,
		`1 loan(s) reference unknown deal "MID"`,
		`1 loan(s) reference unknown deal "ZED"`,
	}, die.Problems())
}

func TestParseAmortization(t *testing.T) {
	t.Parallel()

	a, err := ParseAmortization("")
	require.NoError(t, err)
	assert.Equal(t, Bullet, a)

	a, err = ParseAmortization(" Linear ")
	require.NoError(t, err)
	assert.Equal(t, Linear, a)
	assert.Equal(t, "linear", a.String())

	_, err = ParseAmortization("balloon")
	assert.Error(t, err)
}

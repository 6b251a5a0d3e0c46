package scenario

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/clo/deal"
	"github.com/rustyeddy/clo/yield"
)

func testDeal() deal.Deal {
	return deal.Deal{
		Ticker:          "TEST1",
		ReinvestmentEnd: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		LegalMaturity:   time.Date(2032, 1, 15, 0, 0, 0, 0, time.UTC),
		CallDate:        time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC),
		NAV:             0.55,
		AvgPrice:        0.96,
		AvgSpread:       0.037,
	}
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func TestResolveDefaults(t *testing.T) {
	t.Parallel()

	a, err := Resolve(testDeal(), Overrides{AsOf: "2024-01-15"})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), a.AsOf)
	assert.Equal(t, Quarterly, a.Frequency)
	assert.Equal(t, DefaultCDR, a.CDR)
	assert.Equal(t, DefaultCPR, a.CPR)
	assert.Equal(t, DefaultRecoveryRate, a.RecoveryRate)
	assert.Equal(t, 0.037, a.WAS)
	assert.Equal(t, 0.037, a.ReinvestmentSpread)
	assert.Equal(t, testDeal().CallDate, a.CallDate)
	assert.Equal(t, 0.55, a.Price)
	assert.Equal(t, DefaultReinvestmentTermMonths, a.ReinvestmentTermMonths)
	assert.Equal(t, LiquidatePar, a.Liquidation)
}

func TestResolveOverrides(t *testing.T) {
	t.Parallel()

	o := Overrides{
		AsOf:               "15/01/2024",
		Frequency:          "monthly",
		CDR:                f64(0.05),
		CPR:                f64(0),
		WAS:                f64(0.04),
		CallDate:           "2026-01-15",
		Price:              f64(0.95),
		RecoveryRate:       f64(0.6),
		ReinvestmentSpread: f64(0.035),
		RecoveryLag:        intp(1),
		Liquidation:        "market",
	}

	a, err := Resolve(testDeal(), o)
	require.NoError(t, err)

	assert.Equal(t, Monthly, a.Frequency)
	assert.Equal(t, 0.05, a.CDR)
	assert.Equal(t, 0.0, a.CPR)
	assert.Equal(t, 0.04, a.WAS)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), a.CallDate)
	assert.Equal(t, 0.95, a.Price)
	assert.Equal(t, 0.6, a.RecoveryRate)
	assert.Equal(t, 0.035, a.ReinvestmentSpread)
	assert.Equal(t, 1, a.RecoveryLag)
	assert.Equal(t, LiquidateMarket, a.Liquidation)
}

func TestResolveNoCall(t *testing.T) {
	t.Parallel()

	a, err := Resolve(testDeal(), Overrides{AsOf: "2024-01-15", CallDate: "none"})
	require.NoError(t, err)
	assert.True(t, a.CallDate.IsZero())
}

func TestResolvePastDealCallDate(t *testing.T) {
	t.Parallel()

	_, err := Resolve(testDeal(), Overrides{AsOf: "2027-06-15"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "call_date", ve.Field)
	assert.Equal(t, "2027-01-15", ve.Value)

	a, err := Resolve(testDeal(), Overrides{AsOf: "2027-06-15", CallDate: "none"})
	require.NoError(t, err)
	assert.True(t, a.CallDate.IsZero())

	a, err = Resolve(testDeal(), Overrides{AsOf: "2027-01-15"})
	require.NoError(t, err, "a call on the as-of date is allowed")
	assert.Equal(t, a.AsOf, a.CallDate)
}

func TestResolveLockoutsAndDayCount(t *testing.T) {
	t.Parallel()

	a, err := Resolve(testDeal(), Overrides{AsOf: "2024-01-15"})
	require.NoError(t, err)
	assert.Zero(t, a.CDRLockoutMonths)
	assert.Zero(t, a.CPRLockoutMonths)
	assert.Equal(t, yield.Thirty360E, a.DayCount)

	var o Overrides
	require.NoError(t, o.Set("cdr-lockout-months", "12"))
	require.NoError(t, o.Set("cpr_lockout_months", "6"))
	require.NoError(t, o.Set("day_count", "act/365f"))
	o.AsOf = "2024-01-15"

	a, err = Resolve(testDeal(), o)
	require.NoError(t, err)
	assert.Equal(t, 12, a.CDRLockoutMonths)
	assert.Equal(t, 6, a.CPRLockoutMonths)
	assert.Equal(t, yield.Act365F, a.DayCount)

	merged := Overrides{}.Merge(o)
	assert.Equal(t, 12, *merged.CDRLockoutMonths)
	assert.Equal(t, "act/365f", merged.DayCount)
}

func TestResolveValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		o     Overrides
		field string
	}{
		{"missing as_of", Overrides{}, "as_of"},
		{"malformed as_of", Overrides{AsOf: "2024-13-45"}, "as_of"},
		{"as_of after maturity", Overrides{AsOf: "2033-01-01"}, "as_of"},
		{"negative cdr", Overrides{AsOf: "2024-01-15", CDR: f64(-0.01)}, "cdr"},
		{"cpr of one", Overrides{AsOf: "2024-01-15", CPR: f64(1)}, "cpr"},
		{"nan recovery", Overrides{AsOf: "2024-01-15", RecoveryRate: f64(math.NaN())}, "recovery_rate"},
		{"zero price", Overrides{AsOf: "2024-01-15", Price: f64(0)}, "price"},
		{"call before as_of", Overrides{AsOf: "2024-01-15", CallDate: "2023-12-31"}, "call_date"},
		{"malformed call", Overrides{AsOf: "2024-01-15", CallDate: "soon"}, "call_date"},
		{"bad frequency", Overrides{AsOf: "2024-01-15", Frequency: "weekly"}, "frequency"},
		{"bad lag", Overrides{AsOf: "2024-01-15", RecoveryLag: intp(2)}, "recovery_lag"},
		{"bad liquidation", Overrides{AsOf: "2024-01-15", Liquidation: "fire-sale"}, "liquidation"},
		{"zero term", Overrides{AsOf: "2024-01-15", ReinvestmentTermMonths: intp(0)}, "reinvestment_term_months"},
		{"deal call before as_of", Overrides{AsOf: "2027-06-15"}, "call_date"},
		{"negative cdr lockout", Overrides{AsOf: "2024-01-15", CDRLockoutMonths: intp(-3)}, "cdr_lockout_months"},
		{"negative cpr lockout", Overrides{AsOf: "2024-01-15", CPRLockoutMonths: intp(-1)}, "cpr_lockout_months"},
		{"bad day count", Overrides{AsOf: "2024-01-15", DayCount: "BUS/252"}, "day_count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(testDeal(), tt.o)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %T", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestOverridesSetAndMerge(t *testing.T) {
	t.Parallel()

	var o Overrides
	require.NoError(t, o.Set("cdr", "0.03"))
	require.NoError(t, o.Set("call-date", "2026-01-15"))
	require.NoError(t, o.Set("recovery_lag", "1"))
	require.NoError(t, o.Set("Frequency", "q"))

	require.NotNil(t, o.CDR)
	assert.Equal(t, 0.03, *o.CDR)
	assert.Equal(t, "2026-01-15", o.CallDate)
	assert.Equal(t, 1, *o.RecoveryLag)

	err := o.Set("cpr", "lots")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "cpr", ve.Field)

	assert.Error(t, o.Set("leverage", "2"))

	merged := o.Merge(Overrides{CDR: f64(0.07), AsOf: "2024-01-15"})
	assert.Equal(t, 0.07, *merged.CDR)
	assert.Equal(t, 0.03, *o.CDR, "merge must not alias the receiver")
	assert.Equal(t, "2024-01-15", merged.AsOf)
	assert.Equal(t, "2026-01-15", merged.CallDate)
}

func TestFrequency(t *testing.T) {
	t.Parallel()

	f, err := ParseFrequency("12")
	require.NoError(t, err)
	assert.Equal(t, Monthly, f)
	assert.Equal(t, 1, f.Months())
	assert.Equal(t, 3, Quarterly.Months())
	assert.InDelta(t, 0.25, Quarterly.Fraction(), 1e-15)

	// Compounding the period rate back over a year recovers the annual rate.
	for _, freq := range []Frequency{Monthly, Quarterly} {
		p := freq.PeriodRate(0.2)
		assert.InDelta(t, 0.2, 1-math.Pow(1-p, float64(freq)), 1e-12)
	}
	assert.Equal(t, 0.0, Quarterly.PeriodRate(0))
}

func TestLiquidationPrice(t *testing.T) {
	t.Parallel()

	d := testDeal()
	assert.Equal(t, 1.0, LiquidatePar.Price(d))
	assert.Equal(t, 0.96, LiquidateMarket.Price(d))
	assert.Equal(t, 1.0, LiquidateNAV90.Price(d))

	d.AvgPrice = 0.85
	assert.Equal(t, 0.85, LiquidateNAV90.Price(d))
}

func TestAddMonths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Time
		n    int
		want time.Time
	}{
		{time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC), 3, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), -1, time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), 24, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AddMonths(tt.in, tt.n), "%s + %d", tt.in.Format(DateLayout), tt.n)
	}
}

func TestReinvestmentEnd(t *testing.T) {
	t.Parallel()

	d := testDeal()
	a := Assumptions{}
	assert.Equal(t, d.ReinvestmentEnd, a.ReinvestmentEnd(d))

	a.RPExtensionMonths = 6
	assert.Equal(t, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), a.ReinvestmentEnd(d))
}

func TestOverridesCheck(t *testing.T) {
	t.Parallel()

	f := func(v float64) *float64 { return &v }
	lag, neg := 2, -1

	assert.NoError(t, Overrides{}.Check())
	assert.NoError(t, Overrides{AsOf: "2024-01-15", CallDate: "None", CDR: f(0.5), Frequency: "m"}.Check())

	tests := []struct {
		o     Overrides
		field string
	}{
		{Overrides{AsOf: "15 Jan"}, "as_of"},
		{Overrides{Frequency: "weekly"}, "frequency"},
		{Overrides{Liquidation: "fire-sale"}, "liquidation"},
		{Overrides{CallDate: "2024-13-01"}, "call_date"},
		{Overrides{CPR: f(1)}, "cpr"},
		{Overrides{WAS: f(-0.01)}, "was"},
		{Overrides{Price: f(0)}, "price"},
		{Overrides{RecoveryLag: &lag}, "recovery_lag"},
		{Overrides{CDRLockoutMonths: &neg}, "cdr_lockout_months"},
		{Overrides{CPRLockoutMonths: &neg}, "cpr_lockout_months"},
		{Overrides{DayCount: "30/365"}, "day_count"},
	}
	for _, tt := range tests {
		var ve *ValidationError
		err := tt.o.Check()
		require.True(t, errors.As(err, &ve), tt.field)
		assert.Equal(t, tt.field, ve.Field)
	}
}

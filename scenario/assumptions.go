package scenario

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rustyeddy/clo/deal"
	"github.com/rustyeddy/clo/yield"
)

// Defaults applied when neither the deal nor the caller supplies a value.
const (
	DefaultCDR                    = 0.02
	DefaultCPR                    = 0.20
	DefaultRecoveryRate           = 0.70
	DefaultPrice                  = 1.00
	DefaultReinvestmentTermMonths = 72
	DefaultFrequency              = Quarterly
)

// Liquidation selects the price at which remaining collateral is sold on
// call or legal maturity.
type Liquidation int

const (
	LiquidatePar Liquidation = iota
	LiquidateMarket
	LiquidateNAV90
)

func ParseLiquidation(s string) (Liquidation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "par":
		return LiquidatePar, nil
	case "market":
		return LiquidateMarket, nil
	case "nav90":
		return LiquidateNAV90, nil
	default:
		return LiquidatePar, fmt.Errorf("unknown liquidation %q (supported: par, market, nav90)", s)
	}
}

func (l Liquidation) String() string {
	switch l {
	case LiquidateMarket:
		return "market"
	case LiquidateNAV90:
		return "nav90"
	default:
		return "par"
	}
}

// Price is the liquidation price as a fraction of par for a deal.
func (l Liquidation) Price(d deal.Deal) float64 {
	switch l {
	case LiquidateMarket:
		if d.AvgPrice > 0 {
			return d.AvgPrice
		}
	case LiquidateNAV90:
		if d.AvgPrice > 0 && d.AvgPrice < 0.90 {
			return d.AvgPrice
		}
	}
	return 1.0
}

// Assumptions is the fully resolved, immutable input to one simulation.
type Assumptions struct {
	AsOf      time.Time
	Frequency Frequency

	CDR          float64
	CPR          float64
	RecoveryRate float64
	RecoveryLag  int // periods, 0 or 1

	// CDRLockoutMonths and CPRLockoutMonths suppress defaults and
	// prepayments in periods ending within that many months of AsOf.
	CDRLockoutMonths int
	CPRLockoutMonths int

	WAS                float64
	ReinvestmentSpread float64

	CallDate time.Time // zero means the deal runs to legal maturity
	Price    float64   // fraction of equity notional

	ReinvestmentTermMonths int
	RPExtensionMonths      int

	SeniorExpenseRate  float64 // annual, on opening collateral
	SeniorExpenseFixed float64 // annual amount

	Liquidation Liquidation
	DayCount    yield.DayCount // equity IRR basis
}

// Validate checks every assumption against its domain and against the deal
// it will be applied to.
func (a Assumptions) Validate(d deal.Deal) error {
	if a.AsOf.IsZero() {
		return invalid("as_of", "", "is required")
	}
	if !d.LegalMaturity.IsZero() && !a.AsOf.Before(d.LegalMaturity) {
		return invalid("as_of", a.AsOf.Format(DateLayout), "must be before legal maturity "+d.LegalMaturity.Format(DateLayout))
	}
	if !a.Frequency.Valid() {
		return invalid("frequency", int(a.Frequency), "must be monthly (12) or quarterly (4)")
	}

	rates := []struct {
		name string
		v    float64
	}{
		{"cdr", a.CDR},
		{"cpr", a.CPR},
		{"recovery_rate", a.RecoveryRate},
		{"was", a.WAS},
		{"reinvestment_spread", a.ReinvestmentSpread},
		{"senior_expense_rate", a.SeniorExpenseRate},
	}
	for _, r := range rates {
		if math.IsNaN(r.v) || r.v < 0 || r.v >= 1 {
			return invalid(r.name, r.v, "must be in [0, 1)")
		}
	}

	if math.IsNaN(a.Price) || math.IsInf(a.Price, 0) || a.Price <= 0 {
		return invalid("price", a.Price, "must be greater than zero")
	}
	if math.IsNaN(a.SeniorExpenseFixed) || a.SeniorExpenseFixed < 0 {
		return invalid("senior_expense_fixed", a.SeniorExpenseFixed, "must be non-negative")
	}
	if a.RecoveryLag != 0 && a.RecoveryLag != 1 {
		return invalid("recovery_lag", a.RecoveryLag, "must be 0 or 1")
	}
	if a.ReinvestmentTermMonths <= 0 {
		return invalid("reinvestment_term_months", a.ReinvestmentTermMonths, "must be positive")
	}
	if a.RPExtensionMonths < 0 {
		return invalid("rp_extension_months", a.RPExtensionMonths, "must be non-negative")
	}
	if a.CDRLockoutMonths < 0 {
		return invalid("cdr_lockout_months", a.CDRLockoutMonths, "must be non-negative")
	}
	if a.CPRLockoutMonths < 0 {
		return invalid("cpr_lockout_months", a.CPRLockoutMonths, "must be non-negative")
	}
	if !a.CallDate.IsZero() && a.CallDate.Before(a.AsOf) {
		return invalid("call_date", a.CallDate.Format(DateLayout),
			"is before as_of "+a.AsOf.Format(DateLayout)+" (set call_date to none or a later date)")
	}
	return nil
}

// ReinvestmentEnd is the deal's reinvestment end date shifted by the
// configured extension.
func (a Assumptions) ReinvestmentEnd(d deal.Deal) time.Time {
	if a.RPExtensionMonths == 0 {
		return d.ReinvestmentEnd
	}
	return AddMonths(d.ReinvestmentEnd, a.RPExtensionMonths)
}

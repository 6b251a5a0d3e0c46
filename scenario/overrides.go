package scenario

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/clo/deal"
	"github.com/rustyeddy/clo/yield"
)

// Overrides are the caller-supplied assumption options. Unset fields fall
// back to the deal's static values or the package defaults. Dates are kept
// as strings so that malformed input surfaces as a ValidationError.
type Overrides struct {
	AsOf      string `yaml:"as_of,omitempty" json:"as_of,omitempty"`
	Frequency string `yaml:"frequency,omitempty" json:"frequency,omitempty"`

	CDR                *float64 `yaml:"cdr,omitempty" json:"cdr,omitempty"`
	CPR                *float64 `yaml:"cpr,omitempty" json:"cpr,omitempty"`
	WAS                *float64 `yaml:"was,omitempty" json:"was,omitempty"`
	CallDate           string   `yaml:"call_date,omitempty" json:"call_date,omitempty"`
	Price              *float64 `yaml:"price,omitempty" json:"price,omitempty"`
	RecoveryRate       *float64 `yaml:"recovery_rate,omitempty" json:"recovery_rate,omitempty"`
	ReinvestmentSpread *float64 `yaml:"reinvestment_spread,omitempty" json:"reinvestment_spread,omitempty"`

	RecoveryLag            *int     `yaml:"recovery_lag,omitempty" json:"recovery_lag,omitempty"`
	ReinvestmentTermMonths *int     `yaml:"reinvestment_term_months,omitempty" json:"reinvestment_term_months,omitempty"`
	RPExtensionMonths      *int     `yaml:"rp_extension_months,omitempty" json:"rp_extension_months,omitempty"`
	SeniorExpenseRate      *float64 `yaml:"senior_expense_rate,omitempty" json:"senior_expense_rate,omitempty"`
	SeniorExpenseFixed     *float64 `yaml:"senior_expense_fixed,omitempty" json:"senior_expense_fixed,omitempty"`
	Liquidation            string   `yaml:"liquidation,omitempty" json:"liquidation,omitempty"`
	CDRLockoutMonths       *int     `yaml:"cdr_lockout_months,omitempty" json:"cdr_lockout_months,omitempty"`
	CPRLockoutMonths       *int     `yaml:"cpr_lockout_months,omitempty" json:"cpr_lockout_months,omitempty"`
	DayCount               string   `yaml:"day_count,omitempty" json:"day_count,omitempty"`
}

type setter func(o *Overrides, value string) error

func floatSetter(name string, field func(*Overrides) **float64) setter {
	return func(o *Overrides, value string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return invalid(name, value, "not a number")
		}
		*field(o) = &v
		return nil
	}
}

func intSetter(name string, field func(*Overrides) **int) setter {
	return func(o *Overrides, value string) error {
		v, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return invalid(name, value, "not an integer")
		}
		*field(o) = &v
		return nil
	}
}

var setters = map[string]setter{
	"as_of":     func(o *Overrides, v string) error { o.AsOf = v; return nil },
	"frequency": func(o *Overrides, v string) error { o.Frequency = v; return nil },
	"call_date": func(o *Overrides, v string) error { o.CallDate = v; return nil },
	"liquidation": func(o *Overrides, v string) error {
		o.Liquidation = v
		return nil
	},
	"day_count": func(o *Overrides, v string) error { o.DayCount = v; return nil },

	"cdr":                  floatSetter("cdr", func(o *Overrides) **float64 { return &o.CDR }),
	"cpr":                  floatSetter("cpr", func(o *Overrides) **float64 { return &o.CPR }),
	"was":                  floatSetter("was", func(o *Overrides) **float64 { return &o.WAS }),
	"price":                floatSetter("price", func(o *Overrides) **float64 { return &o.Price }),
	"recovery_rate":        floatSetter("recovery_rate", func(o *Overrides) **float64 { return &o.RecoveryRate }),
	"reinvestment_spread":  floatSetter("reinvestment_spread", func(o *Overrides) **float64 { return &o.ReinvestmentSpread }),
	"senior_expense_rate":  floatSetter("senior_expense_rate", func(o *Overrides) **float64 { return &o.SeniorExpenseRate }),
	"senior_expense_fixed": floatSetter("senior_expense_fixed", func(o *Overrides) **float64 { return &o.SeniorExpenseFixed }),

	"recovery_lag":             intSetter("recovery_lag", func(o *Overrides) **int { return &o.RecoveryLag }),
	"reinvestment_term_months": intSetter("reinvestment_term_months", func(o *Overrides) **int { return &o.ReinvestmentTermMonths }),
	"rp_extension_months":      intSetter("rp_extension_months", func(o *Overrides) **int { return &o.RPExtensionMonths }),
	"cdr_lockout_months":       intSetter("cdr_lockout_months", func(o *Overrides) **int { return &o.CDRLockoutMonths }),
	"cpr_lockout_months":       intSetter("cpr_lockout_months", func(o *Overrides) **int { return &o.CPRLockoutMonths }),
}

// Options lists the recognized override names.
func Options() []string {
	out := make([]string, 0, len(setters))
	for name := range setters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Set assigns one option by name from its string form. Hyphens are accepted
// in place of underscores so CLI flag names can be passed through.
func (o *Overrides) Set(name, value string) error {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	set, ok := setters[key]
	if !ok {
		return invalid("option", name, "unknown option (supported: "+strings.Join(Options(), ", ")+")")
	}
	return set(o, value)
}

// Merge returns o with every field set in other taking precedence.
func (o Overrides) Merge(other Overrides) Overrides {
	out := o
	if other.AsOf != "" {
		out.AsOf = other.AsOf
	}
	if other.Frequency != "" {
		out.Frequency = other.Frequency
	}
	if other.CallDate != "" {
		out.CallDate = other.CallDate
	}
	if other.Liquidation != "" {
		out.Liquidation = other.Liquidation
	}
	if other.DayCount != "" {
		out.DayCount = other.DayCount
	}
	mergeFloat(&out.CDR, other.CDR)
	mergeFloat(&out.CPR, other.CPR)
	mergeFloat(&out.WAS, other.WAS)
	mergeFloat(&out.Price, other.Price)
	mergeFloat(&out.RecoveryRate, other.RecoveryRate)
	mergeFloat(&out.ReinvestmentSpread, other.ReinvestmentSpread)
	mergeFloat(&out.SeniorExpenseRate, other.SeniorExpenseRate)
	mergeFloat(&out.SeniorExpenseFixed, other.SeniorExpenseFixed)
	mergeInt(&out.RecoveryLag, other.RecoveryLag)
	mergeInt(&out.ReinvestmentTermMonths, other.ReinvestmentTermMonths)
	mergeInt(&out.RPExtensionMonths, other.RPExtensionMonths)
	mergeInt(&out.CDRLockoutMonths, other.CDRLockoutMonths)
	mergeInt(&out.CPRLockoutMonths, other.CPRLockoutMonths)
	return out
}

func mergeFloat(dst **float64, src *float64) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func mergeInt(dst **int, src *int) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// Resolve builds the Assumptions for a deal: package defaults, then the
// deal's static values, then the overrides. The result is validated before
// it is returned.
func Resolve(d deal.Deal, o Overrides) (Assumptions, error) {
	a := Assumptions{
		Frequency:              DefaultFrequency,
		CDR:                    DefaultCDR,
		CPR:                    DefaultCPR,
		RecoveryRate:           DefaultRecoveryRate,
		WAS:                    d.AvgSpread,
		ReinvestmentSpread:     d.AvgSpread,
		CallDate:               d.CallDate,
		Price:                  DefaultPrice,
		ReinvestmentTermMonths: DefaultReinvestmentTermMonths,
	}
	if d.NAV > 0 {
		a.Price = d.NAV
	}

	if o.AsOf != "" {
		t, err := ParseDate(o.AsOf)
		if err != nil {
			return Assumptions{}, invalid("as_of", o.AsOf, "malformed date")
		}
		a.AsOf = t
	}
	if o.Frequency != "" {
		f, err := ParseFrequency(o.Frequency)
		if err != nil {
			return Assumptions{}, invalid("frequency", o.Frequency, "must be monthly or quarterly")
		}
		a.Frequency = f
	}
	if o.Liquidation != "" {
		l, err := ParseLiquidation(o.Liquidation)
		if err != nil {
			return Assumptions{}, invalid("liquidation", o.Liquidation, "must be par, market or nav90")
		}
		a.Liquidation = l
	}
	if o.DayCount != "" {
		dc, err := yield.ParseDayCount(o.DayCount)
		if err != nil {
			return Assumptions{}, invalid("day_count", o.DayCount, "must be 30E/360, ACT/360 or ACT/365F")
		}
		a.DayCount = dc
	}

	switch strings.ToLower(strings.TrimSpace(o.CallDate)) {
	case "":
	case "none":
		a.CallDate = time.Time{}
	default:
		t, err := ParseDate(o.CallDate)
		if err != nil {
			return Assumptions{}, invalid("call_date", o.CallDate, "malformed date")
		}
		a.CallDate = t
	}

	pickFloat(&a.CDR, o.CDR)
	pickFloat(&a.CPR, o.CPR)
	pickFloat(&a.WAS, o.WAS)
	pickFloat(&a.Price, o.Price)
	pickFloat(&a.RecoveryRate, o.RecoveryRate)
	pickFloat(&a.ReinvestmentSpread, o.ReinvestmentSpread)
	pickFloat(&a.SeniorExpenseRate, o.SeniorExpenseRate)
	pickFloat(&a.SeniorExpenseFixed, o.SeniorExpenseFixed)
	pickInt(&a.RecoveryLag, o.RecoveryLag)
	pickInt(&a.ReinvestmentTermMonths, o.ReinvestmentTermMonths)
	pickInt(&a.RPExtensionMonths, o.RPExtensionMonths)
	pickInt(&a.CDRLockoutMonths, o.CDRLockoutMonths)
	pickInt(&a.CPRLockoutMonths, o.CPRLockoutMonths)

	if err := a.Validate(d); err != nil {
		return Assumptions{}, err
	}
	return a, nil
}

func pickFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func pickInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// Check validates the overrides that do not depend on a deal: date and
// enum syntax and the domain of every rate that is set.
func (o Overrides) Check() error {
	if o.AsOf != "" {
		if _, err := ParseDate(o.AsOf); err != nil {
			return invalid("as_of", o.AsOf, "malformed date")
		}
	}
	if o.Frequency != "" {
		if _, err := ParseFrequency(o.Frequency); err != nil {
			return invalid("frequency", o.Frequency, "must be monthly or quarterly")
		}
	}
	if o.Liquidation != "" {
		if _, err := ParseLiquidation(o.Liquidation); err != nil {
			return invalid("liquidation", o.Liquidation, "must be par, market or nav90")
		}
	}
	if o.DayCount != "" {
		if _, err := yield.ParseDayCount(o.DayCount); err != nil {
			return invalid("day_count", o.DayCount, "must be 30E/360, ACT/360 or ACT/365F")
		}
	}
	if c := strings.TrimSpace(o.CallDate); c != "" && !strings.EqualFold(c, "none") {
		if _, err := ParseDate(c); err != nil {
			return invalid("call_date", o.CallDate, "malformed date")
		}
	}

	rates := []struct {
		name string
		v    *float64
	}{
		{"cdr", o.CDR},
		{"cpr", o.CPR},
		{"recovery_rate", o.RecoveryRate},
		{"was", o.WAS},
		{"reinvestment_spread", o.ReinvestmentSpread},
		{"senior_expense_rate", o.SeniorExpenseRate},
	}
	for _, r := range rates {
		if r.v != nil && (*r.v < 0 || *r.v >= 1) {
			return invalid(r.name, *r.v, "must be in [0, 1)")
		}
	}
	if o.Price != nil && *o.Price <= 0 {
		return invalid("price", *o.Price, "must be greater than zero")
	}
	if o.RecoveryLag != nil && (*o.RecoveryLag < 0 || *o.RecoveryLag > 1) {
		return invalid("recovery_lag", *o.RecoveryLag, "must be 0 or 1")
	}
	for _, m := range []struct {
		name string
		v    *int
	}{
		{"cdr_lockout_months", o.CDRLockoutMonths},
		{"cpr_lockout_months", o.CPRLockoutMonths},
	} {
		if m.v != nil && *m.v < 0 {
			return invalid(m.name, *m.v, "must be non-negative")
		}
	}
	return nil
}

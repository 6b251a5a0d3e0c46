package scenario

import (
	"fmt"
	"math"
	"strings"
)

// Frequency is the number of payment periods per year.
type Frequency int

const (
	Quarterly Frequency = 4
	Monthly   Frequency = 12
)

// ParseFrequency accepts "quarterly", "monthly", their first letters, or "4"/"12".
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "q", "quarterly", "4":
		return Quarterly, nil
	case "m", "monthly", "12":
		return Monthly, nil
	default:
		return 0, fmt.Errorf("unknown frequency %q (supported: monthly, quarterly)", s)
	}
}

func (f Frequency) String() string {
	switch f {
	case Quarterly:
		return "quarterly"
	case Monthly:
		return "monthly"
	default:
		return fmt.Sprintf("Frequency(%d)", int(f))
	}
}

// Valid reports whether f is a supported frequency.
func (f Frequency) Valid() bool {
	return f == Quarterly || f == Monthly
}

// Months is the length of one period in calendar months.
func (f Frequency) Months() int {
	return 12 / int(f)
}

// Fraction is the year fraction of one period.
func (f Frequency) Fraction() float64 {
	return 1 / float64(f)
}

// PeriodRate converts an annual runoff rate into the compounding-equivalent
// per-period rate, so that f periods at the result remove the same share of
// balance as one year at the annual rate.
func (f Frequency) PeriodRate(annual float64) float64 {
	if annual <= 0 {
		return 0
	}
	return 1 - math.Pow(1-annual, 1/float64(f))
}

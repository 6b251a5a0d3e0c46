package yield

import (
	"fmt"
	"strings"
	"time"
)

// DayCount converts a pair of dates into a year fraction.
type DayCount int

const (
	Thirty360E DayCount = iota // 30E/360 (Eurobond basis)
	Act360
	Act365F
)

func ParseDayCount(s string) (DayCount, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "30E/360", "30/360":
		return Thirty360E, nil
	case "ACT/360":
		return Act360, nil
	case "ACT/365F", "ACT/365":
		return Act365F, nil
	default:
		return Thirty360E, fmt.Errorf("unknown day count %q", s)
	}
}

func (dc DayCount) String() string {
	switch dc {
	case Act360:
		return "ACT/360"
	case Act365F:
		return "ACT/365F"
	default:
		return "30E/360"
	}
}

// YearFraction returns the year fraction from start to end. It is negative
// when end is before start.
func (dc DayCount) YearFraction(start, end time.Time) float64 {
	switch dc {
	case Act360:
		return actualDays(start, end) / 360.0
	case Act365F:
		return actualDays(start, end) / 365.0
	default:
		d1 := min(start.Day(), 30)
		d2 := min(end.Day(), 30)
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
	}
}

func actualDays(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

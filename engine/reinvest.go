package engine

import "time"

// Split is the reinvestment decision for one period's principal proceeds.
type Split struct {
	Reinvested  float64
	PassThrough float64
}

// SplitProceeds reinvests all scheduled and prepaid principal while date is
// before the reinvestment end date, and none of it afterwards. Recovery
// cash is never offered here; it always passes through to the waterfall.
func SplitProceeds(proceeds float64, date, reinvestmentEnd time.Time) Split {
	if proceeds <= 0 {
		return Split{}
	}
	if date.Before(reinvestmentEnd) {
		return Split{Reinvested: proceeds}
	}
	return Split{PassThrough: proceeds}
}

package deal

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// NotFoundError reports a ticker missing from the deal table.
type NotFoundError struct {
	Ticker string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("deal %q not found", e.Ticker)
}

// DataIntegrityError reports reference data that cannot be simulated:
// bad tranche ranks, orphaned loans, negative balances and the like.
// Every problem found is kept in Err.
type DataIntegrityError struct {
	Ticker string // empty for table-wide problems
	Err    error
}

func (e *DataIntegrityError) Error() string {
	problems := e.Problems()
	scope := "reference data"
	if e.Ticker != "" {
		scope = fmt.Sprintf("deal %q", e.Ticker)
	}
	return fmt.Sprintf("data integrity: %s: %s", scope, strings.Join(problems, "; "))
}

func (e *DataIntegrityError) Unwrap() error { return e.Err }

// Problems lists each individual integrity failure.
func (e *DataIntegrityError) Problems() []string {
	errs := multierr.Errors(e.Err)
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

// NewIntegrityError combines problems into a *DataIntegrityError,
// or returns nil when there are none.
func NewIntegrityError(ticker string, problems ...error) error {
	err := multierr.Combine(problems...)
	if err == nil {
		return nil
	}
	return &DataIntegrityError{Ticker: ticker, Err: err}
}

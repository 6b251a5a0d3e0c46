package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// InvariantViolation aborts a run when the projection produces an
// impossible state. Values carries every intermediate figure of the
// failing period.
type InvariantViolation struct {
	Invariant string
	Period    int
	Date      time.Time
	Tranche   string // empty for pool-level checks
	Values    map[string]float64
}

func (e *InvariantViolation) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invariant %q violated in period %d (%s)", e.Invariant, e.Period, e.Date.Format("2006-01-02"))
	if e.Tranche != "" {
		fmt.Fprintf(&b, " tranche %s", e.Tranche)
	}

	keys := make([]string, 0, len(e.Values))
	for k := range e.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		sep := ", "
		if i == 0 {
			sep = ": "
		}
		fmt.Fprintf(&b, "%s%s=%.10g", sep, k, e.Values[k])
	}
	return b.String()
}

package batch

import (
	"context"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/clo/deal"
	"github.com/rustyeddy/clo/engine"
	"github.com/rustyeddy/clo/scenario"
)

var log = logrus.WithField("component", "batch")

// Outcome is the result of one combination. Exactly one of Result and
// Err is set. Assumptions is zero when the overrides did not resolve.
type Outcome struct {
	Combination
	Assumptions scenario.Assumptions
	Result      *engine.Result
	Err         error
	Elapsed     time.Duration
}

// OK reports whether the combination simulated without error. The IRR may
// still be undefined.
func (o Outcome) OK() bool { return o.Err == nil && o.Result != nil }

// Runner simulates combinations against one set of loaded tables. The
// tables are shared read-only between workers.
type Runner struct {
	Tables  deal.Tables
	Workers int // <= 0 uses GOMAXPROCS
}

// Run simulates every combination with at most Workers running at once.
// Failures are recorded on the combination's Outcome and do not stop the
// sweep. Cancelling ctx abandons combinations not yet started; they are
// returned with ctx's error and Run returns that error too. Outcomes are
// in combination order. Tables that fail their integrity checks stop the
// sweep before any combination starts.
func (r Runner) Run(ctx context.Context, combos []Combination) ([]Outcome, error) {
	if err := r.Tables.Validate(); err != nil {
		return nil, err
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]Outcome, len(combos))
	started := make([]bool, len(combos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range combos {
		if gctx.Err() != nil {
			break
		}
		started[i] = true
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = Outcome{Combination: c, Err: err}
				return nil
			}
			outcomes[i] = r.simulate(c)
			return nil
		})
	}
	_ = g.Wait()

	err := ctx.Err()
	for i, c := range combos {
		if !started[i] {
			outcomes[i] = Outcome{Combination: c, Err: err}
		}
	}
	if err != nil {
		log.WithError(err).Warnf("sweep cancelled after %d of %d combinations", countStarted(started), len(combos))
	}
	return outcomes, err
}

func (r Runner) simulate(c Combination) Outcome {
	start := time.Now()
	out := Outcome{Combination: c}
	defer func() {
		if out.Err != nil {
			log.WithFields(fields(c)).WithError(out.Err).Warn("combination failed")
		}
	}()

	set, err := r.Tables.Lookup(c.Deal)
	if err != nil {
		out.Err = err
		return out
	}
	a, err := scenario.Resolve(set.Deal, c.Overrides)
	if err != nil {
		out.Err = err
		return out
	}
	out.Assumptions = a
	out.Result, out.Err = engine.Run(set, a)
	out.Elapsed = time.Since(start)

	if out.Err == nil {
		log.WithFields(fields(c)).WithField("irr", out.Result.IRR.String()).Debug("combination done")
	}
	return out
}

func fields(c Combination) logrus.Fields {
	f := logrus.Fields{"deal": c.Deal, "index": c.Index}
	o := c.Overrides
	for name, v := range map[string]*float64{"cdr": o.CDR, "cpr": o.CPR, "was": o.WAS, "price": o.Price} {
		if v != nil {
			f[name] = *v
		}
	}
	if o.CallDate != "" {
		f["call_date"] = o.CallDate
	}
	return f
}

func countStarted(started []bool) int {
	n := 0
	for _, s := range started {
		if s {
			n++
		}
	}
	return n
}

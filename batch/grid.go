// Package batch runs sensitivity sweeps: every combination of a grid of
// deals and assumption values, simulated in parallel.
package batch

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/clo/scenario"
)

// Grid lists the values to sweep. An empty axis keeps the base value.
type Grid struct {
	Deals     []string  `yaml:"deals" json:"deals"`
	CDR       []float64 `yaml:"cdr,omitempty" json:"cdr,omitempty"`
	CPR       []float64 `yaml:"cpr,omitempty" json:"cpr,omitempty"`
	WAS       []float64 `yaml:"was,omitempty" json:"was,omitempty"`
	CallDates []string  `yaml:"call_dates,omitempty" json:"call_dates,omitempty"`
	Price     []float64 `yaml:"price,omitempty" json:"price,omitempty"`
}

// Combination is one point of a grid.
type Combination struct {
	Index     int
	Deal      string
	Overrides scenario.Overrides
}

func (c Combination) String() string {
	o := c.Overrides
	parts := []string{c.Deal}
	add := func(name string, v *float64) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s=%g", name, *v))
		}
	}
	add("cdr", o.CDR)
	add("cpr", o.CPR)
	add("was", o.WAS)
	if o.CallDate != "" {
		parts = append(parts, "call="+o.CallDate)
	}
	add("price", o.Price)
	return strings.Join(parts, " ")
}

// Size is the number of combinations the grid expands to.
func (g Grid) Size() int {
	n := len(g.Deals)
	for _, l := range []int{len(g.CDR), len(g.CPR), len(g.WAS), len(g.CallDates), len(g.Price)} {
		if l > 0 {
			n *= l
		}
	}
	return n
}

// Combinations expands the grid over base. Deals vary slowest and price
// fastest, so the order is stable for a given grid.
func (g Grid) Combinations(base scenario.Overrides) []Combination {
	out := make([]Combination, 0, g.Size())
	for _, d := range g.Deals {
		for _, cdr := range axis(g.CDR) {
			for _, cpr := range axis(g.CPR) {
				for _, was := range axis(g.WAS) {
					for _, call := range strAxis(g.CallDates) {
						for _, price := range axis(g.Price) {
							o := base.Merge(scenario.Overrides{
								CDR:      cdr,
								CPR:      cpr,
								WAS:      was,
								CallDate: call,
								Price:    price,
							})
							out = append(out, Combination{Index: len(out), Deal: d, Overrides: o})
						}
					}
				}
			}
		}
	}
	return out
}

func axis(values []float64) []*float64 {
	if len(values) == 0 {
		return []*float64{nil}
	}
	out := make([]*float64, len(values))
	for i := range values {
		v := values[i]
		out[i] = &v
	}
	return out
}

func strAxis(values []string) []string {
	if len(values) == 0 {
		return []string{""}
	}
	return values
}

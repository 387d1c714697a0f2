// Package colorramp maps numeric values onto colours: threshold ramps for
// choropleths, interpolation between two colours, dataset palettes and fixed
// label colours.
package colorramp

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"fjacquet/cultura-csv/internal/parsererror"
)

// Stop is one step of a ramp: values reaching Threshold get Color.
type Stop struct {
	Threshold float64 `yaml:"threshold" toml:"threshold" json:"threshold"`
	Color     string  `yaml:"color" toml:"color" json:"color"`
}

// Comparison decides whether a value equal to a threshold belongs to that
// threshold's bucket.
type Comparison string

const (
	// Inclusive selects the highest threshold <= v.
	Inclusive Comparison = "inclusive"
	// Strict selects the highest threshold < v, the way the map legends are written
	// ("> 2000").
	Strict Comparison = "strict"
)

// ParseComparison accepts "inclusive", "strict" or "" (inclusive).
func ParseComparison(s string) (Comparison, error) {
	switch Comparison(strings.ToLower(strings.TrimSpace(s))) {
	case "", Inclusive:
		return Inclusive, nil
	case Strict:
		return Strict, nil
	}
	return "", &parsererror.ContractError{
		Component: "colorramp",
		Option:    "comparison",
		Value:     s,
		Reason:    "must be 'inclusive' or 'strict'",
	}
}

// Ramp is an immutable, validated list of stops.
type Ramp struct {
	stops []Stop
	cmp   Comparison
}

// New validates stops (non-empty, thresholds finite and strictly ascending, colours
// set) and copies them.
func New(stops []Stop, cmp Comparison) (*Ramp, error) {
	if cmp == "" {
		cmp = Inclusive
	}
	if cmp != Inclusive && cmp != Strict {
		return nil, contractErr("comparison", string(cmp), "must be 'inclusive' or 'strict'")
	}
	if len(stops) == 0 {
		return nil, contractErr("stops", "[]", "at least one stop is required")
	}
	for i, s := range stops {
		if math.IsNaN(s.Threshold) || math.IsInf(s.Threshold, 0) {
			return nil, contractErr("stops", fmt.Sprint(s.Threshold), "thresholds must be finite")
		}
		if strings.TrimSpace(s.Color) == "" {
			return nil, contractErr("stops", fmt.Sprint(s.Threshold), "colour is empty")
		}
		if i > 0 && s.Threshold <= stops[i-1].Threshold {
			return nil, contractErr("stops", fmt.Sprint(s.Threshold), "thresholds must be strictly ascending")
		}
	}
	return &Ramp{stops: append([]Stop(nil), stops...), cmp: cmp}, nil
}

// MustNew is New for package-level tables; it panics on invalid stops.
func MustNew(stops []Stop, cmp Comparison) *Ramp {
	r, err := New(stops, cmp)
	if err != nil {
		panic(err)
	}
	return r
}

// Color returns the bucket colour for v. Values below every threshold, and NaN,
// get the lowest colour.
func (r *Ramp) Color(v float64) string {
	if math.IsNaN(v) {
		return r.stops[0].Color
	}
	// i is the number of stops selected by the comparison.
	i := sort.Search(len(r.stops), func(i int) bool {
		if r.cmp == Strict {
			return r.stops[i].Threshold >= v
		}
		return r.stops[i].Threshold > v
	})
	if i == 0 {
		return r.stops[0].Color
	}
	return r.stops[i-1].Color
}

// Stops returns a copy of the ramp's stops.
func (r *Ramp) Stops() []Stop {
	return append([]Stop(nil), r.stops...)
}

// Comparison returns the ramp's comparison mode.
func (r *Ramp) Comparison() Comparison {
	return r.cmp
}

// LegendEntry describes one bucket for a map legend. To is nil for the last,
// open-ended bucket.
type LegendEntry struct {
	From  float64  `json:"from"`
	To    *float64 `json:"to"`
	Color string   `json:"color"`
}

// Legend lists the buckets from lowest to highest.
func (r *Ramp) Legend() []LegendEntry {
	out := make([]LegendEntry, len(r.stops))
	for i, s := range r.stops {
		var to *float64
		if i+1 < len(r.stops) {
			next := r.stops[i+1].Threshold
			to = &next
		}
		out[i] = LegendEntry{From: s.Threshold, To: to, Color: s.Color}
	}
	return out
}

func contractErr(option, value, reason string) error {
	return &parsererror.ContractError{Component: "colorramp", Option: option, Value: value, Reason: reason}
}

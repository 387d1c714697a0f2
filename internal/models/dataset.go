package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Group is an ordered Category -> value mapping. Keys keep the order in which
// they first appeared in the source.
type Group struct {
	keys      []string
	values    map[string]decimal.Decimal
	defaulted map[string]bool
}

// Len returns the number of categories in the group.
func (g Group) Len() int {
	return len(g.keys)
}

// Keys returns the categories in insertion order.
func (g Group) Keys() []string {
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Value returns the value recorded for category.
func (g Group) Value(category string) (decimal.Decimal, bool) {
	v, ok := g.values[category]
	return v, ok
}

// IsDefaulted reports whether the value of category is zero because its source
// text could not be parsed, as opposed to a genuine zero.
func (g Group) IsDefaulted(category string) bool {
	return g.defaulted[category]
}

// Float64s returns the values keyed by category, for consumers that join on names.
func (g Group) Float64s() map[string]float64 {
	out := make(map[string]float64, len(g.keys))
	for _, k := range g.keys {
		out[k] = g.values[k].InexactFloat64()
	}
	return out
}

// Series returns the labels/values arrays expected by the charting layer.
func (g Group) Series() Series {
	s := Series{Labels: g.Keys(), Values: make([]float64, len(g.keys))}
	for i, k := range g.keys {
		s.Values[i] = g.values[k].InexactFloat64()
	}
	return s
}

// MarshalJSON writes the group as an object whose keys keep insertion order.
func (g Group) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range g.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(g.values[k].String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Series is the label/value pair of arrays handed to a chart.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// ParsedDataset holds the four groups produced from one source file. It is
// immutable once built and is replaced wholesale when another source is selected.
type ParsedDataset struct {
	groups map[GroupName]*Group
}

// Group returns the named group; unknown names yield an empty group.
func (d *ParsedDataset) Group(name GroupName) Group {
	if d == nil {
		return Group{}
	}
	if g, ok := d.groups[name]; ok {
		return *g
	}
	return Group{}
}

// Len returns the number of categories across all groups.
func (d *ParsedDataset) Len() int {
	n := 0
	for _, name := range GroupOrder {
		n += d.Group(name).Len()
	}
	return n
}

// IsEmpty reports whether every group is empty.
func (d *ParsedDataset) IsEmpty() bool {
	return d.Len() == 0
}

// Lookup finds category in any group.
func (d *ParsedDataset) Lookup(category string) (GroupName, decimal.Decimal, bool) {
	for _, name := range GroupOrder {
		if v, ok := d.Group(name).Value(category); ok {
			return name, v, true
		}
	}
	return "", decimal.Zero, false
}

// MarshalJSON writes {"regions":{...},"geographical":{...},...} in group order.
func (d *ParsedDataset) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range GroupOrder {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"` + string(name) + `":`)
		body, err := d.Group(name).MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DatasetBuilder assembles a ParsedDataset. Build hands the dataset over and
// resets the builder, so a returned dataset is never mutated afterwards.
type DatasetBuilder struct {
	ds *ParsedDataset
}

// NewDatasetBuilder returns a builder with four empty groups.
func NewDatasetBuilder() *DatasetBuilder {
	return &DatasetBuilder{ds: newDataset()}
}

func newDataset() *ParsedDataset {
	ds := &ParsedDataset{groups: make(map[GroupName]*Group, len(GroupOrder))}
	for _, name := range GroupOrder {
		ds.groups[name] = &Group{
			keys:      []string{},
			values:    map[string]decimal.Decimal{},
			defaulted: map[string]bool{},
		}
	}
	return ds
}

// Set records value for category in group. A repeated category keeps its first
// position and takes the latest value.
func (b *DatasetBuilder) Set(group GroupName, category string, value decimal.Decimal, defaulted bool) {
	g, ok := b.ds.groups[group]
	if !ok {
		return
	}
	if _, seen := g.values[category]; !seen {
		g.keys = append(g.keys, category)
	}
	g.values[category] = value
	if defaulted {
		g.defaulted[category] = true
	} else {
		delete(g.defaulted, category)
	}
}

// Build returns the dataset and starts a fresh one.
func (b *DatasetBuilder) Build() *ParsedDataset {
	ds := b.ds
	b.ds = newDataset()
	return ds
}

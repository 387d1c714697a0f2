package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGroupName(t *testing.T) {
	tests := []struct {
		in   string
		want GroupName
		ok   bool
	}{
		{"regions", GroupRegions, true},
		{" Region ", GroupRegions, true},
		{"geo", GroupGeographical, true},
		{"geographical", GroupGeographical, true},
		{"POPULATION", GroupPopulation, true},
		{"classification", GroupClassification, true},
		{"continents", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseGroupName(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDatasetBuilder_InsertionOrderAndOverwrite(t *testing.T) {
	b := NewDatasetBuilder()
	b.Set(GroupRegions, "Toscana", decimal.NewFromInt(3), false)
	b.Set(GroupRegions, "Lazio", decimal.NewFromInt(12), false)
	b.Set(GroupRegions, "Toscana", decimal.NewFromInt(7), false)
	b.Set(GroupPopulation, "Fino a 2.000 abitanti", decimal.Zero, true)
	b.Set("unknown", "Atlantide", decimal.NewFromInt(1), false)

	ds := b.Build()

	regions := ds.Group(GroupRegions)
	assert.Equal(t, []string{"Toscana", "Lazio"}, regions.Keys())
	v, ok := regions.Value("Toscana")
	require.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(7)))

	assert.True(t, ds.Group(GroupPopulation).IsDefaulted("Fino a 2.000 abitanti"))
	assert.False(t, regions.IsDefaulted("Lazio"))
	assert.Equal(t, 3, ds.Len())
	assert.False(t, ds.IsEmpty())

	_, _, ok = ds.Lookup("Atlantide")
	assert.False(t, ok)
}

func TestDatasetBuilder_DefaultedClearedByRealValue(t *testing.T) {
	b := NewDatasetBuilder()
	b.Set(GroupRegions, "Lazio", decimal.Zero, true)
	b.Set(GroupRegions, "Lazio", decimal.NewFromInt(4), false)

	assert.False(t, b.Build().Group(GroupRegions).IsDefaulted("Lazio"))
}

func TestDatasetBuilder_BuildResets(t *testing.T) {
	b := NewDatasetBuilder()
	b.Set(GroupRegions, "Lazio", decimal.NewFromInt(1), false)
	first := b.Build()

	b.Set(GroupRegions, "Umbria", decimal.NewFromInt(2), false)
	second := b.Build()

	assert.Equal(t, []string{"Lazio"}, first.Group(GroupRegions).Keys())
	assert.Equal(t, []string{"Umbria"}, second.Group(GroupRegions).Keys())
}

func TestParsedDataset_Empty(t *testing.T) {
	ds := NewDatasetBuilder().Build()
	assert.True(t, ds.IsEmpty())
	for _, name := range GroupOrder {
		assert.Equal(t, 0, ds.Group(name).Len())
	}

	var nilDS *ParsedDataset
	assert.Equal(t, 0, nilDS.Group(GroupRegions).Len())

	data, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.Equal(t, `{"regions":{},"geographical":{},"population":{},"classification":{}}`, string(data))
}

func TestParsedDataset_Lookup(t *testing.T) {
	b := NewDatasetBuilder()
	b.Set(GroupGeographical, "Centro", decimal.NewFromInt(15), false)
	ds := b.Build()

	group, v, ok := ds.Lookup("Centro")
	require.True(t, ok)
	assert.Equal(t, GroupGeographical, group)
	assert.True(t, v.Equal(decimal.NewFromInt(15)))
}

func TestParsedDataset_MarshalJSONKeepsOrder(t *testing.T) {
	b := NewDatasetBuilder()
	b.Set(GroupRegions, "Veneto", decimal.RequireFromString("1234.5"), false)
	b.Set(GroupRegions, "Abruzzo", decimal.NewFromInt(2), false)
	b.Set(GroupClassification, "Biblioteche \"statali\"", decimal.NewFromInt(9), false)

	data, err := json.Marshal(b.Build())
	require.NoError(t, err)
	assert.Equal(t,
		`{"regions":{"Veneto":1234.5,"Abruzzo":2},"geographical":{},"population":{},"classification":{"Biblioteche \"statali\"":9}}`,
		string(data))
}

func TestGroup_SeriesAndFloat64s(t *testing.T) {
	b := NewDatasetBuilder()
	b.Set(GroupRegions, "Lazio", decimal.RequireFromString("45.5"), false)
	b.Set(GroupRegions, "Toscana", decimal.NewFromInt(40), false)
	g := b.Build().Group(GroupRegions)

	assert.Equal(t, Series{Labels: []string{"Lazio", "Toscana"}, Values: []float64{45.5, 40}}, g.Series())
	assert.Equal(t, map[string]float64{"Lazio": 45.5, "Toscana": 40}, g.Float64s())

	data, err := json.Marshal(Group{}.Series())
	require.NoError(t, err)
	assert.JSONEq(t, `{"labels":[],"values":[]}`, string(data))
}

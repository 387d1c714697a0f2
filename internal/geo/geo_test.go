package geo

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/cultura-csv/internal/colorramp"
	"fjacquet/cultura-csv/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestPointsFromCSV(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "biblioteche_luoghi.csv"))
	require.NoError(t, err)
	defer f.Close()

	fc, skipped, err := PointsFromCSV(f, PointOptions{
		Schema:  LibrarySchema,
		Exclude: []string{"Biblioteca Medica Statale di Roma"},
		Color:   MarkerColor,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, skipped)
	require.Len(t, fc.Features, 3)

	first := fc.Features[0]
	assert.Equal(t, "RM0267", first.ID)
	assert.Equal(t, "Biblioteca Nazionale Centrale di Roma", first.Properties[PropName])
	assert.Equal(t, "Roma", first.Properties[PropCity])
	assert.Equal(t, "Lazio", first.Properties[PropRegion])
	assert.Equal(t, MarkerColor, first.Properties[PropFillColor])

	pt, ok := first.Geometry.(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, 12.4969, pt.X(), "longitude first")
	assert.Equal(t, 41.9036, pt.Y())

	napoli := fc.Features[2].Geometry.(*geom.Point)
	assert.Equal(t, 14.2497, napoli.X(), "comma decimals accepted")

	for _, feature := range fc.Features {
		assert.NotEqual(t, "Biblioteca Medica Statale di Roma", feature.Properties[PropName])
	}
}

func TestMarkerColorIsMidpoint(t *testing.T) {
	mid, err := colorramp.Interpolate("#08306b", "#c6dbef", 0.5)
	require.NoError(t, err)
	assert.Equal(t, MarkerColor, mid)
}

func TestPoints_DefaultSchemaAndEncode(t *testing.T) {
	rows := []map[string]string{{
		"Library_ID": "A1", "Library_Name": "Civica", "Library_City": "Bra",
		"Library_Region": "Piemonte", "Library_Latitude": "44.7", "Library_Longitude": "7.85",
	}}
	fc, skipped := Points(rows, PointOptions{})
	assert.Zero(t, skipped)

	data, err := Encode(fc)
	require.NoError(t, err)

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "FeatureCollection", decoded.Type)
	require.Len(t, decoded.Features, 1)
	assert.Equal(t, "Point", decoded.Features[0].Geometry.Type)
	assert.Equal(t, []float64{7.85, 44.7}, decoded.Features[0].Geometry.Coordinates)
	assert.Equal(t, "Civica", decoded.Features[0].Properties["name"])
	assert.NotContains(t, decoded.Features[0].Properties, PropFillColor)
}

func TestPoints_NonFiniteCoordinatesSkipped(t *testing.T) {
	row := func(id, lat, lon string) map[string]string {
		return map[string]string{
			"Library_ID": id, "Library_Name": "Civica " + id, "Library_City": "Bra",
			"Library_Region": "Piemonte", "Library_Latitude": lat, "Library_Longitude": lon,
		}
	}
	rows := []map[string]string{
		row("N1", "NaN", "7.85"),
		row("N2", "44.7", "nan"),
		row("I1", "Inf", "7.85"),
		row("I2", "44.7", "-Infinity"),
		row("OK", "44.7", "7.85"),
	}

	fc, skipped := Points(rows, PointOptions{})
	assert.Equal(t, 4, skipped)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "OK", fc.Features[0].ID)

	_, err := Encode(fc)
	require.NoError(t, err)
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"45.07", 45.07, true},
		{" 45,07 ", 45.07, true},
		{"-90", -90, true},
		{"90.5", 0, false},
		{"NaN", 0, false},
		{"+Inf", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, ok := parseCoordinate(tt.input, 90)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestPoints_EmptyCollectionEncodesArray(t *testing.T) {
	fc, _ := Points(nil, PointOptions{})
	data, err := Encode(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"features":[]`)
}

func TestDecodeCollection(t *testing.T) {
	fc, err := DecodeCollection(readFixture(t, "regioni.geojson"))
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	assert.Equal(t, "12", fc.Features[0].ID, "numeric ids become text")
	assert.Equal(t, "9", fc.Features[1].ID)
	assert.IsType(t, &geom.Polygon{}, fc.Features[0].Geometry)
	assert.IsType(t, &geom.MultiPolygon{}, fc.Features[1].Geometry)
	assert.Nil(t, fc.Features[2].Geometry)
}

func TestDecodeCollection_Invalid(t *testing.T) {
	for _, input := range []string{`not json`, `{"type": "Feature"}`, `{"type":"FeatureCollection","features":[{"geometry":{"type":"Blob"}}]}`} {
		_, err := DecodeCollection([]byte(input))
		var formatErr *parsererror.InvalidFormatError
		assert.True(t, errors.As(err, &formatErr), input)
	}
}

func TestValuesFromJSON(t *testing.T) {
	values, err := ValuesFromJSON(readFixture(t, "valori_2010.json"))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Lazio": 64000, "Toscana": 0, "12": 3}, values)

	values, err = ValuesFromJSON([]byte(`{"Lazio": 5, "Umbria": "1,200"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Lazio": 5, "Umbria": 1200}, values)

	_, err = ValuesFromJSON([]byte(`[1,2`))
	assert.Error(t, err)
}

func TestJoin_ByName(t *testing.T) {
	fc, err := DecodeCollection(readFixture(t, "regioni.geojson"))
	require.NoError(t, err)
	ramp := colorramp.MustNew([]colorramp.Stop{
		{Threshold: 0, Color: "#FFEDA0"},
		{Threshold: 2000, Color: "#FEB24C"},
		{Threshold: 50000, Color: "#BD0026"},
	}, colorramp.Strict)

	joined, stats := Join(fc, "name", map[string]float64{"Lazio": 64000, "Toscana": 2000}, ramp)

	require.Len(t, joined.Features, 3)
	assert.Equal(t, 64000.0, joined.Features[0].Properties[PropValue])
	assert.Equal(t, "#BD0026", joined.Features[0].Properties[PropFillColor])
	assert.Equal(t, "#FFEDA0", joined.Features[1].Properties[PropFillColor], "2000 is not above 2000")
	assert.Equal(t, 0.0, joined.Features[2].Properties[PropValue], "missing area defaults to 0")
	assert.Equal(t, JoinStats{Matched: 2, Missing: []string{"Molise"}}, stats)

	_, present := fc.Features[0].Properties[PropValue]
	assert.False(t, present, "input collection is not modified")
}

func TestJoin_ByID(t *testing.T) {
	fc, err := DecodeCollection(readFixture(t, "regioni.geojson"))
	require.NoError(t, err)

	joined, stats := Join(fc, "id", map[string]float64{"12": 7}, nil)
	assert.Equal(t, 7.0, joined.Features[0].Properties[PropValue])
	assert.NotContains(t, joined.Features[0].Properties, PropFillColor)
	assert.Equal(t, 1, stats.Matched)
}

func TestCountWithin(t *testing.T) {
	areas, err := DecodeCollection(readFixture(t, "regioni.geojson"))
	require.NoError(t, err)
	points, _, err := PointsFromCSV(strings.NewReader(string(readFixture(t, "biblioteche_luoghi.csv"))), PointOptions{})
	require.NoError(t, err)

	counts := CountWithin(points, areas, "name")
	assert.Equal(t, map[string]float64{"Lazio": 2, "Toscana": 1, "Molise": 0}, counts)
}

func TestCountWithin_Hole(t *testing.T) {
	ring := []geom.Coord{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	hole := []geom.Coord{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}}
	donut := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{ring, hole})

	assert.True(t, contains(donut, geom.Coord{1, 1}))
	assert.False(t, contains(donut, geom.Coord{5, 5}))
	assert.False(t, contains(donut, geom.Coord{11, 5}))
	assert.False(t, contains(nil, geom.Coord{1, 1}))
}

// Package geo assembles GeoJSON for the map pages: library markers from location
// CSVs and choropleths joining per-area values onto boundary collections.
package geo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"fjacquet/cultura-csv/internal/colorramp"
	"fjacquet/cultura-csv/internal/models"
	"fjacquet/cultura-csv/internal/numberutils"
	"fjacquet/cultura-csv/internal/parsererror"

	"github.com/gocarina/gocsv"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Property names written onto features.
const (
	PropID        = "id"
	PropName      = "name"
	PropCity      = "city"
	PropRegion    = "region"
	PropValue     = "value"
	PropFillColor = "fillColor"
)

// LibrarySchema is the column layout of the library location exports.
var LibrarySchema = models.PointSchema{
	ID:        "Library_ID",
	Name:      "Library_Name",
	City:      "Library_City",
	Region:    "Library_Region",
	Latitude:  "Library_Latitude",
	Longitude: "Library_Longitude",
}

// MarkerColor is the fill used for library markers, halfway between the dark and
// light ends of the blue scale.
const MarkerColor = "#6786ad"

// PointOptions configures Points.
type PointOptions struct {
	Schema models.PointSchema
	// Exclude lists names (Schema.Name column) to leave out.
	Exclude []string
	// Color, when set, is written as the fillColor property.
	Color string
}

// PointsFromCSV reads a comma-separated file with a header row and builds one Point
// feature per row. It returns the number of rows skipped for missing or invalid
// coordinates.
func PointsFromCSV(r io.Reader, opts PointOptions) (*geojson.FeatureCollection, int, error) {
	rows, err := gocsv.CSVToMaps(r)
	if err != nil {
		return nil, 0, &parsererror.InvalidFormatError{ExpectedFormat: "CSV with header", Msg: err.Error()}
	}
	fc, skipped := Points(rows, opts)
	return fc, skipped, nil
}

// Points builds Point features from header-keyed rows.
func Points(rows []map[string]string, opts PointOptions) (*geojson.FeatureCollection, int) {
	schema := opts.Schema
	if schema == (models.PointSchema{}) {
		schema = LibrarySchema
	}
	excluded := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		excluded[strings.TrimSpace(name)] = true
	}

	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	skipped := 0
	for _, row := range rows {
		name := strings.TrimSpace(row[schema.Name])
		if excluded[name] {
			continue
		}
		lat, latOK := parseCoordinate(row[schema.Latitude], 90)
		lon, lonOK := parseCoordinate(row[schema.Longitude], 180)
		if !latOK || !lonOK {
			skipped++
			continue
		}

		id := strings.TrimSpace(row[schema.ID])
		props := map[string]interface{}{
			PropID:     id,
			PropName:   name,
			PropCity:   strings.TrimSpace(row[schema.City]),
			PropRegion: strings.TrimSpace(row[schema.Region]),
		}
		if opts.Color != "" {
			props[PropFillColor] = opts.Color
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         id,
			Geometry:   geom.NewPointFlat(geom.XY, []float64{lon, lat}),
			Properties: props,
		})
	}
	return fc, skipped
}

// parseCoordinate accepts "45.07" and "45,07" and rejects NaN, infinities and
// values outside ±limit.
func parseCoordinate(s string, limit float64) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < -limit || v > limit {
		return 0, false
	}
	return v, true
}

// DecodeCollection reads a FeatureCollection. Feature ids may be strings or numbers
// and null geometries are kept as nil.
func DecodeCollection(data []byte) (*geojson.FeatureCollection, error) {
	var raw struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &parsererror.InvalidFormatError{ExpectedFormat: "GeoJSON", Snippet: parsererror.Snippet(string(data), 80), Msg: err.Error()}
	}
	if raw.Type != "FeatureCollection" {
		return nil, &parsererror.InvalidFormatError{ExpectedFormat: "GeoJSON", Msg: fmt.Sprintf("expected FeatureCollection, got %q", raw.Type)}
	}

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(raw.Features))}
	for i, rawFeature := range raw.Features {
		var rf struct {
			ID         json.RawMessage        `json:"id"`
			Geometry   json.RawMessage        `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		}
		if err := json.Unmarshal(rawFeature, &rf); err != nil {
			return nil, &parsererror.InvalidFormatError{ExpectedFormat: "GeoJSON", Msg: fmt.Sprintf("feature %d: %v", i, err)}
		}

		var g geom.T
		if len(rf.Geometry) > 0 && !bytes.Equal(bytes.TrimSpace(rf.Geometry), []byte("null")) {
			if err := geojson.Unmarshal(rf.Geometry, &g); err != nil {
				return nil, &parsererror.InvalidFormatError{ExpectedFormat: "GeoJSON", Msg: fmt.Sprintf("feature %d geometry: %v", i, err)}
			}
		}
		if rf.Properties == nil {
			rf.Properties = map[string]interface{}{}
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         rawID(rf.ID),
			Geometry:   g,
			Properties: rf.Properties,
		})
	}
	return fc, nil
}

// Encode serialises fc.
func Encode(fc *geojson.FeatureCollection) ([]byte, error) {
	return fc.MarshalJSON()
}

// rawID renders a JSON string or number id as text.
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ValuesFromJSON reads per-area values, either as [{"id": ..., "value": ...}] or as
// an object {"area": value}. Values that are not numbers ("-", "n.d.") become 0.
func ValuesFromJSON(data []byte) (map[string]float64, error) {
	data = bytes.TrimSpace(data)
	out := make(map[string]float64)

	if len(data) > 0 && data[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, &parsererror.InvalidFormatError{ExpectedFormat: "values JSON", Msg: err.Error()}
		}
		for k, v := range obj {
			out[k] = rawNumber(v)
		}
		return out, nil
	}

	var records []struct {
		ID    json.RawMessage `json:"id"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &parsererror.InvalidFormatError{ExpectedFormat: "values JSON", Snippet: parsererror.Snippet(string(data), 80), Msg: err.Error()}
	}
	for _, r := range records {
		id := rawID(r.ID)
		if id == "" {
			continue
		}
		out[id] = rawNumber(r.Value)
	}
	return out, nil
}

func rawNumber(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, _ := numberutils.Float64OrZero(s, models.DecimalPoint)
		return v
	}
	return 0
}

// JoinStats reports how many features found a value.
type JoinStats struct {
	Matched int      `json:"matched"`
	Missing []string `json:"missing,omitempty"`
}

// Join returns a copy of fc where every feature carries a value property (0 when
// values has no entry for it) and, when ramp is set, the matching fillColor. key
// "id" joins on the feature id, any other key on that property.
func Join(fc *geojson.FeatureCollection, key string, values map[string]float64, ramp *colorramp.Ramp) (*geojson.FeatureCollection, JoinStats) {
	var stats JoinStats
	out := &geojson.FeatureCollection{BBox: fc.BBox, Features: make([]*geojson.Feature, 0, len(fc.Features))}

	for _, f := range fc.Features {
		props := make(map[string]interface{}, len(f.Properties)+2)
		for k, v := range f.Properties {
			props[k] = v
		}

		area := joinKey(f, key)
		value, ok := values[area]
		if ok {
			stats.Matched++
		} else {
			stats.Missing = append(stats.Missing, area)
		}
		props[PropValue] = value
		if ramp != nil {
			props[PropFillColor] = ramp.Color(value)
		}

		out.Features = append(out.Features, &geojson.Feature{
			ID:         f.ID,
			Geometry:   f.Geometry,
			BBox:       f.BBox,
			Properties: props,
		})
	}
	return out, stats
}

func joinKey(f *geojson.Feature, key string) string {
	if key == "" || (key == PropID && f.ID != "") {
		return f.ID
	}
	switch v := f.Properties[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

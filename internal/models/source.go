package models

import "strings"

// SourceKind selects the parser a source file goes through.
type SourceKind string

const (
	// KindCategorical is a delimited file routed through the whitelists.
	KindCategorical SourceKind = "categorical"
	// KindTable is a delimited table with a header row, one series per column.
	KindTable SourceKind = "table"
	// KindKeyValue is a list of "name=value" lines.
	KindKeyValue SourceKind = "keyvalue"
	// KindPoints is a CSV of named locations with latitude/longitude columns.
	KindPoints SourceKind = "points"
	// KindGeoJSON is a boundary FeatureCollection used as choropleth base.
	KindGeoJSON SourceKind = "geojson"
	// KindValues is a JSON array of {id, value} records joined onto a base map.
	KindValues SourceKind = "values"
	// KindSheet is a JSON workbook export: named tables of rows keyed Column1..N,
	// the first column naming the area.
	KindSheet SourceKind = "sheet"
)

// Valid reports whether k is a known kind.
func (k SourceKind) Valid() bool {
	switch k {
	case KindCategorical, KindTable, KindKeyValue, KindPoints, KindGeoJSON, KindValues, KindSheet:
		return true
	}
	return false
}

// DecimalConvention declares which character a source uses as decimal separator.
type DecimalConvention string

const (
	// DecimalPoint: "1,234.5" (',' groups thousands).
	DecimalPoint DecimalConvention = "point"
	// DecimalComma: "1.234,5" ('.' groups thousands).
	DecimalComma DecimalConvention = "comma"
)

// Valid reports whether c is a known convention.
func (c DecimalConvention) Valid() bool {
	return c == DecimalPoint || c == DecimalComma
}

// PointSchema maps the logical point fields onto the column names of one source.
type PointSchema struct {
	ID        string `yaml:"id" toml:"id" json:"id"`
	Name      string `yaml:"name" toml:"name" json:"name"`
	City      string `yaml:"city" toml:"city" json:"city"`
	Region    string `yaml:"region" toml:"region" json:"region"`
	Latitude  string `yaml:"latitude" toml:"latitude" json:"latitude"`
	Longitude string `yaml:"longitude" toml:"longitude" json:"longitude"`
}

// SourceSpec declares one source file once, so parsers never branch on file names.
type SourceSpec struct {
	Name       string            `yaml:"name" toml:"name" json:"name"`
	Title      string            `yaml:"title" toml:"title" json:"title,omitempty"`
	Location   string            `yaml:"location" toml:"location" json:"location"`
	Kind       SourceKind        `yaml:"kind" toml:"kind" json:"kind"`
	Encoding   string            `yaml:"encoding" toml:"encoding" json:"encoding,omitempty"`
	Delimiter  string            `yaml:"delimiter" toml:"delimiter" json:"delimiter,omitempty"`
	Decimal    DecimalConvention `yaml:"decimal" toml:"decimal" json:"decimal,omitempty"`
	ValueField int               `yaml:"value_field" toml:"value_field" json:"value_field,omitempty"`
	HeaderLine *int              `yaml:"header_line" toml:"header_line" json:"header_line,omitempty"`
	SkipLines  int               `yaml:"skip_lines" toml:"skip_lines" json:"skip_lines,omitempty"`
	DropFooter bool              `yaml:"drop_footer" toml:"drop_footer" json:"drop_footer,omitempty"`
	Separator  string            `yaml:"separator" toml:"separator" json:"separator,omitempty"`
	Schema     PointSchema       `yaml:"schema" toml:"schema" json:"schema"`
	Exclude    []string          `yaml:"exclude" toml:"exclude" json:"exclude,omitempty"`
	JoinKey    string            `yaml:"join_key" toml:"join_key" json:"join_key,omitempty"`
	Ramp       string            `yaml:"ramp" toml:"ramp" json:"ramp,omitempty"`
	Sheet      string            `yaml:"sheet" toml:"sheet" json:"sheet,omitempty"`
	Labels     []string          `yaml:"labels" toml:"labels" json:"labels,omitempty"`
}

// ApplyDefaults fills unset options with the values most ISTAT exports use.
func (s *SourceSpec) ApplyDefaults() {
	s.Kind = SourceKind(strings.ToLower(string(s.Kind)))
	if s.Kind == "" {
		s.Kind = KindCategorical
	}
	if s.Delimiter == "" {
		if s.Kind == KindTable {
			s.Delimiter = ";"
		} else {
			s.Delimiter = ","
		}
	}
	if s.Decimal == "" {
		if s.Kind == KindTable {
			s.Decimal = DecimalComma
		} else {
			s.Decimal = DecimalPoint
		}
	}
	if s.ValueField == 0 {
		s.ValueField = 1
	}
	if s.HeaderLine == nil {
		line := 0
		if s.Kind == KindTable {
			line = 1
		}
		s.HeaderLine = &line
	}
	if s.Separator == "" {
		s.Separator = "="
	}
	if s.Encoding == "" {
		s.Encoding = "utf-8"
	}
	if s.JoinKey == "" {
		s.JoinKey = "name"
	}
}

// DelimiterRune returns the first rune of Delimiter, or 0 when unset.
func (s SourceSpec) DelimiterRune() rune {
	for _, r := range s.Delimiter {
		return r
	}
	return 0
}

// Header returns the configured header line index.
func (s SourceSpec) Header() int {
	if s.HeaderLine == nil {
		return 0
	}
	return *s.HeaderLine
}

// Package sheet reads JSON workbook exports: an object of named tables, each an
// array of rows keyed Column1, Column2, ... where Column1 names the area.
package sheet

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fjacquet/cultura-csv/internal/models"
	"fjacquet/cultura-csv/internal/numberutils"
	"fjacquet/cultura-csv/internal/parsererror"
)

// AreaColumn holds the row label.
const AreaColumn = "Column1"

// VolumeBands labels Column2..Column9 of the collection-size tables.
var VolumeBands = []string{
	"Non indicato",
	"Fino a 2.000 volumi",
	"Da 2.001 a 5.000",
	"Da 5.001 a 10.000",
	"Da 10.001 a 100.000",
	"Da 100.001 a 500.000",
	"Da 500.001 a 1.000.000",
	"Oltre 1.000.000 di volumi",
}

// Sheet is one table of a workbook.
type Sheet struct {
	Name string
	rows []map[string]interface{}
}

// Parse selects table from a workbook. An empty table name picks the only table
// of a single-table workbook.
func Parse(data []byte, table string) (*Sheet, error) {
	var book map[string]json.RawMessage
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, &parsererror.InvalidFormatError{ExpectedFormat: "JSON workbook", Snippet: parsererror.Snippet(string(data), 80), Msg: err.Error()}
	}

	if table == "" {
		if len(book) != 1 {
			return nil, &parsererror.DataExtractionError{FieldName: "sheet", Reason: fmt.Sprintf("workbook has %d tables, name one of %s", len(book), strings.Join(tableNames(book), ", "))}
		}
		for name := range book {
			table = name
		}
	}
	raw, ok := book[table]
	if !ok {
		return nil, &parsererror.DataExtractionError{FieldName: "sheet", Reason: fmt.Sprintf("table %q not found (have %s)", table, strings.Join(tableNames(book), ", "))}
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &parsererror.InvalidFormatError{ExpectedFormat: "array of rows", Msg: fmt.Sprintf("table %q: %v", table, err)}
	}
	return &Sheet{Name: table, rows: rows}, nil
}

func tableNames(book map[string]json.RawMessage) []string {
	names := make([]string, 0, len(book))
	for name := range book {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Areas lists the distinct row labels in order, leaving out totals and the
// heading rows repeated inside the export.
func (s *Sheet) Areas() []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range s.rows {
		area := s.area(row)
		if area == "" || seen[area] || isHeading(area) {
			continue
		}
		seen[area] = true
		out = append(out, area)
	}
	return out
}

func isHeading(area string) bool {
	return area == "Totale" || area == "REGIONI" || strings.HasPrefix(area, "ANNO")
}

func (s *Sheet) area(row map[string]interface{}) string {
	if row == nil {
		return ""
	}
	v, _ := row[AreaColumn].(string)
	return strings.TrimSpace(v)
}

// Series returns the first row for area with labels[i] taken from Column{i+2}.
// Missing or non-numeric cells are 0.
func (s *Sheet) Series(area string, labels []string) (models.Series, bool) {
	for _, row := range s.rows {
		if s.area(row) != area {
			continue
		}
		series := models.Series{Labels: append([]string(nil), labels...), Values: make([]float64, len(labels))}
		for i := range labels {
			series.Values[i] = cellValue(row["Column"+strconv.Itoa(i+2)])
		}
		return series, true
	}
	return models.Series{}, false
}

func cellValue(v interface{}) float64 {
	switch v := v.(type) {
	case float64:
		return v
	case string:
		f, _ := numberutils.Float64OrZero(v, models.DecimalPoint)
		return f
	}
	return 0
}

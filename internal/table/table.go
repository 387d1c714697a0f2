// Package table reads the semicolon-separated statistical tables (a title line,
// a header line, data rows and a trailing footer) and turns them into one chart
// dataset per column.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/cultura-csv/internal/colorramp"
	"fjacquet/cultura-csv/internal/models"
	"fjacquet/cultura-csv/internal/numberutils"
	"fjacquet/cultura-csv/internal/parsererror"
)

// Options describes the table layout.
type Options struct {
	Delimiter rune
	// HeaderLine is the index of the header among the non-blank records; the
	// records above it are titles and are ignored.
	HeaderLine int
	// DropFooter removes the last record (usually a source note).
	DropFooter bool
}

// Table is a parsed table. Every row has exactly len(Headers) cells.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Dataset is one line/bar series.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor"`
	BorderWidth     int       `json:"borderWidth"`
}

// Chart is the labels/datasets pair consumed by the charting layer.
type Chart struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Parse reads a table from text.
func Parse(text string, opts Options) (*Table, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}
	if opts.HeaderLine < 0 {
		return nil, &parsererror.ContractError{Component: "table", Option: "header_line", Value: fmt.Sprint(opts.HeaderLine), Reason: "must be >= 0"}
	}

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, "\ufeff")))
	r.Comma = opts.Delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &parsererror.InvalidFormatError{
				ExpectedFormat: "delimited table",
				Snippet:        parsererror.Snippet(text, 80),
				Msg:            err.Error(),
			}
		}
		records = append(records, rec)
	}

	if opts.DropFooter && len(records) > 0 {
		records = records[:len(records)-1]
	}
	if opts.HeaderLine >= len(records) {
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat: "delimited table",
			Snippet:        parsererror.Snippet(text, 80),
			Msg:            fmt.Sprintf("header line %d not found (%d records)", opts.HeaderLine, len(records)),
		}
	}

	t := &Table{Headers: trimAll(records[opts.HeaderLine])}
	for _, rec := range records[opts.HeaderLine+1:] {
		row := make([]string, len(t.Headers))
		copy(row, trimAll(rec))
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Labels returns the first column.
func (t *Table) Labels() []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) > 0 {
			out[i] = row[0]
		}
	}
	return out
}

// Column returns the cells under header name.
func (t *Table) Column(name string) ([]string, bool) {
	idx := -1
	for i, h := range t.Headers {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Datasets builds one dataset per header after the first. Cells that do not
// parse under conv become 0.
func (t *Table) Datasets(conv models.DecimalConvention, palette colorramp.Palette) Chart {
	chart := Chart{Labels: t.Labels(), Datasets: []Dataset{}}
	for i := 1; i < len(t.Headers); i++ {
		data := make([]float64, len(t.Rows))
		for j, row := range t.Rows {
			data[j], _ = numberutils.Float64OrZero(row[i], conv)
		}
		fill, border := palette.Colors(i - 1)
		chart.Datasets = append(chart.Datasets, Dataset{
			Label:           t.Headers[i],
			Data:            data,
			BackgroundColor: fill,
			BorderColor:     border,
			BorderWidth:     1,
		})
	}
	return chart
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

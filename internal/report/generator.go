// Package report renders extracted datasets for export.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"

	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/models"

	"github.com/gocarina/gocsv"
)

// Supported output formats.
const (
	FormatJSON  = "json"
	FormatChart = "chart"
	FormatCSV   = "csv"
	FormatXML   = "xml"
)

// Formats lists every format Generate accepts.
var Formats = []string{FormatJSON, FormatChart, FormatCSV, FormatXML}

// Row is one category of a dataset in flat form.
type Row struct {
	XMLName   xml.Name `json:"-" csv:"-" xml:"row"`
	Group     string   `json:"group" csv:"group" xml:"group,attr"`
	Category  string   `json:"category" csv:"category" xml:"category"`
	Value     string   `json:"value" csv:"value" xml:"value"`
	Defaulted bool     `json:"defaulted" csv:"defaulted" xml:"defaulted,attr,omitempty"`
}

type xmlDataset struct {
	XMLName xml.Name `xml:"dataset"`
	Rows    []Row    `xml:"row"`
}

type chartGroups struct {
	Regions        models.Series `json:"regions"`
	Geographical   models.Series `json:"geographical"`
	Population     models.Series `json:"population"`
	Classification models.Series `json:"classification"`
}

// Generator renders datasets.
type Generator struct {
	logger    logging.Logger
	delimiter rune
}

// NewGenerator creates a Generator writing CSV with delimiter (',' when 0).
func NewGenerator(logger logging.Logger, delimiter rune) *Generator {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Generator{logger: logger, delimiter: delimiter}
}

// Rows flattens ds in group order, categories in insertion order.
func Rows(ds *models.ParsedDataset) []Row {
	rows := make([]Row, 0, ds.Len())
	for _, name := range models.GroupOrder {
		g := ds.Group(name)
		for _, category := range g.Keys() {
			v, _ := g.Value(category)
			rows = append(rows, Row{
				Group:     string(name),
				Category:  category,
				Value:     v.String(),
				Defaulted: g.IsDefaulted(category),
			})
		}
	}
	return rows
}

// Generate renders ds in format: "json" (grouped object), "chart" (labels and
// values per group), "csv" or "xml" (one row per category).
func (g *Generator) Generate(ds *models.ParsedDataset, format string) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch format {
	case FormatJSON, "":
		out, err = json.MarshalIndent(ds, "", "  ")
	case FormatChart:
		out, err = json.MarshalIndent(chartGroups{
			Regions:        ds.Group(models.GroupRegions).Series(),
			Geographical:   ds.Group(models.GroupGeographical).Series(),
			Population:     ds.Group(models.GroupPopulation).Series(),
			Classification: ds.Group(models.GroupClassification).Series(),
		}, "", "  ")
	case FormatCSV:
		out, err = g.csv(Rows(ds))
	case FormatXML:
		out, err = g.xml(Rows(ds))
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
	if err != nil {
		g.logger.WithError(err).Error("Failed to render dataset",
			logging.Field{Key: "format", Value: format})
		return nil, fmt.Errorf("failed to render %s report: %w", format, err)
	}
	return out, nil
}

func (g *Generator) csv(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = g.delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(w)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) xml(rows []Row) ([]byte, error) {
	out, err := xml.MarshalIndent(xmlDataset{Rows: rows}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

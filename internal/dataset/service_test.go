package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/cultura-csv/internal/fetch"
	"fjacquet/cultura-csv/internal/geo"
	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/models"
	"fjacquet/cultura-csv/internal/parsererror"
	"fjacquet/cultura-csv/internal/store"
	"fjacquet/cultura-csv/internal/whitelist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
ramps:
  - name: scala
    stops:
      - { threshold: 0, color: "#eeeeee" }
      - { threshold: 10, color: "#333333" }
sources:
  - name: prestiti
    location: prestiti.csv
    kind: categorical
  - name: lettura
    location: lettura.csv
    kind: table
    header_line: 1
    drop_footer: true
  - name: eventi
    location: eventi.txt
    kind: keyvalue
  - name: luoghi
    location: luoghi.csv
    kind: points
    exclude: [Biblioteca Esclusa]
  - name: regioni
    location: regioni.geojson
    kind: geojson
    join_key: name
  - name: valori
    location: valori.json
    kind: values
    ramp: scala
  - name: patrimonio
    location: patrimonio.json
    kind: sheet
    sheet: Tav 4.3
`

var testFiles = map[string]string{
	"prestiti.csv": "Territorio,Prestiti\nLazio,\"12\"\nToscana,\"3\"\nCentro,\"15\"\nAtlantide,\"9\"\nFino a 2.000 abitanti,\"n.d.\"\n",
	"lettura.csv":  "Lettura di libri per regione\nRegione;Lettori;Non lettori\nLazio;45,5;54,5\nToscana;40;60\nFonte: Istat\n",
	"eventi.txt":   "Roma=120\nFirenze=80\nmalformata\nMilano=95\n",
	"luoghi.csv": "Library_ID,Library_Name,Library_City,Library_Region,Library_Latitude,Library_Longitude\n" +
		"1,Biblioteca Nazionale,Roma,Lazio,41.9,12.5\n" +
		"2,Biblioteca Laurenziana,Firenze,Toscana,43.77,11.25\n" +
		"3,Biblioteca Angelica,Roma,Lazio,\"41,90\",12.47\n" +
		"4,Biblioteca Esclusa,Roma,Lazio,41.9,12.5\n" +
		"5,Senza coordinate,Roma,Lazio,,\n",
	"regioni.geojson": `{"type":"FeatureCollection","features":[
		{"type":"Feature","id":12,"properties":{"name":"Lazio"},"geometry":{"type":"Polygon","coordinates":[[[11.4,40.7],[14.1,40.7],[14.1,42.9],[11.4,42.9],[11.4,40.7]]]}},
		{"type":"Feature","id":"9","properties":{"name":"Toscana"},"geometry":{"type":"Polygon","coordinates":[[[9.6,42.9],[12.4,42.9],[12.4,44.5],[9.6,44.5],[9.6,42.9]]]}},
		{"type":"Feature","properties":{"name":"Molise"},"geometry":null}]}`,
	"valori.json":     `[{"id":"Lazio","value":12},{"id":"Toscana","value":"3"},{"id":"Umbria","value":"-"}]`,
	"patrimonio.json": `{"Tav 4.3":[{"Column1":"REGIONI","Column2":"Non indicato"},{"Column1":"Lazio","Column2":4,"Column3":"10"},{"Column1":"Totale","Column2":99}],"Tav 4.4":[]}`,
}

type mapFetcher struct {
	files map[string]string
	calls []string
}

func (f *mapFetcher) Load(_ context.Context, location, _ string) ([]byte, error) {
	f.calls = append(f.calls, location)
	data, ok := f.files[location]
	if !ok {
		return nil, &parsererror.SourceError{Location: location, Err: os.ErrNotExist}
	}
	return []byte(data), nil
}

func newTestService(t *testing.T) (*Service, *logging.MockLogger, *mapFetcher) {
	t.Helper()
	catalog, err := store.Decode([]byte(testCatalog), "yaml")
	require.NoError(t, err)

	logger := logging.NewMockLogger()
	fetcher := &mapFetcher{files: testFiles}
	svc, err := NewService(&store.MockCatalogStore{Catalog: catalog}, fetcher, whitelist.Options{}, logger)
	require.NoError(t, err)
	return svc, logger, fetcher
}

func TestNewService_CatalogError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewService(&store.MockCatalogStore{LoadError: boom}, &mapFetcher{}, whitelist.Options{}, logging.NewMockLogger())
	assert.ErrorIs(t, err, boom)
}

func TestNewService_CatalogWhitelistReplacesGroup(t *testing.T) {
	catalog, err := store.Decode([]byte("whitelists:\n  regions: [Lazio]\n"), "yaml")
	require.NoError(t, err)

	svc, err := NewService(&store.MockCatalogStore{Catalog: catalog}, &mapFetcher{}, whitelist.Options{}, logging.NewMockLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"Lazio"}, svc.Whitelists().List(models.GroupRegions))
	assert.NotEmpty(t, svc.Whitelists().List(models.GroupGeographical))
}

func TestDataset(t *testing.T) {
	svc, logger, _ := newTestService(t)

	ds, stats, err := svc.Dataset(context.Background(), "prestiti")
	require.NoError(t, err)

	assert.Equal(t, []string{"Lazio", "Toscana"}, ds.Group(models.GroupRegions).Keys())
	assert.Equal(t, []string{"Centro"}, ds.Group(models.GroupGeographical).Keys())
	assert.Equal(t, 4, stats.Accepted)
	assert.Equal(t, 2, stats.Dropped)
	assert.Equal(t, 1, stats.Defaulted)

	assert.True(t, logger.HasEntry("INFO", "Extracted dataset"))
	dropped, ok := logger.FieldValue("Extracted dataset", logging.FieldDropped)
	require.True(t, ok)
	assert.Equal(t, 2, dropped)
	assert.True(t, logger.HasEntry("DEBUG", "Categories outside every whitelist"))
}

func TestDataset_Errors(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.Dataset(context.Background(), "sconosciuta")
	assert.ErrorIs(t, err, parsererror.ErrUnknownSource)

	_, _, err = svc.Dataset(context.Background(), "lettura")
	assert.ErrorIs(t, err, parsererror.ErrWrongKind)
}

func TestGroup(t *testing.T) {
	svc, _, _ := newTestService(t)

	series, err := svc.Group(context.Background(), "prestiti", models.GroupRegions)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lazio", "Toscana"}, series.Labels)
	assert.Equal(t, []float64{12, 3}, series.Values)
}

func TestExtractText_UsesSpecLayout(t *testing.T) {
	svc, _, _ := newTestService(t)

	ds, stats, err := svc.ExtractText("Lazio;2021;1.234,5\n", models.SourceSpec{Name: "cli", Delimiter: ";", Decimal: models.DecimalComma, ValueField: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Accepted)
	v, ok := ds.Group(models.GroupRegions).Value("Lazio")
	require.True(t, ok)
	assert.Equal(t, "1234.5", v.String())

	_, _, err = svc.ExtractText("x", models.SourceSpec{Delimiter: "|"})
	var contractErr *parsererror.ContractError
	assert.True(t, errors.As(err, &contractErr))
}

func TestExtractText_SkipLines(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, stats, err := svc.ExtractText(testFiles["prestiti.csv"], models.SourceSpec{Name: "prestiti", SkipLines: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Skipped, "header and trailing blank line")
	assert.Equal(t, 1, stats.Dropped)
	assert.Equal(t, []string{"Atlantide"}, stats.Unmatched)
}

func TestTable(t *testing.T) {
	svc, _, _ := newTestService(t)

	tbl, chart, err := svc.Table(context.Background(), "lettura")
	require.NoError(t, err)
	assert.Equal(t, []string{"Regione", "Lettori", "Non lettori"}, tbl.Headers)
	assert.Equal(t, []string{"Lazio", "Toscana"}, chart.Labels)
	require.Len(t, chart.Datasets, 2)
	assert.Equal(t, []float64{45.5, 40}, chart.Datasets[0].Data)
}

func TestTop(t *testing.T) {
	svc, logger, _ := newTestService(t)

	top, err := svc.Top(context.Background(), "eventi", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Roma", top[0].Name)
	assert.Equal(t, "Milano", top[1].Name)

	skipped, ok := logger.FieldValue("Parsed key/value source", logging.FieldSkipped)
	require.True(t, ok)
	assert.Equal(t, 1, skipped)
}

func TestPoints(t *testing.T) {
	svc, _, _ := newTestService(t)

	fc, err := svc.Points(context.Background(), "luoghi")
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "Biblioteca Nazionale", fc.Features[0].Properties[geo.PropName])
	assert.Equal(t, geo.MarkerColor, fc.Features[0].Properties[geo.PropFillColor])
}

func TestSheet(t *testing.T) {
	svc, _, _ := newTestService(t)

	sh, labels, err := svc.Sheet(context.Background(), "patrimonio")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lazio"}, sh.Areas())

	series, ok := sh.Series("Lazio", labels)
	require.True(t, ok)
	assert.Equal(t, []float64{4, 10, 0, 0, 0, 0, 0, 0}, series.Values)
}

func TestColor(t *testing.T) {
	svc, _, _ := newTestService(t)

	c, err := svc.Color("scala", 10)
	require.NoError(t, err)
	assert.Equal(t, "#333333", c)

	c, err = svc.Color("scala", -1)
	require.NoError(t, err)
	assert.Equal(t, "#eeeeee", c)

	_, err = svc.Color("nessuna", 1)
	assert.ErrorIs(t, err, parsererror.ErrUnknownRamp)
}

func featureValues(t *testing.T, svc *Service, req ChoroplethRequest) (map[string]interface{}, map[string]interface{}, geo.JoinStats) {
	t.Helper()
	fc, stats, err := svc.Choropleth(context.Background(), req)
	require.NoError(t, err)
	values := map[string]interface{}{}
	colors := map[string]interface{}{}
	for _, f := range fc.Features {
		name := f.Properties[geo.PropName].(string)
		values[name] = f.Properties[geo.PropValue]
		colors[name] = f.Properties[geo.PropFillColor]
	}
	return values, colors, stats
}

func TestChoropleth_Values(t *testing.T) {
	svc, logger, _ := newTestService(t)

	values, colors, stats := featureValues(t, svc, ChoroplethRequest{Base: "regioni", Values: "valori"})
	assert.Equal(t, map[string]interface{}{"Lazio": 12.0, "Toscana": 3.0, "Molise": 0.0}, values)
	assert.Equal(t, "#333333", colors["Lazio"])
	assert.Equal(t, "#eeeeee", colors["Toscana"])
	assert.Equal(t, 2, stats.Matched)
	assert.Equal(t, []string{"Molise"}, stats.Missing)
	assert.True(t, logger.HasEntry("INFO", "Built choropleth"))
}

func TestChoropleth_CategoricalGroup(t *testing.T) {
	svc, _, _ := newTestService(t)

	values, colors, _ := featureValues(t, svc, ChoroplethRequest{Base: "regioni", Values: "prestiti", Ramp: "scala"})
	assert.Equal(t, 12.0, values["Lazio"])
	assert.Equal(t, 3.0, values["Toscana"])
	assert.Equal(t, "#333333", colors["Lazio"])
}

func TestChoropleth_PointsCountedPerArea(t *testing.T) {
	svc, _, _ := newTestService(t)

	values, colors, _ := featureValues(t, svc, ChoroplethRequest{Base: "regioni", Values: "luoghi"})
	assert.Equal(t, 2.0, values["Lazio"])
	assert.Equal(t, 1.0, values["Toscana"])
	assert.Equal(t, 0.0, values["Molise"])
	assert.Nil(t, colors["Lazio"], "no ramp, no fill")
}

func TestChoropleth_Errors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Choropleth(ctx, ChoroplethRequest{Base: "valori", Values: "valori"})
	assert.ErrorIs(t, err, parsererror.ErrWrongKind)

	_, _, err = svc.Choropleth(ctx, ChoroplethRequest{Base: "regioni", Values: "lettura"})
	assert.ErrorIs(t, err, parsererror.ErrWrongKind)

	_, _, err = svc.Choropleth(ctx, ChoroplethRequest{Base: "regioni", Values: "valori", Ramp: "nessuna"})
	assert.ErrorIs(t, err, parsererror.ErrUnknownRamp)
}

func TestFetchFailure(t *testing.T) {
	svc, _, fetcher := newTestService(t)
	fetcher.files = map[string]string{}

	_, _, err := svc.Dataset(context.Background(), "prestiti")
	var sourceErr *parsererror.SourceError
	require.True(t, errors.As(err, &sourceErr))
	assert.Equal(t, "prestiti.csv", sourceErr.Location)
}

func TestService_WithFileLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prestiti.csv"), []byte("Umbria,\"7\"\n"), 0600))

	catalog, err := store.Decode([]byte(testCatalog), "yaml")
	require.NoError(t, err)
	logger := logging.NewMockLogger()
	svc, err := NewService(&store.MockCatalogStore{Catalog: catalog}, fetch.New(dir, time.Second, logger), whitelist.Options{}, logger)
	require.NoError(t, err)

	ds, _, err := svc.Dataset(context.Background(), "prestiti")
	require.NoError(t, err)
	assert.Equal(t, []string{"Umbria"}, ds.Group(models.GroupRegions).Keys())
}

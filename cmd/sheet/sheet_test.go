package sheet

import (
	"context"
	"testing"

	"fjacquet/cultura-csv/internal/dataset/datasettest"
	"fjacquet/cultura-csv/internal/sheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalog = `
sources:
  - name: patrimonio
    location: patrimonio.json
    kind: sheet
    sheet: Tav 4.3
  - name: etichette
    location: patrimonio.json
    kind: sheet
    sheet: Tav 4.3
    labels: [Non indicato, Fino a 2.000 volumi]
`

var files = map[string]string{
	"patrimonio.json": `{"Tav 4.3":[{"Column1":"REGIONI","Column2":"Non indicato"},{"Column1":"Lazio","Column2":4,"Column3":"10"},{"Column1":"Toscana","Column2":1}],"Tav 4.4":[]}`,
}

func TestBuild_Areas(t *testing.T) {
	svc, _ := datasettest.NewService(t, catalog, files)

	res, err := Build(context.Background(), svc, "patrimonio", "")
	require.NoError(t, err)
	assert.Equal(t, "Tav 4.3", res.Table)
	assert.Equal(t, []string{"Lazio", "Toscana"}, res.Areas)
	assert.Nil(t, res.Series)
}

func TestBuild_Area(t *testing.T) {
	svc, _ := datasettest.NewService(t, catalog, files)

	res, err := Build(context.Background(), svc, "patrimonio", "Lazio")
	require.NoError(t, err)
	require.NotNil(t, res.Series)
	assert.Equal(t, sheet.VolumeBands, res.Series.Labels)
	assert.Equal(t, []float64{4, 10, 0, 0, 0, 0, 0, 0}, res.Series.Values)
	require.Len(t, res.Colors, len(sheet.VolumeBands))
	assert.Equal(t, "#c6dbef", res.Colors[0])
}

func TestBuild_DeclaredLabels(t *testing.T) {
	svc, _ := datasettest.NewService(t, catalog, files)

	res, err := Build(context.Background(), svc, "etichette", "Toscana")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, res.Series.Values)
}

func TestBuild_UnknownArea(t *testing.T) {
	svc, _ := datasettest.NewService(t, catalog, files)

	_, err := Build(context.Background(), svc, "patrimonio", "Atlantide")
	assert.ErrorContains(t, err, `area "Atlantide" not found`)
}

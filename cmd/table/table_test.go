package table

import (
	"context"
	"testing"

	"fjacquet/cultura-csv/internal/dataset/datasettest"
	"fjacquet/cultura-csv/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalog = `
sources:
  - name: lettura
    location: lettura.csv
    kind: table
    header_line: 1
    drop_footer: true
  - name: prestiti
    location: prestiti.csv
`

var files = map[string]string{
	"lettura.csv": "Lettura di libri per regione\nRegione;Lettori;Non lettori\nLazio;45,5;54,5\nToscana;40;60\nFonte: Istat\n",
}

func TestBuild(t *testing.T) {
	svc, _ := datasettest.NewService(t, catalog, files)

	res, err := Build(context.Background(), svc, "lettura")
	require.NoError(t, err)

	assert.Equal(t, "lettura", res.Source)
	assert.Equal(t, []string{"Regione", "Lettori", "Non lettori"}, res.Table.Headers)
	assert.Equal(t, []string{"Lazio", "Toscana"}, res.Chart.Labels)
	require.Len(t, res.Chart.Datasets, 2)
	assert.Equal(t, "Lettori", res.Chart.Datasets[0].Label)
	assert.Equal(t, []float64{45.5, 40}, res.Chart.Datasets[0].Data)
	assert.Equal(t, []float64{54.5, 60}, res.Chart.Datasets[1].Data)
}

func TestBuild_Errors(t *testing.T) {
	svc, _ := datasettest.NewService(t, catalog, files)

	_, err := Build(context.Background(), svc, "prestiti")
	assert.ErrorIs(t, err, parsererror.ErrWrongKind)

	_, err = Build(context.Background(), svc, "assente")
	assert.ErrorIs(t, err, parsererror.ErrUnknownSource)
}

func TestCommandMetadata(t *testing.T) {
	assert.Equal(t, "table <source>", Cmd.Use)
	assert.Error(t, Cmd.Args(Cmd, nil))
	assert.NoError(t, Cmd.Args(Cmd, []string{"lettura"}))
}

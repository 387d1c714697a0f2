package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/cultura-csv/internal/config"
	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/models"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	old := Stdout
	Stdout = buf
	t.Cleanup(func() { Stdout = old })
	return buf
}

func TestWriteOutput_Stdout(t *testing.T) {
	buf := captureStdout(t)
	log := logging.NewMockLogger()

	require.NoError(t, WriteOutput([]byte("ciao"), "", log))
	assert.Equal(t, "ciao\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteOutput([]byte("ciao\n"), "", log))
	assert.Equal(t, "ciao\n", buf.String())
	assert.Empty(t, log.Entries())
}

func TestWriteOutput_File(t *testing.T) {
	log := logging.NewMockLogger()
	path := filepath.Join(t.TempDir(), "nested", "out.json")

	require.NoError(t, WriteOutput([]byte(`{"a":1}`), path, log))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
	assert.True(t, log.HasEntry("INFO", "Output written"))
	v, ok := log.FieldValue("Output written", logging.FieldOutputFile)
	require.True(t, ok)
	assert.Equal(t, path, v)
}

func TestWriteJSON(t *testing.T) {
	buf := captureStdout(t)
	require.NoError(t, WriteJSON(map[string]int{"n": 3}, "", logging.NewMockLogger()))
	assert.JSONEq(t, `{"n":3}`, buf.String())
	assert.Contains(t, buf.String(), "\n  ")
}

func TestSourceSpecFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.CSV.Delimiter = ";"
	cfg.CSV.Decimal = "comma"
	cfg.CSV.ValueField = 2

	spec := SourceSpecFromConfig(cfg, "dati.csv", SpecOverrides{})
	assert.Equal(t, "dati.csv", spec.Name)
	assert.Equal(t, models.KindCategorical, spec.Kind)
	assert.Equal(t, ";", spec.Delimiter)
	assert.Equal(t, models.DecimalComma, spec.Decimal)
	assert.Equal(t, 2, spec.ValueField)
	assert.Equal(t, "utf-8", spec.Encoding)

	spec = SourceSpecFromConfig(cfg, "dati.csv", SpecOverrides{Delimiter: "\t", Decimal: "point", ValueField: 3, Encoding: "latin1"})
	assert.Equal(t, "\t", spec.Delimiter)
	assert.Equal(t, models.DecimalPoint, spec.Decimal)
	assert.Equal(t, 3, spec.ValueField)
	assert.Equal(t, "latin1", spec.Encoding)
}

func TestSourceSpecFromConfig_NilConfig(t *testing.T) {
	spec := SourceSpecFromConfig(nil, "x.csv", SpecOverrides{})
	assert.Equal(t, ",", spec.Delimiter)
	assert.Equal(t, models.DecimalPoint, spec.Decimal)
	assert.Equal(t, 1, spec.ValueField)
}

func TestContext(t *testing.T) {
	cmd := &cobra.Command{}
	assert.NotNil(t, Context(cmd))

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	cmd.SetContext(ctx)
	assert.Equal(t, "v", Context(cmd).Value(key{}))
}

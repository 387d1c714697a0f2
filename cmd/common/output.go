// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"fjacquet/cultura-csv/internal/config"
	"fjacquet/cultura-csv/internal/fileutils"
	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/models"

	"github.com/spf13/cobra"
)

// Stdout is where command output goes when no output file is given.
var Stdout io.Writer = os.Stdout

// WriteOutput writes data to outputFile, or to Stdout when outputFile is empty.
func WriteOutput(data []byte, outputFile string, log logging.Logger) error {
	if outputFile == "" {
		if _, err := Stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, _ = Stdout.Write([]byte("\n"))
		}
		return nil
	}
	if err := fileutils.WriteFile(outputFile, data, 0600); err != nil {
		return err
	}
	log.Info("Output written", logging.F(logging.FieldOutputFile, outputFile), logging.F(logging.FieldCount, len(data)))
	return nil
}

// MarshalJSON indents v the way every command prints JSON.
func MarshalJSON(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}
	return data, nil
}

// WriteJSON indents v and writes it like WriteOutput.
func WriteJSON(v interface{}, outputFile string, log logging.Logger) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	return WriteOutput(data, outputFile, log)
}

// SpecOverrides are the per-invocation extraction flags. Zero values keep the
// configured setting.
type SpecOverrides struct {
	Delimiter  string
	Decimal    string
	ValueField int
	Encoding   string
}

// SourceSpecFromConfig builds the categorical source spec used for ad-hoc files
// from the csv section of the configuration.
func SourceSpecFromConfig(cfg *config.Config, location string, o SpecOverrides) models.SourceSpec {
	spec := models.SourceSpec{
		Name:     location,
		Location: location,
		Kind:     models.KindCategorical,
	}
	if cfg != nil {
		spec.Delimiter = cfg.CSV.Delimiter
		spec.Decimal = models.DecimalConvention(cfg.CSV.Decimal)
		spec.ValueField = cfg.CSV.ValueField
	}
	if o.Delimiter != "" {
		spec.Delimiter = o.Delimiter
	}
	if o.Decimal != "" {
		spec.Decimal = models.DecimalConvention(o.Decimal)
	}
	if o.ValueField != 0 {
		spec.ValueField = o.ValueField
	}
	if o.Encoding != "" {
		spec.Encoding = o.Encoding
	}
	spec.ApplyDefaults()
	return spec
}

// Context returns the command's context, or context.Background when the command
// runs without one.
func Context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Package extract implements the extract command: categorical CSV exports to
// grouped datasets.
package extract

import (
	"context"
	"fmt"
	"path/filepath"

	"fjacquet/cultura-csv/cmd/common"
	"fjacquet/cultura-csv/cmd/root"
	"fjacquet/cultura-csv/internal/dataset"
	"fjacquet/cultura-csv/internal/fileutils"
	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/models"
	"fjacquet/cultura-csv/internal/report"
	"fjacquet/cultura-csv/internal/validation"

	"github.com/spf13/cobra"
)

// Extensions are the file extensions picked up when -i names a directory.
var Extensions = []string{".csv", ".txt"}

var overrides common.SpecOverrides

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract [source]",
	Short: "Extract a grouped dataset from a categorical CSV",
	Long: `Extract routes every "category,value" line of a categorical CSV export into the
regions, geographical, population or classification group.

Either name a catalog source, or pass a file or a directory with -i:

  cultura-csv extract prestiti-regioni-2022
  cultura-csv extract -i prestiti.csv -f csv --delimiter ";" --decimal comma
  cultura-csv extract -i exports/ -o datasets/`,
	Args: cobra.MaximumNArgs(1),
	Run:  extractFunc,
}

func init() {
	Cmd.Flags().StringVar(&overrides.Delimiter, "delimiter", "", "Field delimiter (default from config)")
	Cmd.Flags().StringVar(&overrides.Decimal, "decimal", "", "Decimal convention: point or comma (default from config)")
	Cmd.Flags().IntVar(&overrides.ValueField, "value-field", 0, "Index of the value field (default from config)")
	Cmd.Flags().StringVar(&overrides.Encoding, "encoding", "", "Input encoding: utf-8, latin1, windows-1252 or auto")
}

func extractFunc(cmd *cobra.Command, args []string) {
	appContainer := root.GetContainer()
	if appContainer == nil {
		root.Log.Fatal("Container not initialized")
	}
	logger := appContainer.GetLogger()
	svc := appContainer.GetService()
	gen := appContainer.GetGenerator()
	format := root.SharedFlags.Format
	input := root.SharedFlags.Input
	output := root.SharedFlags.Output
	ctx := common.Context(cmd)

	if err := validation.IsValidOutputFormat(format, report.Formats...); err != nil {
		logger.Fatalf("%v", err)
	}
	if input != "" {
		if err := validation.IsValidPath(input); err != nil {
			logger.Fatalf("%v", err)
		}
	}

	switch {
	case len(args) == 1:
		data, err := ExtractSource(ctx, svc, gen, args[0], format)
		if err != nil {
			logger.Fatalf("Error extracting %s: %v", args[0], err)
		}
		if err := common.WriteOutput(data, output, logger); err != nil {
			logger.Fatalf("%v", err)
		}
	case input == "":
		logger.Fatalf("Either a source name or an input file (-i) must be given")
	case fileutils.DirectoryExists(input):
		if output == "" {
			logger.Fatalf("An output directory (-o) is required when the input is a directory")
		}
		count, err := BatchExtract(ctx, svc, appContainer.GetLoader(), gen, input, output, specFor, format, logger)
		if err != nil {
			logger.Fatalf("Error during batch extraction: %v", err)
		}
		logger.Info("Batch extraction completed", logging.F(logging.FieldCount, count))
	default:
		spec := specFor(input)
		data, err := ExtractFile(ctx, svc, appContainer.GetLoader(), gen, spec, format)
		if err != nil {
			logger.Fatalf("Error extracting %s: %v", input, err)
		}
		if err := common.WriteOutput(data, output, logger); err != nil {
			logger.Fatalf("%v", err)
		}
	}
}

func specFor(path string) models.SourceSpec {
	return common.SourceSpecFromConfig(root.AppConfig, path, overrides)
}

// ExtractSource extracts a catalog source and renders it in format.
func ExtractSource(ctx context.Context, svc *dataset.Service, gen *report.Generator, name, format string) ([]byte, error) {
	ds, _, err := svc.Dataset(ctx, name)
	if err != nil {
		return nil, err
	}
	return gen.Generate(ds, format)
}

// ExtractFile reads spec.Location through fetcher, extracts it and renders it in
// format.
func ExtractFile(ctx context.Context, svc *dataset.Service, fetcher dataset.Fetcher, gen *report.Generator, spec models.SourceSpec, format string) ([]byte, error) {
	location := spec.Location
	if abs, err := filepath.Abs(location); err == nil {
		location = abs
	}
	raw, err := fetcher.Load(ctx, location, spec.Encoding)
	if err != nil {
		return nil, err
	}
	ds, _, err := svc.ExtractText(string(raw), spec)
	if err != nil {
		return nil, err
	}
	return gen.Generate(ds, format)
}

// BatchExtract extracts every matching file of inputDir into outputDir, one
// output per input. A failing file is logged and skipped; the count of written
// files is returned.
func BatchExtract(ctx context.Context, svc *dataset.Service, fetcher dataset.Fetcher, gen *report.Generator, inputDir, outputDir string, specFor func(string) models.SourceSpec, format string, logger logging.Logger) (int, error) {
	files, err := fileutils.ListFilesWithExtension(inputDir, Extensions...)
	if err != nil {
		return 0, err
	}
	if err := fileutils.EnsureDirectoryExists(outputDir); err != nil {
		return 0, err
	}

	count := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		data, err := ExtractFile(ctx, svc, fetcher, gen, specFor(file), format)
		if err != nil {
			logger.WithError(err).Warn("Skipping file", logging.F(logging.FieldInputFile, file))
			continue
		}
		out := fileutils.OutputPath(file, outputDir, Extension(format))
		if err := fileutils.WriteFile(out, data, 0600); err != nil {
			return count, fmt.Errorf("failed to write %s: %w", out, err)
		}
		logger.Debug("Extracted file", logging.F(logging.FieldInputFile, file), logging.F(logging.FieldOutputFile, out))
		count++
	}
	return count, nil
}

// Extension returns the file extension for a report format.
func Extension(format string) string {
	switch format {
	case report.FormatCSV:
		return "csv"
	case report.FormatXML:
		return "xml"
	}
	return "json"
}

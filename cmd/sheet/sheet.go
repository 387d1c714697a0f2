// Package sheet implements the sheet command: areas and series of a workbook table.
package sheet

import (
	"context"
	"fmt"

	"fjacquet/cultura-csv/cmd/common"
	"fjacquet/cultura-csv/cmd/root"
	"fjacquet/cultura-csv/internal/dataset"
	"fjacquet/cultura-csv/internal/models"

	"github.com/spf13/cobra"
)

// Result lists the areas of a sheet and, for one area, its series and colours.
type Result struct {
	Source string         `json:"source"`
	Table  string         `json:"table"`
	Areas  []string       `json:"areas"`
	Area   string         `json:"area,omitempty"`
	Series *models.Series `json:"series,omitempty"`
	Colors []string       `json:"colors,omitempty"`
}

var area string

// Cmd represents the sheet command
var Cmd = &cobra.Command{
	Use:   "sheet <source>",
	Short: "Read a table of a JSON workbook export",
	Long: `List the areas of a workbook table, or with --area print the series of one area
with the colour of each label.

  cultura-csv sheet patrimonio-librario-2014 --area Piemonte`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		appContainer := root.GetContainer()
		if appContainer == nil {
			root.Log.Fatal("Container not initialized")
		}
		logger := appContainer.GetLogger()

		res, err := Build(common.Context(cmd), appContainer.GetService(), args[0], area)
		if err != nil {
			logger.Fatalf("Error reading sheet %s: %v", args[0], err)
		}
		if err := common.WriteJSON(res, root.SharedFlags.Output, logger); err != nil {
			logger.Fatalf("%v", err)
		}
	},
}

func init() {
	Cmd.Flags().StringVar(&area, "area", "", "Area (first column) whose series to print")
}

// Build reads the named sheet source. An empty area only lists the areas.
func Build(ctx context.Context, svc *dataset.Service, name, area string) (Result, error) {
	sh, labels, err := svc.Sheet(ctx, name)
	if err != nil {
		return Result{}, err
	}
	res := Result{Source: name, Table: sh.Name, Areas: sh.Areas()}
	if area == "" {
		return res, nil
	}
	series, ok := sh.Series(area, labels)
	if !ok {
		return Result{}, fmt.Errorf("area %q not found in %s", area, sh.Name)
	}
	res.Area = area
	res.Series = &series
	res.Colors = svc.Catalog().Labels().For(series.Labels)
	return res, nil
}

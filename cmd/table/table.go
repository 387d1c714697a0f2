// Package table implements the table command: chart datasets of a statistical table.
package table

import (
	"context"

	"fjacquet/cultura-csv/cmd/common"
	"fjacquet/cultura-csv/cmd/root"
	"fjacquet/cultura-csv/internal/dataset"
	"fjacquet/cultura-csv/internal/table"

	"github.com/spf13/cobra"
)

// Result pairs the parsed table with its chart datasets.
type Result struct {
	Source string       `json:"source"`
	Table  *table.Table `json:"table"`
	Chart  table.Chart  `json:"chart"`
}

// Cmd represents the table command
var Cmd = &cobra.Command{
	Use:   "table <source>",
	Short: "Turn a table source into chart datasets",
	Long: `Parse a semicolon-separated statistical table (title, header, rows, footer)
and print one chart dataset per column.

  cultura-csv table abitudini-lettura-2021`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		appContainer := root.GetContainer()
		if appContainer == nil {
			root.Log.Fatal("Container not initialized")
		}
		logger := appContainer.GetLogger()

		res, err := Build(common.Context(cmd), appContainer.GetService(), args[0])
		if err != nil {
			logger.Fatalf("Error reading table %s: %v", args[0], err)
		}
		if err := common.WriteJSON(res, root.SharedFlags.Output, logger); err != nil {
			logger.Fatalf("%v", err)
		}
	},
}

// Build parses the named table source.
func Build(ctx context.Context, svc *dataset.Service, name string) (Result, error) {
	t, chart, err := svc.Table(ctx, name)
	if err != nil {
		return Result{}, err
	}
	return Result{Source: name, Table: t, Chart: chart}, nil
}

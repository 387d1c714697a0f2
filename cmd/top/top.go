// Package top implements the top command: the largest entries of a key/value source.
package top

import (
	"context"
	"fmt"

	"fjacquet/cultura-csv/cmd/common"
	"fjacquet/cultura-csv/cmd/root"
	"fjacquet/cultura-csv/internal/dataset"
	"fjacquet/cultura-csv/internal/ranking"
	"fjacquet/cultura-csv/internal/report"
	"fjacquet/cultura-csv/internal/validation"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

var limit int

// Cmd represents the top command
var Cmd = &cobra.Command{
	Use:   "top <source>",
	Short: "Rank the entries of a key/value source",
	Long: `Parse a "name=value" list and print the n largest entries, largest first.

  cultura-csv top eventi-citta-2023 -n 10 -f csv`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		appContainer := root.GetContainer()
		if appContainer == nil {
			root.Log.Fatal("Container not initialized")
		}
		logger := appContainer.GetLogger()

		data, err := Render(common.Context(cmd), appContainer.GetService(), args[0], limit, root.SharedFlags.Format)
		if err != nil {
			logger.Fatalf("Error ranking %s: %v", args[0], err)
		}
		if err := common.WriteOutput(data, root.SharedFlags.Output, logger); err != nil {
			logger.Fatalf("%v", err)
		}
	},
}

func init() {
	Cmd.Flags().IntVarP(&limit, "number", "n", ranking.DefaultTop, "Number of entries to keep")
}

// Render ranks the named source and encodes the entries as json or csv.
func Render(ctx context.Context, svc *dataset.Service, name string, n int, format string) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("number of entries must not be negative: %d", n)
	}
	if format == "" {
		format = report.FormatJSON
	}
	if err := validation.IsValidOutputFormat(format, report.FormatJSON, report.FormatCSV); err != nil {
		return nil, err
	}
	entries, err := svc.Top(ctx, name, n)
	if err != nil {
		return nil, err
	}
	if format == report.FormatCSV {
		return gocsv.MarshalBytes(&entries)
	}
	return common.MarshalJSON(entries)
}

// Package points implements the points command: marker GeoJSON of a points source.
package points

import (
	"context"

	"fjacquet/cultura-csv/cmd/common"
	"fjacquet/cultura-csv/cmd/root"
	"fjacquet/cultura-csv/internal/dataset"
	"fjacquet/cultura-csv/internal/geo"

	"github.com/spf13/cobra"
)

// Cmd represents the points command
var Cmd = &cobra.Command{
	Use:   "points <source>",
	Short: "Build a marker FeatureCollection from a points source",
	Long: `Read a CSV of named locations and print a GeoJSON FeatureCollection with one
Point feature per row that has valid coordinates.

  cultura-csv points biblioteche-luoghi -o luoghi.geojson`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		appContainer := root.GetContainer()
		if appContainer == nil {
			root.Log.Fatal("Container not initialized")
		}
		logger := appContainer.GetLogger()

		data, err := Render(common.Context(cmd), appContainer.GetService(), args[0])
		if err != nil {
			logger.Fatalf("Error building points of %s: %v", args[0], err)
		}
		if err := common.WriteOutput(data, root.SharedFlags.Output, logger); err != nil {
			logger.Fatalf("%v", err)
		}
	},
}

// Render builds and encodes the named points source.
func Render(ctx context.Context, svc *dataset.Service, name string) ([]byte, error) {
	fc, err := svc.Points(ctx, name)
	if err != nil {
		return nil, err
	}
	return geo.Encode(fc)
}

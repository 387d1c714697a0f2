// Package choropleth implements the choropleth command: per-area values joined
// onto boundary GeoJSON and coloured through a ramp.
package choropleth

import (
	"context"
	"fmt"

	"fjacquet/cultura-csv/cmd/common"
	"fjacquet/cultura-csv/cmd/root"
	"fjacquet/cultura-csv/internal/dataset"
	"fjacquet/cultura-csv/internal/geo"
	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/models"

	"github.com/spf13/cobra"
)

var (
	base   string
	values string
	group  string
	ramp   string
)

// Cmd represents the choropleth command
var Cmd = &cobra.Command{
	Use:   "choropleth",
	Short: "Colour boundary GeoJSON by per-area values",
	Long: `Join the values of a source onto the features of a geojson source and colour each
feature through a ramp. Values may come from a values, categorical, keyvalue or
points source; points are counted per area.

  cultura-csv choropleth --base regioni --values biblioteche-statali-2010
  cultura-csv choropleth --base regioni --values biblioteche-luoghi --ramp biblioteche`,
	Run: func(cmd *cobra.Command, args []string) {
		appContainer := root.GetContainer()
		if appContainer == nil {
			root.Log.Fatal("Container not initialized")
		}
		logger := appContainer.GetLogger()

		req, err := Request(base, values, group, ramp)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		data, stats, err := Render(common.Context(cmd), appContainer.GetService(), req)
		if err != nil {
			logger.Fatalf("Error building choropleth: %v", err)
		}
		if len(stats.Missing) > 0 {
			logger.Warn("Areas without a value", logging.F(logging.FieldCount, len(stats.Missing)), logging.F("areas", stats.Missing))
		}
		if err := common.WriteOutput(data, root.SharedFlags.Output, logger); err != nil {
			logger.Fatalf("%v", err)
		}
	},
}

func init() {
	Cmd.Flags().StringVar(&base, "base", "regioni", "geojson source with the area boundaries")
	Cmd.Flags().StringVar(&values, "values", "", "Source holding the per-area values")
	Cmd.Flags().StringVar(&group, "group", "", "Group of a categorical values source (default regions)")
	Cmd.Flags().StringVar(&ramp, "ramp", "", "Ramp name (default: the ramp declared on the values source)")
}

// Request validates the flags.
func Request(base, values, group, ramp string) (dataset.ChoroplethRequest, error) {
	req := dataset.ChoroplethRequest{Base: base, Values: values, Ramp: ramp}
	if base == "" || values == "" {
		return req, fmt.Errorf("both --base and --values are required")
	}
	if group != "" {
		g, ok := models.ParseGroupName(group)
		if !ok {
			return req, fmt.Errorf("unknown group %q", group)
		}
		req.Group = g
	}
	return req, nil
}

// Render builds and encodes the choropleth.
func Render(ctx context.Context, svc *dataset.Service, req dataset.ChoroplethRequest) ([]byte, geo.JoinStats, error) {
	fc, stats, err := svc.Choropleth(ctx, req)
	if err != nil {
		return nil, stats, err
	}
	data, err := geo.Encode(fc)
	return data, stats, err
}

// Package color implements the color command: bucket colours and legends of the
// catalog's colour ramps.
package color

import (
	"fmt"
	"math"

	"fjacquet/cultura-csv/cmd/common"
	"fjacquet/cultura-csv/cmd/root"
	"fjacquet/cultura-csv/internal/colorramp"
	"fjacquet/cultura-csv/internal/dataset"
	"fjacquet/cultura-csv/internal/models"
	"fjacquet/cultura-csv/internal/numberutils"

	"github.com/spf13/cobra"
)

// Entry is the colour of one value.
type Entry struct {
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Legend describes a ramp.
type Legend struct {
	Name       string                  `json:"name"`
	Comparison colorramp.Comparison    `json:"comparison"`
	Legend     []colorramp.LegendEntry `json:"legend"`
}

var decimalFlag string

// Cmd represents the color command
var Cmd = &cobra.Command{
	Use:   "color [ramp] [value...]",
	Short: "Look up ramp colours",
	Long: `Without arguments, list the catalog's ramps. With a ramp name, print its legend.
With values, print the colour of each value:

  cultura-csv color biblioteche 1500 25000`,
	Run: func(cmd *cobra.Command, args []string) {
		appContainer := root.GetContainer()
		if appContainer == nil {
			root.Log.Fatal("Container not initialized")
		}
		logger := appContainer.GetLogger()

		out, err := Run(appContainer.GetService(), args, models.DecimalConvention(decimalFlag))
		if err != nil {
			logger.Fatalf("Error: %v", err)
		}
		if err := common.WriteJSON(out, root.SharedFlags.Output, logger); err != nil {
			logger.Fatalf("%v", err)
		}
	},
}

func init() {
	Cmd.Flags().StringVar(&decimalFlag, "decimal", string(models.DecimalPoint), "Decimal convention of the values: point or comma")
}

// Run dispatches on the number of arguments: the ramp names, one legend, or
// the colours of values.
func Run(svc *dataset.Service, args []string, conv models.DecimalConvention) (interface{}, error) {
	switch len(args) {
	case 0:
		return svc.Catalog().RampNames(), nil
	case 1:
		return RampLegend(svc, args[0])
	}
	return Colors(svc, args[0], args[1:], conv)
}

// RampLegend returns the legend of the named ramp.
func RampLegend(svc *dataset.Service, name string) (Legend, error) {
	ramp, err := svc.Catalog().Ramp(name)
	if err != nil {
		return Legend{}, err
	}
	return Legend{Name: name, Comparison: ramp.Comparison(), Legend: ramp.Legend()}, nil
}

// Colors parses every value under conv and looks up its colour.
func Colors(svc *dataset.Service, ramp string, values []string, conv models.DecimalConvention) ([]Entry, error) {
	if !conv.Valid() {
		return nil, fmt.Errorf("invalid decimal convention %q", conv)
	}
	out := make([]Entry, 0, len(values))
	for _, raw := range values {
		d, err := numberutils.Parse(raw, conv)
		if err != nil {
			return nil, err
		}
		v := d.InexactFloat64()
		if math.IsInf(v, 0) {
			return nil, fmt.Errorf("value %q is out of range", raw)
		}
		c, err := svc.Color(ramp, v)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Value: v, Color: c})
	}
	return out, nil
}

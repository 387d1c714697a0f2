// Package sources implements the sources command: inspect and export the catalog.
package sources

import (
	"fmt"

	"fjacquet/cultura-csv/cmd/common"
	"fjacquet/cultura-csv/cmd/root"
	"fjacquet/cultura-csv/internal/dataset"
	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/store"

	"github.com/spf13/cobra"
)

var exportPath string

// Cmd represents the sources command
var Cmd = &cobra.Command{
	Use:   "sources [name]",
	Short: "List the catalog sources",
	Long: `List the sources declared in the catalog, or print one of them.

With --export, write the whole catalog (built-in or loaded) to a YAML or TOML file
that can be edited and passed back through catalog.file:

  cultura-csv sources --export catalog.toml`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		appContainer := root.GetContainer()
		if appContainer == nil {
			root.Log.Fatal("Container not initialized")
		}
		logger := appContainer.GetLogger()
		svc := appContainer.GetService()

		if exportPath != "" {
			if err := Export(appContainer.GetStore(), svc, exportPath, logger); err != nil {
				logger.Fatalf("Error exporting catalog: %v", err)
			}
			return
		}

		out, err := Describe(svc, args)
		if err != nil {
			logger.Fatalf("Error: %v", err)
		}
		if err := common.WriteJSON(out, root.SharedFlags.Output, logger); err != nil {
			logger.Fatalf("%v", err)
		}
	},
}

func init() {
	Cmd.Flags().StringVar(&exportPath, "export", "", "Write the catalog to this .yaml or .toml file")
}

// Describe returns every source, or the one named in args.
func Describe(svc *dataset.Service, args []string) (interface{}, error) {
	if len(args) == 0 {
		return svc.Sources(), nil
	}
	return svc.Source(args[0])
}

// Export saves the service's catalog to path.
func Export(s *store.CatalogStore, svc *dataset.Service, path string, logger logging.Logger) error {
	if err := s.Save(svc.Catalog(), path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	logger.Info("Catalog exported",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(svc.Sources())))
	return nil
}

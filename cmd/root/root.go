// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/cultura-csv/internal/config"
	"fjacquet/cultura-csv/internal/container"
	"fjacquet/cultura-csv/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Config string
	Input  string
	Output string
	Format string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// AppConfig is the configuration loaded before any subcommand runs
	AppConfig *config.Config

	appContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "cultura-csv",
		Short: "A CLI tool to extract Italian cultural-heritage statistics from CSV exports.",
		Long: `cultura-csv reads the delimited exports of the Italian cultural statistics
(libraries, reading habits, cultural events) and turns them into grouped datasets,
chart series and GeoJSON maps, from the command line or over HTTP.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to cultura-csv!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer != nil {
				if err := appContainer.Close(); err != nil {
					Log.Warnf("Failed to close container: %v", err)
				}
				appContainer = nil
			}
		},
	}

	// SharedFlags holds the values of the persistent flags
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVar(&SharedFlags.Config, "config", "", "Config file (default: config.yaml in $HOME/.cultura-csv, .cultura-csv or .)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file or directory")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file or directory (default: stdout)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Format, "format", "f", "json", "Output format: json, chart, csv or xml")
}

// Setup loads .env and the configuration, configures logging and wires the
// container.
func Setup() error {
	config.LoadEnv()

	cfg, err := config.InitializeConfigFromFile(SharedFlags.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	AppConfig = cfg
	Log = config.ConfigureLoggingFromConfig(cfg)

	c, err := container.NewContainerWithLogger(cfg, logging.NewLogrusAdapterFromLogger(Log))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	appContainer = c
	return nil
}

// GetContainer returns the container wired by Setup.
func GetContainer() *container.Container {
	return appContainer
}

// GetLogger returns the command logger behind the logging.Logger interface.
func GetLogger() logging.Logger {
	if appContainer != nil {
		return appContainer.GetLogger()
	}
	return logging.NewLogrusAdapterFromLogger(Log)
}

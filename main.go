package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/cultura-csv/cmd/choropleth"
	"fjacquet/cultura-csv/cmd/color"
	"fjacquet/cultura-csv/cmd/extract"
	"fjacquet/cultura-csv/cmd/points"
	"fjacquet/cultura-csv/cmd/root"
	"fjacquet/cultura-csv/cmd/serve"
	"fjacquet/cultura-csv/cmd/sheet"
	"fjacquet/cultura-csv/cmd/sources"
	"fjacquet/cultura-csv/cmd/table"
	"fjacquet/cultura-csv/cmd/top"
	"fjacquet/cultura-csv/internal/config"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	loadEnvSilently()

	// 2. Configure the global log level before anything logs
	logLevel := configureLogLevelDirectly()
	config.Logger.SetLevel(logLevel)
	root.Log.SetLevel(logLevel)

	// 3. Initialize root command
	root.Init()

	// 4. Add all subcommands
	root.Cmd.AddCommand(extract.Cmd)
	root.Cmd.AddCommand(table.Cmd)
	root.Cmd.AddCommand(top.Cmd)
	root.Cmd.AddCommand(points.Cmd)
	root.Cmd.AddCommand(choropleth.Cmd)
	root.Cmd.AddCommand(sheet.Cmd)
	root.Cmd.AddCommand(color.Cmd)
	root.Cmd.AddCommand(sources.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

// configureLogLevelDirectly sets the global logrus level from CULTURA_LOG_LEVEL
// (or LOG_LEVEL) and returns it.
func configureLogLevelDirectly() logrus.Level {
	logLevelStr := os.Getenv(config.EnvPrefix + "_LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = os.Getenv("LOG_LEVEL")
	}
	if logLevelStr == "" {
		logLevelStr = "info"
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	return logLevel
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

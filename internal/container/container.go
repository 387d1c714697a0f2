// Package container provides dependency injection for the cultura-csv application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"

	"fjacquet/cultura-csv/internal/config"
	"fjacquet/cultura-csv/internal/dataset"
	"fjacquet/cultura-csv/internal/fetch"
	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/report"
	"fjacquet/cultura-csv/internal/session"
	"fjacquet/cultura-csv/internal/store"
	"fjacquet/cultura-csv/internal/whitelist"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation: all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	store     *store.CatalogStore
	loader    *fetch.Loader
	service   *dataset.Service
	generator *report.Generator
	sessions  *session.Registry
}

// NewContainer creates and wires all application dependencies.
// This is the main entry point for dependency injection in the application.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format))
}

// NewContainerWithLogger is NewContainer with an externally built logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	catalogStore := store.NewCatalogStore(cfg.Catalog.File, logger)
	loader := fetch.New(cfg.Data.Directory, cfg.FetchTimeout(), logger)

	service, err := dataset.NewService(catalogStore, loader, whitelist.Options{
		Normalization:   whitelist.Normalization(cfg.Matching.Normalization),
		FoldApostrophes: cfg.Matching.FoldApostrophes,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset service: %w", err)
	}

	logger.Info("Container initialized successfully",
		logging.Field{Key: "sources_count", Value: len(service.Sources())},
		logging.Field{Key: "ramps_count", Value: len(service.Catalog().Ramps)})

	return &Container{
		logger:    logger,
		config:    cfg,
		store:     catalogStore,
		loader:    loader,
		service:   service,
		generator: report.NewGenerator(logger, cfg.DelimiterRune()),
		sessions:  session.NewRegistryWithLimits(cfg.SessionTTL(), cfg.Server.MaxSessions),
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the catalog store.
func (c *Container) GetStore() *store.CatalogStore {
	return c.store
}

// GetLoader returns the source loader.
func (c *Container) GetLoader() *fetch.Loader {
	return c.loader
}

// GetService returns the dataset service.
func (c *Container) GetService() *dataset.Service {
	return c.service
}

// GetGenerator returns the report generator.
func (c *Container) GetGenerator() *report.Generator {
	return c.generator
}

// GetSessions returns the session registry shared by the HTTP handlers.
func (c *Container) GetSessions() *session.Registry {
	return c.sessions
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Info("Container closed")
	return nil
}

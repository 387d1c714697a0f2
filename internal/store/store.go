// Package store loads and saves the data catalog.
package store

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/cultura-csv/internal/logging"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// CatalogLoader is what the rest of the application needs from a store.
type CatalogLoader interface {
	Load() (*Catalog, error)
}

// CatalogStore reads the catalog from CatalogFile, or the built-in catalog when
// CatalogFile is empty.
type CatalogStore struct {
	CatalogFile string
	logger      logging.Logger
}

// NewCatalogStore creates a store. A nil logger is replaced by a default one.
func NewCatalogStore(catalogFile string, logger logging.Logger) *CatalogStore {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &CatalogStore{CatalogFile: catalogFile, logger: logger}
}

// FindConfigFile looks for filename in the current directory, ./config, ./data and
// $HOME/.cultura-csv.
func (s *CatalogStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("data", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".cultura-csv", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// Load reads and validates the catalog. A configured file that cannot be found is
// an error; no file configured means the built-in catalog.
func (s *CatalogStore) Load() (*Catalog, error) {
	if s.CatalogFile == "" {
		s.logger.Debug("Using built-in catalog")
		return Default()
	}

	path, err := s.FindConfigFile(s.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", s.CatalogFile, err)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- catalog path comes from the user's configuration
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %w", err)
	}

	catalog, err := Decode(data, Format(path))
	if err != nil {
		return nil, fmt.Errorf("error parsing catalog file %s: %w", path, err)
	}

	s.logger.Debug("Loaded catalog",
		logging.Field{Key: logging.FieldInputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(catalog.Sources)})
	return catalog, nil
}

// Save writes catalog to path as YAML or TOML depending on the extension.
func (s *CatalogStore) Save(catalog *Catalog, path string) error {
	data, err := Encode(catalog, Format(path))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error writing catalog: %w", err)
	}

	s.logger.Info("Saved catalog",
		logging.Field{Key: logging.FieldOutputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(catalog.Sources)})
	return nil
}

// Default returns a fresh copy of the built-in catalog.
func Default() (*Catalog, error) {
	return Decode(defaultCatalog, "yaml")
}

// Decode parses a catalog in format "yaml" or "toml" and validates it.
func Decode(data []byte, format string) (*Catalog, error) {
	var c Catalog
	switch format {
	case "toml":
		if _, err := toml.Decode(string(data), &c); err != nil {
			return nil, err
		}
	case "yaml", "":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Encode serialises a catalog.
func Encode(c *Catalog, format string) ([]byte, error) {
	switch format {
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, fmt.Errorf("error marshaling catalog: %w", err)
		}
		return buf.Bytes(), nil
	case "yaml", "":
		data, err := yaml.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("error marshaling catalog: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("unsupported catalog format " + format)
}

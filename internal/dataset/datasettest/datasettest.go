// Package datasettest builds dataset services over in-memory sources for the
// tests of the command and HTTP layers.
package datasettest

import (
	"context"
	"os"
	"sync"
	"testing"

	"fjacquet/cultura-csv/internal/dataset"
	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/parsererror"
	"fjacquet/cultura-csv/internal/store"
	"fjacquet/cultura-csv/internal/whitelist"

	"github.com/stretchr/testify/require"
)

// MapFetcher serves sources from memory, keyed by location.
type MapFetcher struct {
	mu    sync.Mutex
	Files map[string]string
	Calls []string
}

// Load returns the content stored under location, or a SourceError wrapping
// os.ErrNotExist.
func (f *MapFetcher) Load(_ context.Context, location, _ string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, location)
	data, ok := f.Files[location]
	if !ok {
		return nil, &parsererror.SourceError{Location: location, Err: os.ErrNotExist}
	}
	return []byte(data), nil
}

// NewService decodes catalogYAML and builds a service reading files.
func NewService(t *testing.T, catalogYAML string, files map[string]string) (*dataset.Service, *logging.MockLogger) {
	t.Helper()
	catalog, err := store.Decode([]byte(catalogYAML), "yaml")
	require.NoError(t, err)

	logger := logging.NewMockLogger()
	svc, err := dataset.NewService(&store.MockCatalogStore{Catalog: catalog}, &MapFetcher{Files: files}, whitelist.Options{}, logger)
	require.NoError(t, err)
	return svc, logger
}

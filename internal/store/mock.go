package store

// MockCatalogStore is a CatalogLoader returning a fixed catalog.
type MockCatalogStore struct {
	Catalog   *Catalog
	LoadError error
	Loads     int
}

// Load returns the mock catalog, or the built-in one when Catalog is nil.
func (m *MockCatalogStore) Load() (*Catalog, error) {
	m.Loads++
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	if m.Catalog == nil {
		return Default()
	}
	return m.Catalog, nil
}

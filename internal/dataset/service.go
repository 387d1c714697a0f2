// Package dataset resolves catalog sources, fetches them and routes each one to
// the parser for its kind. It is the only place that branches on SourceKind.
package dataset

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/cultura-csv/internal/colorramp"
	"fjacquet/cultura-csv/internal/extractor"
	"fjacquet/cultura-csv/internal/geo"
	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/models"
	"fjacquet/cultura-csv/internal/parsererror"
	"fjacquet/cultura-csv/internal/ranking"
	"fjacquet/cultura-csv/internal/sheet"
	"fjacquet/cultura-csv/internal/store"
	"fjacquet/cultura-csv/internal/table"
	"fjacquet/cultura-csv/internal/whitelist"

	"github.com/twpayne/go-geom/encoding/geojson"
)

// Fetcher returns the decoded content of a source location.
type Fetcher interface {
	Load(ctx context.Context, location, encoding string) ([]byte, error)
}

// Service answers dataset requests for the CLI and the HTTP API.
type Service struct {
	catalog    *store.Catalog
	whitelists *whitelist.Whitelists
	fetcher    Fetcher
	logger     logging.Logger
	palette    colorramp.Palette
}

// NewService loads the catalog and builds the whitelists: lists declared in the
// catalog replace the built-in list of their group.
func NewService(loader store.CatalogLoader, fetcher Fetcher, matching whitelist.Options, logger logging.Logger) (*Service, error) {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	catalog, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	lists := whitelist.DefaultLists()
	for group, list := range catalog.WhitelistLists() {
		lists[group] = list
	}
	wl, err := whitelist.New(lists, matching)
	if err != nil {
		return nil, err
	}
	if overlaps := wl.Overlaps(); len(overlaps) > 0 {
		logger.Warn("Categories listed in more than one whitelist, first group wins",
			logging.Field{Key: logging.FieldCount, Value: len(overlaps)},
			logging.Field{Key: "categories", Value: strings.Join(overlaps, ", ")})
	}

	return &Service{
		catalog:    catalog,
		whitelists: wl,
		fetcher:    fetcher,
		logger:     logger,
		palette:    colorramp.DefaultPalette(),
	}, nil
}

// Catalog returns the loaded catalog.
func (s *Service) Catalog() *store.Catalog { return s.catalog }

// Whitelists returns the whitelists used for categorical sources.
func (s *Service) Whitelists() *whitelist.Whitelists { return s.whitelists }

// Sources lists the declared sources in catalog order.
func (s *Service) Sources() []models.SourceSpec {
	return append([]models.SourceSpec(nil), s.catalog.Sources...)
}

// Source returns the declared source name.
func (s *Service) Source(name string) (models.SourceSpec, error) {
	return s.catalog.Source(name)
}

func (s *Service) resolve(name string, kinds ...models.SourceKind) (models.SourceSpec, error) {
	spec, err := s.catalog.Source(name)
	if err != nil {
		return models.SourceSpec{}, err
	}
	for _, k := range kinds {
		if spec.Kind == k {
			return spec, nil
		}
	}
	return models.SourceSpec{}, fmt.Errorf("%w: source %s is %s, want %s", parsererror.ErrWrongKind, name, spec.Kind, joinKinds(kinds))
}

func joinKinds(kinds []models.SourceKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, " or ")
}

func (s *Service) fetch(ctx context.Context, spec models.SourceSpec) ([]byte, error) {
	data, err := s.fetcher.Load(ctx, spec.Location, spec.Encoding)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", spec.Name, err)
	}
	return data, nil
}

// Dataset fetches and extracts a categorical source.
func (s *Service) Dataset(ctx context.Context, name string) (*models.ParsedDataset, extractor.Stats, error) {
	spec, err := s.resolve(name, models.KindCategorical)
	if err != nil {
		return nil, extractor.Stats{}, err
	}
	data, err := s.fetch(ctx, spec)
	if err != nil {
		return nil, extractor.Stats{}, err
	}
	return s.ExtractText(string(data), spec)
}

// ExtractText runs the extractor over text with the layout declared by spec.
func (s *Service) ExtractText(text string, spec models.SourceSpec) (*models.ParsedDataset, extractor.Stats, error) {
	spec.ApplyDefaults()
	start := time.Now()
	ds, stats, err := extractor.Extract(text, extractor.Options{
		Delimiter:   spec.DelimiterRune(),
		Decimal:     spec.Decimal,
		ValueField:  spec.ValueField,
		HeaderLines: spec.SkipLines,
		Whitelists:  s.whitelists,
	})
	if err != nil {
		return nil, extractor.Stats{}, err
	}

	s.logExtraction(spec, stats, time.Since(start))
	return ds, stats, nil
}

func (s *Service) logExtraction(spec models.SourceSpec, stats extractor.Stats, elapsed time.Duration) {
	fields := []logging.Field{
		{Key: logging.FieldSource, Value: spec.Name},
		{Key: logging.FieldCount, Value: stats.Accepted},
		{Key: logging.FieldSkipped, Value: stats.Skipped},
		{Key: logging.FieldDropped, Value: stats.Dropped},
		{Key: logging.FieldDefaulted, Value: stats.Defaulted},
		{Key: logging.FieldDuration, Value: elapsed.Milliseconds()},
	}
	s.logger.Info("Extracted dataset", fields...)
	if len(stats.Unmatched) > 0 {
		s.logger.Debug("Categories outside every whitelist",
			logging.Field{Key: logging.FieldSource, Value: spec.Name},
			logging.Field{Key: "categories", Value: strings.Join(stats.Unmatched, ", ")})
	}
}

// Group returns one group of a categorical source as a chart series.
func (s *Service) Group(ctx context.Context, name string, group models.GroupName) (models.Series, error) {
	ds, _, err := s.Dataset(ctx, name)
	if err != nil {
		return models.Series{}, err
	}
	return ds.Group(group).Series(), nil
}

// Table fetches a table source and builds its chart datasets.
func (s *Service) Table(ctx context.Context, name string) (*table.Table, table.Chart, error) {
	spec, err := s.resolve(name, models.KindTable)
	if err != nil {
		return nil, table.Chart{}, err
	}
	data, err := s.fetch(ctx, spec)
	if err != nil {
		return nil, table.Chart{}, err
	}
	t, err := table.Parse(string(data), table.Options{
		Delimiter:  spec.DelimiterRune(),
		HeaderLine: spec.Header(),
		DropFooter: spec.DropFooter,
	})
	if err != nil {
		return nil, table.Chart{}, fmt.Errorf("source %s: %w", spec.Name, err)
	}

	s.logger.Debug("Parsed table",
		logging.Field{Key: logging.FieldSource, Value: spec.Name},
		logging.Field{Key: logging.FieldCount, Value: len(t.Rows)})
	return t, t.Datasets(spec.Decimal, s.palette), nil
}

// Top returns the n largest entries of a key/value source.
func (s *Service) Top(ctx context.Context, name string, n int) ([]ranking.Entry, error) {
	entries, err := s.ranking(ctx, name)
	if err != nil {
		return nil, err
	}
	return ranking.Top(entries, n), nil
}

func (s *Service) ranking(ctx context.Context, name string) ([]ranking.Entry, error) {
	spec, err := s.resolve(name, models.KindKeyValue)
	if err != nil {
		return nil, err
	}
	data, err := s.fetch(ctx, spec)
	if err != nil {
		return nil, err
	}
	entries, skipped := ranking.Parse(string(data), spec.Separator)
	s.logger.Debug("Parsed key/value source",
		logging.Field{Key: logging.FieldSource, Value: spec.Name},
		logging.Field{Key: logging.FieldCount, Value: len(entries)},
		logging.Field{Key: logging.FieldSkipped, Value: skipped})
	return entries, nil
}

// Points builds the marker collection of a points source.
func (s *Service) Points(ctx context.Context, name string) (*geojson.FeatureCollection, error) {
	spec, err := s.resolve(name, models.KindPoints)
	if err != nil {
		return nil, err
	}
	data, err := s.fetch(ctx, spec)
	if err != nil {
		return nil, err
	}
	fc, skipped, err := geo.PointsFromCSV(strings.NewReader(string(data)), geo.PointOptions{
		Schema:  spec.Schema,
		Exclude: spec.Exclude,
		Color:   geo.MarkerColor,
	})
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", spec.Name, err)
	}
	s.logger.Debug("Built point collection",
		logging.Field{Key: logging.FieldSource, Value: spec.Name},
		logging.Field{Key: logging.FieldCount, Value: len(fc.Features)},
		logging.Field{Key: logging.FieldSkipped, Value: skipped})
	return fc, nil
}

// Boundaries decodes a geojson source.
func (s *Service) Boundaries(ctx context.Context, name string) (*geojson.FeatureCollection, error) {
	spec, err := s.resolve(name, models.KindGeoJSON)
	if err != nil {
		return nil, err
	}
	data, err := s.fetch(ctx, spec)
	if err != nil {
		return nil, err
	}
	fc, err := geo.DecodeCollection(data)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", spec.Name, err)
	}
	return fc, nil
}

// Sheet selects the configured table of a sheet source. The returned labels are
// the series labels declared on the source, or the volume bands.
func (s *Service) Sheet(ctx context.Context, name string) (*sheet.Sheet, []string, error) {
	spec, err := s.resolve(name, models.KindSheet)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.fetch(ctx, spec)
	if err != nil {
		return nil, nil, err
	}
	sh, err := sheet.Parse(data, spec.Sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("source %s: %w", spec.Name, err)
	}
	labels := spec.Labels
	if len(labels) == 0 {
		labels = sheet.VolumeBands
	}
	return sh, labels, nil
}

// Color maps value through the named ramp.
func (s *Service) Color(rampName string, value float64) (string, error) {
	ramp, err := s.catalog.Ramp(rampName)
	if err != nil {
		return "", err
	}
	return ramp.Color(value), nil
}

// ChoroplethRequest names the sources of a choropleth.
type ChoroplethRequest struct {
	// Base is a geojson source.
	Base string
	// Values is a values, categorical, keyvalue or points source. Points are
	// counted per base area.
	Values string
	// Group selects the group of a categorical values source; regions by default.
	Group models.GroupName
	// Ramp overrides the ramp declared on the values source.
	Ramp string
}

// Choropleth joins per-area values onto the base boundaries and colours them.
func (s *Service) Choropleth(ctx context.Context, req ChoroplethRequest) (*geojson.FeatureCollection, geo.JoinStats, error) {
	baseSpec, err := s.resolve(req.Base, models.KindGeoJSON)
	if err != nil {
		return nil, geo.JoinStats{}, err
	}
	base, err := s.Boundaries(ctx, req.Base)
	if err != nil {
		return nil, geo.JoinStats{}, err
	}

	valuesSpec, err := s.resolve(req.Values, models.KindValues, models.KindCategorical, models.KindKeyValue, models.KindPoints)
	if err != nil {
		return nil, geo.JoinStats{}, err
	}
	values, err := s.areaValues(ctx, valuesSpec, req.Group, base, baseSpec.JoinKey)
	if err != nil {
		return nil, geo.JoinStats{}, err
	}

	rampName := req.Ramp
	if rampName == "" {
		rampName = valuesSpec.Ramp
	}
	var ramp *colorramp.Ramp
	if rampName != "" {
		if ramp, err = s.catalog.Ramp(rampName); err != nil {
			return nil, geo.JoinStats{}, err
		}
	}

	fc, stats := geo.Join(base, baseSpec.JoinKey, values, ramp)
	s.logger.Info("Built choropleth",
		logging.Field{Key: logging.FieldSource, Value: valuesSpec.Name},
		logging.Field{Key: logging.FieldRamp, Value: rampName},
		logging.Field{Key: logging.FieldCount, Value: stats.Matched},
		logging.Field{Key: logging.FieldDropped, Value: len(stats.Missing)})
	return fc, stats, nil
}

func (s *Service) areaValues(ctx context.Context, spec models.SourceSpec, group models.GroupName, base *geojson.FeatureCollection, key string) (map[string]float64, error) {
	switch spec.Kind {
	case models.KindCategorical:
		ds, _, err := s.Dataset(ctx, spec.Name)
		if err != nil {
			return nil, err
		}
		if group == "" {
			group = models.GroupRegions
		}
		return ds.Group(group).Float64s(), nil
	case models.KindKeyValue:
		entries, err := s.ranking(ctx, spec.Name)
		if err != nil {
			return nil, err
		}
		out := make(map[string]float64, len(entries))
		for _, e := range entries {
			out[e.Name] = e.Value
		}
		return out, nil
	case models.KindPoints:
		points, err := s.Points(ctx, spec.Name)
		if err != nil {
			return nil, err
		}
		return geo.CountWithin(points, base, key), nil
	default:
		data, err := s.fetch(ctx, spec)
		if err != nil {
			return nil, err
		}
		values, err := geo.ValuesFromJSON(data)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", spec.Name, err)
		}
		return values, nil
	}
}

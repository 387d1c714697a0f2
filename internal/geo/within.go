package geo

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
)

// CountWithin counts, per area, the point features lying inside it. Areas are
// keyed like Join keys them; areas without points are reported with 0. A point on
// two overlapping areas counts for both.
func CountWithin(points, areas *geojson.FeatureCollection, key string) map[string]float64 {
	counts := make(map[string]float64, len(areas.Features))
	for _, area := range areas.Features {
		name := joinKey(area, key)
		if _, ok := counts[name]; !ok {
			counts[name] = 0
		}
		for _, p := range points.Features {
			pt, ok := p.Geometry.(*geom.Point)
			if !ok {
				continue
			}
			if contains(area.Geometry, pt.Coords()) {
				counts[name]++
			}
		}
	}
	return counts
}

func contains(g geom.T, c geom.Coord) bool {
	switch g := g.(type) {
	case *geom.Polygon:
		return polygonContains(g, c)
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			if polygonContains(g.Polygon(i), c) {
				return true
			}
		}
	}
	return false
}

// polygonContains tests the outer ring and excludes holes.
func polygonContains(p *geom.Polygon, c geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	b := p.Bounds()
	if c.X() < b.Min(0) || c.X() > b.Max(0) || c.Y() < b.Min(1) || c.Y() > b.Max(1) {
		return false
	}
	if !xy.IsPointInRing(p.Layout(), c, p.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(p.Layout(), c, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

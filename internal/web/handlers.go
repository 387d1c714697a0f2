package web

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"fjacquet/cultura-csv/internal/colorramp"
	"fjacquet/cultura-csv/internal/dataset"
	"fjacquet/cultura-csv/internal/extractor"
	"fjacquet/cultura-csv/internal/geo"
	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/models"
	"fjacquet/cultura-csv/internal/ranking"
	"fjacquet/cultura-csv/internal/table"

	"github.com/go-chi/chi/v5"
)

// DatasetResponse is the body of GET /api/sources/{name}/dataset.
type DatasetResponse struct {
	Source string                `json:"source"`
	Groups *models.ParsedDataset `json:"groups"`
	Stats  extractor.Stats       `json:"stats"`
}

// TableResponse is the body of GET /api/sources/{name}/table.
type TableResponse struct {
	Source string       `json:"source"`
	Table  *table.Table `json:"table"`
	Chart  table.Chart  `json:"chart"`
}

// SheetResponse is the body of GET /api/sources/{name}/sheet.
type SheetResponse struct {
	Source string         `json:"source"`
	Table  string         `json:"table"`
	Areas  []string       `json:"areas"`
	Area   string         `json:"area,omitempty"`
	Series *models.Series `json:"series,omitempty"`
	Colors []string       `json:"colors,omitempty"`
}

// RampResponse describes a ramp.
type RampResponse struct {
	Name       string                  `json:"name"`
	Comparison colorramp.Comparison    `json:"comparison"`
	Legend     []colorramp.LegendEntry `json:"legend"`
}

// ColorResponse is the body of GET /api/ramps/{name}/color.
type ColorResponse struct {
	Ramp  string  `json:"ramp"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// load runs fn, as the latest request of the ?control= selection when the
// query names one. It answers the error itself and reports whether fn succeeded.
func (s *Server) load(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context) error) bool {
	control := r.URL.Query().Get("control")
	sess := sessionFrom(r.Context())

	var err error
	if control == "" || sess == nil {
		err = fn(r.Context())
	} else {
		err = sess.Run(r.Context(), control, fn)
	}
	if err != nil {
		s.respondError(w, r, err)
		return false
	}
	return true
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.Sources())
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	spec, err := s.service.Source(chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, spec)
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var group models.GroupName
	if raw := r.URL.Query().Get("group"); raw != "" {
		g, ok := models.ParseGroupName(raw)
		if !ok {
			s.badRequest(w, fmt.Sprintf("unknown group %q", raw))
			return
		}
		group = g
	}

	var (
		ds    *models.ParsedDataset
		stats extractor.Stats
	)
	if !s.load(w, r, func(ctx context.Context) (err error) {
		ds, stats, err = s.service.Dataset(ctx, name)
		return err
	}) {
		return
	}

	if group != "" {
		s.writeJSON(w, http.StatusOK, ds.Group(group).Series())
		return
	}
	s.writeJSON(w, http.StatusOK, DatasetResponse{Source: name, Groups: ds, Stats: stats})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var resp TableResponse
	if !s.load(w, r, func(ctx context.Context) (err error) {
		resp.Table, resp.Chart, err = s.service.Table(ctx, name)
		return err
	}) {
		return
	}
	resp.Source = name
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	n := ranking.DefaultTop
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			s.badRequest(w, fmt.Sprintf("invalid n %q", raw))
			return
		}
		n = v
	}

	var entries []ranking.Entry
	if !s.load(w, r, func(ctx context.Context) (err error) {
		entries, err = s.service.Top(ctx, name, n)
		return err
	}) {
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var body []byte
	if !s.load(w, r, func(ctx context.Context) error {
		fc, err := s.service.Points(ctx, name)
		if err != nil {
			return err
		}
		body, err = geo.Encode(fc)
		return err
	}) {
		return
	}
	s.writeGeoJSON(w, body)
}

// handleSheet lists the areas of a sheet source, or with ?area= the series of
// one area. Answers are remembered per session.
func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	area := r.URL.Query().Get("area")
	key := "sheet:" + name + ":" + area

	sess := sessionFrom(r.Context())
	if sess != nil {
		if cached, ok := sess.Recall(key); ok {
			s.logger.Debug("Serving remembered sheet",
				logging.Field{Key: logging.FieldSource, Value: name},
				logging.Field{Key: logging.FieldSession, Value: sess.ID})
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(cached)
			return
		}
	}

	var resp SheetResponse
	if !s.load(w, r, func(ctx context.Context) error {
		sh, labels, err := s.service.Sheet(ctx, name)
		if err != nil {
			return err
		}
		resp = SheetResponse{Source: name, Table: sh.Name, Areas: sh.Areas()}
		if area == "" {
			return nil
		}
		series, ok := sh.Series(area, labels)
		if !ok {
			return errAreaNotFound{area: area}
		}
		resp.Area = area
		resp.Series = &series
		resp.Colors = s.service.Catalog().Labels().For(series.Labels)
		return nil
	}) {
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if sess != nil {
		sess.Remember(key, body)
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

type errAreaNotFound struct{ area string }

func (e errAreaNotFound) Error() string { return fmt.Sprintf("area %q not found", e.area) }

func (s *Server) handleChoropleth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := dataset.ChoroplethRequest{Base: q.Get("base"), Values: q.Get("values"), Ramp: q.Get("ramp")}
	if req.Base == "" || req.Values == "" {
		s.badRequest(w, "base and values are required")
		return
	}
	if raw := q.Get("group"); raw != "" {
		g, ok := models.ParseGroupName(raw)
		if !ok {
			s.badRequest(w, fmt.Sprintf("unknown group %q", raw))
			return
		}
		req.Group = g
	}

	var (
		body  []byte
		stats geo.JoinStats
	)
	if !s.load(w, r, func(ctx context.Context) error {
		fc, st, err := s.service.Choropleth(ctx, req)
		if err != nil {
			return err
		}
		stats = st
		body, err = geo.Encode(fc)
		return err
	}) {
		return
	}
	w.Header().Set("X-Join-Matched", strconv.Itoa(stats.Matched))
	w.Header().Set("X-Join-Missing", strconv.Itoa(len(stats.Missing)))
	s.writeGeoJSON(w, body)
}

func (s *Server) handleListRamps(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.Catalog().RampNames())
}

func (s *Server) handleRamp(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ramp, err := s.service.Catalog().Ramp(name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RampResponse{Name: name, Comparison: ramp.Comparison(), Legend: ramp.Legend()})
}

func (s *Server) handleRampColor(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	raw := r.URL.Query().Get("value")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		s.badRequest(w, fmt.Sprintf("invalid value %q", raw))
		return
	}
	color, err := s.service.Color(name, value)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ColorResponse{Ramp: name, Value: value, Color: color})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if sess := sessionFrom(r.Context()); sess != nil {
		s.sessions.Drop(sess.ID)
	}
	w.WriteHeader(http.StatusNoContent)
}

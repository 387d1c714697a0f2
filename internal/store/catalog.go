package store

import (
	"fmt"
	"strings"

	"fjacquet/cultura-csv/internal/colorramp"
	"fjacquet/cultura-csv/internal/models"
	"fjacquet/cultura-csv/internal/parsererror"
)

// RampSpec declares a named colour ramp.
type RampSpec struct {
	Name       string           `yaml:"name" toml:"name" json:"name"`
	Comparison string           `yaml:"comparison" toml:"comparison" json:"comparison,omitempty"`
	Stops      []colorramp.Stop `yaml:"stops" toml:"stops" json:"stops"`
}

// Catalog is everything the application knows about its data: whitelists, colour
// ramps, label colours and the declared sources.
type Catalog struct {
	// Whitelists keyed by group name; missing groups use the built-in lists.
	Whitelists  map[string][]string `yaml:"whitelists" toml:"whitelists" json:"whitelists,omitempty"`
	Ramps       []RampSpec          `yaml:"ramps" toml:"ramps" json:"ramps"`
	LabelColors map[string]string   `yaml:"label_colors" toml:"label_colors" json:"label_colors,omitempty"`
	Sources     []models.SourceSpec `yaml:"sources" toml:"sources" json:"sources"`
}

// normalize applies source defaults and validates the catalog.
func (c *Catalog) normalize() error {
	for name := range c.Whitelists {
		if _, ok := models.ParseGroupName(name); !ok {
			return &parsererror.ContractError{Component: "catalog", Option: "whitelists", Value: name, Reason: "unknown group"}
		}
	}

	ramps := make(map[string]bool, len(c.Ramps))
	for _, r := range c.Ramps {
		if r.Name == "" {
			return &parsererror.ContractError{Component: "catalog", Option: "ramps", Value: "", Reason: "ramp without name"}
		}
		if ramps[r.Name] {
			return &parsererror.ContractError{Component: "catalog", Option: "ramps", Value: r.Name, Reason: "duplicate ramp"}
		}
		ramps[r.Name] = true
		if _, err := r.Build(); err != nil {
			return fmt.Errorf("ramp %s: %w", r.Name, err)
		}
	}

	names := make(map[string]bool, len(c.Sources))
	for i := range c.Sources {
		s := &c.Sources[i]
		s.ApplyDefaults()
		switch {
		case s.Name == "":
			return &parsererror.ContractError{Component: "catalog", Option: "sources", Value: s.Location, Reason: "source without name"}
		case names[s.Name]:
			return &parsererror.ContractError{Component: "catalog", Option: "sources", Value: s.Name, Reason: "duplicate source"}
		case s.Location == "":
			return &parsererror.ContractError{Component: "catalog", Option: "location", Value: s.Name, Reason: "location is required"}
		case !s.Kind.Valid():
			return &parsererror.ContractError{Component: "catalog", Option: "kind", Value: string(s.Kind), Reason: "unknown source kind"}
		case s.Ramp != "" && !ramps[s.Ramp]:
			return &parsererror.ContractError{Component: "catalog", Option: "ramp", Value: s.Ramp, Reason: "source " + s.Name + " names an undeclared ramp"}
		}
		names[s.Name] = true
	}
	return nil
}

// Build validates the stops and returns the ramp.
func (r RampSpec) Build() (*colorramp.Ramp, error) {
	cmp, err := colorramp.ParseComparison(r.Comparison)
	if err != nil {
		return nil, err
	}
	return colorramp.New(r.Stops, cmp)
}

// Source returns the named source.
func (c *Catalog) Source(name string) (models.SourceSpec, error) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, nil
		}
	}
	return models.SourceSpec{}, fmt.Errorf("%w: %s", parsererror.ErrUnknownSource, name)
}

// Ramp builds the named ramp.
func (c *Catalog) Ramp(name string) (*colorramp.Ramp, error) {
	for _, r := range c.Ramps {
		if r.Name == name {
			return r.Build()
		}
	}
	return nil, fmt.Errorf("%w: %s", parsererror.ErrUnknownRamp, name)
}

// RampNames lists the declared ramps in catalog order.
func (c *Catalog) RampNames() []string {
	out := make([]string, len(c.Ramps))
	for i, r := range c.Ramps {
		out[i] = r.Name
	}
	return out
}

// WhitelistLists returns the configured lists keyed by group. Groups without an
// entry are absent so callers can fall back to the defaults.
func (c *Catalog) WhitelistLists() map[models.GroupName][]string {
	out := make(map[models.GroupName][]string, len(c.Whitelists))
	for name, list := range c.Whitelists {
		if group, ok := models.ParseGroupName(name); ok {
			out[group] = append([]string(nil), list...)
		}
	}
	return out
}

// Labels returns the label colour mapping.
func (c *Catalog) Labels() colorramp.LabelColors {
	if len(c.LabelColors) == 0 {
		return colorramp.VolumeBandColors()
	}
	return colorramp.NewLabelColors(c.LabelColors, colorramp.DefaultLabelColor)
}

// Format guesses the catalog encoding from a file name.
func Format(path string) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".toml") {
		return "toml"
	}
	return "yaml"
}

package colorramp

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned for colours that are not "#rrggbb".
var ErrInvalidColor = errors.New("invalid colour")

// DefaultLabelColor is used for labels without an assigned colour.
const DefaultLabelColor = "#c6dbef"

// Interpolate blends from towards to by factor, clamped to [0, 1], channel by
// channel with rounding to the nearest integer.
func Interpolate(from, to string, factor float64) (string, error) {
	a, err := parseHex(from)
	if err != nil {
		return "", err
	}
	b, err := parseHex(to)
	if err != nil {
		return "", err
	}
	if math.IsNaN(factor) || factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}

	var out [3]uint8
	for i := range out {
		out[i] = uint8(math.Round(float64(a[i]) + factor*(float64(b[i])-float64(a[i]))))
	}
	return fmt.Sprintf("#%02x%02x%02x", out[0], out[1], out[2]), nil
}

func parseHex(s string) ([3]uint8, error) {
	var rgb [3]uint8
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return rgb, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	for i := range rgb {
		n, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return rgb, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		rgb[i] = uint8(n)
	}
	return rgb, nil
}

// Palette cycles fill and border colours by dataset index.
type Palette struct {
	fills   []string
	borders []string
}

// NewPalette pairs fills with borders; both must have the same non-zero length.
func NewPalette(fills, borders []string) (Palette, error) {
	if len(fills) == 0 || len(fills) != len(borders) {
		return Palette{}, contractErr("palette", fmt.Sprintf("%d/%d", len(fills), len(borders)), "fills and borders must be non-empty and of equal length")
	}
	return Palette{fills: append([]string(nil), fills...), borders: append([]string(nil), borders...)}, nil
}

// DefaultPalette is the six-colour chart palette, translucent fills with opaque borders.
func DefaultPalette() Palette {
	rgb := []string{"255, 99, 132", "54, 162, 235", "255, 206, 86", "75, 192, 192", "153, 102, 255", "255, 159, 64"}
	p := Palette{fills: make([]string, len(rgb)), borders: make([]string, len(rgb))}
	for i, c := range rgb {
		p.fills[i] = "rgba(" + c + ", 0.2)"
		p.borders[i] = "rgba(" + c + ", 1)"
	}
	return p
}

// Colors returns the fill and border colour for dataset index. The zero Palette
// behaves like DefaultPalette.
func (p Palette) Colors(index int) (fill, border string) {
	if len(p.fills) == 0 {
		p = DefaultPalette()
	}
	if index < 0 {
		index = -index
	}
	i := index % len(p.fills)
	return p.fills[i], p.borders[i]
}

// Len is the cycle length.
func (p Palette) Len() int {
	return len(p.fills)
}

// LabelColors assigns fixed colours to known labels.
type LabelColors struct {
	colors   map[string]string
	fallback string
}

// NewLabelColors copies colors; an empty fallback means DefaultLabelColor.
func NewLabelColors(colors map[string]string, fallback string) LabelColors {
	if fallback == "" {
		fallback = DefaultLabelColor
	}
	m := make(map[string]string, len(colors))
	for k, v := range colors {
		m[k] = v
	}
	return LabelColors{colors: m, fallback: fallback}
}

// VolumeBandColors colours the library collection-size bands.
func VolumeBandColors() LabelColors {
	return NewLabelColors(map[string]string{
		"Non indicato":              "#c6dbef",
		"Fino a 2.000 volumi":       "#9ecae1",
		"Da 2.001 a 5.000":          "#6baed6",
		"Da 5.001 a 10.000":         "#4292c6",
		"Da 10.001 a 100.000":       "#2171b5",
		"Da 100.001 a 500.000":      "#08519c",
		"Da 500.001 a 1.000.000":    "#08519c",
		"Oltre 1.000.000 di volumi": "#08519c",
	}, DefaultLabelColor)
}

// Color returns the colour of label, or the fallback.
func (l LabelColors) Color(label string) string {
	if c, ok := l.colors[label]; ok {
		return c
	}
	if l.fallback == "" {
		return DefaultLabelColor
	}
	return l.fallback
}

// For maps labels to colours in order.
func (l LabelColors) For(labels []string) []string {
	out := make([]string, len(labels))
	for i, label := range labels {
		out[i] = l.Color(label)
	}
	return out
}

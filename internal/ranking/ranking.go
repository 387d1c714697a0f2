// Package ranking reads "name=value" lists and ranks them.
package ranking

import (
	"sort"
	"strings"

	"fjacquet/cultura-csv/internal/models"
	"fjacquet/cultura-csv/internal/numberutils"
)

// DefaultTop is the number of entries shown by the event charts.
const DefaultTop = 20

// Entry is one name/value pair.
type Entry struct {
	Name  string  `json:"name" csv:"name"`
	Value float64 `json:"value" csv:"value"`
}

// Parse reads one entry per line. Lines without sep, with an empty name or with
// a value that is not a number are skipped and counted.
func Parse(text, sep string) (entries []Entry, skipped int) {
	if sep == "" {
		sep = "="
	}
	for _, line := range strings.Split(strings.TrimPrefix(text, "\ufeff"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, raw, ok := strings.Cut(line, sep)
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			skipped++
			continue
		}
		value, err := numberutils.Parse(strings.TrimSpace(raw), models.DecimalPoint)
		if err != nil {
			skipped++
			continue
		}
		entries = append(entries, Entry{Name: name, Value: value.InexactFloat64()})
	}
	return entries, skipped
}

// Top returns the n entries with the largest values, largest first. Ties keep
// their input order. n <= 0 yields an empty slice.
func Top(entries []Entry, n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

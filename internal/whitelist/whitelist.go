// Package whitelist routes category names into dataset groups. Matching is exact
// and case-sensitive after an explicit, configurable normalisation step.
package whitelist

import (
	"sort"
	"strings"

	"fjacquet/cultura-csv/internal/models"
	"fjacquet/cultura-csv/internal/parsererror"

	"golang.org/x/text/unicode/norm"
)

// Normalization selects the Unicode treatment applied before comparing strings.
type Normalization string

const (
	// NormalizationNone compares raw bytes.
	NormalizationNone Normalization = "none"
	// NormalizationNFC compares NFC forms, so "Forlì" typed with a combining
	// grave accent matches the precomposed spelling.
	NormalizationNFC Normalization = "nfc"
)

// Options configures matching.
type Options struct {
	Normalization Normalization
	// FoldApostrophes maps typographic apostrophes (U+2018, U+2019, U+02BC, U+00B4)
	// to "'" before comparing. Off by default: "Valle d’Aosta" and
	// "Valle d'Aosta" are different categories unless this is set.
	FoldApostrophes bool
}

var apostropheFolder = strings.NewReplacer(
	"\u2018", "'",
	"\u2019", "'",
	"\u02bc", "'",
	"\u00b4", "'",
)

// Whitelists holds the four category sets.
type Whitelists struct {
	opts  Options
	lists map[models.GroupName][]string
	// index maps a normalised category to its canonical spelling, per group.
	index map[models.GroupName]map[string]string
}

// New builds whitelists from lists. Groups missing from lists are empty.
func New(lists map[models.GroupName][]string, opts Options) (*Whitelists, error) {
	if opts.Normalization == "" {
		opts.Normalization = NormalizationNFC
	}
	if opts.Normalization != NormalizationNone && opts.Normalization != NormalizationNFC {
		return nil, &parsererror.ContractError{
			Component: "whitelist",
			Option:    "normalization",
			Value:     string(opts.Normalization),
			Reason:    "must be 'none' or 'nfc'",
		}
	}

	w := &Whitelists{
		opts:  opts,
		lists: make(map[models.GroupName][]string, len(models.GroupOrder)),
		index: make(map[models.GroupName]map[string]string, len(models.GroupOrder)),
	}
	for _, group := range models.GroupOrder {
		entries := lists[group]
		w.lists[group] = append([]string(nil), entries...)
		idx := make(map[string]string, len(entries))
		for _, e := range entries {
			key := w.Normalize(e)
			if _, dup := idx[key]; !dup {
				idx[key] = e
			}
		}
		w.index[group] = idx
	}
	return w, nil
}

// Default builds the built-in Italian whitelists.
func Default(opts Options) (*Whitelists, error) {
	return New(DefaultLists(), opts)
}

// Normalize applies the configured normalisation to s. Surrounding whitespace is
// always trimmed.
func (w *Whitelists) Normalize(s string) string {
	s = strings.TrimSpace(s)
	if w.opts.FoldApostrophes {
		s = apostropheFolder.Replace(s)
	}
	if w.opts.Normalization == NormalizationNFC {
		s = norm.NFC.String(s)
	}
	return s
}

// Lookup returns the first group, in models.GroupOrder, whose whitelist contains
// category, together with the whitelist's own spelling of it.
func (w *Whitelists) Lookup(category string) (models.GroupName, string, bool) {
	key := w.Normalize(category)
	for _, group := range models.GroupOrder {
		if canonical, ok := w.index[group][key]; ok {
			return group, canonical, true
		}
	}
	return "", "", false
}

// Contains reports whether group's whitelist holds category.
func (w *Whitelists) Contains(group models.GroupName, category string) bool {
	_, ok := w.index[group][w.Normalize(category)]
	return ok
}

// List returns a copy of group's whitelist in declaration order.
func (w *Whitelists) List(group models.GroupName) []string {
	return append([]string(nil), w.lists[group]...)
}

// Overlaps lists the normalised categories present in more than one group.
// Disjointness is not enforced; Lookup resolves overlaps by priority.
func (w *Whitelists) Overlaps() []string {
	count := make(map[string]int)
	for _, group := range models.GroupOrder {
		for key := range w.index[group] {
			count[key]++
		}
	}
	var out []string
	for key, n := range count {
		if n > 1 {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

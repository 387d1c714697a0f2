// Package extractor turns raw delimited text into a ParsedDataset by routing each
// row's category through the configured whitelists.
//
// Two row shapes are recognised:
//
//	Piemonte,"1,500"        name before the first delimiter, value in the first quoted segment
//	Piemonte;1500;2021      quote-aware field split, value taken from Options.ValueField
//
// Malformed rows are skipped and unknown categories dropped; neither is an error.
// Extract keeps no state between calls.
package extractor

import (
	"strconv"
	"strings"

	"fjacquet/cultura-csv/internal/models"
	"fjacquet/cultura-csv/internal/numberutils"
	"fjacquet/cultura-csv/internal/parsererror"
	"fjacquet/cultura-csv/internal/whitelist"
)

// Options configures one extractor. Every field is required except ValueField,
// which defaults to 1, and HeaderLines, which defaults to 0.
//
// ValueField only applies to the split shape. A row whose value position holds a
// quoted segment is read with the quoted shape first, so `Sud;"a;b";7,25` with
// ValueField 2 yields Sud = "a;b", a defaulted zero, not 7.25.
type Options struct {
	Delimiter  rune
	Decimal    models.DecimalConvention
	ValueField int
	// HeaderLines is the number of leading lines counted as Skipped without
	// being looked up.
	HeaderLines int
	Whitelists  *whitelist.Whitelists
}

// Stats reports what happened to each line of the input. A header line not
// covered by Options.HeaderLines is treated like any row: its first cell is not
// whitelisted, so it counts as Dropped and shows up in Unmatched.
type Stats struct {
	Lines     int `json:"lines"`
	Accepted  int `json:"accepted"`
	Skipped   int `json:"skipped"`
	Dropped   int `json:"dropped"`
	Defaulted int `json:"defaulted"`
	// Unmatched lists the distinct categories that matched no whitelist, in order.
	Unmatched []string `json:"unmatched,omitempty"`
}

// Extractor is a validated set of Options.
type Extractor struct {
	opts Options
}

// New validates opts. Errors are *parsererror.ContractError: they signal a
// programming mistake, not bad data.
func New(opts Options) (*Extractor, error) {
	if opts.ValueField == 0 {
		opts.ValueField = 1
	}
	switch {
	case opts.Delimiter != ',' && opts.Delimiter != ';':
		return nil, contractErr("delimiter", string(opts.Delimiter), "must be ',' or ';'")
	case !opts.Decimal.Valid():
		return nil, contractErr("decimal", string(opts.Decimal), "must be 'point' or 'comma'")
	case opts.ValueField < 1:
		return nil, contractErr("value_field", strconv.Itoa(opts.ValueField), "must be >= 1")
	case opts.HeaderLines < 0:
		return nil, contractErr("header_lines", strconv.Itoa(opts.HeaderLines), "must be >= 0")
	case opts.Whitelists == nil:
		return nil, contractErr("whitelists", "<nil>", "whitelists are required")
	}
	return &Extractor{opts: opts}, nil
}

// Extract is New followed by Extractor.Extract.
func Extract(text string, opts Options) (*models.ParsedDataset, Stats, error) {
	e, err := New(opts)
	if err != nil {
		return nil, Stats{}, err
	}
	ds, stats := e.Extract(text)
	return ds, stats, nil
}

// Extract parses text. An empty or fully skipped input yields four empty groups.
func (e *Extractor) Extract(text string) (*models.ParsedDataset, Stats) {
	var stats Stats
	builder := models.NewDatasetBuilder()
	unmatched := make(map[string]bool)

	text = strings.TrimPrefix(text, "\ufeff")
	for _, raw := range strings.Split(text, "\n") {
		stats.Lines++
		if stats.Lines <= e.opts.HeaderLines {
			stats.Skipped++
			continue
		}
		line := strings.TrimSpace(raw)

		category, value, ok := splitRow(line, e.opts.Delimiter, e.opts.ValueField)
		if !ok {
			stats.Skipped++
			continue
		}

		group, canonical, ok := e.opts.Whitelists.Lookup(category)
		if !ok {
			stats.Dropped++
			if !unmatched[category] {
				unmatched[category] = true
				stats.Unmatched = append(stats.Unmatched, category)
			}
			continue
		}

		amount, defaulted := numberutils.ParseOrZero(value, e.opts.Decimal)
		if defaulted {
			stats.Defaulted++
		}
		builder.Set(group, canonical, amount, defaulted)
		stats.Accepted++
	}

	return builder.Build(), stats
}

// splitRow extracts the category and the raw value of one trimmed line.
func splitRow(line string, delim rune, valueField int) (string, string, bool) {
	if line == "" || !strings.ContainsRune(line, delim) {
		return "", "", false
	}

	if category, value, ok := quotedValue(line, delim); ok {
		category = strings.TrimSpace(category)
		return category, strings.TrimSpace(value), category != ""
	}

	fields, ok := splitFields(line, delim)
	if !ok || len(fields) <= valueField {
		return "", "", false
	}
	if fields[0] == "" {
		return "", "", false
	}
	return fields[0], fields[valueField], true
}

// quotedValue handles `name,"value"`: the category is the text before the first
// delimiter and the value is the content of the first quoted segment after it.
// A quoted category falls through to splitFields.
func quotedValue(line string, delim rune) (string, string, bool) {
	i := strings.IndexRune(line, delim)
	name := line[:i]
	if strings.ContainsRune(name, '"') {
		return "", "", false
	}

	rest := line[i+len(string(delim)):]
	open := strings.IndexByte(rest, '"')
	if open < 0 {
		return "", "", false
	}
	end := strings.IndexByte(rest[open+1:], '"')
	if end < 0 {
		return "", "", false
	}
	return name, rest[open+1 : open+1+end], true
}

// splitFields splits line on delim outside double quotes, removes the quotes
// ("" inside a quoted field is a literal quote) and trims every field. It fails
// on an unterminated quote.
func splitFields(line string, delim rune) ([]string, bool) {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' && inQuotes && i+1 < len(runes) && runes[i+1] == '"':
			field.WriteRune('"')
			i++
		case r == '"':
			inQuotes = !inQuotes
		case r == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	if inQuotes {
		return nil, false
	}
	return append(fields, strings.TrimSpace(field.String())), true
}

func contractErr(option, value, reason string) error {
	return &parsererror.ContractError{Component: "extractor", Option: option, Value: value, Reason: reason}
}

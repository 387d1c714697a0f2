// Package parsererror holds the typed errors returned by the parsers, the catalog
// store and the fetch layer. Data-shape problems inside a file are never errors;
// these types cover contract violations and whole-source failures.
package parsererror

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSource is returned when a source name is not declared in the catalog.
	ErrUnknownSource = errors.New("unknown source")
	// ErrUnknownRamp is returned when a colour ramp name is not declared in the catalog.
	ErrUnknownRamp = errors.New("unknown colour ramp")
	// ErrWrongKind is returned when a source is used through a parser for another kind.
	ErrWrongKind = errors.New("source kind mismatch")
)

// ContractError reports a programmer error: an option outside its allowed set.
// Callers are expected to fail fast on it.
type ContractError struct {
	Component string
	Option    string
	Value     string
	Reason    string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: invalid %s '%s': %s", e.Component, e.Option, e.Value, e.Reason)
}

// ParseError represents a value that could not be parsed where parsing is mandatory.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v", e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents a whole input that does not have the expected shape
// (for example a GeoJSON document that is not a FeatureCollection).
type InvalidFormatError struct {
	Source         string
	ExpectedFormat string
	Snippet        string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("invalid format in '%s': %s. Expected: %s. Content snippet: '%s'",
			e.Source, e.Msg, e.ExpectedFormat, e.Snippet)
	}
	return fmt.Sprintf("invalid format in '%s': %s. Expected: %s", e.Source, e.Msg, e.ExpectedFormat)
}

// DataExtractionError represents required data that could not be found in a source,
// such as a point schema column missing from the header.
type DataExtractionError struct {
	Source    string
	FieldName string
	Reason    string
}

func (e *DataExtractionError) Error() string {
	return fmt.Sprintf("data extraction failed in '%s' for field '%s': %s", e.Source, e.FieldName, e.Reason)
}

// SourceError wraps a failure to obtain the raw bytes of a source.
type SourceError struct {
	Location string
	Status   int
	Err      error
}

func (e *SourceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetching '%s': unexpected status %d", e.Location, e.Status)
	}
	return fmt.Sprintf("fetching '%s': %v", e.Location, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Snippet shortens content for inclusion in an InvalidFormatError.
func Snippet(content string, max int) string {
	r := []rune(content)
	if len(r) <= max {
		return content
	}
	return string(r[:max]) + "..."
}

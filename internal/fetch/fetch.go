// Package fetch obtains the raw text of a source: local files under the data
// directory or http(s) URLs, decoded to UTF-8.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/parsererror"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// MaxBodySize caps the bytes read from one source.
const MaxBodySize = 64 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads sources. It does not retry: a failed fetch is reported once.
type Loader struct {
	client  *http.Client
	dataDir string
	logger  logging.Logger
}

// Option customises a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the HTTP client, e.g. with an httptest server client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// New creates a Loader resolving relative paths against dataDir.
func New(dataDir string, timeout time.Duration, logger logging.Logger, opts ...Option) *Loader {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	l := &Loader{
		client:  &http.Client{Timeout: timeout},
		dataDir: dataDir,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load returns the content of location decoded from enc ("utf-8", "latin1",
// "windows-1252" or "auto"), without a byte order mark.
func (l *Loader) Load(ctx context.Context, location, enc string) ([]byte, error) {
	dec, err := decoderFor(enc)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var raw []byte
	if IsRemote(location) {
		raw, err = l.get(ctx, location)
	} else {
		raw, err = l.readFile(location)
	}
	if err != nil {
		l.logger.WithError(err).Warn("Failed to load source",
			logging.Field{Key: logging.FieldLocation, Value: location})
		return nil, err
	}

	text, err := decode(raw, enc, dec)
	if err != nil {
		return nil, &parsererror.SourceError{Location: location, Err: err}
	}

	l.logger.Debug("Loaded source",
		logging.Field{Key: logging.FieldLocation, Value: location},
		logging.Field{Key: logging.FieldEncoding, Value: enc},
		logging.Field{Key: logging.FieldCount, Value: len(text)},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).String()})
	return text, nil
}

// Resolve returns the filesystem path a local location maps to.
func (l *Loader) Resolve(location string) string {
	if filepath.IsAbs(location) || l.dataDir == "" {
		return filepath.Clean(location)
	}
	return filepath.Join(l.dataDir, filepath.Clean(location))
}

func (l *Loader) readFile(location string) ([]byte, error) {
	path := l.Resolve(location)
	f, err := os.Open(path) // #nosec G304 -- locations come from the catalog or the command line
	if err != nil {
		return nil, &parsererror.SourceError{Location: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			l.logger.WithError(cerr).Warn("Failed to close source file")
		}
	}()

	data, err := io.ReadAll(io.LimitReader(f, MaxBodySize))
	if err != nil {
		return nil, &parsererror.SourceError{Location: path, Err: err}
	}
	return data, nil
}

func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &parsererror.SourceError{Location: url, Err: err}
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &parsererror.SourceError{Location: url, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			l.logger.WithError(cerr).Warn("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &parsererror.SourceError{Location: url, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, &parsererror.SourceError{Location: url, Status: resp.StatusCode, Err: err}
	}
	return data, nil
}

// decoderFor maps an encoding name to a decoder; nil means UTF-8.
func decoderFor(enc string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", "utf-8", "utf8", "auto":
		return nil, nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	}
	return nil, &parsererror.ContractError{Component: "fetch", Option: "encoding", Value: enc, Reason: "supported: utf-8, latin1, windows-1252, auto"}
}

func decode(raw []byte, enc string, dec *encoding.Decoder) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if dec == nil && strings.EqualFold(strings.TrimSpace(enc), "auto") && !utf8.Valid(raw) {
		dec = charmap.Windows1252.NewDecoder()
	}
	if dec == nil {
		return raw, nil
	}
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", enc, err)
	}
	return out, nil
}

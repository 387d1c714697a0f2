package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoader(t *testing.T, dir string) (*Loader, *logging.MockLogger) {
	t.Helper()
	logger := logging.NewMockLogger()
	return New(dir, 5*time.Second, logger), logger
}

func TestLoad_LocalRelativeToDataDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Dati_eventi"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dati_eventi", "eventi.txt"), []byte("\xEF\xBB\xBFRoma=10\n"), 0600))
	l, logger := newLoader(t, dir)

	data, err := l.Load(context.Background(), "Dati_eventi/eventi.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "Roma=10\n", string(data), "BOM stripped")
	assert.True(t, logger.HasEntry("DEBUG", "Loaded source"))
}

func TestLoad_Latin1(t *testing.T) {
	dir := t.TempDir()
	// "Forlì" and "Città" in ISO-8859-1.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latin1.csv"), []byte("Forl\xec,\"1\"\nCitt\xe0,\"2\"\n"), 0600))
	l, _ := newLoader(t, dir)

	data, err := l.Load(context.Background(), "latin1.csv", "latin1")
	require.NoError(t, err)
	assert.Equal(t, "Forlì,\"1\"\nCittà,\"2\"\n", string(data))

	auto, err := l.Load(context.Background(), "latin1.csv", "auto")
	require.NoError(t, err)
	assert.Equal(t, string(data), string(auto), "invalid UTF-8 falls back to windows-1252")
}

func TestLoad_Windows1252Quotes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cp.csv"), []byte("Valle d\x92Aosta"), 0600))
	l, _ := newLoader(t, dir)

	data, err := l.Load(context.Background(), "cp.csv", "windows-1252")
	require.NoError(t, err)
	assert.Equal(t, "Valle d’Aosta", string(data))
}

func TestLoad_UnknownEncoding(t *testing.T) {
	l, _ := newLoader(t, t.TempDir())
	_, err := l.Load(context.Background(), "x.csv", "ebcdic")

	var contractErr *parsererror.ContractError
	require.True(t, errors.As(err, &contractErr))
	assert.Equal(t, "encoding", contractErr.Option)
}

func TestLoad_MissingFile(t *testing.T) {
	l, logger := newLoader(t, t.TempDir())
	_, err := l.Load(context.Background(), "missing.csv", "")

	var sourceErr *parsererror.SourceError
	require.True(t, errors.As(err, &sourceErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Len(t, logger.EntriesByLevel("WARN"), 1)
}

func TestLoad_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.csv":
			_, _ = w.Write([]byte("Lazio,\"5\""))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := New("", time.Second, logging.NewMockLogger(), WithHTTPClient(srv.Client()))

	data, err := l.Load(context.Background(), srv.URL+"/ok.csv", "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "Lazio,\"5\"", string(data))

	_, err = l.Load(context.Background(), srv.URL+"/missing.csv", "")
	var sourceErr *parsererror.SourceError
	require.True(t, errors.As(err, &sourceErr))
	assert.Equal(t, http.StatusNotFound, sourceErr.Status)
}

func TestLoad_RemoteCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	l := New("", 5*time.Second, logging.NewMockLogger(), WithHTTPClient(srv.Client()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Load(ctx, srv.URL, "")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestIsRemoteAndResolve(t *testing.T) {
	assert.True(t, IsRemote("https://dati.cultura.gov.it/x.csv"))
	assert.True(t, IsRemote("HTTP://example.org"))
	assert.False(t, IsRemote("data/x.csv"))

	l, _ := newLoader(t, "/srv/data")
	assert.Equal(t, filepath.Join("/srv/data", "a", "b.csv"), l.Resolve("a/./b.csv"))
	assert.Equal(t, "/tmp/x.csv", l.Resolve("/tmp/x.csv"))
}

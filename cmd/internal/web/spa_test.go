package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ATRIUM_ENV", "")
	t.Setenv("ATRIUM_VITE_PORT", "")
	cfg := LoadConfigFromEnv()
	assert.True(t, cfg.DevProxy)
	assert.Equal(t, "http://localhost:5173", cfg.ViteURL)

	t.Setenv("ATRIUM_ENV", "production")
	t.Setenv("ATRIUM_STATIC_DIR", "dist")
	cfg = LoadConfigFromEnv()
	assert.False(t, cfg.DevProxy)
	assert.Equal(t, "dist", cfg.StaticDir)
}

func TestDevProxyForwardsToVite(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Upstream", "vite")
		_, _ = w.Write([]byte("dev page"))
	}))
	defer upstream.Close()

	h, err := NewHandler(discard(), Config{DevProxy: true, ViteURL: upstream.URL})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/some/route", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "vite", rec.Header().Get("X-Upstream"))
	assert.Equal(t, "dev page", rec.Body.String())
}

func TestDevProxyUnreachableUpstream(t *testing.T) {
	// A port nothing listens on.
	dead := &url.URL{Scheme: "http", Host: "127.0.0.1:1"}
	h, err := NewHandler(discard(), Config{DevProxy: true, ViteURL: dead.String()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestStaticServesFilesAndSPAFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	h, err := NewHandler(discard(), Config{StaticDir: dir})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	// A client side route falls back to index.html.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings/profile", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/settings", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// Package web serves the browser client. In development it proxies
// every non-API request to the Vite dev server, WebSocket upgrades
// included; in production it serves the built static assets with an
// index.html fallback so client side routes deep-link correctly.
package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Config selects how non-API requests are answered.
type Config struct {
	// DevProxy enables proxying to the Vite dev server.
	DevProxy bool

	// ViteURL is the dev server origin, e.g. "http://localhost:5173".
	ViteURL string

	// StaticDir is the built asset directory served in production.
	StaticDir string
}

// LoadConfigFromEnv derives the web config from ATRIUM_ENV and friends.
func LoadConfigFromEnv() Config {
	env := strings.TrimSpace(os.Getenv("ATRIUM_ENV"))
	vitePort := strings.TrimSpace(os.Getenv("ATRIUM_VITE_PORT"))
	if vitePort == "" {
		vitePort = "5173"
	}
	staticDir := strings.TrimSpace(os.Getenv("ATRIUM_STATIC_DIR"))
	if staticDir == "" {
		staticDir = "public"
	}
	return Config{
		DevProxy:  env != "production",
		ViteURL:   "http://localhost:" + vitePort,
		StaticDir: staticDir,
	}
}

// NewHandler returns the handler for everything outside /api.
func NewHandler(log *slog.Logger, cfg Config) (http.Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.DevProxy {
		target, err := url.Parse(cfg.ViteURL)
		if err != nil {
			return nil, fmt.Errorf("web: parse vite url: %w", err)
		}
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error("web.proxy.fail", "path", r.URL.Path, "error", err)
			http.Error(w, "dev server unavailable", http.StatusBadGateway)
		}
		log.Info("web.mode.dev_proxy", "target", cfg.ViteURL)
		return proxy, nil
	}

	log.Info("web.mode.static", "dir", cfg.StaticDir)
	return &spaHandler{dir: cfg.StaticDir, fs: http.FileServer(http.Dir(cfg.StaticDir))}, nil
}

// spaHandler serves files from dir and falls back to index.html for
// paths that do not match a file, which is how client side routing
// survives a page reload.
type spaHandler struct {
	dir string
	fs  http.Handler
}

func (h *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	p := filepath.Join(h.dir, filepath.Clean("/"+r.URL.Path))
	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		h.fs.ServeHTTP(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
}

package frontend

import (
	"io"
	"log"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SPAHandler serves a single-page app:
//   - static assets are served when present
//   - any other path falls back to index.html for client-side routing
//   - index.html receives the configuration script in its <head>
type SPAHandler struct {
	root      http.FileSystem
	publisher *Publisher
	csp       bool
}

// SPAOption configures an SPAHandler.
type SPAOption func(*SPAHandler)

// WithCSP sends a Content-Security-Policy header allowing the injected script
// by nonce alongside same-origin scripts.
func WithCSP() SPAOption {
	return func(h *SPAHandler) {
		h.csp = true
	}
}

// NewSPAHandler returns a handler serving root. A nil publisher serves
// index.html unmodified.
func NewSPAHandler(root http.FileSystem, publisher *Publisher, opts ...SPAOption) *SPAHandler {
	h := &SPAHandler{root: root, publisher: publisher}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqPath := path.Clean("/" + r.URL.Path)
	if reqPath == "/" {
		reqPath = "/index.html"
	}

	if h.serveIfExists(w, r, strings.TrimPrefix(reqPath, "/")) {
		return
	}
	if h.serveIfExists(w, r, "index.html") {
		return
	}
	http.NotFound(w, r)
}

func (h *SPAHandler) serveIfExists(w http.ResponseWriter, r *http.Request, rel string) bool {
	f, err := h.root.Open(rel)
	if err != nil {
		return false
	}
	defer f.Close()

	if info, err := f.Stat(); err != nil || info.IsDir() {
		return false
	}

	if ct := contentTypeFor(rel); ct != "" {
		w.Header().Set("Content-Type", ct)
	}

	// Hashed build output is immutable; HTML carries per-request config.
	switch {
	case strings.HasPrefix(rel, "static/") || strings.HasPrefix(rel, "assets/"):
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	case strings.HasSuffix(strings.ToLower(rel), ".html"):
		w.Header().Set("Cache-Control", "no-store")
	}

	if strings.EqualFold(rel, "index.html") {
		return h.serveIndex(w, r, f)
	}

	if _, err := io.Copy(w, f); err != nil {
		log.Printf("frontend: failed to stream %s: %v", rel, err)
	}
	return true
}

func (h *SPAHandler) serveIndex(w http.ResponseWriter, r *http.Request, f io.Reader) bool {
	data, err := io.ReadAll(f)
	if err != nil {
		log.Printf("frontend: failed to read index.html: %v", err)
		return false
	}

	if h.publisher != nil {
		script, err := h.publisher.Bootstrap(r).Script()
		if err != nil {
			log.Printf("frontend: failed to render bootstrap: %v", err)
			http.Error(w, "configuration unavailable", http.StatusInternalServerError)
			return true
		}
		nonce := ""
		if h.csp {
			nonce = uuid.NewString()
			w.Header().Set("Content-Security-Policy", "script-src 'self' 'nonce-"+nonce+"'")
		}
		data = injectHead(data, scriptTag(script, nonce))
	}

	if _, err := w.Write(data); err != nil {
		log.Printf("frontend: failed to write index.html: %v", err)
	}
	return true
}

func contentTypeFor(rel string) string {
	switch strings.ToLower(filepath.Ext(rel)) {
	case ".js", ".mjs":
		return "application/javascript; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".html":
		return "text/html; charset=utf-8"
	case ".json", ".map":
		return "application/json; charset=utf-8"
	case ".svg":
		return "image/svg+xml; charset=utf-8"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".ico":
		return "image/x-icon"
	case ".woff2":
		return "font/woff2"
	}
	return ""
}

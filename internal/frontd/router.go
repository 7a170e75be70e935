package frontd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/strongdm/frontconf/internal/appconfig"
	"github.com/strongdm/frontconf/internal/frontend"
	"github.com/strongdm/frontconf/internal/telemetry/otel"
)

func newRouter(cfg *runtimeConfig, store *appconfig.Store, inst *otel.Instruments) http.Handler {
	publisher := &frontend.Publisher{Config: store, UserHeader: cfg.UserHeader}

	var spaOpts []frontend.SPAOption
	if cfg.CSP {
		spaOpts = append(spaOpts, frontend.WithCSP())
	}
	spa := frontend.NewSPAHandler(rootFS(cfg), publisher, spaOpts...)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(inst.Middleware)
	r.Use(frontend.Compress)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/health/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, ok := store.APIURL(); !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Method(http.MethodGet, "/config.js", publisher.ScriptHandler())
	r.Method(http.MethodGet, "/api/config", publisher.JSONHandler())
	r.Method(http.MethodGet, "/*", spa)
	r.Method(http.MethodHead, "/*", spa)

	return r
}

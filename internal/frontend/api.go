package frontend

import (
	"encoding/json"
	"log"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

// ScriptHandler serves the page globals as a script for pages that load
// /config.js instead of relying on index.html injection.
func (p *Publisher) ScriptHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		script, err := p.Bootstrap(r).Script()
		if err != nil {
			log.Printf("frontend: failed to render config.js: %v", err)
			http.Error(w, "configuration unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(script)
	})
}

// JSONHandler serves the bootstrap payload as JSON. Without a resolved API
// URL it answers 503 so callers can retry once the host publishes one.
func (p *Publisher) JSONHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		b := p.Bootstrap(r)
		if b.APIURL == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(errorResponse{Error: "API URL not yet configured"})
			return
		}
		_ = json.NewEncoder(w).Encode(b)
	})
}

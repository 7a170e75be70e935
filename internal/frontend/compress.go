package frontend

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// Compress encodes responses with br or gzip according to Accept-Encoding.
// Brotli is preferred when both are acceptable.
func Compress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Encoding")
		encoding := negotiateEncoding(r.Header.Get("Accept-Encoding"))
		if encoding == "" || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		cw := &compressWriter{ResponseWriter: w, encoding: encoding}
		defer cw.Close()
		next.ServeHTTP(cw, r)
	})
}

// negotiateEncoding picks br or gzip, honouring q=0 exclusions. Explicitly
// listed encodings win over a wildcard.
func negotiateEncoding(header string) string {
	accepted := make(map[string]bool)
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(part, ";")
		name := strings.ToLower(strings.TrimSpace(fields[0]))
		if name == "" {
			continue
		}
		q := 1.0
		for _, param := range fields[1:] {
			param = strings.TrimSpace(param)
			if value, ok := strings.CutPrefix(param, "q="); ok {
				if parsed, err := strconv.ParseFloat(value, 64); err == nil {
					q = parsed
				}
			}
		}
		accepted[name] = q > 0
	}

	candidates := []string{"br", "gzip"}
	for _, candidate := range candidates {
		if accepted[candidate] {
			return candidate
		}
	}
	// A wildcard only covers encodings the client did not list.
	if accepted["*"] {
		for _, candidate := range candidates {
			if _, listed := accepted[candidate]; !listed {
				return candidate
			}
		}
	}
	return ""
}

type compressWriter struct {
	http.ResponseWriter
	encoding    string
	enc         io.WriteCloser
	wroteHeader bool
}

func (w *compressWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	h := w.Header()
	if status != http.StatusNoContent && status != http.StatusNotModified && h.Get("Content-Encoding") == "" {
		h.Set("Content-Encoding", w.encoding)
		h.Del("Content-Length")
		switch w.encoding {
		case "br":
			w.enc = brotli.NewWriterLevel(w.ResponseWriter, brotli.DefaultCompression)
		case "gzip":
			w.enc = gzip.NewWriter(w.ResponseWriter)
		}
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *compressWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		// Sniff before encoding; net/http would otherwise sniff compressed bytes.
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(p))
		}
		w.WriteHeader(http.StatusOK)
	}
	if w.enc == nil {
		return w.ResponseWriter.Write(p)
	}
	return w.enc.Write(p)
}

func (w *compressWriter) Close() error {
	if w.enc == nil {
		return nil
	}
	return w.enc.Close()
}

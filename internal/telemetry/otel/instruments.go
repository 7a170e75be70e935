package otel

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Instruments publishes metrics for configuration lookups and metrics plus
// traces for served HTTP requests. A nil *Instruments is a valid no-op and
// satisfies appconfig.Recorder.
type Instruments struct {
	meterEnabled  bool
	traceEnabled  bool
	propagateHTTP bool

	counterFallbacks metric.Int64Counter
	counterMissing   metric.Int64Counter
	counterRequests  metric.Int64Counter
	histDuration     metric.Int64Histogram

	tracer trace.Tracer
}

func newInstruments(p *Provider) *Instruments {
	if p == nil {
		return nil
	}

	inst := &Instruments{
		meterEnabled:  p.meterProvider != nil,
		traceEnabled:  p.tracerProvider != nil,
		propagateHTTP: p.cfg.PropagateHTTP,
	}
	if p.meterProvider != nil {
		inst.counterFallbacks, _ = p.meter.Int64Counter(
			"frontconf.config.fallbacks",
			metric.WithDescription("Lookups that consulted the ambient configuration source"),
		)
		inst.counterMissing, _ = p.meter.Int64Counter(
			"frontconf.config.api_url_missing",
			metric.WithDescription("API URL reads that found no configured value"),
		)
		inst.counterRequests, _ = p.meter.Int64Counter(
			"frontconf.http.requests",
			metric.WithDescription("HTTP requests served"),
		)
		inst.histDuration, _ = p.meter.Int64Histogram(
			"frontconf.http.request.duration",
			metric.WithDescription("Duration of HTTP requests in milliseconds"),
		)
	}
	if p.tracerProvider != nil {
		inst.tracer = p.tracer
	}
	return inst
}

// RecordFallback counts a lookup against the ambient source.
func (i *Instruments) RecordFallback(kind string, applied bool) {
	if i == nil || !i.meterEnabled {
		return
	}
	i.counterFallbacks.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("applied", applied),
	))
}

// RecordAPIURLMissing counts an API URL read that came back empty.
func (i *Instruments) RecordAPIURLMissing() {
	if i == nil || !i.meterEnabled {
		return
	}
	i.counterMissing.Add(context.Background(), 1)
}

// Middleware wraps next with a request span and request metrics.
func (i *Instruments) Middleware(next http.Handler) http.Handler {
	if i == nil || (!i.meterEnabled && !i.traceEnabled) {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		if i.propagateHTTP {
			ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(r.Header))
		}

		attrs := []attribute.KeyValue{
			attribute.String("http.method", r.Method),
			attribute.String("http.route", routeFor(r.URL.Path)),
		}

		var span trace.Span
		if i.traceEnabled && i.tracer != nil {
			ctx, span = i.tracer.Start(ctx, "http "+routeFor(r.URL.Path), trace.WithAttributes(attrs...))
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		attrs = append(attrs, attribute.Int("http.status_code", status))

		if i.meterEnabled {
			i.counterRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
			i.histDuration.Record(ctx, time.Since(start).Milliseconds(), metric.WithAttributes(attrs...))
		}
		if span != nil {
			span.SetAttributes(attrs...)
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			span.End()
		}
	})
}

// routeFor collapses static asset paths so metric cardinality stays bounded.
func routeFor(path string) string {
	switch path {
	case "/", "/index.html", "/config.js", "/api/config", "/healthz", "/health/config":
		return path
	default:
		return "static"
	}
}

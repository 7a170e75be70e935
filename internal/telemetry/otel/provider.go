package otel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/strongdm/frontconf"

// Config controls OTEL exporter behaviour.
type Config struct {
	ServiceName   string
	EnableMetrics bool
	EnableTraces  bool
	Endpoint      string
	PropagateHTTP bool
}

// Provider owns OTEL meter/tracer providers and the derived instruments.
type Provider struct {
	cfg            Config
	reader         *sdkmetric.ManualReader
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          metric.Meter
	tracer         trace.Tracer

	instruments  *Instruments
	shutdownOnce sync.Once
}

// Setup initialises the metric reader and trace exporter selected by cfg.
// With both signals disabled the returned Provider hands out no-op instruments.
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.EnableMetrics && !cfg.EnableTraces {
		p := &Provider{cfg: cfg}
		p.instruments = newInstruments(p)
		return p, nil
	}

	if strings.TrimSpace(cfg.ServiceName) == "" {
		cfg.ServiceName = "frontconf"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	p := &Provider{cfg: cfg}

	if cfg.EnableMetrics {
		p.reader = sdkmetric.NewManualReader()
		p.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(p.reader),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(p.meterProvider)
		p.meter = p.meterProvider.Meter(instrumentationName)
	}

	if cfg.EnableTraces {
		tp, err := createTracerProvider(ctx, cfg, res)
		if err != nil {
			return nil, err
		}
		p.tracerProvider = tp
		otel.SetTracerProvider(tp)
		p.tracer = tp.Tracer(instrumentationName)
	}

	p.instruments = newInstruments(p)
	return p, nil
}

func createTracerProvider(_ context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	if strings.TrimSpace(cfg.Endpoint) != "" {
		log.Printf("FRONTCONF_OTEL_ENDPOINT=%s ignored: OTLP trace export unsupported; using stdout exporter", cfg.Endpoint)
	}

	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("init stdout trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp, sdktrace.WithMaxExportBatchSize(64)),
		sdktrace.WithResource(res),
	), nil
}

// Collect reads the current metric values. It returns an empty result when
// metrics are disabled.
func (p *Provider) Collect(ctx context.Context) (metricdata.ResourceMetrics, error) {
	var rm metricdata.ResourceMetrics
	if p == nil || p.reader == nil {
		return rm, nil
	}
	err := p.reader.Collect(ctx, &rm)
	return rm, err
}

// Shutdown flushes and stops the configured providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	var err error
	p.shutdownOnce.Do(func() {
		var errs []error
		if p.meterProvider != nil {
			if shutdownErr := p.meterProvider.Shutdown(ctx); shutdownErr != nil {
				errs = append(errs, shutdownErr)
			}
		}
		if p.tracerProvider != nil {
			if shutdownErr := p.tracerProvider.Shutdown(ctx); shutdownErr != nil {
				errs = append(errs, shutdownErr)
			}
		}
		if len(errs) > 0 {
			err = errors.Join(errs...)
		}
	})
	return err
}

// Instruments returns the store and HTTP instruments.
func (p *Provider) Instruments() *Instruments {
	if p == nil {
		return nil
	}
	return p.instruments
}

// EnvBool interprets FRONTCONF_* env toggles.
func EnvBool(value string, defaultOn bool) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	switch value {
	case "":
		return defaultOn
	case "1", "true", "on", "enable", "enabled", "yes":
		return true
	case "0", "false", "off", "disable", "disabled", "no":
		return false
	default:
		return defaultOn
	}
}

// LoadConfigFromEnv reads OTEL config from the environment.
func LoadConfigFromEnv() Config {
	return Config{
		ServiceName:   "frontconf",
		EnableMetrics: EnvBool(os.Getenv("FRONTCONF_OTEL_METRICS"), false),
		EnableTraces:  EnvBool(os.Getenv("FRONTCONF_OTEL_TRACES"), false),
		Endpoint:      strings.TrimSpace(os.Getenv("FRONTCONF_OTEL_ENDPOINT")),
		PropagateHTTP: EnvBool(os.Getenv("FRONTCONF_OTEL_PROPAGATE_HTTP_HEADERS"), false),
	}
}

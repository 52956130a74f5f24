// Package telemetry sets up OpenTelemetry tracing for outbound calls to the
// catalog service and for the HTTP server.
package telemetry

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

type Config struct {
	ServiceName  string
	Exporter     string
	OTLPEndpoint string
}

// Setup installs the global tracer provider. With ExporterNone spans are
// still created but never exported. The returned func flushes and stops the
// provider.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	switch strings.ToLower(cfg.Exporter) {
	case "", ExporterNone:
	case ExporterStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	case ExporterOTLP:
		if cfg.OTLPEndpoint == "" {
			return nil, fmt.Errorf("otlp exporter needs an endpoint")
		}
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	log.Printf("[TELEMETRY] [INFO] tracing ready (service=%s exporter=%s)", cfg.ServiceName, cfg.Exporter)
	return tp.Shutdown, nil
}

// newResource describes this service. The semconv import must follow the
// schema version of the SDK's default resource or the merge fails.
func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// NewHTTPClient returns a pooled client whose requests are traced and carry
// the trace context to the remote service.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(transport),
		Timeout:   timeout,
	}
}

// Handler wraps the HTTP server with request spans.
func Handler(next http.Handler, serviceName string) http.Handler {
	return otelhttp.NewHandler(next, serviceName, otelhttp.WithFilter(func(r *http.Request) bool {
		return r.URL.Path != "/health"
	}))
}

package telemetry

import (
	"context"
	"fmt"

	"github.com/colorfulnotion/intcode/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName prefixes every tracer created by this repository.
const InstrumentationName = "github.com/colorfulnotion/intcode"

// ShutdownFunc flushes and stops the installed tracer provider.
type ShutdownFunc func(ctx context.Context) error

// InitTracing installs a global tracer provider exporting spans over OTLP/HTTP to
// endpoint (host:port). An empty endpoint keeps the no-op provider.
func InitTracing(ctx context.Context, endpoint string) (ShutdownFunc, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter %s: %w", endpoint, err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	log.Info(log.CLIMonitoring, "tracing enabled", "endpoint", endpoint)
	return tp.Shutdown, nil
}

// Tracer returns a tracer named after the given package path suffix.
func Tracer(component string) trace.Tracer {
	return otel.Tracer(InstrumentationName + "/" + component)
}

// Package telemetry provides OpenTelemetry instrumentation for the frame
// loop and task state machines.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/samdwyer/corun/internal/config"
)

const (
	tracerPrefix   = "corun/"
	serviceVersion = "0.1.0"

	collectorMaxElapsed = 5 * time.Second
	collectorTimeout    = 2 * time.Second
)

// Setup initializes OpenTelemetry with an OTLP HTTP exporter.
// It reads exporter configuration from the standard OTEL_* environment
// variables:
//   - OTEL_EXPORTER_OTLP_ENDPOINT: collector endpoint
//   - OTEL_EXPORTER_OTLP_HEADERS: extra headers such as API keys
//
// The collector is checked first; Setup fails if it cannot be reached
// within a few seconds. Returns a shutdown function that should be called
// on application exit.
func Setup(ctx context.Context, cfg config.Telemetry) (shutdown func(context.Context) error, err error) {
	if err := checkCollector(ctx, collectorMaxElapsed); err != nil {
		return nil, fmt.Errorf("trace collector unreachable: %w", err)
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Build our own resource rather than merging with Default() to avoid
	// schema URL conflicts.
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", serviceVersion),
			attribute.String("telemetry.sdk.language", "go"),
			attribute.String("telemetry.sdk.name", "opentelemetry"),
			attribute.String("host.name", getHostname()),
			attribute.String("os.type", runtime.GOOS),
			attribute.String("process.runtime.name", "go"),
			attribute.String("process.runtime.version", runtime.Version()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// checkCollector exports a single startup span, retrying with exponential
// backoff for up to maxElapsed so a collector that is still starting is
// not treated as down. This exporter has its own retries disabled.
func checkCollector(ctx context.Context, maxElapsed time.Duration) error {
	exp, err := otlptracehttp.New(ctx,
		otlptracehttp.WithRetry(otlptracehttp.RetryConfig{Enabled: false}),
		otlptracehttp.WithTimeout(collectorTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}
	defer exp.Shutdown(context.Background())

	capture := &spanCapture{}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(capture))
	_, span := tp.Tracer(tracerPrefix+"telemetry").Start(ctx, "telemetry.startup")
	span.End()
	if err := tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to record startup span: %w", err)
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, exp.ExportSpans(ctx, capture.spans)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(maxElapsed),
	)
	return err
}

// spanCapture keeps ended spans so they can be exported by hand.
type spanCapture struct {
	spans []sdktrace.ReadOnlySpan
}

func (c *spanCapture) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (c *spanCapture) OnEnd(s sdktrace.ReadOnlySpan) { c.spans = append(c.spans, s) }

func (c *spanCapture) Shutdown(context.Context) error { return nil }

func (c *spanCapture) ForceFlush(context.Context) error { return nil }

// Tracer returns a named tracer for the given component.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(tracerPrefix + name)
}

// NoopTracer returns a no-op tracer for use when telemetry is disabled.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(tracerPrefix + "noop")
}

// getHostname returns the system hostname, or "unknown" if it cannot be determined.
func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}

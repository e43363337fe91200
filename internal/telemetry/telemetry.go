package telemetry

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

// ServiceName identifies this process in spans.
const ServiceName = "where"

// TracerOptions configures InitTracer.
type TracerOptions struct {
	// Writer receives spans as JSON lines.
	Writer io.Writer
	// SampleRatio in [0,1]; 0 drops every root span.
	SampleRatio float64
	Version     string
}

// InitTracer installs the global tracer provider and W3C propagators.
// The returned function flushes and stops the provider.
func InitTracer(opts TracerOptions) (func(context.Context) error, error) {
	if opts.Writer == nil {
		opts.Writer = io.Discard
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(opts.Writer))
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(opts.Version),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

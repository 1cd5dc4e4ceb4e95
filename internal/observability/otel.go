// Package observability sets up the OpenTelemetry providers of the membersearch binary.
package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/dynamic-member-search-go/internal/config"
	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch/oteladapters"
)

// InstrumentationName names the tracer, meter and logger of the search engine.
const InstrumentationName = "github.com/AntonStoeckl/dynamic-member-search-go/membersearch"

// Providers holds the OpenTelemetry providers. All of them are nil when OpenTelemetry is disabled.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
	Resource       *resource.Resource
}

// Setup creates OTLP gRPC exporters for traces, metrics and logs and registers the providers globally.
// An empty endpoint disables OpenTelemetry and returns empty Providers.
func Setup(ctx context.Context, cfg config.OTelConfig) (*Providers, error) {
	if cfg.Endpoint == "" {
		return &Providers{}, nil
	}

	res, err := NewResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	traceOptions := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	metricOptions := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	logOptions := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.Endpoint)}

	if cfg.Insecure {
		traceOptions = append(traceOptions, otlptracegrpc.WithInsecure())
		metricOptions = append(metricOptions, otlpmetricgrpc.WithInsecure())
		logOptions = append(logOptions, otlploggrpc.WithInsecure())
	}

	traceExporter, err := otlptracegrpc.New(ctx, traceOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx, metricOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	logExporter, err := otlploggrpc.New(ctx, logOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}

	providers := &Providers{
		TracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		),
		MeterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(cfg.MetricInterval))),
			sdkmetric.WithResource(res),
		),
		LoggerProvider: sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
			sdklog.WithResource(res),
		),
		Resource: res,
	}

	otel.SetTracerProvider(providers.TracerProvider)
	otel.SetMeterProvider(providers.MeterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

// NewResource describes this service. OTEL_RESOURCE_ATTRIBUTES is merged in.
func NewResource(ctx context.Context, cfg config.OTelConfig) (*resource.Resource, error) {
	serviceResource, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
		resource.WithSchemaURL(semconv.SchemaURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service resource: %w", err)
	}

	res, err := resource.Merge(resource.Default(), serviceResource)
	if err != nil {
		if errors.Is(err, resource.ErrPartialResource) || errors.Is(err, resource.ErrSchemaURLConflict) {
			return res, nil
		}

		return nil, fmt.Errorf("failed to merge resources: %w", err)
	}

	return res, nil
}

// Enabled reports whether Setup created providers.
func (p *Providers) Enabled() bool {
	return p.TracerProvider != nil
}

// Tracer returns the engine tracer, a no-op tracer when disabled.
func (p *Providers) Tracer() trace.Tracer {
	if p.TracerProvider == nil {
		return otel.Tracer(InstrumentationName)
	}

	return p.TracerProvider.Tracer(InstrumentationName)
}

// Meter returns the engine meter, a no-op meter when disabled.
func (p *Providers) Meter() metric.Meter {
	if p.MeterProvider == nil {
		return otel.Meter(InstrumentationName)
	}

	return p.MeterProvider.Meter(InstrumentationName)
}

// SlogHandler returns an otelslog handler exporting records through the logger provider, nil when disabled.
func (p *Providers) SlogHandler() slog.Handler {
	if p.LoggerProvider == nil {
		return nil
	}

	return otelslog.NewHandler(InstrumentationName, otelslog.WithLoggerProvider(p.LoggerProvider))
}

// SearcherCollectors returns the OTel metrics and tracing collectors for a Searcher, nil when disabled.
func (p *Providers) SearcherCollectors() (membersearch.ContextualMetricsCollector, membersearch.TracingCollector) {
	if !p.Enabled() {
		return nil, nil
	}

	return oteladapters.NewMetricsCollector(p.Meter()), oteladapters.NewTracingCollector(p.Tracer())
}

// Shutdown flushes and stops all providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		errs = append(errs, p.TracerProvider.Shutdown(ctx))
	}

	if p.MeterProvider != nil {
		errs = append(errs, p.MeterProvider.Shutdown(ctx))
	}

	if p.LoggerProvider != nil {
		errs = append(errs, p.LoggerProvider.Shutdown(ctx))
	}

	return errors.Join(errs...)
}

package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/toylink/donations/pkg/config"
)

// Setup installs the global tracer provider and propagators. Without an OTLP
// endpoint spans are still created (so trace ids propagate) but never exported.
func Setup(ctx context.Context, cfg config.TracingConfig, env config.Env) (*sdktrace.TracerProvider, error) {
	res, err := resource.Merge(resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(string(env)),
		))
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.OTLPEndpoint != "" {
		exporterOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.Insecure {
			exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("creating trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp, nil
}

func newTracerProvider(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *config.Config) (*sdktrace.TracerProvider, error) {
	tp, err := Setup(context.Background(), cfg.Tracing, cfg.Env)
	if err != nil {
		return nil, err
	}
	log.Infow("tracing configured", "service", cfg.Tracing.ServiceName, "exporter", cfg.Tracing.OTLPEndpoint != "")
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
	return tp, nil
}

var Module = fx.Options(
	fx.Provide(newTracerProvider),
	// the provider is only needed for its side effect on the otel globals
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)

// telemetry настраивает трассировку OpenTelemetry с экспортом по OTLP/HTTP.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/pribylovaa/school-admin/internal/config"
	"github.com/pribylovaa/school-admin/internal/pkg/log"
)

// Shutdown сбрасывает и закрывает экспортёр.
type Shutdown func(context.Context) error

// Init включает трассировку, если задан OTLP endpoint. Без endpoint
// возвращает no-op shutdown и middleware, не меняющий обработчик.
func Init(ctx context.Context, cfg config.TelemetryConfig) (Shutdown, func(http.Handler) http.Handler, error) {
	const op = "telemetry.Init"

	noop := func(context.Context) error { return nil }
	passthrough := func(next http.Handler) http.Handler { return next }

	if cfg.OTLPEndpoint == "" {
		return noop, passthrough, nil
	}
	if cfg.ServiceName == "" {
		return nil, nil, fmt.Errorf("%s: %w", op, errors.New("service name is required"))
	}

	opts, err := exporterOptions(cfg.OTLPEndpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: create exporter: %w", op, err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: create resource: %w", op, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	mw := func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(withTraceID(next), cfg.ServiceName)
	}

	return tp.Shutdown, mw, nil
}

// withTraceID добавляет trace_id к логгеру запроса.
func withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sc := trace.SpanFromContext(r.Context()).SpanContext(); sc.IsValid() {
			r = r.WithContext(log.With(r.Context(), "trace_id", sc.TraceID().String()))
		}
		next.ServeHTTP(w, r)
	})
}

// exporterOptions принимает как URL (http://collector:4318/v1/traces), так и host:port.
func exporterOptions(endpoint string) ([]otlptracehttp.Option, error) {
	if !strings.Contains(endpoint, "://") {
		return []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithInsecure(),
		}, nil
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid OTLP endpoint: %s", endpoint)
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(parsed.Host)}
	if parsed.Path != "" && parsed.Path != "/" {
		opts = append(opts, otlptracehttp.WithURLPath(parsed.Path))
	}
	if parsed.Scheme == "http" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	return opts, nil
}

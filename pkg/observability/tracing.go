// Package observability provides OpenTelemetry tracing for scenepool. The
// prometheus collectors in pkg/metrics cover steady-state telemetry; spans
// are for understanding individual checkout storms and bench runs.
package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer   trace.Tracer
	initOnce sync.Once
)

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	SamplingRate   float64
}

// Init sets up the global tracer with a stdout exporter. Safe to call more
// than once; only the first call takes effect.
func Init(cfg TracingConfig) error {
	var err error
	initOnce.Do(func() {
		err = initTracing(cfg)
	})
	return err
}

func initTracing(cfg TracingConfig) error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SamplingRate <= 0:
		sampler = sdktrace.NeverSample()
	case cfg.SamplingRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SamplingRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(cfg.ServiceName)
	return nil
}

// Tracer returns the global tracer. Before Init it falls back to the otel
// default, which is a no-op.
func Tracer() trace.Tracer {
	if tracer == nil {
		return otel.Tracer("scenepool")
	}
	return tracer
}

// Span wraps an otel span with batched attributes.
type Span struct {
	span       trace.Span
	startTime  time.Time
	attributes []attribute.KeyValue
}

// StartSpan begins a span for one pooling operation.
func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	ctx, sp := Tracer().Start(ctx, operation)
	return ctx, &Span{span: sp, startTime: time.Now()}
}

// SetAttribute adds an attribute to the span (batched until End).
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue
	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}
	s.attributes = append(s.attributes, attr)
}

// RecordError marks the span failed.
func (s *Span) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.SetStatus(codes.Error, err.Error())
	s.span.RecordError(err)
}

// End flushes batched attributes and ends the span.
func (s *Span) End() {
	if len(s.attributes) > 0 {
		s.span.SetAttributes(s.attributes...)
	}
	s.span.End()
}

// TraceOp runs fn inside a span named for a prototype-scoped pooling
// operation.
func TraceOp(ctx context.Context, prototype, operation string, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, fmt.Sprintf("pool.%s", operation))
	defer span.End()

	span.SetAttribute("pool.prototype", prototype)
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

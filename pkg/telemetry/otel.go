package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wayfind-dev/wayfind/pkg/dispatch"
)

// Default tracer name for wayfind routers.
const defaultTracerName = "wayfind"

// OTelConfig configures the OpenTelemetry observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "wayfind").
	TracerName string

	// Filter determines which dispatches to trace. Return true to trace
	// the dispatch, false to skip. If nil, all dispatches are traced.
	Filter func(dispatch.DispatchResult) bool

	// AttributeExtractor extracts custom attributes per dispatch.
	AttributeExtractor func(dispatch.DispatchResult) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) { c.TracerName = name }
}

// WithDispatchFilter sets a filter function for dispatches.
func WithDispatchFilter(filter func(dispatch.DispatchResult) bool) OTelOption {
	return func(c *OTelConfig) { c.Filter = filter }
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(dispatch.DispatchResult) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) { c.AttributeExtractor = extractor }
}

// Tracing is a dispatch.Observer emitting one span per dispatch.
type Tracing struct {
	config OTelConfig
}

// OpenTelemetry creates a tracing observer.
//
// The dispatch runs synchronously before the observer fires, so the span
// is created retroactively with the real start and end timestamps.
//
// The tracer uses the global OpenTelemetry tracer provider; configure it
// before creating the router:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//
//	r := dispatch.New(dispatch.WithObserver(telemetry.OpenTelemetry()))
func OpenTelemetry(opts ...OTelOption) *Tracing {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)
	return &Tracing{config: config}
}

// ObserveDispatch implements dispatch.Observer.
func (t *Tracing) ObserveDispatch(result dispatch.DispatchResult) {
	if t.config.Filter != nil && !t.config.Filter(result) {
		return
	}

	end := time.Now()
	start := end.Add(-result.Duration)

	attrs := []attribute.KeyValue{
		attribute.String("wayfind.path", result.Path),
		attribute.Bool("wayfind.matched", result.Matched),
		attribute.Bool("wayfind.cache_hit", result.CacheHit),
	}
	if result.Pattern != "" {
		attrs = append(attrs, attribute.String("wayfind.pattern", result.Pattern))
	}
	if t.config.AttributeExtractor != nil {
		attrs = append(attrs, t.config.AttributeExtractor(result)...)
	}

	_, span := t.config.tracer.Start(
		context.Background(),
		spanName(result),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(start),
	)

	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End(trace.WithTimestamp(end))
}

// spanName names the span after the matched pattern, falling back to the
// path to keep unmatched dispatches visible.
func spanName(result dispatch.DispatchResult) string {
	if result.Pattern != "" {
		return fmt.Sprintf("wayfind %s", result.Pattern)
	}
	return fmt.Sprintf("wayfind %s", result.Path)
}

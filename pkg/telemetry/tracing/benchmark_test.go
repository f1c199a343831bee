package tracing

import (
	"context"
	"net/http"
	"testing"

	"screenrecall/pkg/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BenchmarkTracer_Start_Disabled benchmarks span creation with disabled tracing
// Target: <1µs (noop overhead)
func BenchmarkTracer_Start_Disabled(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		b.Fatalf("Failed to create tracer: %v", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, span := tracer.Start(ctx, "test-operation")
		span.End()
	}
}

// BenchmarkTracer_Start_Enabled benchmarks span creation with enabled tracing
// Target: <100µs per span
func BenchmarkTracer_Start_Enabled(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     true,
		Sampler:     "always",
		SampleRatio: 1.0,
		Exporter:    "otlp",
		Endpoint:    "localhost:4317",
		ServiceName: "test-service",
		OTLP: config.OTLPConfig{
			Insecure: true,
		},
	})
	if err != nil {
		b.Skip("OTLP endpoint not available, skipping benchmark")
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, span := tracer.Start(ctx, "test-operation")
		span.End()
	}
}

// BenchmarkTracer_Start_WithAttributes benchmarks span creation with attributes
// Target: <100µs per span
func BenchmarkTracer_Start_WithAttributes(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		b.Fatalf("Failed to create tracer: %v", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, span := tracer.Start(ctx, "test-operation",
			trace.WithAttributes(
				attribute.String("plugin_id", "ocr-tesseract"),
				attribute.String("job_type", "stage2"),
				attribute.Int("citation_count", 3),
				attribute.Float64("duration_ms", 42.0),
			),
		)
		span.End()
	}
}

// BenchmarkTracer_NestedSpans benchmarks nested span creation
// Target: <200µs for parent + child (100µs each)
func BenchmarkTracer_NestedSpans(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		b.Fatalf("Failed to create tracer: %v", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		ctx, parentSpan := tracer.Start(ctx, "parent-operation")
		_, childSpan := tracer.Start(ctx, "child-operation")
		childSpan.End()
		parentSpan.End()
	}
}

// BenchmarkSetPluginAttributes benchmarks setting plugin attributes
// Target: <10µs
func BenchmarkSetPluginAttributes(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		b.Fatalf("Failed to create tracer: %v", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	_, span := tracer.Start(context.Background(), "test-operation")
	defer span.End()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		SetPluginAttributes(span, "ocr-tesseract", "1.2.0", "stage2")
	}
}

// BenchmarkSetCaptureAttributes benchmarks setting capture attributes
// Target: <10µs
func BenchmarkSetCaptureAttributes(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		b.Fatalf("Failed to create tracer: %v", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	_, span := tracer.Start(context.Background(), "test-operation")
	defer span.End()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		SetCaptureAttributes(span, "primary", "frame-123")
	}
}

// BenchmarkSetExtractorAttributes benchmarks setting extractor attributes
// Target: <10µs
func BenchmarkSetExtractorAttributes(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		b.Fatalf("Failed to create tracer: %v", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	_, span := tracer.Start(context.Background(), "test-operation")
	defer span.End()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		SetExtractorAttributes(span, "ocr-tesseract", "1.2.0", "rec-abc")
	}
}

// BenchmarkAttributeBuilder benchmarks the fluent attribute builder
// Target: <20µs
func BenchmarkAttributeBuilder(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		b.Fatalf("Failed to create tracer: %v", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	_, span := tracer.Start(context.Background(), "test-operation")
	defer span.End()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		builder := NewAttributeBuilder().
			WithPlugin("ocr-tesseract", "stage2").
			WithExtractor("ocr-tesseract", "rec-abc").
			WithCapture("primary", "frame-123").
			WithRetrieval("lexical", 3)
		builder.Apply(span)
	}
}

// BenchmarkExtract benchmarks trace context extraction
// Target: <10µs
func BenchmarkExtract(b *testing.B) {
	headers := http.Header{}
	headers.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = Extract(ctx, headers)
	}
}

// BenchmarkInject benchmarks trace context injection
// Target: <10µs
func BenchmarkInject(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		b.Fatalf("Failed to create tracer: %v", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	ctx, span := tracer.Start(context.Background(), "test-operation")
	defer span.End()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		headers := http.Header{}
		Inject(ctx, headers)
	}
}

// BenchmarkValidateTraceParent benchmarks traceparent validation
// Target: <1µs
func BenchmarkValidateTraceParent(b *testing.B) {
	traceparent := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = ValidateTraceParent(traceparent)
	}
}

// BenchmarkParseTraceParent benchmarks traceparent parsing
// Target: <1µs
func BenchmarkParseTraceParent(b *testing.B) {
	traceparent := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _, _, _, _ = ParseTraceParent(traceparent)
	}
}

// BenchmarkIsSampledFromTraceParent benchmarks sampling flag check
// Target: <1µs
func BenchmarkIsSampledFromTraceParent(b *testing.B) {
	traceparent := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = IsSampledFromTraceParent(traceparent)
	}
}

// BenchmarkSpanFromContext benchmarks retrieving span from context
// Target: <1µs
func BenchmarkSpanFromContext(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		b.Fatalf("Failed to create tracer: %v", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	ctx, span := tracer.Start(context.Background(), "test-operation")
	defer span.End()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = SpanFromContext(ctx)
	}
}

// BenchmarkTraceID benchmarks trace ID extraction
// Target: <1µs
func BenchmarkTraceID(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		b.Fatalf("Failed to create tracer: %v", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	ctx, span := tracer.Start(context.Background(), "test-operation")
	defer span.End()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = TraceID(ctx)
	}
}

// BenchmarkSetError benchmarks setting error on span
// Target: <10µs
func BenchmarkSetError(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		b.Fatalf("Failed to create tracer: %v", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	_, span := tracer.Start(context.Background(), "test-operation")
	defer span.End()

	testErr := context.DeadlineExceeded

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		SetError(span, testErr)
	}
}

// BenchmarkCreateSampler benchmarks sampler creation
// Target: <1µs
func BenchmarkCreateSampler(b *testing.B) {
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = createSampler("ratio", 0.1)
	}
}

// BenchmarkFullRequestTrace benchmarks a complete query trace scenario
// Target: <100µs total
func BenchmarkFullRequestTrace(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		b.Fatalf("Failed to create tracer: %v", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	headers := http.Header{}
	headers.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		// Extract context from headers
		ctx := Extract(context.Background(), headers)

		// Create query span
		ctx, requestSpan := tracer.Start(ctx, "query.orchestrate")
		SetQueryAttributes(requestSpan, "a1b2c3", "ok")

		// Create retrieval span
		ctx, processingSpan := tracer.Start(ctx, "retrieval.plan")
		processingSpan.End()

		// Create extract span
		ctx, providerSpan := tracer.Start(ctx, "extract.job")
		SetExtractorAttributes(providerSpan, "ocr-tesseract", "1.2.0", "rec-abc")
		providerSpan.End()

		// End request span
		requestSpan.End()

		// Inject context into response headers
		responseHeaders := http.Header{}
		Inject(ctx, responseHeaders)
	}
}

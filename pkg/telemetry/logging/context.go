package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// APIKeyKey is the context key for API keys (e.g. a plugin's cloud OCR
	// credential echoed back into an error context).
	APIKeyKey contextKey = "api_key"

	// SourceKey is the context key for capture source identifiers.
	SourceKey contextKey = "source"

	// FrameIDKey is the context key for frame identifiers.
	FrameIDKey contextKey = "frame_id"

	// PluginKey is the context key for capability plugin identifiers.
	PluginKey contextKey = "plugin_id"

	// ExtractorKey is the context key for Stage-2 extractor identifiers.
	ExtractorKey contextKey = "extractor_id"

	// QueryHashKey is the context key for query hash identifiers.
	QueryHashKey contextKey = "query_hash"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey is the context key for span IDs.
	SpanIDKey contextKey = "span_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithAPIKey adds an API key to the context.
func WithAPIKey(ctx context.Context, apiKey string) context.Context {
	return context.WithValue(ctx, APIKeyKey, apiKey)
}

// GetAPIKey retrieves the API key from the context.
func GetAPIKey(ctx context.Context) string {
	if apiKey, ok := ctx.Value(APIKeyKey).(string); ok {
		return apiKey
	}
	return ""
}

// WithSource adds a capture source identifier to the context.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

// GetSource retrieves the capture source identifier from the context.
func GetSource(ctx context.Context) string {
	if source, ok := ctx.Value(SourceKey).(string); ok {
		return source
	}
	return ""
}

// WithFrameID adds a frame identifier to the context.
func WithFrameID(ctx context.Context, frameID string) context.Context {
	return context.WithValue(ctx, FrameIDKey, frameID)
}

// GetFrameID retrieves the frame identifier from the context.
func GetFrameID(ctx context.Context) string {
	if frameID, ok := ctx.Value(FrameIDKey).(string); ok {
		return frameID
	}
	return ""
}

// WithPlugin adds a capability plugin identifier to the context.
func WithPlugin(ctx context.Context, pluginID string) context.Context {
	return context.WithValue(ctx, PluginKey, pluginID)
}

// GetPlugin retrieves the capability plugin identifier from the context.
func GetPlugin(ctx context.Context) string {
	if pluginID, ok := ctx.Value(PluginKey).(string); ok {
		return pluginID
	}
	return ""
}

// WithExtractor adds a Stage-2 extractor identifier to the context.
func WithExtractor(ctx context.Context, extractorID string) context.Context {
	return context.WithValue(ctx, ExtractorKey, extractorID)
}

// GetExtractor retrieves the Stage-2 extractor identifier from the context.
func GetExtractor(ctx context.Context) string {
	if extractorID, ok := ctx.Value(ExtractorKey).(string); ok {
		return extractorID
	}
	return ""
}

// WithQueryHash adds a query hash identifier to the context.
func WithQueryHash(ctx context.Context, queryHash string) context.Context {
	return context.WithValue(ctx, QueryHashKey, queryHash)
}

// GetQueryHash retrieves the query hash identifier from the context.
func GetQueryHash(ctx context.Context) string {
	if queryHash, ok := ctx.Value(QueryHashKey).(string); ok {
		return queryHash
	}
	return ""
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithSpanID adds a span ID to the context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// GetSpanID retrieves the span ID from the context.
func GetSpanID(ctx context.Context) string {
	if spanID, ok := ctx.Value(SpanIDKey).(string); ok {
		return spanID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	// Extract request ID
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	// Extract API key (will be redacted by logger if PII redaction is enabled)
	if apiKey := GetAPIKey(ctx); apiKey != "" {
		fields = append(fields, "api_key", apiKey)
	}

	// Extract capture source
	if source := GetSource(ctx); source != "" {
		fields = append(fields, "source", source)
	}

	// Extract frame ID
	if frameID := GetFrameID(ctx); frameID != "" {
		fields = append(fields, "frame_id", frameID)
	}

	// Extract plugin ID
	if pluginID := GetPlugin(ctx); pluginID != "" {
		fields = append(fields, "plugin_id", pluginID)
	}

	// Extract extractor ID
	if extractorID := GetExtractor(ctx); extractorID != "" {
		fields = append(fields, "extractor_id", extractorID)
	}

	// Extract query hash
	if queryHash := GetQueryHash(ctx); queryHash != "" {
		fields = append(fields, "query_hash", queryHash)
	}

	// Extract trace ID
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	// Extract span ID
	if spanID := GetSpanID(ctx); spanID != "" {
		fields = append(fields, "span_id", spanID)
	}

	return fields
}

// ContextLogger is a logger that automatically includes context fields.
type ContextLogger struct {
	logger *Logger
	ctx    context.Context
}

// NewContextLogger creates a logger that automatically includes context fields.
func NewContextLogger(logger *Logger, ctx context.Context) *ContextLogger {
	return &ContextLogger{
		logger: logger.WithContext(ctx),
		ctx:    ctx,
	}
}

// Debug logs a debug message with context fields.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.DebugContext(cl.ctx, msg, args...)
}

// Info logs an info message with context fields.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.InfoContext(cl.ctx, msg, args...)
}

// Warn logs a warning message with context fields.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.WarnContext(cl.ctx, msg, args...)
}

// Error logs an error message with context fields.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.ErrorContext(cl.ctx, msg, args...)
}

// With creates a new context logger with additional fields.
func (cl *ContextLogger) With(args ...any) *ContextLogger {
	return &ContextLogger{
		logger: cl.logger.With(args...),
		ctx:    cl.ctx,
	}
}

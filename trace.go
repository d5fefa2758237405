// FILE: lixenwraith/logship/trace.go
package logship

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TraceProvider resolves the trace identifier of the active span, if any
type TraceProvider interface {
	TraceID(ctx context.Context) (string, bool)
}

// TraceProviderFunc adapts a function to TraceProvider
type TraceProviderFunc func(ctx context.Context) (string, bool)

// TraceID calls f(ctx)
func (f TraceProviderFunc) TraceID(ctx context.Context) (string, bool) {
	return f(ctx)
}

// OTelTraceProvider reads the trace id from the OpenTelemetry span in the context
type OTelTraceProvider struct{}

// TraceID returns the hex trace id of the span stored in ctx
func (OTelTraceProvider) TraceID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return "", false
	}
	return sc.TraceID().String(), true
}

package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetOutcome tags span with the final status of a run or node. A non nil err
// also marks the span failed and is recorded as an exception event.
func SetOutcome(span trace.Span, status string, err error) {
	span.SetAttributes(attribute.String(StatusKey, status))

	if err == nil {
		span.SetStatus(codes.Ok, "")

		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

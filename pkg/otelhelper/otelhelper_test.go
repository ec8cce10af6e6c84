package otelhelper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetOutcome(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, ok := StartSpan(context.Background(), tracer, "workflow.run", attribute.String(ExecutionIDKey, "run-1"))
	SetOutcome(ok, "completed", nil)
	ok.End()

	_, failed := StartSpan(context.Background(), tracer, "workflow.node")
	SetOutcome(failed, "failed", errors.New("boom"))
	failed.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String(ExecutionIDKey, "run-1"))
	assert.Contains(t, spans[0].Attributes(), attribute.String(StatusKey, "completed"))

	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "boom", spans[1].Status().Description)
	assert.Contains(t, spans[1].Attributes(), attribute.String(StatusKey, "failed"))
	require.Len(t, spans[1].Events(), 1)
	assert.Equal(t, "exception", spans[1].Events()[0].Name)
}

func TestDefaultTracerIsUsable(t *testing.T) {
	_, span := StartSpan(context.Background(), DefaultTracer(), "noop")
	defer span.End()

	assert.NotNil(t, span)
}

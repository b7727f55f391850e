package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	return recorder
}

func spanAttribute(span tracesdk.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, attr := range span.Attributes() {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTraceSignalMessage_NamesSpanByKind(t *testing.T) {
	recorder := withSpanRecorder(t)

	_, span := TraceSignalMessage(context.Background(), "offer", "conn-1")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "signal.offer", spans[0].Name())

	conn, ok := spanAttribute(spans[0], ConnIDKey)
	require.True(t, ok)
	assert.Equal(t, "conn-1", conn.AsString())
}

func TestTagRoom_StampsRoomOnSpan(t *testing.T) {
	recorder := withSpanRecorder(t)

	ctx, span := TraceSignalMessage(context.Background(), "join-room", "conn-1")
	TagRoom(ctx, "lobby")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	room, ok := spanAttribute(spans[0], RoomIDKey)
	require.True(t, ok)
	assert.Equal(t, "lobby", room.AsString())
}

func TestTagRoom_NoopWithoutRecordingSpan(t *testing.T) {
	// Must not panic when there is no span in the context.
	TagRoom(context.Background(), "lobby")
}

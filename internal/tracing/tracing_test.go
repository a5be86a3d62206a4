package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestSanitizeEndpoint(t *testing.T) {
	assert.Equal(t, "collector:4317", sanitizeEndpoint("http://collector:4317/"))
	assert.Equal(t, "collector:4317", sanitizeEndpoint(" https://collector:4317 "))
	assert.Equal(t, "collector:4317", sanitizeEndpoint("collector:4317/"))
	assert.Equal(t, "", sanitizeEndpoint(""))
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInterceptorsPropagateTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, parent := tp.Tracer("test").Start(context.Background(), "client")
	defer parent.End()

	var outgoing metadata.MD
	invoker := func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
		outgoing, _ = metadata.FromOutgoingContext(ctx)
		return nil
	}
	require.NoError(t, UnaryClientInterceptor()(ctx, "/m", nil, nil, nil, invoker))
	require.NotEmpty(t, outgoing.Get("traceparent"))

	serverCtx := metadata.NewIncomingContext(context.Background(), outgoing)
	var handled trace.SpanContext
	_, err := UnaryServerInterceptor()(serverCtx, nil, &grpc.UnaryServerInfo{FullMethod: "/puzzle.v1.PuzzleService/GetTask"},
		func(ctx context.Context, _ any) (any, error) {
			handled = trace.SpanContextFromContext(ctx)
			return nil, nil
		})
	require.NoError(t, err)

	assert.Equal(t, parent.SpanContext().TraceID(), handled.TraceID())
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "/puzzle.v1.PuzzleService/GetTask", spans[0].Name())
}

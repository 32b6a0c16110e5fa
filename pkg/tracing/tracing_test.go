package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/toylink/donations/pkg/config"
)

func TestSetup_WithoutExporter(t *testing.T) {
	tp, err := Setup(context.Background(), config.TracingConfig{ServiceName: "donations-test"}, config.EnvDev)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	require.True(t, span.SpanContext().HasTraceID())
	span.End()
}

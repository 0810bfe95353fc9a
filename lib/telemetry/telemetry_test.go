package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupWithoutExporters(t *testing.T) {
	tel, err := Setup(context.Background(), "test:telemetry", config{})
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)
	require.NotNil(t, tel.MeterProvider)

	_, span := otel.Tracer("test").Start(context.Background(), "span")
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetupForTestingOnce(t *testing.T) {
	cleanup := SetupForTesting(t, "test:telemetry-once")
	defer cleanup()

	second := SetupForTesting(t, "test:telemetry-once")
	second()
}

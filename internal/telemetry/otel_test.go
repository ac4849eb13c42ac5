package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

func TestNewResource(t *testing.T) {
	t.Parallel()

	res, err := newResource("pokecache", "instance-1")
	require.NoError(t, err)

	serviceName, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	require.Equal(t, "pokecache", serviceName.AsString())

	instanceID, ok := res.Set().Value(semconv.ServiceInstanceIDKey)
	require.True(t, ok)
	require.Equal(t, "instance-1", instanceID.AsString())
}

package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AntonStoeckl/dynamic-member-search-go/internal/config"
	"github.com/AntonStoeckl/dynamic-member-search-go/internal/observability"
)

func testOTelConfig() config.OTelConfig {
	return config.OTelConfig{
		ServiceName:    "membersearch-test",
		ServiceVersion: "test",
		Environment:    "test",
	}
}

func Test_Setup_When_EndpointIsEmpty_Then_OpenTelemetryIsDisabled(t *testing.T) {
	providers, err := observability.Setup(context.Background(), testOTelConfig())

	require.NoError(t, err)
	assert.False(t, providers.Enabled())
	assert.Nil(t, providers.SlogHandler())

	metrics, tracing := providers.SearcherCollectors()
	assert.Nil(t, metrics)
	assert.Nil(t, tracing)
	assert.NotNil(t, providers.Tracer(), "a no-op tracer is still returned")
	assert.NotNil(t, providers.Meter(), "a no-op meter is still returned")
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func Test_NewResource_CarriesServiceAttributes(t *testing.T) {
	res, err := observability.NewResource(context.Background(), testOTelConfig())

	require.NoError(t, err)

	serviceName, ok := res.Set().Value(semconv.ServiceNameKey)
	assert.True(t, ok)
	assert.Equal(t, "membersearch-test", serviceName.AsString())

	serviceVersion, ok := res.Set().Value(semconv.ServiceVersionKey)
	assert.True(t, ok)
	assert.Equal(t, "test", serviceVersion.AsString())
}

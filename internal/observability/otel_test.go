package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitTracerDisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracerConfig{ServiceName: "usershub-test", SampleRatio: 1})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSampleRatioClamped(t *testing.T) {
	require.Equal(t, 0.0, sampleRatio(-1))
	require.Equal(t, 0.25, sampleRatio(0.25))
	require.Equal(t, 1.0, sampleRatio(3))
}

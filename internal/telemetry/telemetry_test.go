package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitMetrics_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		InitMetrics()
		InitMetrics()
	})

	FetchTotal.WithLabelValues("hospital", "ok").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(FetchTotal.WithLabelValues("hospital", "ok")))

	// already registered by InitMetrics
	err := prometheus.DefaultRegisterer.Register(FetchTotal)
	assert.Error(t, err)
}

func TestInitTracer(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracer(TracerOptions{Writer: &buf, SampleRatio: 1, Version: "test"})
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry_test").Start(context.Background(), "probe")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"probe"`)
	assert.Contains(t, buf.String(), ServiceName)
}

func TestInitTracer_ZeroRatioDropsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracer(TracerOptions{Writer: &buf})
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry_test").Start(context.Background(), "dropped")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.NotContains(t, buf.String(), "dropped")
}

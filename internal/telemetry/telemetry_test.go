package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/BaSui01/visiondesc/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zaptest"
)

// saveAndRestoreGlobalProviders snapshots the current global OTel providers
// and restores them via t.Cleanup so tests don't leak state.
func saveAndRestoreGlobalProviders(t *testing.T) {
	t.Helper()
	origTP := otel.GetTracerProvider()
	origMP := otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(origTP)
		otel.SetMeterProvider(origMP)
	})
}

func enabledConfig(name string) config.TelemetryConfig {
	return config.TelemetryConfig{
		Enabled:      true,
		OTLPEndpoint: "localhost:4317",
		Insecure:     true,
		ServiceName:  name,
		SampleRate:   0.5,
	}
}

func TestInit_Disabled(t *testing.T) {
	saveAndRestoreGlobalProviders(t)

	p, err := Init(config.TelemetryConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Nil(t, p.tp, "TracerProvider should be nil when disabled")
	assert.Nil(t, p.mp, "MeterProvider should be nil when disabled")
	assert.False(t, p.Enabled())

	// Accessors fall back to the globals
	assert.Equal(t, otel.GetTracerProvider(), p.TracerProvider())
	assert.Equal(t, otel.GetMeterProvider(), p.MeterProvider())
}

func TestInit_NilLogger(t *testing.T) {
	saveAndRestoreGlobalProviders(t)

	p, err := Init(config.DefaultTelemetryConfig(), nil)
	require.NoError(t, err)
	assert.False(t, p.Enabled())
}

func TestInit_Enabled(t *testing.T) {
	saveAndRestoreGlobalProviders(t)

	p, err := Init(enabledConfig("visiondesc-test"), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, p)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		_ = p.Shutdown(ctx)
	})

	assert.True(t, p.Enabled())
	_, tpIsSDK := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	_, mpIsSDK := otel.GetMeterProvider().(*sdkmetric.MeterProvider)
	assert.True(t, tpIsSDK, "global TracerProvider should be *sdktrace.TracerProvider")
	assert.True(t, mpIsSDK, "global MeterProvider should be *sdkmetric.MeterProvider")

	assert.Same(t, p.tp, p.TracerProvider())
	assert.Same(t, p.mp, p.MeterProvider())
}

func TestProviders_NilAccessors(t *testing.T) {
	var p *Providers
	assert.False(t, p.Enabled())
	assert.NotNil(t, p.TracerProvider())
	assert.NotNil(t, p.MeterProvider())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestProviders_Shutdown_Noop(t *testing.T) {
	saveAndRestoreGlobalProviders(t)

	p, err := Init(config.TelemetryConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestProviders_Shutdown_Real(t *testing.T) {
	saveAndRestoreGlobalProviders(t)

	cfg := enabledConfig("visiondesc-shutdown-test")
	cfg.SampleRate = 1.0
	p, err := Init(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	// No collector is running; the exporter may report connection errors.
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	assert.NotPanics(t, func() {
		_ = p.Shutdown(ctx)
	})
}

func TestBuildVersion(t *testing.T) {
	assert.Equal(t, "dev", buildVersion())
}

package observability

import (
	"testing"

	"github.com/smallbiznis/referralhub/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(config.Config{Environment: "Production"})

	assert.Equal(t, "referralhub", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.False(t, cfg.OtelEnabled)
	assert.False(t, cfg.Debug())
}

func TestLoadConfigNormalizes(t *testing.T) {
	cfg := LoadConfig(config.Config{
		AppName:           "rede",
		Environment:       "production",
		LogLevel:          "WARNING",
		LogFormat:         "Console",
		OTLPProtocol:      "HTTP",
		OtelSamplingRatio: 3,
	})

	assert.Equal(t, "rede", cfg.ServiceName)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.Equal(t, 1.0, cfg.OtelSamplingRatio)
}

func TestDebug(t *testing.T) {
	assert.True(t, LoadConfig(config.Config{Environment: "development"}).Debug())
	assert.True(t, LoadConfig(config.Config{Environment: "production", LogLevel: "debug"}).Debug())
	assert.False(t, LoadConfig(config.Config{Environment: "staging"}).Debug())
}

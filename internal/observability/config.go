package observability

import (
	"strings"

	"github.com/smallbiznis/referralhub/internal/config"
)

const defaultServiceName = "referralhub"

// Config is the slice of the application config the logger, tracer and
// meter need.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	out := Config{
		ServiceName:          strings.TrimSpace(cfg.AppName),
		Environment:          strings.ToLower(strings.TrimSpace(cfg.Environment)),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             normalizeLevel(cfg.LogLevel),
		LogFormat:            strings.ToLower(strings.TrimSpace(cfg.LogFormat)),
		OtelEnabled:          cfg.OtelEnabled,
		OtelExporterEndpoint: strings.TrimSpace(cfg.OTLPEndpoint),
		OtelExporterProtocol: strings.ToLower(strings.TrimSpace(cfg.OTLPProtocol)),
		OtelSamplingRatio:    clampRatio(cfg.OtelSamplingRatio),
	}
	if out.ServiceName == "" {
		out.ServiceName = defaultServiceName
	}
	if out.LogFormat != "console" {
		out.LogFormat = "json"
	}
	if out.OtelExporterProtocol != "http" {
		out.OtelExporterProtocol = "grpc"
	}
	return out
}

// Debug turns on verbose request logging and stack traces. It follows the
// log level and is always on outside production-like environments.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch c.Environment {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func normalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "debug", "info", "warn", "error":
		return level
	case "warning":
		return "warn"
	}
	return "info"
}

func clampRatio(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

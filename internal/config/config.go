package config

import (
	"os"
	"strconv"
)

type Config struct {
	Render RenderConfig
	Trace  TraceConfig
}

type RenderConfig struct {
	// Concurrency bounds the per-size render/write fan-out. 1 keeps the
	// run fully sequential.
	Concurrency int
}

type TraceConfig struct {
	Exporter     string
	OTLPEndpoint string
	OTLPInsecure bool
}

func Load() Config {
	return Config{
		Render: RenderConfig{
			Concurrency: envInt("ICONFORGE_CONCURRENCY", 1),
		},
		Trace: TraceConfig{
			Exporter:     env("ICONFORGE_TRACE_EXPORTER", "none"),
			OTLPEndpoint: env("ICONFORGE_OTLP_ENDPOINT", ""),
			OTLPInsecure: envBool("ICONFORGE_OTLP_INSECURE", false),
		},
	}
}

func env(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

package config

import "time"

// Server defaults.
const (
	DefaultServerHost            = "127.0.0.1"
	DefaultServerPort            = 8080
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 30 * time.Second
	DefaultServerIdleTimeout     = 60 * time.Second
	DefaultServerShutdownTimeout = 5 * time.Second
	DefaultServerMaxBodyBytes    = 4 << 20 // 4 MiB.
)

// Logging defaults.
const (
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "text"
)

// Bundle defaults.
const (
	DefaultBundleFormat   = "json"
	DefaultBundleCompress = false
)

// MCP defaults.
const (
	DefaultMCPMaxInputBytes = 1 << 20 // 1 MiB.
)

// Escape defaults.
const (
	DefaultEscapeFallback    = true
	DefaultEscapeCheckLayout = true
)

// Telemetry defaults.
const (
	DefaultTelemetryEnvironment = "development"
	DefaultTelemetrySampleRatio = 1.0
)

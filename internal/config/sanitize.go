package config

import "github.com/yndnr/shmap-go/internal/telemetry/logger"

// Sanitize returns a copy of the config with sensitive fields masked, for
// "config show" and startup logs.
func Sanitize(cfg *Config) *Config {
	sanitized := *cfg
	sanitized.Security.EncryptionKey = logger.RedactString(cfg.Security.EncryptionKey)
	return &sanitized
}

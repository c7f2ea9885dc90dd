// Package logger provides structured logging for shmap binaries.
//
// It wraps log/slog:
//
//   - logger.go: logger construction, levels and the process-wide default
//   - context.go: context propagation of the logger and operation IDs
//   - redact.go: masking of key material and other secrets
//
// The store in pkg/shmap accepts any value with Debug, Info, Warn and Error
// methods, so both *slog.Logger and Logger can be passed to it.
package logger

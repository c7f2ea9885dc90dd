package logger

import (
	"log/slog"
	"strings"
)

// Attribute names whose values are never written out.
var sensitiveKeyPatterns = []string{
	"encryption_key",
	"passphrase",
	"password",
	"secret",
	"credential",
	"token",
}

const redactedValue = "***REDACTED***"

// redactSensitive replaces the value of attributes whose name suggests
// secret material. Store keys are logged under "key" and stay visible.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	if IsSensitiveKey(a.Key) && !isEmpty(a.Value) {
		return slog.String(a.Key, redactedValue)
	}
	return a
}

func isEmpty(v slog.Value) bool {
	switch v.Kind() {
	case slog.KindString:
		return v.String() == ""
	case slog.KindAny:
		if b, ok := v.Any().([]byte); ok {
			return len(b) == 0
		}
		return v.Any() == nil
	default:
		return false
	}
}

// maskValue keeps the first and last three characters of value.
func maskValue(value string) string {
	if len(value) <= 8 {
		return "***"
	}
	return value[:3] + "..." + value[len(value)-3:]
}

// RedactString masks a secret for display, e.g. in "config show".
// The empty string is returned unchanged.
func RedactString(value string) string {
	if value == "" {
		return ""
	}
	return maskValue(value)
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// Secret wraps key material so it logs as a placeholder under any
// attribute name.
type Secret []byte

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value {
	if len(s) == 0 {
		return slog.StringValue("")
	}
	return slog.StringValue(redactedValue)
}

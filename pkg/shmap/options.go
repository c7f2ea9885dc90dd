package shmap

import (
	"time"

	"github.com/yndnr/shmap-go/internal/shm"
	"github.com/yndnr/shmap-go/internal/telemetry/logger"
	"github.com/yndnr/shmap-go/pkg/codec"
	"github.com/yndnr/shmap-go/pkg/crypto/adaptive"
)

const (
	// DefaultGraceWindow is the minimum age of an incomplete key before a
	// sweep treats it as orphaned.
	DefaultGraceWindow = 5 * time.Second

	// DefaultGCConcurrency bounds the removals a sweep runs at once.
	DefaultGCConcurrency = 4
)

// Logger is the logging interface used by the store. *slog.Logger and the
// application logger both satisfy it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Option configures a Store.
type Option func(*options)

type options struct {
	dir           string
	namespace     string
	key           []byte
	cipherType    adaptive.CipherType
	codec         codec.Codec
	logger        Logger
	metrics       Metrics
	grace         time.Duration
	gcConcurrency int
	gcRate        float64
	now           func() time.Time
	initialSweep  bool
}

func defaultOptions() options {
	return options{
		dir:           shm.DefaultDir,
		cipherType:    adaptive.CipherAuto,
		codec:         codec.Default(),
		logger:        logger.Default(),
		metrics:       NoopMetrics{},
		grace:         DefaultGraceWindow,
		gcConcurrency: DefaultGCConcurrency,
		now:           time.Now,
		initialSweep:  true,
	}
}

// WithDir sets the segment directory. The default is /dev/shm.
func WithDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.dir = dir
		}
	}
}

// WithNamespace sets the name prefix. Stores with different namespaces in
// one directory never see each other's keys.
func WithNamespace(prefix string) Option {
	return func(o *options) {
		o.namespace = prefix
	}
}

// WithEncryptionKey enables sealing of values with a 32-byte key. The key is
// copied and never persisted.
func WithEncryptionKey(key []byte) Option {
	return func(o *options) {
		o.key = append([]byte(nil), key...)
	}
}

// WithCipherType selects the AEAD used with WithEncryptionKey.
func WithCipherType(t adaptive.CipherType) Option {
	return func(o *options) {
		o.cipherType = t
	}
}

// WithCodec sets the value and metadata codec. Every process sharing a
// namespace must use the same codec.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithGraceWindow sets how old an incomplete key must be before a sweep
// removes it.
func WithGraceWindow(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.grace = d
		}
	}
}

// WithGCConcurrency bounds the removals a sweep runs at once.
func WithGCConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.gcConcurrency = n
		}
	}
}

// WithGCRate limits sweep removals to perSecond. Zero means unlimited.
func WithGCRate(perSecond float64) Option {
	return func(o *options) {
		if perSecond >= 0 {
			o.gcRate = perSecond
		}
	}
}

// WithClock replaces the clock used for expiration decisions.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithoutInitialSweep skips the sweep New normally runs.
func WithoutInitialSweep() Option {
	return func(o *options) {
		o.initialSweep = false
	}
}

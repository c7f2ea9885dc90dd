package config

import (
	"time"

	"github.com/yndnr/shmap-go/internal/keyspace"
	"github.com/yndnr/shmap-go/internal/shm"
	"github.com/yndnr/shmap-go/pkg/shmap"
)

// Default configuration values.
const (
	DefaultCodec  = "msgpack"
	DefaultCipher = "auto"

	DefaultGCInterval = time.Minute
	DefaultGCRate     = 200

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsAddr      = "127.0.0.1:9465"
	DefaultMetricsNamespace = "shmap"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Store: StoreSection{
			Dir:         shm.DefaultDir,
			Namespace:   keyspace.DefaultPrefix,
			GraceWindow: shmap.DefaultGraceWindow,
			Codec:       DefaultCodec,
		},
		Security: SecuritySection{
			Cipher: DefaultCipher,
		},
		GC: GCSection{
			Interval:    DefaultGCInterval,
			Concurrency: shmap.DefaultGCConcurrency,
			Rate:        DefaultGCRate,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Addr:      DefaultMetricsAddr,
			Namespace: DefaultMetricsNamespace,
		},
	}
}

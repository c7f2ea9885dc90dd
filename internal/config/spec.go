package config

import "time"

// Config is the root configuration.
type Config struct {
	Store    StoreSection    `koanf:"store" yaml:"store" json:"store"`
	Security SecuritySection `koanf:"security" yaml:"security" json:"security"`
	GC       GCSection       `koanf:"gc" yaml:"gc" json:"gc"`
	Log      LogSection      `koanf:"log" yaml:"log" json:"log"`
	Metrics  MetricsSection  `koanf:"metrics" yaml:"metrics" json:"metrics"`
}

// StoreSection locates the segments.
type StoreSection struct {
	// Dir is the segment directory, normally a tmpfs mount.
	Dir string `koanf:"dir" yaml:"dir" json:"dir"`

	// Namespace is the segment name prefix.
	Namespace string `koanf:"namespace" yaml:"namespace" json:"namespace"`

	// GraceWindow is the minimum age of an incomplete key before a sweep
	// removes it.
	GraceWindow time.Duration `koanf:"grace_window" yaml:"grace_window" json:"grace_window"`

	// Codec encodes values and metadata: msgpack, json or gob. All
	// processes sharing a namespace must agree.
	Codec string `koanf:"codec" yaml:"codec" json:"codec"`
}

// SecuritySection configures value encryption.
type SecuritySection struct {
	// EncryptionKey is a hex encoded 32-byte key. Empty disables
	// encryption.
	EncryptionKey string `koanf:"encryption_key" yaml:"encryption_key" json:"encryption_key"`

	// Cipher is auto, aes-gcm or chacha20.
	Cipher string `koanf:"cipher" yaml:"cipher" json:"cipher"`
}

// GCSection configures the sweeper.
type GCSection struct {
	Interval    time.Duration `koanf:"interval" yaml:"interval" json:"interval"`
	Concurrency int           `koanf:"concurrency" yaml:"concurrency" json:"concurrency"`

	// Rate caps removals per second; 0 means unlimited.
	Rate   float64 `koanf:"rate" yaml:"rate" json:"rate"`
	DryRun bool    `koanf:"dry_run" yaml:"dry_run" json:"dry_run"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level" json:"level"`
	Format string `koanf:"format" yaml:"format" json:"format"`
}

// MetricsSection configures the Prometheus endpoint of the sweeper.
type MetricsSection struct {
	Enabled   bool   `koanf:"enabled" yaml:"enabled" json:"enabled"`
	Addr      string `koanf:"addr" yaml:"addr" json:"addr"`
	Namespace string `koanf:"namespace" yaml:"namespace" json:"namespace"`

	// TLSCertFile and TLSKeyFile enable HTTPS; both or neither.
	TLSCertFile string `koanf:"tls_cert_file" yaml:"tls_cert_file" json:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file" yaml:"tls_key_file" json:"tls_key_file"`

	// ClientCAFile requires scrapers to present a certificate signed by
	// one of its CAs. Needs TLS.
	ClientCAFile string `koanf:"client_ca_file" yaml:"client_ca_file" json:"client_ca_file"`
}

// TLSEnabled reports whether the metrics endpoint serves HTTPS.
func (m MetricsSection) TLSEnabled() bool {
	return m.TLSCertFile != "" && m.TLSKeyFile != ""
}

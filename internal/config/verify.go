package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/shmap-go/internal/telemetry/logger"
	"github.com/yndnr/shmap-go/pkg/codec"
	"github.com/yndnr/shmap-go/pkg/crypto/adaptive"
)

// Verify validates the configuration. All problems are reported together.
func Verify(cfg *Config) error {
	return errors.Join(
		verifyStore(&cfg.Store),
		verifySecurity(&cfg.Security),
		verifyGC(&cfg.GC),
		verifyLog(&cfg.Log),
		verifyMetrics(&cfg.Metrics),
	)
}

func verifyStore(cfg *StoreSection) error {
	var errs []error
	if cfg.Dir == "" {
		errs = append(errs, errors.New("store.dir is required"))
	}
	if strings.ContainsAny(cfg.Namespace, "/\x00") {
		errs = append(errs, fmt.Errorf("store.namespace %q must not contain '/'", cfg.Namespace))
	}
	if cfg.GraceWindow < 0 {
		errs = append(errs, errors.New("store.grace_window must not be negative"))
	}
	if _, err := codec.ByName(cfg.Codec); err != nil {
		errs = append(errs, fmt.Errorf("store.codec: %w", err))
	}
	return errors.Join(errs...)
}

func verifySecurity(cfg *SecuritySection) error {
	var errs []error
	if _, err := cfg.Key(); err != nil {
		errs = append(errs, err)
	}
	if _, err := adaptive.ParseCipherType(cfg.Cipher); err != nil {
		errs = append(errs, fmt.Errorf("security.cipher: %w", err))
	}
	return errors.Join(errs...)
}

func verifyGC(cfg *GCSection) error {
	var errs []error
	if cfg.Interval <= 0 {
		errs = append(errs, errors.New("gc.interval must be positive"))
	}
	if cfg.Concurrency < 1 {
		errs = append(errs, errors.New("gc.concurrency must be at least 1"))
	}
	if cfg.Rate < 0 {
		errs = append(errs, errors.New("gc.rate must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(cfg.Format) {
	case "", "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be json or text", cfg.Format))
	}
	return errors.Join(errs...)
}

func verifyMetrics(cfg *MetricsSection) error {
	if !cfg.Enabled {
		return nil
	}
	var errs []error
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		errs = append(errs, fmt.Errorf("metrics.addr: %w", err))
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		errs = append(errs, errors.New("metrics.tls_cert_file and metrics.tls_key_file must be set together"))
	}
	if cfg.ClientCAFile != "" && !cfg.TLSEnabled() {
		errs = append(errs, errors.New("metrics.client_ca_file requires metrics.tls_cert_file and metrics.tls_key_file"))
	}
	return errors.Join(errs...)
}

// Key decodes the encryption key. It returns nil when encryption is
// disabled.
func (s SecuritySection) Key() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(strings.TrimSpace(s.EncryptionKey))
	if err != nil {
		return nil, fmt.Errorf("security.encryption_key must be hex: %w", err)
	}
	if len(key) != adaptive.KeySize {
		return nil, fmt.Errorf("security.encryption_key must be %d bytes, got %d", adaptive.KeySize, len(key))
	}
	return key, nil
}

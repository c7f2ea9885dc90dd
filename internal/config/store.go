package config

import (
	"github.com/yndnr/shmap-go/pkg/codec"
	"github.com/yndnr/shmap-go/pkg/crypto/adaptive"
	"github.com/yndnr/shmap-go/pkg/shmap"
)

// StoreOptions translates a verified configuration into store options.
func StoreOptions(cfg *Config) ([]shmap.Option, error) {
	c, err := codec.ByName(cfg.Store.Codec)
	if err != nil {
		return nil, err
	}
	cipher, err := adaptive.ParseCipherType(cfg.Security.Cipher)
	if err != nil {
		return nil, err
	}

	opts := []shmap.Option{
		shmap.WithDir(cfg.Store.Dir),
		shmap.WithNamespace(cfg.Store.Namespace),
		shmap.WithGraceWindow(cfg.Store.GraceWindow),
		shmap.WithCodec(c),
		shmap.WithCipherType(cipher),
		shmap.WithGCConcurrency(cfg.GC.Concurrency),
		shmap.WithGCRate(cfg.GC.Rate),
	}

	key, err := cfg.Security.Key()
	if err != nil {
		return nil, err
	}
	if key != nil {
		opts = append(opts, shmap.WithEncryptionKey(key))
	}
	return opts, nil
}

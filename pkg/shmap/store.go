package shmap

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/shmap-go/internal/keyspace"
	"github.com/yndnr/shmap-go/internal/namelock"
	"github.com/yndnr/shmap-go/internal/shm"
	"github.com/yndnr/shmap-go/pkg/codec"
	"github.com/yndnr/shmap-go/pkg/crypto/adaptive"
)

// Store is a key/value store backed by shared-memory segments.
//
// A Store holds no open descriptors and owns no goroutines between calls.
// It is safe for concurrent use, and any number of Stores in any number of
// processes may share one directory and namespace.
type Store struct {
	dir     *shm.Dir
	ns      keyspace.Namespace
	locks   *namelock.Manager
	cipher  adaptive.Cipher
	codec   codec.Codec
	log     Logger
	metrics Metrics

	grace         time.Duration
	gcConcurrency int
	gcRate        float64
	now           func() time.Time
}

// New opens a store. Unless WithoutInitialSweep is given it runs one GC
// sweep; a failed sweep is logged and does not fail construction.
func New(opts ...Option) (*Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	dir, err := shm.NewDir(o.dir)
	if err != nil {
		return nil, ErrIO.WithDetails("open segment directory").WithCause(err)
	}

	s := &Store{
		dir:           dir,
		ns:            keyspace.New(o.namespace),
		locks:         namelock.New(dir.Root()),
		codec:         o.codec,
		log:           o.logger,
		metrics:       o.metrics,
		grace:         o.grace,
		gcConcurrency: o.gcConcurrency,
		gcRate:        o.gcRate,
		now:           o.now,
	}

	if o.key != nil {
		c, err := adaptive.NewStoreCipher(o.key, o.cipherType)
		if err != nil {
			return nil, ErrCrypto.WithDetails("invalid encryption key").WithCause(err)
		}
		s.cipher = c
	}

	if limit, err := shm.RaiseFileLimit(); err != nil {
		s.log.Warn("failed to raise open file limit", "error", err)
	} else {
		s.log.Debug("open file limit", "limit", limit)
	}

	if o.initialSweep {
		if _, err := s.Sweep(context.Background(), SweepOptions{}); err != nil {
			s.log.Warn("initial sweep failed", "dir", dir.Root(), "error", err)
		}
	}

	return s, nil
}

// NewWithEncryption opens a store that seals every value with key, which
// must be 32 bytes.
func NewWithEncryption(key []byte, opts ...Option) (*Store, error) {
	return New(append(opts, WithEncryptionKey(key))...)
}

// Dir returns the segment directory.
func (s *Store) Dir() string {
	return s.dir.Root()
}

// Namespace returns the name prefix.
func (s *Store) Namespace() string {
	return s.ns.Prefix()
}

// Encrypted reports whether the store seals values.
func (s *Store) Encrypted() bool {
	return s.cipher != nil
}

// ============================================================================
// Insert
// ============================================================================

// Insert encodes v and stores it under key without expiration.
func (s *Store) Insert(ctx context.Context, key string, v any) error {
	data, err := s.encode(v)
	if err != nil {
		return err
	}
	return s.insert(ctx, key, data, nil)
}

// InsertWithTTL encodes v and stores it under key for ttl.
func (s *Store) InsertWithTTL(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := s.encode(v)
	if err != nil {
		return err
	}
	return s.insert(ctx, key, data, &ttl)
}

// InsertRaw stores data under key as is, bypassing the codec. data must not
// be empty.
func (s *Store) InsertRaw(ctx context.Context, key string, data []byte) error {
	return s.insert(ctx, key, data, nil)
}

// InsertRawWithTTL is InsertRaw with an expiration.
func (s *Store) InsertRawWithTTL(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.insert(ctx, key, data, &ttl)
}

func (s *Store) encode(v any) ([]byte, error) {
	data, err := s.codec.Marshal(v)
	if err != nil {
		return nil, ErrCodecEncode.WithCause(err)
	}
	return data, nil
}

// insert writes the value and then the metadata, each under the key lock.
// The two writes are separate critical sections; a reader may see the new
// value with the previous metadata in between.
func (s *Store) insert(ctx context.Context, key string, data []byte, ttl *time.Duration) error {
	if len(data) == 0 {
		return ErrCodecEncode.WithDetails("empty payload")
	}

	meta, err := newMetadata(key, ttl, s.cipher != nil, s.now())
	if err != nil {
		return err
	}
	metaBytes, err := s.encodeMetadata(meta)
	if err != nil {
		return err
	}

	name := s.ns.Sanitize(key)
	payload := data
	if s.cipher != nil {
		payload, err = s.cipher.Encrypt(data, []byte(name))
		if err != nil {
			return ErrCrypto.WithDetails("seal").WithCause(err)
		}
	}

	began := false
	err = s.withLock(ctx, name, func(*namelock.Guard) error {
		began = true
		return s.dir.Write(keyspace.ObjectName(name), payload)
	})
	if err == nil {
		err = s.withLock(ctx, name, func(*namelock.Guard) error {
			return s.storeMetadata(name, metaBytes)
		})
	}
	if err != nil {
		if began {
			s.discard(ctx, name, err)
		}
		return translateErr(err)
	}

	s.metrics.Insert(len(data))
	return nil
}

// discard removes whatever a failed insert left behind.
func (s *Store) discard(ctx context.Context, name string, cause error) {
	if err := s.remove(context.WithoutCancel(ctx), name, RemoveCorrupt); err != nil {
		s.log.Warn("cleanup after failed insert failed",
			"name", name,
			"cause", cause,
			"error", err,
		)
	}
}

// ============================================================================
// Get
// ============================================================================

// readResult is what one locked read observed.
type readResult struct {
	meta    *Metadata
	blob    []byte
	expired bool
	corrupt bool
}

// GetRaw returns the bytes stored under key. ok is false when the key is
// absent, expired or its value segment is empty or truncated; in the last
// two cases the key is removed as a side effect, inside the same locked
// section as the read.
func (s *Store) GetRaw(ctx context.Context, key string) (data []byte, ok bool, err error) {
	name := s.ns.Sanitize(key)

	var r readResult
	err = s.withLock(ctx, name, func(g *namelock.Guard) error {
		var err error
		if r, err = s.read(name); err != nil {
			return err
		}
		if r.expired || r.corrupt {
			return s.unlinkAll(name, g)
		}
		return nil
	})
	if err != nil {
		return nil, false, translateErr(err)
	}

	switch {
	case r.meta == nil:
		s.metrics.Miss()
		return nil, false, nil
	case r.expired:
		s.metrics.Remove(RemoveExpired)
		s.metrics.Miss()
		return nil, false, nil
	case r.corrupt:
		s.log.Warn("removed corrupted value", "key", key, "name", name)
		s.metrics.Remove(RemoveCorrupt)
		s.metrics.Miss()
		return nil, false, nil
	case r.blob == nil:
		s.metrics.Miss()
		return nil, false, nil
	}

	if !r.meta.Encrypted {
		s.metrics.Hit()
		return r.blob, true, nil
	}

	plain, err := s.cipher.Decrypt(r.blob, []byte(name))
	if err != nil {
		return nil, false, ErrCrypto.WithCause(err)
	}
	s.metrics.Hit()
	return plain, true, nil
}

// read loads metadata and value of name. The caller holds the key lock.
func (s *Store) read(name string) (readResult, error) {
	var r readResult

	meta, err := s.loadMetadata(name)
	if err != nil || meta == nil {
		return r, err
	}
	r.meta = meta

	if meta.Expired(s.now()) {
		r.expired = true
		return r, nil
	}
	if meta.Encrypted && s.cipher == nil {
		return r, ErrCrypto.WithDetails("value is encrypted and the store has no key")
	}

	blob, err := s.dir.ReadAll(keyspace.ObjectName(name))
	switch {
	case errors.Is(err, shm.ErrNotFound):
		// Metadata without a value: a remove or a crashed insert. The sweep
		// owns the cleanup.
		return r, nil
	case err != nil:
		return r, err
	}

	minLen := 1
	if meta.Encrypted {
		minLen = s.cipher.NonceSize()
	}
	if len(blob) < minLen {
		r.corrupt = true
		return r, nil
	}
	r.blob = blob
	return r, nil
}

// Get decodes the value stored under key into out, which must be a pointer.
// It reports whether a value was found.
func (s *Store) Get(ctx context.Context, key string, out any) (bool, error) {
	data, ok, err := s.GetRaw(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := s.codec.Unmarshal(data, out); err != nil {
		return false, ErrCodecDecode.WithCause(err)
	}
	return true, nil
}

// Metadata returns the metadata record of key without reading the value.
// Expired records are reported as absent but not removed.
func (s *Store) Metadata(ctx context.Context, key string) (*Metadata, bool, error) {
	name := s.ns.Sanitize(key)

	var meta *Metadata
	err := s.withLock(ctx, name, func(*namelock.Guard) error {
		var err error
		meta, err = s.loadMetadata(name)
		return err
	})
	if err != nil {
		return nil, false, translateErr(err)
	}
	if meta == nil || meta.Expired(s.now()) {
		return nil, false, nil
	}
	return meta, true, nil
}

// ============================================================================
// Remove
// ============================================================================

// Remove deletes key. Removing an absent key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.remove(ctx, s.ns.Sanitize(key), RemoveExplicit)
}

func (s *Store) remove(ctx context.Context, name string, reason RemoveReason) error {
	err := s.withLock(ctx, name, func(g *namelock.Guard) error {
		return s.unlinkAll(name, g)
	})
	if err != nil {
		return translateErr(err)
	}
	s.metrics.Remove(reason)
	return nil
}

// unlinkAll removes the value, the metadata and the lock file of name. The
// caller holds g.
func (s *Store) unlinkAll(name string, g *namelock.Guard) error {
	if err := s.dir.Unlink(keyspace.ObjectName(name)); err != nil {
		return err
	}
	if err := s.dir.Unlink(keyspace.ObjectName(keyspace.MetadataName(name))); err != nil {
		return err
	}
	if err := g.Unlink(); err != nil {
		s.log.Debug("failed to remove lock file", "name", g.Name(), "error", err)
	}
	return nil
}

// ============================================================================
// Keys
// ============================================================================

// Keys runs a sweep and returns the keys judged live, sorted.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	report, err := s.Sweep(ctx, SweepOptions{})
	if err != nil {
		return nil, err
	}
	return report.Live, nil
}

// Clean runs a sweep and returns the keys that survived it.
func (s *Store) Clean(ctx context.Context) ([]string, error) {
	return s.Keys(ctx)
}

// withLock runs fn while holding the lock of name.
func (s *Store) withLock(ctx context.Context, name string, fn func(g *namelock.Guard) error) error {
	g, err := s.locks.Acquire(ctx, keyspace.LockName(name))
	if err != nil {
		return err
	}
	defer g.Release()
	return fn(g)
}

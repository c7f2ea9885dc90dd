package shmap

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/yndnr/shmap-go/internal/keyspace"
	"github.com/yndnr/shmap-go/internal/shm"
)

// Metadata is the sidecar record stored next to every value.
type Metadata struct {
	// Key is the caller's original key.
	Key string `codec:"key" json:"key"`
	// ExpiresAt is the expiration instant in Unix nanoseconds, 0 for none.
	ExpiresAt int64 `codec:"expires_at" json:"expires_at"`
	// Encrypted is set when the value segment is sealed.
	Encrypted bool `codec:"encrypted" json:"encrypted"`
}

// newMetadata builds the record for an insert at now. ttl nil means the
// value never expires.
func newMetadata(key string, ttl *time.Duration, encrypted bool, now time.Time) (*Metadata, error) {
	m := &Metadata{Key: key, Encrypted: encrypted}
	if ttl == nil {
		return m, nil
	}

	d := *ttl
	n := now.UnixNano()
	if d < 0 || n > math.MaxInt64-int64(d) {
		return nil, ErrTTLOutOfRange.WithDetails(fmt.Sprintf("ttl %s from %s", d, now.Format(time.RFC3339)))
	}
	m.ExpiresAt = n + int64(d)
	return m, nil
}

// Expiration returns the expiration instant and whether one is set.
func (m *Metadata) Expiration() (time.Time, bool) {
	if m.ExpiresAt == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, m.ExpiresAt), true
}

// Expired reports whether the record has expired at now.
func (m *Metadata) Expired(now time.Time) bool {
	return m.ExpiresAt != 0 && now.UnixNano() >= m.ExpiresAt
}

// TTL returns the time left until expiration, or 0 with false when the
// record never expires.
func (m *Metadata) TTL(now time.Time) (time.Duration, bool) {
	exp, ok := m.Expiration()
	if !ok {
		return 0, false
	}
	return exp.Sub(now), true
}

func (s *Store) encodeMetadata(m *Metadata) ([]byte, error) {
	data, err := s.codec.Marshal(m)
	if err != nil {
		return nil, ErrCodecEncode.WithDetails("metadata").WithCause(err)
	}
	return data, nil
}

func (s *Store) decodeMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := s.codec.Unmarshal(data, &m); err != nil {
		return nil, ErrCodecDecode.WithDetails("metadata").WithCause(err)
	}
	return &m, nil
}

// loadMetadata reads and decodes the metadata segment of name without
// taking the key lock. It returns nil, nil when the segment is absent.
// Callers either hold the lock or tolerate a torn read.
func (s *Store) loadMetadata(name string) (*Metadata, error) {
	raw, err := s.dir.ReadAll(keyspace.ObjectName(keyspace.MetadataName(name)))
	if errors.Is(err, shm.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateErr(err)
	}
	return s.decodeMetadata(raw)
}

// storeMetadata writes an encoded record. The caller holds the key lock.
func (s *Store) storeMetadata(name string, data []byte) error {
	return s.dir.Write(keyspace.ObjectName(keyspace.MetadataName(name)), data)
}

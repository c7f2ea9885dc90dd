package shmap

import (
	"context"
	"time"
)

// Get returns the value of type T stored under key.
//
//	sess, ok, err := shmap.Get[Session](ctx, store, "session:42")
func Get[T any](ctx context.Context, s *Store, key string) (T, bool, error) {
	var v T
	ok, err := s.Get(ctx, key, &v)
	if err != nil || !ok {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

// Insert stores v under key without expiration.
func Insert[T any](ctx context.Context, s *Store, key string, v T) error {
	return s.Insert(ctx, key, v)
}

// InsertWithTTL stores v under key for ttl.
func InsertWithTTL[T any](ctx context.Context, s *Store, key string, v T, ttl time.Duration) error {
	return s.InsertWithTTL(ctx, key, v, ttl)
}

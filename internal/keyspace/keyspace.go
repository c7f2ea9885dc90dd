package keyspace

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// DefaultPrefix is the namespace tag used when none is configured.
	DefaultPrefix = "shmap"

	// MetadataSuffix marks a metadata segment.
	MetadataSuffix = ".metadata"

	// LockSuffix marks a lock file.
	LockSuffix = ".lock"
)

// Kind classifies a directory entry by its suffix.
type Kind int

const (
	KindValue Kind = iota
	KindMetadata
	KindLock
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindMetadata:
		return "metadata"
	case KindLock:
		return "lock"
	default:
		return "unknown"
	}
}

// Namespace derives names for one prefix.
type Namespace struct {
	prefix string
}

// New returns a namespace for prefix. An empty prefix selects DefaultPrefix.
func New(prefix string) Namespace {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Namespace{prefix: prefix + "."}
}

// Prefix returns the namespace tag without the trailing dot.
func (n Namespace) Prefix() string {
	return strings.TrimSuffix(n.prefix, ".")
}

// Sanitize returns the value segment name for key.
func (n Namespace) Sanitize(key string) string {
	sum := sha256.Sum224([]byte(key))
	return n.prefix + hex.EncodeToString(sum[:])
}

// Owns reports whether name belongs to this namespace.
func (n Namespace) Owns(name string) bool {
	if !strings.HasPrefix(name, n.prefix) {
		return false
	}
	return isDigest(DataName(name)[len(n.prefix):])
}

// MetadataName returns the metadata segment name for a value name.
func MetadataName(name string) string {
	return name + MetadataSuffix
}

// LockName returns the lock name shared by a value name and its metadata name.
func LockName(name string) string {
	return strings.TrimSuffix(name, MetadataSuffix) + LockSuffix
}

// DataName strips any metadata or lock suffix from name.
func DataName(name string) string {
	switch {
	case strings.HasSuffix(name, MetadataSuffix):
		return strings.TrimSuffix(name, MetadataSuffix)
	case strings.HasSuffix(name, LockSuffix):
		return strings.TrimSuffix(name, LockSuffix)
	default:
		return name
	}
}

// Classify returns the kind of a directory entry.
func Classify(name string) Kind {
	switch {
	case strings.HasSuffix(name, MetadataSuffix):
		return KindMetadata
	case strings.HasSuffix(name, LockSuffix):
		return KindLock
	default:
		return KindValue
	}
}

// ObjectName returns name in the form expected by the segment layer.
func ObjectName(name string) string {
	return "/" + name
}

// isDigest reports whether s is a lowercase hex SHA-224 digest.
func isDigest(s string) bool {
	if len(s) != sha256.Size224*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

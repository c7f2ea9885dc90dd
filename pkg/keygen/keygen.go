package keygen

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/yndnr/shmap-go/pkg/crypto/adaptive"
)

// fingerprintLen is the number of digest bytes kept in a fingerprint.
const fingerprintLen = 8

// Generate returns a new random store key.
func Generate() ([]byte, error) {
	key := make([]byte, adaptive.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("keygen: read random: %w", err)
	}
	return key, nil
}

// GenerateHex returns a new random store key, hex encoded.
func GenerateHex() (string, error) {
	key, err := Generate()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// Fingerprint identifies key without revealing it.
func Fingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:fingerprintLen])
}

// Matches reports in constant time whether key has the given fingerprint.
func Matches(key []byte, fingerprint string) bool {
	return subtle.ConstantTimeCompare([]byte(Fingerprint(key)), []byte(fingerprint)) == 1
}

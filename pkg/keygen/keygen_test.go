package keygen

import (
	"encoding/hex"
	"testing"

	"github.com/yndnr/shmap-go/pkg/crypto/adaptive"
)

func TestGenerate(t *testing.T) {
	key, err := Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(key) != adaptive.KeySize {
		t.Errorf("len = %d, want %d", len(key), adaptive.KeySize)
	}
	if _, err := adaptive.New(key); err != nil {
		t.Errorf("generated key rejected by cipher: %v", err)
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		k, err := GenerateHex()
		if err != nil {
			t.Fatalf("GenerateHex() error = %v", err)
		}
		if seen[k] {
			t.Fatalf("duplicate key after %d iterations", i)
		}
		seen[k] = true
	}
}

func TestGenerateHex(t *testing.T) {
	k, err := GenerateHex()
	if err != nil {
		t.Fatalf("GenerateHex() error = %v", err)
	}
	raw, err := hex.DecodeString(k)
	if err != nil {
		t.Fatalf("not hex: %v", err)
	}
	if len(raw) != adaptive.KeySize {
		t.Errorf("decoded len = %d, want %d", len(raw), adaptive.KeySize)
	}
}

func TestFingerprint(t *testing.T) {
	key := make([]byte, adaptive.KeySize)

	// SHA-256 of 32 zero bytes begins with 66687aadf862bd77.
	if got := Fingerprint(key); got != "66687aadf862bd77" {
		t.Errorf("Fingerprint(zero key) = %q", got)
	}

	other := make([]byte, adaptive.KeySize)
	other[0] = 1
	if Fingerprint(key) == Fingerprint(other) {
		t.Error("different keys share a fingerprint")
	}
}

func TestMatches(t *testing.T) {
	key, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	fp := Fingerprint(key)

	if !Matches(key, fp) {
		t.Error("Matches() = false for own fingerprint")
	}
	if Matches(key, "0000000000000000") {
		t.Error("Matches() = true for wrong fingerprint")
	}
	if Matches(key, "") {
		t.Error("Matches() = true for empty fingerprint")
	}
}

// Package adaptive provides the authenticated ciphers used to seal values.
//
// Two AEADs are supported:
//
//   - AES-256-GCM, preferred where the CPU accelerates AES (amd64, arm64)
//   - ChaCha20-Poly1305, the fallback elsewhere
//
// Every sealed blob has the layout
//
//	[12-byte random nonce][ciphertext || 16-byte tag]
//
// Nonces come from crypto/rand for every call. Ciphers are immutable after
// construction and safe for concurrent use.
//
// Usage:
//
//	c, err := adaptive.NewWithType(key, adaptive.CipherAuto)
//	blob, err := c.Encrypt(plaintext, aad)
//	plaintext, err := c.Decrypt(blob, aad)
package adaptive

// Package keygen creates store encryption keys and fingerprints them.
//
// Keys are 32 random bytes from crypto/rand, exchanged as lowercase hex in
// configuration files and the SHMAP_SECURITY_ENCRYPTION_KEY environment
// variable. A fingerprint is the first 8 bytes of the key's SHA-256 digest,
// hex encoded: safe to log, and enough to tell which key a process uses.
package keygen

// Package integrity implements the keyed tag scheme for chaos-key.
//
// Tags are HMAC-SHA3-256 over a caller-supplied message; tag keys are
// derived from the key seed with HKDF-SHA3-256 under per-context info
// strings, so a key-material tag can never be replayed as a ciphertext
// tag and tags from different keys never verify against each other.
package integrity

import (
	"crypto/hmac"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"

	chaoskey "github.com/BackendStack21/chaos-key-go"
)

// TagSize is the digest length in bytes.
const TagSize = 32

// Key-derivation contexts. One context authenticates exactly one kind of
// message; they are never mixed.
const (
	ContextKeyMaterial = "chaoskey-keytag-v1"
	ContextCiphertext  = "chaoskey-cttag-v1"
)

// hkdfSalt separates chaos-key tag derivation from any other HKDF use of
// the same seed.
var hkdfSalt = []byte("chaoskey-hkdf-salt-v1")

// DeriveKey derives a 32-byte tag key from the key seed for one context.
// The caller owns the returned key and should zeroize it after use.
func DeriveKey(seed []byte, context string) ([]byte, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("%w: empty seed", chaoskey.ErrInvalidParameter)
	}
	reader := hkdf.New(sha3.New256, seed, hkdfSalt, []byte(context))
	key := make([]byte, TagSize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("%w: tag key derivation: %v", chaoskey.ErrInvalidParameter, err)
	}
	return key, nil
}

// Compute returns the keyed digest of message.
func Compute(key, message []byte) []byte {
	mac := hmac.New(sha3.New256, key)
	mac.Write(message)
	return mac.Sum(nil)
}

// Verify recomputes the digest and compares in constant time. It never
// short-circuits on the first mismatched byte and reports only whether the
// whole tag matched.
func Verify(key, message, digest []byte) bool {
	if len(digest) != TagSize {
		return false
	}
	return hmac.Equal(Compute(key, message), digest)
}

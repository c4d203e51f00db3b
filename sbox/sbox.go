// Package sbox implements the key-derived substitution box for chaos-key.
//
// The table is a permutation of the 256 byte values produced by a
// Fisher-Yates shuffle driven by a ChaCha20 keystream keyed from the
// canonical key serialization. The shuffle yields a permutation by
// construction; New still cross-checks the inverse before returning.
package sbox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20"

	chaoskey "github.com/BackendStack21/chaos-key-go"
	"github.com/BackendStack21/chaos-key-go/utils"
)

const DomainSBox = "chaoskey-sbox-v1"

// Box holds a bijective byte substitution table and its exact inverse.
// A Box is read-only after construction and safe for concurrent use.
type Box struct {
	forward [256]byte
	inverse [256]byte
}

// New derives the substitution box for the given key material.
// Two keys differing in any canonical field produce unrelated tables.
func New(km *chaoskey.KeyMaterial) (*Box, error) {
	body := km.CanonicalBody()
	key := utils.Shake256WithDomain(DomainSBox, body, chacha20.KeySize)
	utils.Zeroize(body)
	defer utils.Zeroize(key)

	nonce := make([]byte, chacha20.NonceSize)
	stream, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: sbox keystream: %v", chaoskey.ErrInvalidParameter, err)
	}

	b := &Box{}
	for i := 0; i < 256; i++ {
		b.forward[i] = byte(i)
	}

	// Fisher-Yates with rejection sampling keeps the shuffle unbiased.
	ks := keystream{cipher: stream}
	for i := 255; i > 0; i-- {
		j := ks.uniform(i + 1)
		b.forward[i], b.forward[j] = b.forward[j], b.forward[i]
	}

	for i, v := range b.forward {
		b.inverse[v] = byte(i)
	}
	if err := b.checkBijective(); err != nil {
		return nil, err
	}
	return b, nil
}

// Substitute maps one byte through the forward table.
func (b *Box) Substitute(v byte) byte {
	return b.forward[v]
}

// Invert maps one byte through the inverse table.
func (b *Box) Invert(v byte) byte {
	return b.inverse[v]
}

// SubstituteInPlace applies the forward table to every byte of data.
func (b *Box) SubstituteInPlace(data []byte) {
	for i, v := range data {
		data[i] = b.forward[v]
	}
}

// InvertInPlace applies the inverse table to every byte of data.
func (b *Box) InvertInPlace(data []byte) {
	for i, v := range data {
		data[i] = b.inverse[v]
	}
}

// checkBijective verifies invert(substitute(v)) == v over the full domain.
// Unreachable with a correct shuffle; kept so a construction bug fails the
// operation instead of silently corrupting ciphertext.
func (b *Box) checkBijective() error {
	var seen [256]bool
	for i := 0; i < 256; i++ {
		v := b.forward[i]
		if seen[v] {
			return errors.New("sbox: table is not a permutation")
		}
		seen[v] = true
		if b.inverse[v] != byte(i) {
			return errors.New("sbox: inverse table mismatch")
		}
	}
	return nil
}

// keystream adapts a ChaCha20 cipher into a byte source for the shuffle.
type keystream struct {
	cipher *chacha20.Cipher
	buf    [64]byte
	used   int
}

func (k *keystream) next() byte {
	if k.used == 0 || k.used >= len(k.buf) {
		for i := range k.buf {
			k.buf[i] = 0
		}
		k.cipher.XORKeyStream(k.buf[:], k.buf[:])
		k.used = 0
	}
	v := k.buf[k.used]
	k.used++
	return v
}

// uniform returns an unbiased value in [0, bound) for bound in [1, 256].
func (k *keystream) uniform(bound int) int {
	if bound >= 256 {
		return int(k.next())
	}
	limit := 256 - (256 % bound)
	for {
		v := int(k.next())
		if v < limit {
			return v % bound
		}
	}
}

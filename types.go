// Package chaoskey implements the chaos-key symmetric cipher engine.
//
// chaos-key is an experimental symmetric construction: the key is a set of
// large "lattice point" primes plus a high-entropy seed, authenticated by a
// keyed tag. Encryption combines a deterministic chaotic keystream, a
// bijective byte substitution, and a constant-control-flow ladder binding
// of lattice rows for diffusion.
//
// WARNING: This is an experimental cryptographic construction that has NOT
// been formally verified by academic peer review. DO NOT use in production
// systems protecting sensitive data.
package chaoskey

import (
	"encoding/binary"
	"math/big"
)

// =============================================================================
// Parameter Types
// =============================================================================

// Params contains the complete parameter set for one key size.
// Parameter sets are passed by value into constructors; there is no
// module-level mutable configuration.
type Params struct {
	BitSize           int `json:"bit_size"`          // Seed size in bits, multiple of 64
	PrimeBits         int `json:"prime_bits"`        // Bit length of each lattice point
	MillerRabinRounds int `json:"mr_rounds"`         // Primality test rounds
	SieveLimit        int `json:"sieve_limit"`       // Small-prime trial division bound
	LatticeDimension  int `json:"lattice_dimension"` // Number of lattice points
}

// BlockBytes returns the plaintext block size in bytes for this parameter
// set. Blocks are one byte shorter than the lattice primes so that every
// block value lies below any prime with its top bit set.
func (p Params) BlockBytes() int {
	return p.PrimeBits/8 - 1
}

// BoundBlockBytes returns the size of one ladder-bound block in bytes.
func (p Params) BoundBlockBytes() int {
	return p.PrimeBits / 8
}

// =============================================================================
// Key Material
// =============================================================================

// KeyMaterial is the chaos key: a seed, an ordered set of lattice-point
// primes, and a keyed integrity tag over the canonical serialization of the
// other fields. Instances are created once by keymat.Generate and are
// read-only afterwards; call Destroy when no longer needed.
type KeyMaterial struct {
	Params        Params
	Seed          []byte     // BitSize/8 bytes, uniformly random
	LatticePoints []*big.Int // LatticeDimension primes of PrimeBits bits
	Tag           []byte     // 32-byte keyed digest
}

// CanonicalBody returns the canonical serialization of the tagless fields:
// bitSize, seed and every lattice point in stored order, each length-framed
// in little-endian. This is the exact byte sequence the integrity tag and
// all key-derived components (keystream seed, S-box key) are computed over.
func (km *KeyMaterial) CanonicalBody() []byte {
	body := make([]byte, 0, 12+len(km.Seed)+len(km.LatticePoints)*(4+km.Params.PrimeBits/8))
	var lenBuf [4]byte

	binary.LittleEndian.PutUint32(lenBuf[:], uint32(km.Params.BitSize))
	body = append(body, lenBuf[:]...)

	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(km.Seed)))
	body = append(body, lenBuf[:]...)
	body = append(body, km.Seed...)

	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(km.LatticePoints)))
	body = append(body, lenBuf[:]...)
	for _, p := range km.LatticePoints {
		pb := p.Bytes()
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(pb)))
		body = append(body, lenBuf[:]...)
		body = append(body, pb...)
	}
	return body
}

// Destroy zeroes the sensitive fields of the key material. The material
// must not be used after Destroy returns.
func (km *KeyMaterial) Destroy() {
	for i := range km.Seed {
		km.Seed[i] = 0
	}
	km.Seed = nil
	for _, p := range km.LatticePoints {
		if p != nil {
			p.SetInt64(0)
		}
	}
	km.LatticePoints = nil
	for i := range km.Tag {
		km.Tag[i] = 0
	}
	km.Tag = nil
}

// =============================================================================
// Chaos State
// =============================================================================

// ChaosState is the mutable iteration state of the chaotic map. It is
// owned by exactly one sequence generator, advances monotonically, and can
// only be "rewound" by re-seeding from the same key material.
type ChaosState struct {
	X       uint64 // Q0.64 fixed-point iterate
	Counter uint64 // Bytes emitted so far

	SeedDigest [32]byte // Domain-separated digest of the key material
	Noise      [32]byte // Current perturbation block
	NoiseUsed  int      // Words consumed from Noise
}

// =============================================================================
// Lattice Rows
// =============================================================================

// RowSet is the ladder input for one block: the active modulus and the
// residues of every lattice point reduced modulo it, in the key's stored
// order. Derived deterministically from key material, immutable within a
// single bind or unbind.
type RowSet struct {
	Modulus *big.Int
	Rows    []*big.Int
}

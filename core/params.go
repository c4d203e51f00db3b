// Package core provides parameter derivation and validation for chaos-key.
package core

import (
	"errors"
	"fmt"

	chaoskey "github.com/BackendStack21/chaos-key-go"
)

// Default configuration constants. Callers override them by constructing
// a Params value directly and validating it; nothing in this package is
// mutable at module level.
const (
	// DefaultSieveLimit bounds the small-prime trial division pre-filter.
	DefaultSieveLimit = 10_000

	// DefaultPrimeBits is the bit length of each lattice point.
	DefaultPrimeBits = 256

	// DefaultMillerRabinRounds bounds the composite false-positive
	// probability by 4^-rounds.
	DefaultMillerRabinRounds = 40
)

// DeriveLatticeDimension maps a key bit size to the number of lattice
// points. The mapping is strictly increasing in bitSize.
func DeriveLatticeDimension(bitSize int) int {
	return 2 * (bitSize / 64)
}

// DefaultParams returns the parameter set for the given key bit size.
// bitSize must be a positive multiple of 64, at least 64.
func DefaultParams(bitSize int) (chaoskey.Params, error) {
	if bitSize < 64 || bitSize%64 != 0 {
		return chaoskey.Params{}, fmt.Errorf("%w: bit size must be a multiple of 64 and at least 64, got %d",
			chaoskey.ErrInvalidParameter, bitSize)
	}
	return chaoskey.Params{
		BitSize:           bitSize,
		PrimeBits:         DefaultPrimeBits,
		MillerRabinRounds: DefaultMillerRabinRounds,
		SieveLimit:        DefaultSieveLimit,
		LatticeDimension:  DeriveLatticeDimension(bitSize),
	}, nil
}

// ValidateParams validates the parameter set for security and consistency.
func ValidateParams(params chaoskey.Params) error {
	if params.BitSize < 64 || params.BitSize%64 != 0 {
		return errors.New("bit size must be a multiple of 64 and at least 64")
	}
	if params.PrimeBits < 64 || params.PrimeBits%8 != 0 {
		return errors.New("prime bits must be a multiple of 8 and at least 64")
	}
	if params.MillerRabinRounds < 1 {
		return errors.New("Miller-Rabin rounds must be at least 1")
	}
	if params.SieveLimit < 2 {
		return errors.New("sieve limit must be at least 2")
	}
	if params.LatticeDimension < 1 {
		return errors.New("lattice dimension must be positive")
	}
	if params.LatticeDimension > 1<<10 {
		return errors.New("lattice dimension exceeds supported maximum")
	}
	return nil
}

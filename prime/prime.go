// Package prime implements lattice-point prime generation for chaos-key.
//
// Candidates are drawn from the secure randomness source with the top and
// bottom bits forced, pre-filtered by trial division against a small-prime
// sieve, and accepted after a configurable number of Miller-Rabin rounds.
// The composite false-positive probability is at most 4^-rounds.
package prime

import (
	"fmt"
	"math/big"

	chaoskey "github.com/BackendStack21/chaos-key-go"
	"github.com/BackendStack21/chaos-key-go/utils"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// Generator produces primes of a fixed bit length. It precomputes the
// small-prime sieve once; a Generator is safe for concurrent use because
// its state is read-only after construction.
type Generator struct {
	bits        int
	rounds      int
	smallPrimes []uint64
}

// NewGenerator creates a prime generator.
// bits must be at least 2, rounds at least 1 and sieveLimit at least 2.
func NewGenerator(bits, rounds, sieveLimit int) (*Generator, error) {
	if bits < 2 {
		return nil, fmt.Errorf("%w: prime bits must be at least 2, got %d", chaoskey.ErrInvalidParameter, bits)
	}
	if rounds < 1 {
		return nil, fmt.Errorf("%w: rounds must be at least 1, got %d", chaoskey.ErrInvalidParameter, rounds)
	}
	if sieveLimit < 2 {
		return nil, fmt.Errorf("%w: sieve limit must be at least 2, got %d", chaoskey.ErrInvalidParameter, sieveLimit)
	}
	return &Generator{
		bits:        bits,
		rounds:      rounds,
		smallPrimes: SmallPrimeSieve(sieveLimit),
	}, nil
}

// Generate returns a probable prime of exactly the configured bit length.
// It loops over fresh candidates until one passes both the sieve pre-filter
// and the Miller-Rabin test; the only error condition is an unavailable
// randomness source.
func (g *Generator) Generate() (*big.Int, error) {
	byteLen := (g.bits + 7) / 8
	for {
		buf, err := utils.SecureRandomBytes(byteLen)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", chaoskey.ErrRandomnessUnavailable, err)
		}
		candidate := new(big.Int).SetBytes(buf)
		utils.Zeroize(buf)

		// Trim to the requested width, then force the top bit so the
		// candidate has exactly g.bits bits and the bottom bit so it is odd.
		excess := byteLen*8 - g.bits
		if excess > 0 {
			candidate.Rsh(candidate, uint(excess))
		}
		candidate.SetBit(candidate, g.bits-1, 1)
		candidate.SetBit(candidate, 0, 1)

		ok, err := g.IsProbablyPrime(candidate)
		if err != nil {
			return nil, err
		}
		if ok {
			return candidate, nil
		}
	}
}

// IsProbablyPrime combines the small-prime pre-filter with Miller-Rabin.
func (g *Generator) IsProbablyPrime(n *big.Int) (bool, error) {
	if !passesSmallPrimeCheck(n, g.smallPrimes) {
		return false, nil
	}
	return millerRabin(n, g.rounds)
}

// SmallPrimeSieve returns all primes up to limit using the Sieve of Eratosthenes.
func SmallPrimeSieve(limit int) []uint64 {
	composite := make([]bool, limit+1)
	for p := 2; p*p <= limit; p++ {
		if composite[p] {
			continue
		}
		for multiple := p * p; multiple <= limit; multiple += p {
			composite[multiple] = true
		}
	}
	var primes []uint64
	for i := 2; i <= limit; i++ {
		if !composite[i] {
			primes = append(primes, uint64(i))
		}
	}
	return primes
}

// passesSmallPrimeCheck eliminates trivial composites by trial division.
// A candidate equal to one of the sieve primes still passes.
func passesSmallPrimeCheck(n *big.Int, smallPrimes []uint64) bool {
	mod := new(big.Int)
	p := new(big.Int)
	for _, sp := range smallPrimes {
		p.SetUint64(sp)
		if mod.Mod(n, p).Sign() == 0 {
			return n.Cmp(p) == 0
		}
	}
	return true
}

// millerRabin runs k rounds of the Miller-Rabin test with independent
// random bases. It assumes n has already passed the small-prime check.
func millerRabin(n *big.Int, k int) (bool, error) {
	if n.Cmp(one) <= 0 {
		return false, nil
	}
	if n.Cmp(two) == 0 {
		return true, nil
	}
	if n.Bit(0) == 0 {
		return false, nil
	}

	// Write n-1 as d * 2^s with d odd.
	nMinusOne := new(big.Int).Sub(n, one)
	d := new(big.Int).Set(nMinusOne)
	s := 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		s++
	}

	x := new(big.Int)
	baseRange := new(big.Int).Sub(n, two) // bases drawn from [2, n-1)
	for i := 0; i < k; i++ {
		a, err := utils.RandomBigInt(baseRange)
		if err != nil {
			return false, fmt.Errorf("%w: %v", chaoskey.ErrRandomnessUnavailable, err)
		}
		a.Add(a, two)

		x.Exp(a, d, n)
		if x.Cmp(one) == 0 || x.Cmp(nMinusOne) == 0 {
			continue
		}
		witness := true
		for r := 0; r < s-1; r++ {
			x.Exp(x, two, n)
			if x.Cmp(nMinusOne) == 0 {
				witness = false
				break
			}
		}
		if witness {
			return false, nil
		}
	}
	return true, nil
}

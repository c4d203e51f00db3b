// Package keymat implements generation, verification and canonical
// serialization of chaos-key material.
package keymat

import (
	"fmt"
	"math/big"

	chaoskey "github.com/BackendStack21/chaos-key-go"
	"github.com/BackendStack21/chaos-key-go/core"
	"github.com/BackendStack21/chaos-key-go/integrity"
	"github.com/BackendStack21/chaos-key-go/prime"
	"github.com/BackendStack21/chaos-key-go/utils"
)

// Generate creates fresh key material for the given bit size using the
// default parameter set. bitSize must be a positive multiple of 64.
func Generate(bitSize int) (*chaoskey.KeyMaterial, error) {
	params, err := core.DefaultParams(bitSize)
	if err != nil {
		return nil, err
	}
	return GenerateWithParams(params)
}

// GenerateWithParams creates fresh key material for an explicit parameter
// set: a uniformly random seed of BitSize bits, LatticeDimension distinct
// primes of PrimeBits bits, and the keyed tag over the canonical body.
// The seed is zeroized on every failure path.
func GenerateWithParams(params chaoskey.Params) (*chaoskey.KeyMaterial, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, fmt.Errorf("%w: %v", chaoskey.ErrInvalidParameter, err)
	}

	seed, err := utils.SecureRandomBytes(params.BitSize / 8)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chaoskey.ErrRandomnessUnavailable, err)
	}

	gen, err := prime.NewGenerator(params.PrimeBits, params.MillerRabinRounds, params.SieveLimit)
	if err != nil {
		utils.Zeroize(seed)
		return nil, err
	}

	points := make([]*big.Int, 0, params.LatticeDimension)
	for len(points) < params.LatticeDimension {
		p, err := gen.Generate()
		if err != nil {
			utils.Zeroize(seed)
			zeroizePoints(points)
			return nil, err
		}
		if containsPoint(points, p) {
			continue
		}
		points = append(points, p)
	}

	km := &chaoskey.KeyMaterial{
		Params:        params,
		Seed:          seed,
		LatticePoints: points,
	}

	tagKey, err := integrity.DeriveKey(km.Seed, integrity.ContextKeyMaterial)
	if err != nil {
		km.Destroy()
		return nil, err
	}
	defer utils.Zeroize(tagKey)

	body := km.CanonicalBody()
	km.Tag = integrity.Compute(tagKey, body)
	utils.Zeroize(body)
	return km, nil
}

// Verify recomputes the tag from the canonical body and the same key
// derivation rule and compares in constant time. It reports only whether
// the tag matched, never which byte differed.
func Verify(km *chaoskey.KeyMaterial) bool {
	if km == nil || len(km.Seed) == 0 || len(km.Tag) != integrity.TagSize {
		return false
	}
	tagKey, err := integrity.DeriveKey(km.Seed, integrity.ContextKeyMaterial)
	if err != nil {
		return false
	}
	defer utils.Zeroize(tagKey)

	body := km.CanonicalBody()
	defer utils.Zeroize(body)
	return integrity.Verify(tagKey, body, km.Tag)
}

// Fingerprint returns the SHA3-256 fingerprint of the canonical body.
// It identifies a key in logs and CLI output without exposing the seed.
func Fingerprint(km *chaoskey.KeyMaterial) []byte {
	body := km.CanonicalBody()
	defer utils.Zeroize(body)
	return utils.SHA3256(body)
}

func containsPoint(points []*big.Int, p *big.Int) bool {
	for _, q := range points {
		if q.Cmp(p) == 0 {
			return true
		}
	}
	return false
}

func zeroizePoints(points []*big.Int) {
	for _, p := range points {
		utils.ZeroizeBig(p)
	}
}

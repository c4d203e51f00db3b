package keymat

import (
	"fmt"
	"math/big"

	chaoskey "github.com/BackendStack21/chaos-key-go"
	"github.com/BackendStack21/chaos-key-go/core"
	"github.com/BackendStack21/chaos-key-go/integrity"
	"github.com/BackendStack21/chaos-key-go/utils"
)

// Serialize returns the binary blob for key material: the canonical body
// followed by the 32-byte tag. The body is self-delimiting, so the tag is
// always the trailing TagSize bytes.
func Serialize(km *chaoskey.KeyMaterial) []byte {
	body := km.CanonicalBody()
	blob := make([]byte, 0, len(body)+len(km.Tag))
	blob = append(blob, body...)
	blob = append(blob, km.Tag...)
	utils.Zeroize(body)
	return blob
}

// Deserialize parses a blob produced by Serialize. The parameter set is
// rederived from the recorded bit size; blobs whose lattice dimension or
// prime widths disagree with that derivation are rejected. Deserialize
// does not verify the tag; callers decide when to call Verify.
func Deserialize(blob []byte) (*chaoskey.KeyMaterial, error) {
	if err := utils.CheckLength(len(blob), utils.MaxPayloadLength); err != nil {
		return nil, fmt.Errorf("%w: key blob: %v", chaoskey.ErrInvalidParameter, err)
	}

	bitSize, offset, err := utils.SafeReadLength(blob, 0, 1<<20)
	if err != nil {
		return nil, fmt.Errorf("%w: key blob bit size: %v", chaoskey.ErrInvalidParameter, err)
	}
	params, err := core.DefaultParams(bitSize)
	if err != nil {
		return nil, err
	}
	return deserializeBody(blob, offset, params)
}

// DeserializeWithParams parses a blob against an explicit parameter set,
// for callers running non-default prime sizes. The recorded bit size must
// match params.BitSize.
func DeserializeWithParams(blob []byte, params chaoskey.Params) (*chaoskey.KeyMaterial, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, fmt.Errorf("%w: %v", chaoskey.ErrInvalidParameter, err)
	}
	bitSize, offset, err := utils.SafeReadLength(blob, 0, 1<<20)
	if err != nil {
		return nil, fmt.Errorf("%w: key blob bit size: %v", chaoskey.ErrInvalidParameter, err)
	}
	if bitSize != params.BitSize {
		return nil, fmt.Errorf("%w: blob records %d-bit key, parameters say %d",
			chaoskey.ErrInvalidParameter, bitSize, params.BitSize)
	}
	return deserializeBody(blob, offset, params)
}

func deserializeBody(blob []byte, offset int, params chaoskey.Params) (*chaoskey.KeyMaterial, error) {
	seedLen, offset, err := utils.SafeReadLength(blob, offset, utils.MaxSeedBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: key blob seed length: %v", chaoskey.ErrInvalidParameter, err)
	}
	if seedLen != params.BitSize/8 {
		return nil, fmt.Errorf("%w: seed is %d bytes, want %d", chaoskey.ErrInvalidParameter, seedLen, params.BitSize/8)
	}
	if err := utils.ValidateSliceAccess(blob, offset, seedLen); err != nil {
		return nil, fmt.Errorf("%w: key blob seed: %v", chaoskey.ErrInvalidParameter, err)
	}
	seed := append([]byte{}, blob[offset:offset+seedLen]...)
	offset += seedLen

	count, offset, err := utils.SafeReadLength(blob, offset, utils.MaxLatticePoints)
	if err != nil {
		utils.Zeroize(seed)
		return nil, fmt.Errorf("%w: key blob point count: %v", chaoskey.ErrInvalidParameter, err)
	}
	if count != params.LatticeDimension {
		utils.Zeroize(seed)
		return nil, fmt.Errorf("%w: blob has %d lattice points, want %d",
			chaoskey.ErrInvalidParameter, count, params.LatticeDimension)
	}

	points := make([]*big.Int, 0, count)
	fail := func(format string, args ...interface{}) (*chaoskey.KeyMaterial, error) {
		utils.Zeroize(seed)
		zeroizePoints(points)
		return nil, fmt.Errorf("%w: "+format, append([]interface{}{chaoskey.ErrInvalidParameter}, args...)...)
	}

	for i := 0; i < count; i++ {
		var pointLen int
		pointLen, offset, err = utils.SafeReadLength(blob, offset, utils.MaxPrimeBytes)
		if err != nil {
			return fail("key blob point %d length: %v", i, err)
		}
		if err := utils.ValidateSliceAccess(blob, offset, pointLen); err != nil {
			return fail("key blob point %d: %v", i, err)
		}
		p := new(big.Int).SetBytes(blob[offset : offset+pointLen])
		offset += pointLen
		if p.BitLen() != params.PrimeBits {
			return fail("lattice point %d is %d bits, want %d", i, p.BitLen(), params.PrimeBits)
		}
		points = append(points, p)
	}

	if len(blob)-offset != integrity.TagSize {
		return fail("trailing tag is %d bytes, want %d", len(blob)-offset, integrity.TagSize)
	}
	tag := append([]byte{}, blob[offset:]...)

	return &chaoskey.KeyMaterial{
		Params:        params,
		Seed:          seed,
		LatticePoints: points,
		Tag:           tag,
	}, nil
}

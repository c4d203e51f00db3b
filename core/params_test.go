package core

import (
	"errors"
	"testing"

	chaoskey "github.com/BackendStack21/chaos-key-go"
)

func TestDefaultParams(t *testing.T) {
	params, err := DefaultParams(256)
	if err != nil {
		t.Fatalf("DefaultParams(256) failed: %v", err)
	}
	if params.BitSize != 256 {
		t.Errorf("BitSize = %d; want 256", params.BitSize)
	}
	if params.PrimeBits != DefaultPrimeBits {
		t.Errorf("PrimeBits = %d; want %d", params.PrimeBits, DefaultPrimeBits)
	}
	if params.MillerRabinRounds != DefaultMillerRabinRounds {
		t.Errorf("MillerRabinRounds = %d; want %d", params.MillerRabinRounds, DefaultMillerRabinRounds)
	}
	if params.SieveLimit != DefaultSieveLimit {
		t.Errorf("SieveLimit = %d; want %d", params.SieveLimit, DefaultSieveLimit)
	}
	if params.LatticeDimension != DeriveLatticeDimension(256) {
		t.Errorf("LatticeDimension = %d; want %d", params.LatticeDimension, DeriveLatticeDimension(256))
	}
	if err := ValidateParams(params); err != nil {
		t.Errorf("default params fail validation: %v", err)
	}
}

func TestDefaultParamsRejectsBadBitSizes(t *testing.T) {
	for _, bits := range []int{0, -64, 1, 32, 63, 65, 100, 127} {
		_, err := DefaultParams(bits)
		if err == nil {
			t.Errorf("DefaultParams(%d) should fail", bits)
			continue
		}
		if !errors.Is(err, chaoskey.ErrInvalidParameter) {
			t.Errorf("DefaultParams(%d) error is not ErrInvalidParameter: %v", bits, err)
		}
	}
}

func TestDeriveLatticeDimensionMonotonic(t *testing.T) {
	prev := 0
	for bits := 64; bits <= 1024; bits += 64 {
		dim := DeriveLatticeDimension(bits)
		if dim <= prev {
			t.Fatalf("dimension not increasing: %d bits -> %d (previous %d)", bits, dim, prev)
		}
		prev = dim
	}
}

func TestValidateParams(t *testing.T) {
	valid := chaoskey.Params{
		BitSize:           64,
		PrimeBits:         64,
		MillerRabinRounds: 8,
		SieveLimit:        1000,
		LatticeDimension:  2,
	}
	if err := ValidateParams(valid); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*chaoskey.Params)
	}{
		{"bit size not multiple of 64", func(p *chaoskey.Params) { p.BitSize = 100 }},
		{"bit size too small", func(p *chaoskey.Params) { p.BitSize = 0 }},
		{"prime bits too small", func(p *chaoskey.Params) { p.PrimeBits = 32 }},
		{"prime bits not byte aligned", func(p *chaoskey.Params) { p.PrimeBits = 65 }},
		{"zero rounds", func(p *chaoskey.Params) { p.MillerRabinRounds = 0 }},
		{"sieve limit too small", func(p *chaoskey.Params) { p.SieveLimit = 1 }},
		{"zero dimension", func(p *chaoskey.Params) { p.LatticeDimension = 0 }},
		{"huge dimension", func(p *chaoskey.Params) { p.LatticeDimension = 1 << 11 }},
	}
	for _, tc := range cases {
		p := valid
		tc.mutate(&p)
		if err := ValidateParams(p); err == nil {
			t.Errorf("%s: validation should fail", tc.name)
		}
	}
}

func TestBlockSizes(t *testing.T) {
	params, _ := DefaultParams(256)
	if params.BlockBytes() != 31 {
		t.Errorf("BlockBytes = %d; want 31", params.BlockBytes())
	}
	if params.BoundBlockBytes() != 32 {
		t.Errorf("BoundBlockBytes = %d; want 32", params.BoundBlockBytes())
	}
}

package ladder

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	chaoskey "github.com/BackendStack21/chaos-key-go"
	"github.com/BackendStack21/chaos-key-go/utils"
)

func testMaterial() *chaoskey.KeyMaterial {
	p1, _ := new(big.Int).SetString("18446744073709551557", 10) // 2^64 - 59
	p2, _ := new(big.Int).SetString("18446744073709551533", 10) // 2^64 - 83
	return &chaoskey.KeyMaterial{
		Params: chaoskey.Params{
			BitSize:           64,
			PrimeBits:         64,
			MillerRabinRounds: 8,
			SieveLimit:        1000,
			LatticeDimension:  2,
		},
		Seed:          []byte{1, 2, 3, 4, 5, 6, 7, 8},
		LatticePoints: []*big.Int{p1, p2},
	}
}

func TestBindUnbindInverse(t *testing.T) {
	km := testMaterial()
	rows, err := DeriveRows(km, 0)
	if err != nil {
		t.Fatalf("DeriveRows failed: %v", err)
	}

	blocks := [][]byte{
		make([]byte, 7), // all zero
		{0, 0, 0, 0, 0, 0, 1},
		{0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
		{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03},
	}
	for _, block := range blocks {
		bound, err := Bind(rows, block)
		if err != nil {
			t.Fatalf("Bind(%x) failed: %v", block, err)
		}
		if len(bound) != 8 {
			t.Fatalf("bound block is %d bytes, want 8", len(bound))
		}
		back, err := Unbind(rows, bound)
		if err != nil {
			t.Fatalf("Unbind failed: %v", err)
		}
		if !bytes.Equal(back, block) {
			t.Fatalf("Unbind(Bind(%x)) = %x", block, back)
		}
	}
}

func TestBindUnbindInverseRandomBlocks(t *testing.T) {
	km := testMaterial()
	for idx := 0; idx < 2; idx++ {
		rows, err := DeriveRows(km, idx)
		if err != nil {
			t.Fatalf("DeriveRows(%d) failed: %v", idx, err)
		}
		for i := 0; i < 64; i++ {
			block, err := utils.SecureRandomBytes(7)
			if err != nil {
				t.Fatalf("random block: %v", err)
			}
			bound, err := Bind(rows, block)
			if err != nil {
				t.Fatalf("Bind failed: %v", err)
			}
			back, err := Unbind(rows, bound)
			if err != nil {
				t.Fatalf("Unbind failed: %v", err)
			}
			if !bytes.Equal(back, block) {
				t.Fatalf("round trip failed for %x", block)
			}
		}
	}
}

func TestBindChangesBlock(t *testing.T) {
	km := testMaterial()
	rows, err := DeriveRows(km, 0)
	if err != nil {
		t.Fatalf("DeriveRows failed: %v", err)
	}
	block := []byte{1, 2, 3, 4, 5, 6, 7}
	bound, err := Bind(rows, block)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if bytes.Equal(bound[1:], block) {
		t.Error("binding left the block unchanged")
	}
}

func TestModulusSchedule(t *testing.T) {
	km := testMaterial()
	r0, err := DeriveRows(km, 0)
	if err != nil {
		t.Fatalf("DeriveRows(0) failed: %v", err)
	}
	r1, err := DeriveRows(km, 1)
	if err != nil {
		t.Fatalf("DeriveRows(1) failed: %v", err)
	}
	r2, err := DeriveRows(km, 2)
	if err != nil {
		t.Fatalf("DeriveRows(2) failed: %v", err)
	}

	if r0.Modulus.Cmp(km.LatticePoints[0]) != 0 {
		t.Error("block 0 does not use the first lattice point")
	}
	if r1.Modulus.Cmp(km.LatticePoints[1]) != 0 {
		t.Error("block 1 does not use the second lattice point")
	}
	if r2.Modulus.Cmp(r0.Modulus) != 0 {
		t.Error("modulus schedule does not cycle")
	}
	if len(r0.Rows) != 2 {
		t.Errorf("row set has %d rows, want 2", len(r0.Rows))
	}
}

func TestDeriveSchedule(t *testing.T) {
	km := testMaterial()
	schedule, err := DeriveSchedule(km)
	if err != nil {
		t.Fatalf("DeriveSchedule failed: %v", err)
	}
	if len(schedule) != 2 {
		t.Fatalf("schedule has %d entries, want 2", len(schedule))
	}
	for i, rows := range schedule {
		direct, err := DeriveRows(km, i)
		if err != nil {
			t.Fatalf("DeriveRows(%d) failed: %v", i, err)
		}
		if rows.Modulus.Cmp(direct.Modulus) != 0 {
			t.Errorf("schedule entry %d modulus mismatch", i)
		}
	}
}

func TestUnbindRejectsOutOfDomainResult(t *testing.T) {
	// With a 63-bit modulus the bound width is still 8 bytes but blocks
	// carry only 56 bits, so an adversarial bound value can unbind to a
	// residue above the block domain. Rows of zero make the ladder a plain
	// doubling chain: Unbind(1) = inverse of 2^d, which is astronomically
	// larger than 2^56.
	p, _ := new(big.Int).SetString("9223372036854775783", 10) // largest prime below 2^63
	rows := &chaoskey.RowSet{
		Modulus: p,
		Rows:    []*big.Int{new(big.Int), new(big.Int)},
	}

	bound := make([]byte, 8)
	bound[7] = 1
	_, err := Unbind(rows, bound)
	if err == nil {
		t.Fatal("out-of-domain result accepted")
	}
	if !errors.Is(err, chaoskey.ErrOutOfRange) {
		t.Errorf("error is not ErrOutOfRange: %v", err)
	}
}

func TestBindRejectsWrongLength(t *testing.T) {
	km := testMaterial()
	rows, err := DeriveRows(km, 0)
	if err != nil {
		t.Fatalf("DeriveRows failed: %v", err)
	}
	if _, err := Bind(rows, make([]byte, 8)); err == nil {
		t.Error("Bind accepted an oversized block")
	}
	if _, err := Unbind(rows, make([]byte, 7)); err == nil {
		t.Error("Unbind accepted an undersized block")
	}
}

func TestUnbindRejectsUnreducedValue(t *testing.T) {
	km := testMaterial()
	rows, err := DeriveRows(km, 0)
	if err != nil {
		t.Fatalf("DeriveRows failed: %v", err)
	}
	// 2^64 - 1 >= 2^64 - 59
	over := bytes.Repeat([]byte{0xFF}, 8)
	_, err = Unbind(rows, over)
	if err == nil {
		t.Fatal("Unbind accepted a value above the modulus")
	}
	if !errors.Is(err, chaoskey.ErrOutOfRange) {
		t.Errorf("error is not ErrOutOfRange: %v", err)
	}
}

func TestDeriveRowsRejectsBadMaterial(t *testing.T) {
	km := testMaterial()
	km.LatticePoints = nil
	if _, err := DeriveRows(km, 0); err == nil {
		t.Error("DeriveRows accepted empty lattice")
	}

	km = testMaterial()
	if _, err := DeriveRows(km, -1); err == nil {
		t.Error("DeriveRows accepted negative block index")
	}

	km = testMaterial()
	km.LatticePoints[0] = big.NewInt(4) // even
	if _, err := DeriveRows(km, 0); err == nil {
		t.Error("DeriveRows accepted an even modulus")
	}
}

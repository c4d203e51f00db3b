// Package ladder implements the lattice-row binding transform for chaos-key.
//
// Binding runs one ladder step per lattice row, in the key's stored order:
// acc <- 2*acc + row[i] (mod p), with p the active lattice prime. Every
// step executes the same operation sequence regardless of accumulator or
// row values, so control flow and memory access do not depend on secrets.
// The aggregate map is affine, y = 2^d * x + C (mod p), and Unbind
// re-traverses the rows identically to rebuild C and 2^d before applying
// the inverse, so Unbind(Bind(x)) == x for every in-range block.
package ladder

import (
	"fmt"
	"math/big"

	chaoskey "github.com/BackendStack21/chaos-key-go"
)

var two = big.NewInt(2)

// DeriveRows builds the row set for one block: the active modulus cycles
// through the key's lattice points by block index, and each row is the
// corresponding lattice point reduced modulo the active prime.
func DeriveRows(km *chaoskey.KeyMaterial, blockIndex int) (*chaoskey.RowSet, error) {
	dim := len(km.LatticePoints)
	if dim == 0 {
		return nil, fmt.Errorf("%w: key material has no lattice points", chaoskey.ErrInvalidParameter)
	}
	if blockIndex < 0 {
		return nil, fmt.Errorf("%w: negative block index", chaoskey.ErrInvalidParameter)
	}
	modulus := km.LatticePoints[blockIndex%dim]
	if modulus.Sign() <= 0 || modulus.Bit(0) == 0 {
		return nil, fmt.Errorf("%w: active lattice point is not an odd prime", chaoskey.ErrOutOfRange)
	}

	rows := make([]*big.Int, dim)
	for j, p := range km.LatticePoints {
		rows[j] = new(big.Int).Mod(p, modulus)
	}
	return &chaoskey.RowSet{Modulus: modulus, Rows: rows}, nil
}

// DeriveSchedule derives the row sets for every modulus in the cycle, so
// multi-block operations reduce each lattice point only once per modulus.
// Index i of the schedule serves every block whose index is congruent to
// i modulo the lattice dimension.
func DeriveSchedule(km *chaoskey.KeyMaterial) ([]*chaoskey.RowSet, error) {
	schedule := make([]*chaoskey.RowSet, len(km.LatticePoints))
	for i := range schedule {
		rows, err := DeriveRows(km, i)
		if err != nil {
			return nil, err
		}
		schedule[i] = rows
	}
	return schedule, nil
}

// Bind applies the ladder to one block. The block length must be exactly
// one byte less than the modulus width; the result is the accumulator in
// fixed modulus-width big-endian form.
func Bind(rows *chaoskey.RowSet, block []byte) ([]byte, error) {
	boundBytes := (rows.Modulus.BitLen() + 7) / 8
	if len(block) != boundBytes-1 {
		return nil, fmt.Errorf("%w: block is %d bytes, want %d", chaoskey.ErrInvalidParameter, len(block), boundBytes-1)
	}

	acc := new(big.Int).SetBytes(block)
	if acc.Cmp(rows.Modulus) >= 0 {
		return nil, fmt.Errorf("%w: block value not reduced modulo active prime", chaoskey.ErrOutOfRange)
	}

	for _, r := range rows.Rows {
		acc.Mul(acc, two)
		acc.Add(acc, r)
		acc.Mod(acc, rows.Modulus)
	}
	return acc.FillBytes(make([]byte, boundBytes)), nil
}

// Unbind inverts Bind. It traverses the rows in the same order and step
// count to reconstruct the aggregate affine map, then applies its inverse.
func Unbind(rows *chaoskey.RowSet, bound []byte) ([]byte, error) {
	boundBytes := (rows.Modulus.BitLen() + 7) / 8
	if len(bound) != boundBytes {
		return nil, fmt.Errorf("%w: bound block is %d bytes, want %d", chaoskey.ErrInvalidParameter, len(bound), boundBytes)
	}

	y := new(big.Int).SetBytes(bound)
	if y.Cmp(rows.Modulus) >= 0 {
		return nil, fmt.Errorf("%w: bound value not reduced modulo active prime", chaoskey.ErrOutOfRange)
	}

	// Same traversal as Bind: m accumulates 2^d, c the folded row sum.
	m := big.NewInt(1)
	c := new(big.Int)
	for _, r := range rows.Rows {
		m.Mul(m, two)
		m.Mod(m, rows.Modulus)
		c.Mul(c, two)
		c.Add(c, r)
		c.Mod(c, rows.Modulus)
	}

	if m.ModInverse(m, rows.Modulus) == nil {
		return nil, fmt.Errorf("%w: active modulus is not invertible", chaoskey.ErrOutOfRange)
	}

	x := new(big.Int).Sub(y, c)
	x.Mod(x, rows.Modulus)
	x.Mul(x, m)
	x.Mod(x, rows.Modulus)

	if x.BitLen() > (boundBytes-1)*8 {
		return nil, fmt.Errorf("%w: unbound value exceeds block domain", chaoskey.ErrOutOfRange)
	}
	return x.FillBytes(make([]byte, boundBytes-1)), nil
}

// Package chaos implements the deterministic chaotic keystream for chaos-key.
//
// The iterate is a logistic map x' = 4x(1-x) in Q0.64 fixed point, XORed
// each step with a SHAKE256-derived perturbation word. Fixed-point
// arithmetic keeps the stream bit-identical across platforms; the
// perturbation stream breaks the map's short cycles and fixed points
// (including x = 0). For one key material the stream is fully
// reproducible: decryption re-seeds and regenerates the identical bytes.
package chaos

import (
	"encoding/binary"
	"math/bits"

	chaoskey "github.com/BackendStack21/chaos-key-go"
	"github.com/BackendStack21/chaos-key-go/utils"
)

const DomainSequence = "chaoskey-seq-v1"

// noiseWords is the number of 64-bit perturbation words per SHAKE refresh.
const noiseWords = 4

// phi64 seeds the iterate when the derived initial value is zero.
const phi64 = 0x9E3779B97F4A7C15

// Seed derives a fresh chaos state from key material. The initial
// condition depends on the seed and every lattice point, so two keys
// differing in any field produce unrelated streams.
func Seed(km *chaoskey.KeyMaterial) *chaoskey.ChaosState {
	enc := km.CanonicalBody()
	defer utils.Zeroize(enc)

	buf := utils.Shake256WithDomain(DomainSequence, enc, 40)
	defer utils.Zeroize(buf)

	st := &chaoskey.ChaosState{}
	copy(st.SeedDigest[:], buf[:32])
	st.X = binary.LittleEndian.Uint64(buf[32:40])
	if st.X == 0 {
		st.X = phi64
	}
	st.NoiseUsed = noiseWords // force a refresh on the first byte
	return st
}

// Next advances the state by one step and returns one keystream byte.
func Next(st *chaoskey.ChaosState) byte {
	if st.NoiseUsed >= noiseWords {
		refresh(st)
	}
	w := binary.LittleEndian.Uint64(st.Noise[st.NoiseUsed*8:])
	st.NoiseUsed++

	st.X = logistic(st.X) ^ w
	st.Counter++
	return byte(st.X >> 56)
}

// NextN returns the next n keystream bytes.
func NextN(st *chaoskey.ChaosState, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = Next(st)
	}
	return out
}

// refresh rederives the perturbation block from the seed digest and the
// current step counter.
func refresh(st *chaoskey.ChaosState) {
	var input [40]byte
	copy(input[:32], st.SeedDigest[:])
	binary.LittleEndian.PutUint64(input[32:], st.Counter)
	utils.Shake256Into(input[:], st.Noise[:])
	st.NoiseUsed = 0
}

// logistic computes 4x(1-x) in Q0.64 fixed point.
// For x in [0,1), 1-x is the two's complement negation and the Q128
// product's high word is the Q64 result; 4x(1-x) <= 1 so the final shift
// cannot overflow.
func logistic(x uint64) uint64 {
	hi, _ := bits.Mul64(x, -x)
	return hi << 2
}

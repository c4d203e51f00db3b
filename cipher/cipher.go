// Package cipher implements the chaos-key encrypt and decrypt pipelines.
//
// Encrypt: pad -> keystream mask -> substitute -> ladder-bind per block ->
// tag. Decrypt runs the exact reverse and verifies the ciphertext tag
// before touching any other byte; a tag mismatch returns no plaintext at
// all. The two pipelines share no mutable state, so independent calls may
// run concurrently as long as each owns its key material.
package cipher

import (
	"encoding/binary"
	"fmt"
	"os"

	chaoskey "github.com/BackendStack21/chaos-key-go"
	"github.com/BackendStack21/chaos-key-go/chaos"
	"github.com/BackendStack21/chaos-key-go/integrity"
	"github.com/BackendStack21/chaos-key-go/keymat"
	"github.com/BackendStack21/chaos-key-go/ladder"
	"github.com/BackendStack21/chaos-key-go/sbox"
	"github.com/BackendStack21/chaos-key-go/utils"
)

// Debug logging helpers
var debugChaos = os.Getenv("DEBUG_CHAOS") != ""

func logChaos(format string, args ...interface{}) {
	if debugChaos {
		fmt.Fprintf(os.Stderr, "[chaos-key] "+format+"\n", args...)
	}
}

// Encrypt encrypts plaintext under verified key material and returns the
// bound ciphertext with the 32-byte tag appended.
func Encrypt(km *chaoskey.KeyMaterial, plaintext []byte) ([]byte, error) {
	if !keymat.Verify(km) {
		return nil, fmt.Errorf("%w: key material tag mismatch", chaoskey.ErrIntegrityFailure)
	}
	if err := utils.CheckLength(len(plaintext), utils.MaxMessageSize); err != nil {
		return nil, fmt.Errorf("%w: plaintext: %v", chaoskey.ErrInvalidParameter, err)
	}

	buf := pad(plaintext, km.Params.BlockBytes())
	defer utils.Zeroize(buf)

	// Keystream mask, one byte per padded byte.
	st := chaos.Seed(km)
	ks := chaos.NextN(st, len(buf))
	for i := range buf {
		buf[i] ^= ks[i]
	}
	utils.Zeroize(ks)

	box, err := sbox.New(km)
	if err != nil {
		return nil, err
	}
	box.SubstituteInPlace(buf)

	schedule, err := ladder.DeriveSchedule(km)
	if err != nil {
		return nil, err
	}

	blockBytes := km.Params.BlockBytes()
	boundBytes := km.Params.BoundBlockBytes()
	blocks := len(buf) / blockBytes
	logChaos("encrypt: %d plaintext bytes, %d blocks", len(plaintext), blocks)

	out := make([]byte, 0, blocks*boundBytes+integrity.TagSize)
	for i := 0; i < blocks; i++ {
		rows := schedule[i%len(schedule)]
		bound, err := ladder.Bind(rows, buf[i*blockBytes:(i+1)*blockBytes])
		if err != nil {
			return nil, err
		}
		out = append(out, bound...)
	}

	tagKey, err := integrity.DeriveKey(km.Seed, integrity.ContextCiphertext)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(tagKey)

	return append(out, integrity.Compute(tagKey, out)...), nil
}

// Decrypt verifies the trailing tag, then reverses binding, substitution
// and the keystream mask, and strips the length-prefix padding. A tag
// mismatch fails before any pipeline stage runs.
func Decrypt(km *chaoskey.KeyMaterial, ciphertext []byte) ([]byte, error) {
	if !keymat.Verify(km) {
		return nil, fmt.Errorf("%w: key material tag mismatch", chaoskey.ErrIntegrityFailure)
	}

	boundBytes := km.Params.BoundBlockBytes()
	body := len(ciphertext) - integrity.TagSize
	if body < boundBytes || body%boundBytes != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not blocks plus tag",
			chaoskey.ErrInvalidParameter, len(ciphertext))
	}

	tagKey, err := integrity.DeriveKey(km.Seed, integrity.ContextCiphertext)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(tagKey)
	if !integrity.Verify(tagKey, ciphertext[:body], ciphertext[body:]) {
		return nil, fmt.Errorf("%w: ciphertext tag mismatch", chaoskey.ErrIntegrityFailure)
	}

	schedule, err := ladder.DeriveSchedule(km)
	if err != nil {
		return nil, err
	}

	blockBytes := km.Params.BlockBytes()
	blocks := body / boundBytes
	logChaos("decrypt: %d blocks", blocks)

	buf := make([]byte, 0, blocks*blockBytes)
	for i := 0; i < blocks; i++ {
		rows := schedule[i%len(schedule)]
		block, err := ladder.Unbind(rows, ciphertext[i*boundBytes:(i+1)*boundBytes])
		if err != nil {
			utils.Zeroize(buf)
			return nil, err
		}
		buf = append(buf, block...)
	}
	defer utils.Zeroize(buf)

	box, err := sbox.New(km)
	if err != nil {
		return nil, err
	}
	box.InvertInPlace(buf)

	st := chaos.Seed(km)
	ks := chaos.NextN(st, len(buf))
	for i := range buf {
		buf[i] ^= ks[i]
	}
	utils.Zeroize(ks)

	return unpad(buf)
}

// pad frames the plaintext with a 4-byte little-endian length prefix and
// zero-fills to a whole number of blocks. Every input, including the empty
// message, occupies at least one block.
func pad(plaintext []byte, blockBytes int) []byte {
	total := 4 + len(plaintext)
	if rem := total % blockBytes; rem != 0 {
		total += blockBytes - rem
	}
	buf := make([]byte, total)
	binary.LittleEndian.PutUint32(buf, uint32(len(plaintext)))
	copy(buf[4:], plaintext)
	return buf
}

// unpad recovers the exact original plaintext from a padded buffer.
func unpad(buf []byte) ([]byte, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("%w: padded buffer shorter than length prefix", chaoskey.ErrInvalidParameter)
	}
	n := binary.LittleEndian.Uint32(buf)
	if int(n) > len(buf)-4 {
		return nil, fmt.Errorf("%w: recorded length %d exceeds payload", chaoskey.ErrInvalidParameter, n)
	}
	return append([]byte{}, buf[4:4+n]...), nil
}

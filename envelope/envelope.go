// Package envelope implements the textual boundary format for chaos-key
// blobs: marker header and footer lines around a hex payload folded at a
// fixed column width. The core packages only ever see the decoded binary
// blob; this package is the whole of the textual surface.
package envelope

import (
	"encoding/hex"
	"fmt"
	"strings"

	chaoskey "github.com/BackendStack21/chaos-key-go"
	"github.com/BackendStack21/chaos-key-go/utils"
)

// Envelope labels.
const (
	LabelChaosKey   = "CHAOS KEY"
	LabelCiphertext = "CIPHERTEXT"
)

// foldWidth is the column at which the hex payload is line-folded.
const foldWidth = 64

// Wrap encodes a binary blob into the textual envelope for the given label.
func Wrap(label string, blob []byte) string {
	encoded := hex.EncodeToString(blob)

	var b strings.Builder
	b.Grow(len(encoded) + len(encoded)/foldWidth + 2*len(label) + 32)
	fmt.Fprintf(&b, "--- BEGIN %s ---\n", label)
	for len(encoded) > foldWidth {
		b.WriteString(encoded[:foldWidth])
		b.WriteByte('\n')
		encoded = encoded[foldWidth:]
	}
	b.WriteString(encoded)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "--- END %s ---\n", label)
	return b.String()
}

// Unwrap decodes a textual envelope back into the binary blob. The marker
// lines must match the label exactly; payload lines must be hex and no
// wider than the fold width. All failures are ErrInvalidParameter.
func Unwrap(label, text string) ([]byte, error) {
	if err := utils.CheckLength(len(text), 2*utils.MaxPayloadLength); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", chaoskey.ErrInvalidParameter, err)
	}

	header := fmt.Sprintf("--- BEGIN %s ---", label)
	footer := fmt.Sprintf("--- END %s ---", label)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	if len(lines) < 3 {
		return nil, fmt.Errorf("%w: envelope has no payload", chaoskey.ErrInvalidParameter)
	}
	if lines[0] != header {
		return nil, fmt.Errorf("%w: missing %q header", chaoskey.ErrInvalidParameter, header)
	}
	if lines[len(lines)-1] != footer {
		return nil, fmt.Errorf("%w: missing %q footer", chaoskey.ErrInvalidParameter, footer)
	}

	var encoded strings.Builder
	for _, line := range lines[1 : len(lines)-1] {
		if len(line) > foldWidth {
			return nil, fmt.Errorf("%w: payload line exceeds %d columns", chaoskey.ErrInvalidParameter, foldWidth)
		}
		encoded.WriteString(line)
	}

	blob, err := hex.DecodeString(encoded.String())
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not hex: %v", chaoskey.ErrInvalidParameter, err)
	}
	return blob, nil
}

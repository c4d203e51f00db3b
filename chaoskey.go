// Package chaoskey implements the chaos-key symmetric cipher engine.
// This package provides the shared types and high-level exports for key
// generation and authenticated encryption built from a chaotic keystream,
// a key-derived substitution box, and a Montgomery-ladder binding of
// lattice rows of large primes.
package chaoskey

// Re-export summary. Users can also import specific sub-packages directly
// for more control.

// Version of the chaos-key Go implementation.
const Version = "1.0.0"

// API summary:
//
// Key material:
//   - keymat.Generate(bitSize) - Generate tagged chaos-key material
//   - keymat.Verify(km) - Recompute and check the integrity tag
//   - keymat.Serialize(km) / keymat.Deserialize(blob) - Canonical binary form
//
// Encryption:
//   - cipher.Encrypt(km, plaintext) - Keystream + S-box + ladder binding + tag
//   - cipher.Decrypt(km, ciphertext) - Tag verify first, then reverse pipeline
//
// Parameters:
//   - core.DefaultParams(bitSize) - Derived parameter set for a key size
//   - core.ValidateParams(params) - Consistency and security checks
//
// Boundary formats:
//   - envelope.Wrap / envelope.Unwrap - Textual key and ciphertext envelopes

package chaoskey

import "errors"

// Error taxonomy. Sub-packages wrap these sentinels with context via
// fmt.Errorf("%w: ...") so callers can classify failures with errors.Is.
var (
	// ErrInvalidParameter indicates a rejected input: bad bit size,
	// mismatched bits argument, or a malformed envelope or blob.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrIntegrityFailure indicates a key or ciphertext tag mismatch.
	// Operations failing with it never return partial plaintext.
	ErrIntegrityFailure = errors.New("integrity failure")

	// ErrOutOfRange indicates a residue outside the binder's valid domain.
	// It means key material is malformed past verification and the
	// operation is not recoverable.
	ErrOutOfRange = errors.New("value out of range")

	// ErrRandomnessUnavailable indicates the secure randomness source
	// failed. It is never retried silently.
	ErrRandomnessUnavailable = errors.New("randomness unavailable")
)

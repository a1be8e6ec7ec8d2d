package pkpsig

import (
	"errors"
)

// Returned by decoders when the input is not a valid encoding. This is
// an expected outcome for corrupted or forged signatures; Verify maps it
// to a false result.
var ErrDecodingMismatch = errors.New("pkpsig: decoding mismatch")

// Returned when a protocol run is driven with an out-of-range
// challenge. This is a bug in the caller, not a verification outcome.
var ErrContractViolation = errors.New("pkpsig: protocol contract violation")

// Returned when a key cannot be decoded, or when a signing key fails its
// checksum.
var ErrInvalidKey = errors.New("pkpsig: invalid key")

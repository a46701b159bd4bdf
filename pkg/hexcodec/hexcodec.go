// Copyright 2025 Certen Protocol
//
// Package hexcodec provides the shared hex <-> bytes contract that every
// fixed-length Olivia value (seeds, public keys, nonces, attestation
// scalars, signatures) builds its text/JSON encoding on top of.
package hexcodec

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Sentinel error kinds. Callers that layer additional structural
// validation on top of DecodeFixed (off-curve points, non-canonical
// scalars) should return ErrInvalidEncoding for those failures.
var (
	ErrInvalidHex      = errors.New("hexcodec: invalid hex")
	ErrInvalidLength   = errors.New("hexcodec: invalid length")
	ErrInvalidEncoding = errors.New("hexcodec: invalid encoding")
)

// DecodeFixed decodes h as hex (either letter case is accepted) and
// requires the result to be exactly size bytes.
func DecodeFixed(h string, size int) ([]byte, error) {
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	if len(b) != size {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(b), size)
	}
	return b, nil
}

// Validator checks that decoded bytes represent a structurally valid T
// (an on-curve point, a canonical scalar, a well-formed signature) and
// returns a descriptive error otherwise. DecodeValidated wraps any
// failure as ErrInvalidEncoding.
type Validator func([]byte) error

// DecodeValidated decodes h as fixed-length hex, then runs validate
// against the result. A hex or length failure surfaces as ErrInvalidHex
// / ErrInvalidLength; a validate failure — bytes of the right length
// that still don't decode to a valid T, e.g. a non-canonical scalar or
// an off-curve point — surfaces as ErrInvalidEncoding.
func DecodeValidated(h string, size int, validate Validator) ([]byte, error) {
	b, err := DecodeFixed(h, size)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(b); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
	}
	return b, nil
}

// Encode renders b as lowercase hex.
func Encode(b []byte) string {
	return hex.EncodeToString(b)
}

// Package fingerprint computes the fixed-length digests recorded on the ledger.
//
// Both digests are lowercase hex SHA-256. The embedding digest covers the
// little-endian IEEE-754 float64 encoding of each component in order, so a
// bit-identical vector always yields the same fingerprint and any change to a
// single component yields a different one. It is not distance aware.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/chainsafe/faceauth-middleware/pkg/identity"
)

// Length is the number of hex characters in every fingerprint.
const Length = sha256.Size * 2

// ErrInvalidInput is returned for empty or non-finite embeddings.
var ErrInvalidInput = errors.New("invalid embedding")

// Embedding returns the fingerprint of e.
func Embedding(e identity.Embedding) (string, error) {
	if len(e) == 0 {
		return "", fmt.Errorf("%w: empty vector", ErrInvalidInput)
	}

	buf := make([]byte, 8*len(e))
	for i, v := range e {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("%w: component %d is not finite", ErrInvalidInput, i)
		}
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}

	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:]), nil
}

// Password returns the fingerprint of the UTF-8 bytes of password.
func Password(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Valid reports whether s has the shape of a fingerprint.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

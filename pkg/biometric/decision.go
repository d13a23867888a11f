// Package biometric decides whether a fresh capture matches a registered face.
package biometric

import (
	"errors"
	"fmt"
	"math"

	"github.com/chainsafe/faceauth-middleware/pkg/fingerprint"
	"github.com/chainsafe/faceauth-middleware/pkg/identity"
)

// DefaultTolerance is the largest euclidean distance treated as the same face.
const DefaultTolerance = 0.6

// ErrDimensionMismatch is returned when two embeddings cannot be compared.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Path identifies which comparison produced a decision.
type Path string

const (
	// PathSimilarity compares embeddings by distance.
	PathSimilarity Path = "similarity"
	// PathDegraded compares fingerprints exactly because no embedding is stored.
	PathDegraded Path = "degraded"
)

// Decision is the outcome of a biometric comparison.
type Decision struct {
	Match bool
	Path  Path
	// Distance is only set on PathSimilarity.
	Distance float64
	// CandidateFingerprint is the fingerprint of the fresh capture.
	CandidateFingerprint string
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b identity.Embedding) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Engine applies the match policy.
type Engine struct {
	tolerance float64
}

// NewEngine returns an Engine with the given tolerance; non-positive values
// fall back to DefaultTolerance.
func NewEngine(tolerance float64) *Engine {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Engine{tolerance: tolerance}
}

// Tolerance returns the configured distance threshold.
func (e *Engine) Tolerance() float64 {
	return e.tolerance
}

// Decide compares candidate against the stored state of one identity.
//
// When stored is non-nil the decision is distance <= tolerance. Otherwise the
// candidate fingerprint must equal storedFingerprint exactly. The candidate
// fingerprint is always computed so callers can audit the attempt.
func (e *Engine) Decide(candidate, stored identity.Embedding, storedFingerprint string) (Decision, error) {
	fp, err := fingerprint.Embedding(candidate)
	if err != nil {
		return Decision{}, err
	}

	if stored != nil {
		dist, err := Distance(stored, candidate)
		if err != nil {
			return Decision{}, err
		}
		return Decision{
			Match:                dist <= e.tolerance,
			Path:                 PathSimilarity,
			Distance:             dist,
			CandidateFingerprint: fp,
		}, nil
	}

	return Decision{
		Match:                fp == storedFingerprint,
		Path:                 PathDegraded,
		CandidateFingerprint: fp,
	}, nil
}

package identity

import (
	"strings"
	"time"
)

// Embedding is one detected face as an ordered feature vector.
type Embedding []float64

// Clone returns a copy that shares no memory with e.
func (e Embedding) Clone() Embedding {
	if e == nil {
		return nil
	}
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}

// Identity is the ledger-side credential record.
type Identity struct {
	Username            string
	PasswordFingerprint string
	FaceFingerprint     string
}

// Record is a similarity index entry.
type Record struct {
	Username  string
	Embedding Embedding
	CreatedAt time.Time
}

// NormalizeUsername trims surrounding whitespace. Usernames are otherwise
// opaque and case-sensitive.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string
	Password string
	Image    []byte
}

// RegisterResponse represents a registration response
type RegisterResponse struct {
	Username            string `json:"username"`
	PasswordFingerprint string `json:"password_fingerprint"`
	FaceFingerprint     string `json:"face_fingerprint"`
}

// VerifyRequest represents a verification request
type VerifyRequest struct {
	Username string
	Password string
	Image    []byte
}

// VerifyResult is the outcome of a successful verification.
// FaceFingerprint is computed from the fresh capture, not read from the ledger.
type VerifyResult struct {
	Username                   string  `json:"username"`
	PasswordFingerprint        string  `json:"password_fingerprint"`
	FaceFingerprint            string  `json:"face_fingerprint"`
	MatchedViaDegradedFallback bool    `json:"matched_via_degraded_fallback"`
	Distance                   float64 `json:"distance,omitempty"`
}

// Stats summarises both stores. LedgerUsers is nil when the ledger cannot
// count identities.
type Stats struct {
	LedgerUsers  *uint64 `json:"ledger_users,omitempty"`
	IndexRecords int     `json:"index_records"`
}

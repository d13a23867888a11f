// Package ledger defines the credential ledger contract consumed by the
// registration and verification flows.
package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/chainsafe/faceauth-middleware/pkg/identity"
)

var (
	// ErrNotFound is returned by GetCredential for unknown usernames.
	ErrNotFound = errors.New("identity not registered on ledger")
	// ErrUnavailable means the ledger could not be reached. Nothing was submitted.
	ErrUnavailable = errors.New("ledger unavailable")
	// ErrTimeout means a registration was submitted but its outcome was not
	// observed before the wait ended. The write may still land.
	ErrTimeout = errors.New("ledger commit outcome unknown")
)

// Reason classifies a rejected registration.
type Reason int

const (
	// ReasonNone is set on committed receipts.
	ReasonNone Reason = iota
	// ReasonDuplicate means the username is already registered.
	ReasonDuplicate
	// ReasonValidation means the ledger refused the field values.
	ReasonValidation
	// ReasonNotFound means the ledger reported the identity as missing.
	ReasonNotFound
	// ReasonUnknownRevert covers any other rejection.
	ReasonUnknownRevert
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonDuplicate:
		return "duplicate"
	case ReasonValidation:
		return "validation"
	case ReasonNotFound:
		return "not_found"
	default:
		return "unknown_revert"
	}
}

// Receipt is the outcome of a registration the ledger answered definitively.
type Receipt struct {
	Committed bool
	Reason    Reason
	// Detail is the raw revert message for logs only.
	Detail      string
	TxHash      string
	BlockNumber uint64
}

// Ledger is the authoritative credential store.
//
// RegisterCredential blocks until the write is committed or rejected. A
// definitive answer is returned as a Receipt with a nil error. Transport
// failures before submission wrap ErrUnavailable; an unobserved outcome after
// submission, including cancellation of ctx, wraps ErrTimeout.
type Ledger interface {
	IsRegistered(ctx context.Context, username string) (bool, error)
	GetCredential(ctx context.Context, username string) (*identity.Identity, error)
	RegisterCredential(ctx context.Context, cred identity.Identity) (Receipt, error)
}

// Counter is implemented by ledgers that can report how many identities exist.
type Counter interface {
	UserCount(ctx context.Context) (uint64, error)
}

// Enumerator is implemented by ledgers that can list registered usernames.
type Enumerator interface {
	Usernames(ctx context.Context) ([]string, error)
}

// Revert messages emitted by the FaceAuth contract.
const (
	RevertUserExists    = "User already exists"
	RevertUserNotExists = "User does not exist"
	revertEmptySuffix   = "cannot be empty"
)

// ClassifyRevert maps a contract revert message to a Reason. This is the only
// place revert text is interpreted.
func ClassifyRevert(msg string) Reason {
	switch {
	case strings.Contains(msg, RevertUserExists):
		return ReasonDuplicate
	case strings.Contains(msg, revertEmptySuffix):
		return ReasonValidation
	case strings.Contains(msg, RevertUserNotExists):
		return ReasonNotFound
	default:
		return ReasonUnknownRevert
	}
}

// Rejected builds a non-committed receipt for a revert message.
func Rejected(msg string) Receipt {
	return Receipt{Reason: ClassifyRevert(msg), Detail: msg}
}

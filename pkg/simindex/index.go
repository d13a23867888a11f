// Package simindex is the local similarity index: a mutable username to
// embedding side store. It is never authoritative for whether an identity
// exists; the ledger is.
package simindex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainsafe/faceauth-middleware/pkg/identity"
)

var (
	// ErrNotFound is returned by Get when no record exists for the username.
	ErrNotFound = errors.New("similarity record not found")
	// ErrUnavailable means the backing store could not be reached.
	ErrUnavailable = errors.New("similarity index unavailable")
	// ErrDimensions is returned by Put for embeddings of the wrong length.
	ErrDimensions = errors.New("embedding has wrong dimensions")
)

// Index stores one embedding per username. Put is an upsert (last write
// wins) that stamps the record with a new CreatedAt, and Delete of a missing
// username is not an error. All writes are atomic per key.
//
// DeleteIfCreatedAt removes the record only while its CreatedAt still equals
// createdAt, so a record rewritten since it was read survives. It reports
// whether a record was removed.
type Index interface {
	Put(ctx context.Context, username string, embedding identity.Embedding) error
	Get(ctx context.Context, username string) (*identity.Record, error)
	Delete(ctx context.Context, username string) error
	DeleteIfCreatedAt(ctx context.Context, username string, createdAt time.Time) (bool, error)
	Usernames(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

func checkDimensions(dims int, embedding identity.Embedding) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding", ErrDimensions)
	}
	if dims > 0 && len(embedding) != dims {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensions, len(embedding), dims)
	}
	return nil
}

func toFloat32(e identity.Embedding) []float32 {
	out := make([]float32, len(e))
	for i, v := range e {
		out[i] = float32(v)
	}
	return out
}

func fromFloat32(v []float32) identity.Embedding {
	out := make(identity.Embedding, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

// Package extractor talks to the face feature extraction service.
package extractor

import (
	"context"
	"errors"

	"github.com/chainsafe/faceauth-middleware/pkg/identity"
)

// ErrNoFace is returned when the image contains no usable face.
var ErrNoFace = errors.New("no face detected")

// Extractor converts an image into the embedding of its first detected face.
type Extractor interface {
	Extract(ctx context.Context, image []byte) (identity.Embedding, error)
}

// Func adapts a function to Extractor.
type Func func(ctx context.Context, image []byte) (identity.Embedding, error)

// Extract calls f.
func (f Func) Extract(ctx context.Context, image []byte) (identity.Embedding, error) {
	return f(ctx, image)
}

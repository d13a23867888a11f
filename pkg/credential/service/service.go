// Package service implements password plus face registration and
// verification across the credential ledger and the similarity index.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/faceauth-middleware/internal/metrics"
	"github.com/chainsafe/faceauth-middleware/pkg/biometric"
	"github.com/chainsafe/faceauth-middleware/pkg/config"
	"github.com/chainsafe/faceauth-middleware/pkg/identity"
	"github.com/chainsafe/faceauth-middleware/pkg/ledger"
)

// Ledger is the authoritative credential store.
//
//go:generate mockery --name Ledger --output mocks --outpkg mocks --filename mock_ledger.go --with-expecter
type Ledger interface {
	IsRegistered(ctx context.Context, username string) (bool, error)
	GetCredential(ctx context.Context, username string) (*identity.Identity, error)
	RegisterCredential(ctx context.Context, cred identity.Identity) (ledger.Receipt, error)
}

// Index is the narrow similarity index interface the service writes through.
//
//go:generate mockery --name Index --output mocks --outpkg mocks --filename mock_index.go --with-expecter
type Index interface {
	Put(ctx context.Context, username string, embedding identity.Embedding) error
	Get(ctx context.Context, username string) (*identity.Record, error)
	DeleteIfCreatedAt(ctx context.Context, username string, createdAt time.Time) (bool, error)
	Count(ctx context.Context) (int, error)
}

// Extractor turns an image into the embedding of its first face.
//
//go:generate mockery --name Extractor --output mocks --outpkg mocks --filename mock_extractor.go --with-expecter
type Extractor interface {
	Extract(ctx context.Context, image []byte) (identity.Embedding, error)
}

// Watcher is told about usernames that need a reconciliation check even
// though they may have no similarity record.
type Watcher interface {
	Watch(username string)
}

// Tombstones remembers usernames whose orphaned similarity record was
// removed, by this service or by the reconciler.
type Tombstones interface {
	Bury(username string)
	Buried(username string) bool
	Clear(username string)
}

// Service defines the interface for the credential business logic
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	Register(ctx context.Context, req *identity.RegisterRequest) (*identity.RegisterResponse, error)
	Verify(ctx context.Context, req *identity.VerifyRequest) (*identity.VerifyResult, error)
	Stats(ctx context.Context) (*identity.Stats, error)
}

// Options tune the commit protocol.
type Options struct {
	// RecheckTimeout bounds ledger queries issued after the caller's wait
	// ended, including the outcome re-check after a timeout or cancellation.
	RecheckTimeout time.Duration
	Visibility     config.VisibilityConfig
}

type credentialService struct {
	ledger     Ledger
	index      Index
	extractor  Extractor
	engine     *biometric.Engine
	watcher    Watcher
	tombstones Tombstones
	opts       Options
	logger     *zap.Logger
}

// NewService creates a new credential service. watcher and tombstones may be
// nil.
func NewService(
	l Ledger,
	index Index,
	extractor Extractor,
	engine *biometric.Engine,
	watcher Watcher,
	tombstones Tombstones,
	opts Options,
	logger *zap.Logger,
) Service {
	return &credentialService{
		ledger:     l,
		index:      index,
		extractor:  extractor,
		engine:     engine,
		watcher:    watcher,
		tombstones: tombstones,
		opts:       opts,
		logger:     logger,
	}
}

// Stats returns the ledger identity count, when available, and the index size.
func (s *credentialService) Stats(ctx context.Context) (*identity.Stats, error) {
	out := &identity.Stats{}

	if counter, ok := s.ledger.(ledger.Counter); ok {
		n, err := counter.UserCount(ctx)
		if err != nil {
			return nil, ledgerUnavailableError(err)
		}
		out.LedgerUsers = &n
	}

	n, err := s.index.Count(ctx)
	if err != nil {
		return nil, internalError(fmt.Errorf("failed to count similarity records: %w", err))
	}
	out.IndexRecords = n
	return out, nil
}

func (s *credentialService) watch(username string) {
	if s.watcher != nil {
		s.watcher.Watch(username)
	}
}

func (s *credentialService) bury(username string) {
	if s.tombstones != nil {
		s.tombstones.Bury(username)
	}
}

func (s *credentialService) buried(username string) bool {
	return s.tombstones != nil && s.tombstones.Buried(username)
}

func (s *credentialService) unbury(username string) {
	if s.tombstones != nil {
		s.tombstones.Clear(username)
	}
}

// deleteOrphan removes rec unless it was rewritten since it was read. It
// reports whether the record is gone.
func (s *credentialService) deleteOrphan(ctx context.Context, rec *identity.Record, source string) bool {
	deleted, err := s.index.DeleteIfCreatedAt(ctx, rec.Username, rec.CreatedAt)
	if err != nil {
		s.logger.Error("Failed to delete orphaned similarity record",
			zap.String("username", rec.Username),
			zap.Error(err))
		return false
	}
	if !deleted {
		s.logger.Info("Similarity record rewritten during orphan check, kept",
			zap.String("username", rec.Username))
		return false
	}
	s.bury(rec.Username)
	metrics.OrphansRemoved.WithLabelValues(source).Inc()
	s.logger.Info("Deleted orphaned similarity record", zap.String("username", rec.Username))
	return true
}

// detached returns a context that survives cancellation of ctx, bounded by
// the recheck timeout.
func (s *credentialService) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.opts.RecheckTimeout)
}

func validateInput(username, password string, image []byte) error {
	switch {
	case username == "":
		return validationError("username is required")
	case password == "":
		return validationError("password is required")
	case len(image) == 0:
		return validationError("face image is required")
	}
	return nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"go.uber.org/zap"

	"github.com/chainsafe/faceauth-middleware/internal/metrics"
	"github.com/chainsafe/faceauth-middleware/pkg/biometric"
	"github.com/chainsafe/faceauth-middleware/pkg/extractor"
	"github.com/chainsafe/faceauth-middleware/pkg/fingerprint"
	"github.com/chainsafe/faceauth-middleware/pkg/identity"
	"github.com/chainsafe/faceauth-middleware/pkg/ledger"
	"github.com/chainsafe/faceauth-middleware/pkg/simindex"
)

// Verify authenticates username by password and then by face. It never
// writes to either store except to delete an orphaned similarity record.
func (s *credentialService) Verify(
	ctx context.Context,
	req *identity.VerifyRequest,
) (res *identity.VerifyResult, err error) {
	path := "none"
	defer func() {
		metrics.VerificationsTotal.WithLabelValues(path, Code(err)).Inc()
	}()

	username := identity.NormalizeUsername(req.Username)
	if err = validateInput(username, req.Password, req.Image); err != nil {
		return nil, err
	}

	registered, err := s.ledger.IsRegistered(ctx, username)
	if err != nil {
		return nil, ledgerUnavailableError(err)
	}
	if !registered {
		if err = s.unknownIdentity(ctx, username); err != nil {
			return nil, err
		}
	}

	stored, err := s.ledger.GetCredential(ctx, username)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, notFoundError(username)
		}
		return nil, ledgerUnavailableError(err)
	}

	passwordFP := fingerprint.Password(req.Password)
	if subtle.ConstantTimeCompare([]byte(passwordFP), []byte(stored.PasswordFingerprint)) != 1 {
		return nil, authenticationError(ErrInvalidCredential)
	}

	embedding, err := s.extractor.Extract(ctx, req.Image)
	if err != nil {
		if errors.Is(err, extractor.ErrNoFace) {
			return nil, noFaceError(err)
		}
		return nil, extractorError(err)
	}

	decision, err := s.engine.Decide(embedding, s.storedEmbedding(ctx, username), stored.FaceFingerprint)
	if err != nil {
		return nil, internalError(err)
	}
	path = string(decision.Path)

	if decision.Path == biometric.PathDegraded {
		metrics.DegradedVerifications.Inc()
		s.watch(username)
		s.logger.Warn("Verification used degraded exact fingerprint fallback",
			zap.String("username", username),
			zap.Bool("match", decision.Match))
	}

	if !decision.Match {
		return nil, authenticationError(ErrBiometricMismatch)
	}

	return &identity.VerifyResult{
		Username:                   username,
		PasswordFingerprint:        passwordFP,
		FaceFingerprint:            decision.CandidateFingerprint,
		MatchedViaDegradedFallback: decision.Path == biometric.PathDegraded,
		Distance:                   decision.Distance,
	}, nil
}

// storedEmbedding returns the similarity record for username, or nil when
// there is none. An unreadable index is treated as an absent record.
func (s *credentialService) storedEmbedding(ctx context.Context, username string) identity.Embedding {
	rec, err := s.index.Get(ctx, username)
	if err != nil {
		if !errors.Is(err, simindex.ErrNotFound) {
			s.logger.Warn("Similarity index read failed, falling back to degraded verification",
				zap.String("username", username),
				zap.Error(err))
		}
		return nil
	}
	return rec.Embedding
}

// unknownIdentity runs when the ledger does not know username. It tells a
// user who never registered apart from one whose registration was abandoned:
// an orphaned similarity record, or the tombstone of one already removed,
// yields RegistrationIncomplete. The record is read before the ledger is asked
// again and is only deleted if it was not rewritten meanwhile. A nil return
// means the identity became visible and verification can proceed.
func (s *credentialService) unknownIdentity(ctx context.Context, username string) error {
	rec, err := s.index.Get(ctx, username)
	if err != nil {
		if !errors.Is(err, simindex.ErrNotFound) {
			s.logger.Warn("Orphan check failed", zap.String("username", username), zap.Error(err))
		}
		if s.buried(username) {
			return incompleteError(username)
		}
		return notFoundError(username)
	}

	registered, err := s.ledger.IsRegistered(ctx, username)
	if err != nil {
		return ledgerUnavailableError(err)
	}
	if registered {
		return nil
	}

	s.deleteOrphan(ctx, rec, "verify")
	return incompleteError(username)
}

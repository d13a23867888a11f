package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/chainsafe/faceauth-middleware/internal/metrics"
	"github.com/chainsafe/faceauth-middleware/pkg/extractor"
	"github.com/chainsafe/faceauth-middleware/pkg/fingerprint"
	"github.com/chainsafe/faceauth-middleware/pkg/identity"
	"github.com/chainsafe/faceauth-middleware/pkg/ledger"
	"github.com/chainsafe/faceauth-middleware/pkg/simindex"
)

var errNotVisible = errors.New("identity not yet visible on ledger")

// Register records a new identity on the ledger and then in the similarity
// index.
//
// The registration process:
//  1. Validates the request
//  2. Rejects usernames the ledger already knows (optimistic, the ledger decides)
//  3. Computes the password fingerprint
//  4. Extracts the face embedding
//  5. Computes the face fingerprint
//  6. Commits the credential to the ledger and waits for the outcome
//  7. Reads the identity back until the ledger shows it
//  8. Stores the embedding in the similarity index
//
// Nothing is written locally before step 6 confirms. A failure in step 8 is
// logged and handed to the reconciler; the registration still succeeds.
func (s *credentialService) Register(
	ctx context.Context,
	req *identity.RegisterRequest,
) (resp *identity.RegisterResponse, err error) {
	defer func() {
		metrics.RegistrationsTotal.WithLabelValues(Code(err)).Inc()
	}()

	username := identity.NormalizeUsername(req.Username)
	if err = validateInput(username, req.Password, req.Image); err != nil {
		return nil, err
	}

	registered, err := s.ledger.IsRegistered(ctx, username)
	if err != nil {
		return nil, ledgerUnavailableError(err)
	}
	if registered {
		return nil, duplicateError(username)
	}

	cred, embedding, err := s.prepare(ctx, username, req.Password, req.Image)
	if err != nil {
		return nil, err
	}

	visible, err := s.commit(ctx, cred)
	if err != nil {
		return nil, err
	}
	s.unbury(username)

	if !visible {
		if err = s.awaitVisibility(ctx, username); err != nil {
			s.logger.Error("Committed registration is not visible on ledger",
				zap.String("username", username),
				zap.Error(err))
			s.watch(username)
			return nil, inconsistentError(username)
		}
	}

	s.storeEmbedding(ctx, username, embedding)

	return &identity.RegisterResponse{
		Username:            cred.Username,
		PasswordFingerprint: cred.PasswordFingerprint,
		FaceFingerprint:     cred.FaceFingerprint,
	}, nil
}

// prepare runs steps 3 to 5. It has no side effects.
func (s *credentialService) prepare(
	ctx context.Context,
	username, password string,
	image []byte,
) (identity.Identity, identity.Embedding, error) {
	passwordFP := fingerprint.Password(password)

	embedding, err := s.extractor.Extract(ctx, image)
	if err != nil {
		if errors.Is(err, extractor.ErrNoFace) {
			return identity.Identity{}, nil, noFaceError(err)
		}
		return identity.Identity{}, nil, extractorError(err)
	}

	faceFP, err := fingerprint.Embedding(embedding)
	if err != nil {
		return identity.Identity{}, nil, internalError(err)
	}
	if !fingerprint.Valid(faceFP) || !fingerprint.Valid(passwordFP) {
		return identity.Identity{}, nil, internalError(fmt.Errorf("malformed fingerprint for %q", username))
	}

	return identity.Identity{
		Username:            username,
		PasswordFingerprint: passwordFP,
		FaceFingerprint:     faceFP,
	}, embedding, nil
}

// commit runs step 6. visible reports whether the outcome re-check already
// observed the identity on the ledger, which makes step 7 redundant.
func (s *credentialService) commit(ctx context.Context, cred identity.Identity) (visible bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, ledgerUnavailableError(err)
	}

	start := time.Now()
	receipt, err := s.ledger.RegisterCredential(ctx, cred)
	observe := func(outcome string) {
		metrics.LedgerCommitDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}

	switch {
	case err == nil && receipt.Committed:
		observe("committed")
		s.logger.Info("Registration committed on ledger",
			zap.String("username", cred.Username),
			zap.String("tx_hash", receipt.TxHash),
			zap.Uint64("block", receipt.BlockNumber))
		return false, nil

	case err == nil:
		observe("rejected")
		s.logger.Warn("Ledger rejected registration",
			zap.String("username", cred.Username),
			zap.Stringer("reason", receipt.Reason),
			zap.String("detail", receipt.Detail))
		if receipt.Reason == ledger.ReasonDuplicate {
			return false, duplicateError(cred.Username)
		}
		s.cleanupOrphan(ctx, cred.Username)
		return false, ledgerRejectError(fmt.Errorf("%s: %s", receipt.Reason, receipt.Detail))

	case errors.Is(err, ledger.ErrTimeout) || isCancellation(err):
		observe("timeout")
		return s.recheckOutcome(ctx, cred, err)

	default:
		observe("unavailable")
		s.cleanupOrphan(ctx, cred.Username)
		return false, ledgerUnavailableError(err)
	}
}

// recheckOutcome resolves a submission whose outcome was not observed. The
// write may have landed on its own, so the ledger is asked again on a
// context the caller cannot cancel.
func (s *credentialService) recheckOutcome(ctx context.Context, cred identity.Identity, cause error) (bool, error) {
	rctx, cancel := s.detached(ctx)
	defer cancel()

	registered, err := s.ledger.IsRegistered(rctx, cred.Username)
	if err != nil || !registered {
		s.logger.Warn("Registration outcome unknown after commit wait",
			zap.String("username", cred.Username),
			zap.Bool("registered", registered),
			zap.NamedError("recheck_error", err),
			zap.Error(cause))
		s.watch(cred.Username)
		return false, ledgerTimeoutError(cause)
	}

	stored, err := s.ledger.GetCredential(rctx, cred.Username)
	if err != nil {
		s.watch(cred.Username)
		return false, ledgerTimeoutError(fmt.Errorf("%w; read back failed: %w", cause, err))
	}
	if stored.PasswordFingerprint != cred.PasswordFingerprint || stored.FaceFingerprint != cred.FaceFingerprint {
		return false, duplicateError(cred.Username)
	}

	s.logger.Info("Registration landed after commit wait ended", zap.String("username", cred.Username))
	return true, nil
}

// awaitVisibility runs step 7 with the configured bounded backoff.
func (s *credentialService) awaitVisibility(ctx context.Context, username string) error {
	vctx, cancel := s.detached(ctx)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.opts.Visibility.InitialBackoff
	policy.MaxInterval = s.opts.Visibility.MaxBackoff
	policy.MaxElapsedTime = 0

	attempts := s.opts.Visibility.Attempts
	if attempts < 1 {
		attempts = 1
	}

	checks := 0
	err := backoff.Retry(func() error {
		checks++
		ok, err := s.ledger.IsRegistered(vctx, username)
		if err != nil {
			return err
		}
		if !ok {
			return errNotVisible
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(attempts-1)), vctx)) //nolint:gosec

	if checks > 1 {
		metrics.VisibilityRetries.Add(float64(checks - 1))
	}
	return err
}

// storeEmbedding runs step 8. Failures are recorded, never returned.
func (s *credentialService) storeEmbedding(ctx context.Context, username string, embedding identity.Embedding) {
	pctx, cancel := s.detached(ctx)
	defer cancel()

	if err := s.index.Put(pctx, username, embedding); err != nil {
		metrics.IndexWriteFailures.Inc()
		s.logger.Error("Similarity index write failed after ledger commit, verification degraded until reconciled",
			zap.String("username", username),
			zap.Error(err))
		s.watch(username)
	}
}

// cleanupOrphan removes a similarity record left by an earlier failed attempt.
// The record is read first and only deleted if the ledger still does not know
// the username and nothing rewrote the record in between.
func (s *credentialService) cleanupOrphan(ctx context.Context, username string) {
	cctx, cancel := s.detached(ctx)
	defer cancel()

	rec, err := s.index.Get(cctx, username)
	if err != nil {
		if !errors.Is(err, simindex.ErrNotFound) {
			s.logger.Warn("Orphan check failed", zap.String("username", username), zap.Error(err))
		}
		return
	}
	registered, err := s.ledger.IsRegistered(cctx, username)
	if err != nil || registered {
		return
	}
	s.deleteOrphan(cctx, rec, "register")
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/chainsafe/faceauth-middleware/pkg/app/errors"
	"github.com/chainsafe/faceauth-middleware/pkg/fingerprint"
	"github.com/chainsafe/faceauth-middleware/pkg/identity"
	"github.com/chainsafe/faceauth-middleware/pkg/ledger"
	"github.com/chainsafe/faceauth-middleware/pkg/simindex"
)

var (
	imageRecapture = []byte("image-a-recapture")
	// faceA moved by 0.1 in one component
	faceARecapture = identity.Embedding{0.10, 0.20, 0.30, 0.50}
)

func verifyRequest(username string, image []byte) *identity.VerifyRequest {
	return &identity.VerifyRequest{Username: username, Password: password, Image: image}
}

func TestVerify_UnknownUser(t *testing.T) {
	f := newFixture(t)
	f.ledger.EXPECT().IsRegistered(mock.Anything, "bob").Return(false, nil)
	f.index.EXPECT().Get(mock.Anything, "bob").Return(nil, simindex.ErrNotFound)

	_, err := f.svc.Verify(context.Background(), verifyRequest("bob", imageA))
	requireCode(t, err, ErrNotFound, apperrors.CategoryResourceNotFound)
}

func TestVerify_OrphanRemoved(t *testing.T) {
	f := newFixture(t)
	f.ledger.EXPECT().IsRegistered(mock.Anything, "alice").Return(false, nil).Times(2)
	f.index.EXPECT().Get(mock.Anything, "alice").
		Return(&identity.Record{Username: "alice", Embedding: faceA, CreatedAt: stamp}, nil)
	f.index.EXPECT().DeleteIfCreatedAt(mock.Anything, "alice", stamp).Return(true, nil)

	_, err := f.svc.Verify(context.Background(), verifyRequest("alice", imageA))
	requireCode(t, err, ErrRegistrationIncomplete, apperrors.CategoryResourceNotFound)
	f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	assert.True(t, f.tombstones.Buried("alice"))
}

func TestVerify_TombstoneMeansIncomplete(t *testing.T) {
	f := newFixture(t)
	f.tombstones.Bury("alice")
	f.ledger.EXPECT().IsRegistered(mock.Anything, "alice").Return(false, nil)
	f.index.EXPECT().Get(mock.Anything, "alice").Return(nil, simindex.ErrNotFound)

	_, err := f.svc.Verify(context.Background(), verifyRequest("alice", imageA))
	requireCode(t, err, ErrRegistrationIncomplete, apperrors.CategoryResourceNotFound)
}

func TestVerify_OrphanRewrittenDuringCheckIsKept(t *testing.T) {
	f := newFixture(t)
	f.ledger.EXPECT().IsRegistered(mock.Anything, "alice").Return(false, nil).Times(2)
	f.index.EXPECT().Get(mock.Anything, "alice").
		Return(&identity.Record{Username: "alice", Embedding: faceA, CreatedAt: stamp}, nil)
	f.index.EXPECT().DeleteIfCreatedAt(mock.Anything, "alice", stamp).Return(false, nil)

	_, err := f.svc.Verify(context.Background(), verifyRequest("alice", imageA))
	requireCode(t, err, ErrRegistrationIncomplete, apperrors.CategoryResourceNotFound)
	assert.False(t, f.tombstones.Buried("alice"))
}

func TestVerify_RegistrationLandsDuringOrphanCheck(t *testing.T) {
	f := newFixture(t)
	cred := expectedCredential(t, "alice", faceA)
	rec := &identity.Record{Username: "alice", Embedding: faceA, CreatedAt: stamp}

	f.ledger.EXPECT().IsRegistered(mock.Anything, "alice").Return(false, nil).Once()
	f.ledger.EXPECT().IsRegistered(mock.Anything, "alice").Return(true, nil).Once()
	f.index.EXPECT().Get(mock.Anything, "alice").Return(rec, nil).Times(2)
	f.ledger.EXPECT().GetCredential(mock.Anything, "alice").Return(&cred, nil)
	f.extractor.EXPECT().Extract(mock.Anything, imageRecapture).Return(faceARecapture, nil)

	res, err := f.svc.Verify(context.Background(), verifyRequest("alice", imageRecapture))
	require.NoError(t, err)
	assert.False(t, res.MatchedViaDegradedFallback)
	f.index.AssertNotCalled(t, "DeleteIfCreatedAt", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_LedgerErrors(t *testing.T) {
	t.Run("is registered unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.ledger.EXPECT().IsRegistered(mock.Anything, "alice").Return(false, ledger.ErrUnavailable)

		_, err := f.svc.Verify(context.Background(), verifyRequest("alice", imageA))
		requireCode(t, err, ErrLedgerUnavailable, apperrors.CategoryRecovering)
	})

	t.Run("credential missing", func(t *testing.T) {
		f := newFixture(t)
		f.ledger.EXPECT().IsRegistered(mock.Anything, "alice").Return(true, nil)
		f.ledger.EXPECT().GetCredential(mock.Anything, "alice").Return(nil, ledger.ErrNotFound)

		_, err := f.svc.Verify(context.Background(), verifyRequest("alice", imageA))
		requireCode(t, err, ErrNotFound, apperrors.CategoryResourceNotFound)
	})

	t.Run("credential unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.ledger.EXPECT().IsRegistered(mock.Anything, "alice").Return(true, nil)
		f.ledger.EXPECT().GetCredential(mock.Anything, "alice").Return(nil, ledger.ErrUnavailable)

		_, err := f.svc.Verify(context.Background(), verifyRequest("alice", imageA))
		requireCode(t, err, ErrLedgerUnavailable, apperrors.CategoryRecovering)
	})
}

func TestVerify_WrongPassword(t *testing.T) {
	f := newFixture(t)
	cred := expectedCredential(t, "alice", faceA)
	f.ledger.EXPECT().IsRegistered(mock.Anything, "alice").Return(true, nil)
	f.ledger.EXPECT().GetCredential(mock.Anything, "alice").Return(&cred, nil)

	req := verifyRequest("alice", imageA)
	req.Password = "wrong"
	_, err := f.svc.Verify(context.Background(), req)

	requireCode(t, err, ErrInvalidCredential, apperrors.CategoryUnauthorized)
	assert.Equal(t, ReasonAuthenticationFailed, apperrors.ReasonOf(err))
	f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestVerify_SimilarityMatch(t *testing.T) {
	f := newFixture(t)
	cred := expectedCredential(t, "alice", faceA)
	f.ledger.EXPECT().IsRegistered(mock.Anything, "alice").Return(true, nil)
	f.ledger.EXPECT().GetCredential(mock.Anything, "alice").Return(&cred, nil)
	f.extractor.EXPECT().Extract(mock.Anything, imageRecapture).Return(faceARecapture, nil)
	f.index.EXPECT().Get(mock.Anything, "alice").Return(&identity.Record{Username: "alice", Embedding: faceA}, nil)

	res, err := f.svc.Verify(context.Background(), verifyRequest("alice", imageRecapture))
	require.NoError(t, err)

	wantFP, err := fingerprint.Embedding(faceARecapture)
	require.NoError(t, err)
	assert.Equal(t, "alice", res.Username)
	assert.Equal(t, cred.PasswordFingerprint, res.PasswordFingerprint)
	assert.Equal(t, wantFP, res.FaceFingerprint)
	assert.False(t, res.MatchedViaDegradedFallback)
	assert.InDelta(t, 0.1, res.Distance, 1e-9)
}

func TestVerify_SimilarityMismatch(t *testing.T) {
	f := newFixture(t)
	cred := expectedCredential(t, "alice", faceA)
	f.ledger.EXPECT().IsRegistered(mock.Anything, "alice").Return(true, nil)
	f.ledger.EXPECT().GetCredential(mock.Anything, "alice").Return(&cred, nil)
	f.extractor.EXPECT().Extract(mock.Anything, imageA).Return(faceB, nil)
	f.index.EXPECT().Get(mock.Anything, "alice").Return(&identity.Record{Username: "alice", Embedding: faceA}, nil)

	_, err := f.svc.Verify(context.Background(), verifyRequest("alice", imageA))
	requireCode(t, err, ErrBiometricMismatch, apperrors.CategoryUnauthorized)

	var svcErr *apperrors.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "authentication failed", svcErr.Message)
	assert.Equal(t, ReasonAuthenticationFailed, svcErr.Reason)
}

func TestVerify_DegradedFallback(t *testing.T) {
	tests := []struct {
		name      string
		indexErr  error
		candidate identity.Embedding
		wantErr   error
	}{
		{name: "missing record exact match", indexErr: simindex.ErrNotFound, candidate: faceA},
		{name: "unreadable index exact match", indexErr: simindex.ErrUnavailable, candidate: faceA},
		{name: "missing record recapture", indexErr: simindex.ErrNotFound, candidate: faceARecapture, wantErr: ErrBiometricMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			cred := expectedCredential(t, "alice", faceA)
			f.ledger.EXPECT().IsRegistered(mock.Anything, "alice").Return(true, nil)
			f.ledger.EXPECT().GetCredential(mock.Anything, "alice").Return(&cred, nil)
			f.extractor.EXPECT().Extract(mock.Anything, imageA).Return(tt.candidate, nil)
			f.index.EXPECT().Get(mock.Anything, "alice").Return(nil, tt.indexErr)

			res, err := f.svc.Verify(context.Background(), verifyRequest("alice", imageA))
			if tt.wantErr != nil {
				requireCode(t, err, tt.wantErr, apperrors.CategoryUnauthorized)
			} else {
				require.NoError(t, err)
				assert.True(t, res.MatchedViaDegradedFallback)
				assert.Equal(t, cred.FaceFingerprint, res.FaceFingerprint)
			}
			assert.True(t, f.watcher.watched("alice"))
		})
	}
}

func TestVerify_DimensionMismatchIsInternal(t *testing.T) {
	f := newFixture(t)
	cred := expectedCredential(t, "alice", faceA)
	f.ledger.EXPECT().IsRegistered(mock.Anything, "alice").Return(true, nil)
	f.ledger.EXPECT().GetCredential(mock.Anything, "alice").Return(&cred, nil)
	f.extractor.EXPECT().Extract(mock.Anything, imageA).Return(identity.Embedding{0.1, 0.2}, nil)
	f.index.EXPECT().Get(mock.Anything, "alice").Return(&identity.Record{Username: "alice", Embedding: faceA}, nil)

	_, err := f.svc.Verify(context.Background(), verifyRequest("alice", imageA))
	requireCode(t, err, ErrInternal, apperrors.CategoryGeneralError)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	f.index.EXPECT().Count(mock.Anything).Return(3, nil)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stats.LedgerUsers)
	assert.Equal(t, 3, stats.IndexRecords)
}

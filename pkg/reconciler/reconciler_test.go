package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/faceauth-middleware/pkg/config"
	"github.com/chainsafe/faceauth-middleware/pkg/identity"
	"github.com/chainsafe/faceauth-middleware/pkg/ledger"
	"github.com/chainsafe/faceauth-middleware/pkg/simindex"
)

var embedding = identity.Embedding{0.1, 0.2, 0.3}

func register(t *testing.T, l *ledger.Memory, username string) {
	t.Helper()
	receipt, err := l.RegisterCredential(context.Background(), identity.Identity{
		Username:            username,
		PasswordFingerprint: "pw-" + username,
		FaceFingerprint:     "face-" + username,
	})
	require.NoError(t, err)
	require.True(t, receipt.Committed)
}

func newReconciler(l Ledger, idx Index, w *Watchlist, discover bool) *Reconciler {
	return New(l, idx, w, nil, &config.ReconciliationConfig{
		Concurrency:        4,
		DiscoverFromLedger: discover,
	}, zap.NewNop())
}

func TestReconcileAll_RemovesOrphans(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(0)
	idx := simindex.NewMemory(3)

	register(t, l, "alice")
	require.NoError(t, idx.Put(ctx, "alice", embedding))
	require.NoError(t, idx.Put(ctx, "ghost", embedding))
	require.NoError(t, idx.Put(ctx, "phantom", embedding))

	r := newReconciler(l, idx, NewWatchlist(10), false)
	report, err := r.ReconcileAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, []string{"ghost", "phantom"}, report.Orphans)
	assert.Empty(t, report.Degraded)
	assert.Zero(t, report.Errors)

	names, err := idx.Usernames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, names)
	assert.Same(t, report, r.LastReport())
}

func TestReconcileAll_BuriesRemovedOrphans(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(0)
	idx := simindex.NewMemory(3)
	tombstones := NewTombstones(10)

	register(t, l, "alice")
	require.NoError(t, idx.Put(ctx, "alice", embedding))
	require.NoError(t, idx.Put(ctx, "ghost", embedding))

	r := New(l, idx, NewWatchlist(10), tombstones, &config.ReconciliationConfig{Concurrency: 2}, zap.NewNop())
	report, err := r.ReconcileAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"ghost"}, report.Orphans)
	assert.True(t, tombstones.Buried("ghost"))
	assert.False(t, tombstones.Buried("alice"))
}

// registeringLedger lets a registration for one username commit and write its
// similarity record right after the reconciler's last negative ledger read.
type registeringLedger struct {
	*ledger.Memory
	t        *testing.T
	index    *simindex.Memory
	username string
	misses   int
}

func (l *registeringLedger) IsRegistered(ctx context.Context, username string) (bool, error) {
	registered, err := l.Memory.IsRegistered(ctx, username)
	if err != nil || registered || username != l.username {
		return registered, err
	}
	l.misses++
	if l.misses == 2 {
		register(l.t, l.Memory, username)
		require.NoError(l.t, l.index.Put(ctx, username, identity.Embedding{0.9, 0.8, 0.7}))
	}
	return false, nil
}

func TestReconcileAll_KeepsRecordRewrittenDuringCheck(t *testing.T) {
	ctx := context.Background()
	idx := simindex.NewMemory(3)
	l := &registeringLedger{Memory: ledger.NewMemory(0), t: t, index: idx, username: "alice"}
	tombstones := NewTombstones(10)

	// stale record from an abandoned attempt
	require.NoError(t, idx.Put(ctx, "alice", embedding))

	r := New(l, idx, NewWatchlist(10), tombstones, &config.ReconciliationConfig{Concurrency: 1}, zap.NewNop())
	report, err := r.ReconcileAll(ctx)
	require.NoError(t, err)

	assert.Empty(t, report.Orphans)
	assert.False(t, tombstones.Buried("alice"))

	rec, err := idx.Get(ctx, "alice")
	require.NoError(t, err, "record written after ledger confirmation must survive")
	assert.Equal(t, identity.Embedding{0.9, 0.8, 0.7}, rec.Embedding)

	registered, err := l.Memory.IsRegistered(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestReconcileAll_ReportsWatchedDegradedIdentities(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(0)
	idx := simindex.NewMemory(3)
	w := NewWatchlist(10)

	register(t, l, "alice")
	register(t, l, "bob")
	require.NoError(t, idx.Put(ctx, "bob", embedding))

	// alice lost her index write, bob was watched but is healthy, carol never landed
	w.Watch("alice")
	w.Watch("bob")
	w.Watch("carol")

	report, err := newReconciler(l, idx, w, false).ReconcileAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"alice"}, report.Degraded)
	assert.Equal(t, []string{"alice"}, w.Snapshot())
}

func TestReconcileAll_DiscoversFromLedger(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(0)
	idx := simindex.NewMemory(3)

	register(t, l, "alice")
	register(t, l, "dave")
	require.NoError(t, idx.Put(ctx, "alice", embedding))

	report, err := newReconciler(l, idx, NewWatchlist(10), true).ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dave"}, report.Degraded)

	report, err = newReconciler(l, idx, NewWatchlist(10), false).ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Degraded)
}

type flakyLedger struct {
	*ledger.Memory
	down map[string]bool
}

func (f *flakyLedger) IsRegistered(ctx context.Context, username string) (bool, error) {
	if f.down[username] {
		return false, ledger.ErrUnavailable
	}
	return f.Memory.IsRegistered(ctx, username)
}

func TestReconcileAll_KeepsRecordsItCannotCheck(t *testing.T) {
	ctx := context.Background()
	l := &flakyLedger{Memory: ledger.NewMemory(0), down: map[string]bool{"ghost": true}}
	idx := simindex.NewMemory(3)
	require.NoError(t, idx.Put(ctx, "ghost", embedding))

	report, err := newReconciler(l, idx, NewWatchlist(10), false).ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Errors)
	assert.Empty(t, report.Orphans)

	_, err = idx.Get(ctx, "ghost")
	require.NoError(t, err)
}

type brokenIndex struct {
	*simindex.Memory
}

func (brokenIndex) Usernames(context.Context) ([]string, error) {
	return nil, simindex.ErrUnavailable
}

func TestReconcileAll_IndexUnavailable(t *testing.T) {
	r := newReconciler(ledger.NewMemory(0), brokenIndex{simindex.NewMemory(3)}, NewWatchlist(10), false)

	_, err := r.ReconcileAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, simindex.ErrUnavailable))
	assert.Nil(t, r.LastReport())
}

func TestReconcileAll_RejectsConcurrentScan(t *testing.T) {
	r := newReconciler(ledger.NewMemory(0), simindex.NewMemory(3), NewWatchlist(10), false)
	r.scanMu.Lock()
	defer r.scanMu.Unlock()

	_, err := r.ReconcileAll(context.Background())
	require.ErrorIs(t, err, ErrScanInProgress)
}

func TestPeriodicReconciliation(t *testing.T) {
	ctx := context.Background()
	idx := simindex.NewMemory(3)
	require.NoError(t, idx.Put(ctx, "ghost", embedding))

	r := newReconciler(ledger.NewMemory(0), idx, NewWatchlist(10), false)
	r.StartPeriodicReconciliation(10*time.Millisecond, time.Second)
	defer r.Stop()

	require.Eventually(t, func() bool {
		n, err := idx.Count(ctx)
		return err == nil && n == 0
	}, 2*time.Second, 10*time.Millisecond)

	r.Stop()
	r.Stop()
}

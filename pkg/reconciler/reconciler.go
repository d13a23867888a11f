// Package reconciler repairs drift between the credential ledger and the
// similarity index.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chainsafe/faceauth-middleware/internal/metrics"
	"github.com/chainsafe/faceauth-middleware/pkg/config"
	"github.com/chainsafe/faceauth-middleware/pkg/identity"
	"github.com/chainsafe/faceauth-middleware/pkg/ledger"
	"github.com/chainsafe/faceauth-middleware/pkg/simindex"
)

// ErrScanInProgress is returned when a scan is requested while another runs.
var ErrScanInProgress = errors.New("reconciliation already running")

// Ledger is the read side of the credential ledger. Ledgers that also
// implement ledger.Enumerator can have their identities discovered.
type Ledger interface {
	IsRegistered(ctx context.Context, username string) (bool, error)
}

// Index is the similarity index surface the reconciler scans and repairs.
type Index interface {
	Get(ctx context.Context, username string) (*identity.Record, error)
	DeleteIfCreatedAt(ctx context.Context, username string, createdAt time.Time) (bool, error)
	Usernames(ctx context.Context) ([]string, error)
}

// Report describes one reconciliation scan.
type Report struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	// Checked counts similarity records compared against the ledger.
	Checked int `json:"checked"`
	// Orphans are similarity records deleted because the ledger does not know the username.
	Orphans []string `json:"orphans_removed"`
	// Degraded are ledger identities that still have no similarity record.
	Degraded []string `json:"degraded"`
	// Errors counts usernames that could not be checked this round.
	Errors int `json:"errors"`
}

// Reconciler handles synchronization between the ledger and the similarity index.
type Reconciler struct {
	ledger      Ledger
	index       Index
	watchlist   *Watchlist
	tombstones  *Tombstones
	concurrency int
	discover    bool
	logger      *zap.Logger

	scanMu sync.Mutex

	mu   sync.RWMutex
	last *Report

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a new Reconciler. Usernames whose orphaned record is removed
// are buried in tombstones, which may be nil.
func New(
	l Ledger,
	index Index,
	watchlist *Watchlist,
	tombstones *Tombstones,
	cfg *config.ReconciliationConfig,
	logger *zap.Logger,
) *Reconciler {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Reconciler{
		ledger:      l,
		index:       index,
		watchlist:   watchlist,
		tombstones:  tombstones,
		concurrency: concurrency,
		discover:    cfg.DiscoverFromLedger,
		logger:      logger,
		stopCh:      make(chan struct{}),
	}
}

// ReconcileAll runs one scan.
//
// The scan:
//  1. Deletes similarity records whose username the ledger does not know
//  2. Reports ledger identities without a similarity record, drawn from the
//     watchlist and, when enabled, from the ledger's own registration history
//
// Degraded identities cannot be repaired here because the embedding only
// exists at registration time. They stay on the watchlist and are reported
// until an operator acts.
func (r *Reconciler) ReconcileAll(ctx context.Context) (*Report, error) {
	if !r.scanMu.TryLock() {
		return nil, ErrScanInProgress
	}
	defer r.scanMu.Unlock()

	report := &Report{StartedAt: time.Now().UTC(), Orphans: []string{}, Degraded: []string{}}
	r.logger.Info("Starting reconciliation")

	indexed, err := r.index.Usernames(ctx)
	if err != nil {
		metrics.ReconciliationRuns.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to list similarity records: %w", err)
	}
	report.Checked = len(indexed)

	var errCount atomic.Int64
	orphans, err := r.removeOrphans(ctx, indexed, &errCount)
	if err != nil {
		metrics.ReconciliationRuns.WithLabelValues("failed").Inc()
		return nil, err
	}

	known := make(map[string]struct{}, len(indexed))
	for _, name := range indexed {
		known[name] = struct{}{}
	}
	for _, name := range orphans {
		delete(known, name)
	}

	degraded, err := r.findDegraded(ctx, known, &errCount)
	if err != nil {
		metrics.ReconciliationRuns.WithLabelValues("failed").Inc()
		return nil, err
	}

	sort.Strings(orphans)
	sort.Strings(degraded)
	report.Orphans = append(report.Orphans, orphans...)
	report.Degraded = append(report.Degraded, degraded...)
	report.Errors = int(errCount.Load())
	report.Duration = time.Since(report.StartedAt)

	metrics.OrphansRemoved.WithLabelValues("reconciler").Add(float64(len(orphans)))
	metrics.DegradedIdentities.Set(float64(len(degraded)))
	status := "success"
	if report.Errors > 0 {
		status = "partial"
	}
	metrics.ReconciliationRuns.WithLabelValues(status).Inc()

	r.mu.Lock()
	r.last = report
	r.mu.Unlock()

	r.logger.Info("Reconciliation completed",
		zap.Int("checked", report.Checked),
		zap.Int("orphans_removed", len(orphans)),
		zap.Int("degraded", len(degraded)),
		zap.Int("errors", report.Errors),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// removeOrphans checks every indexed username against the ledger. A record is
// only deleted after two consecutive reads agree that the username is unknown,
// and only if it was not rewritten while the ledger was being asked.
func (r *Reconciler) removeOrphans(ctx context.Context, names []string, errCount *atomic.Int64) ([]string, error) {
	var (
		mu      sync.Mutex
		orphans []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, name := range names {
		g.Go(func() error {
			rec, err := r.index.Get(gctx, name)
			if err != nil {
				if errors.Is(err, simindex.ErrNotFound) {
					return nil
				}
				if gctx.Err() != nil {
					return gctx.Err()
				}
				errCount.Add(1)
				r.logger.Warn("Failed to read similarity record",
					zap.String("username", name), zap.Error(err))
				return nil
			}

			orphan, err := r.isOrphan(gctx, name)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				errCount.Add(1)
				r.logger.Warn("Failed to check similarity record against ledger",
					zap.String("username", name), zap.Error(err))
				return nil
			}
			if !orphan {
				return nil
			}

			deleted, err := r.index.DeleteIfCreatedAt(gctx, name, rec.CreatedAt)
			if err != nil {
				errCount.Add(1)
				r.logger.Warn("Failed to delete orphaned similarity record",
					zap.String("username", name), zap.Error(err))
				return nil
			}
			if !deleted {
				r.logger.Info("Similarity record rewritten during orphan check, kept",
					zap.String("username", name))
				return nil
			}
			if r.tombstones != nil {
				r.tombstones.Bury(name)
			}
			r.logger.Info("Deleted orphaned similarity record", zap.String("username", name))

			mu.Lock()
			orphans = append(orphans, name)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("orphan scan aborted: %w", err)
	}
	return orphans, nil
}

func (r *Reconciler) isOrphan(ctx context.Context, username string) (bool, error) {
	for i := 0; i < 2; i++ {
		registered, err := r.ledger.IsRegistered(ctx, username)
		if err != nil {
			return false, err
		}
		if registered {
			return false, nil
		}
	}
	return true, nil
}

// findDegraded returns registered usernames without a similarity record.
// known holds the usernames already seen in the index.
func (r *Reconciler) findDegraded(ctx context.Context, known map[string]struct{}, errCount *atomic.Int64) ([]string, error) {
	candidates := make(map[string]struct{})
	for _, name := range r.watchlist.Snapshot() {
		candidates[name] = struct{}{}
	}

	if r.discover {
		if enum, ok := r.ledger.(ledger.Enumerator); ok {
			names, err := enum.Usernames(ctx)
			if err != nil {
				errCount.Add(1)
				r.logger.Warn("Failed to enumerate ledger identities", zap.Error(err))
			}
			for _, name := range names {
				candidates[name] = struct{}{}
			}
		}
	}

	var degraded []string
	for name := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, ok := known[name]; ok {
			r.watchlist.Resolve(name)
			continue
		}

		missing, err := r.missingRecord(ctx, name)
		if err != nil {
			errCount.Add(1)
			r.logger.Warn("Failed to check identity for similarity record",
				zap.String("username", name), zap.Error(err))
			continue
		}
		if !missing {
			r.watchlist.Resolve(name)
			continue
		}

		degraded = append(degraded, name)
		r.watchlist.Watch(name)
		r.logger.Warn("Registered identity has no similarity record, verification is degraded",
			zap.String("username", name))
	}
	return degraded, nil
}

// missingRecord reports whether username is on the ledger but not in the index.
func (r *Reconciler) missingRecord(ctx context.Context, username string) (bool, error) {
	_, err := r.index.Get(ctx, username)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, simindex.ErrNotFound):
		return false, err
	}

	registered, err := r.ledger.IsRegistered(ctx, username)
	if err != nil {
		return false, err
	}
	return registered, nil
}

// LastReport returns the result of the most recent completed scan, or nil.
func (r *Reconciler) LastReport() *Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// StartPeriodicReconciliation starts a background goroutine that reconciles periodically
func (r *Reconciler) StartPeriodicReconciliation(interval, timeout time.Duration) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		r.logger.Info("Started periodic reconciliation", zap.Duration("interval", interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				if _, err := r.ReconcileAll(ctx); err != nil && !errors.Is(err, ErrScanInProgress) {
					r.logger.Error("Periodic reconciliation failed", zap.Error(err))
				}
				cancel()
			case <-r.stopCh:
				r.logger.Info("Stopping periodic reconciliation")
				return
			}
		}
	}()
}

// Stop stops the periodic reconciliation. It is safe to call more than once.
func (r *Reconciler) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

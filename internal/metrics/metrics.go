package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationsTotal counts registrations by outcome (success or taxonomy reason)
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faceauth_registrations_total",
			Help: "Total number of registration attempts",
		},
		[]string{"outcome"},
	)

	// VerificationsTotal counts verifications by decision path and outcome
	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faceauth_verifications_total",
			Help: "Total number of verification attempts",
		},
		[]string{"path", "outcome"},
	)

	// DegradedVerifications counts verifications decided by exact fingerprint comparison
	DegradedVerifications = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "faceauth_degraded_verifications_total",
			Help: "Verifications that had no similarity record and fell back to exact hash matching",
		},
	)

	// IndexWriteFailures counts similarity index writes that failed after ledger commit
	IndexWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "faceauth_index_write_failures_total",
			Help: "Similarity index writes that failed after the ledger committed",
		},
	)

	// VisibilityRetries counts isRegistered read-backs that did not yet see a committed write
	VisibilityRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "faceauth_ledger_visibility_retries_total",
			Help: "Ledger read-backs retried because a committed registration was not yet visible",
		},
	)

	// LedgerCommitDuration tracks how long registerCredential takes to resolve
	LedgerCommitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "faceauth_ledger_commit_duration_seconds",
			Help:    "Time from ledger submission to a committed, rejected or timed out outcome",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	// OrphansRemoved counts similarity records deleted because the ledger does not know the user
	OrphansRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faceauth_orphans_removed_total",
			Help: "Orphaned similarity records removed",
		},
		[]string{"source"},
	)

	// DegradedIdentities tracks ledger identities without a similarity record after the last scan
	DegradedIdentities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "faceauth_degraded_identities",
			Help: "Registered identities with no similarity record as of the last reconciliation",
		},
	)

	// ReconciliationRuns counts reconciler scans by status
	ReconciliationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faceauth_reconciliation_runs_total",
			Help: "Total number of reconciliation scans",
		},
		[]string{"status"},
	)

	// ErrorsTotal counts errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faceauth_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

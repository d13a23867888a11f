// Package app defines common runtime contracts shared by the executable
// entrypoints (API server, one-shot reconciliation).
//
// cmd/* binaries start application components through these contracts
// without depending on how the components are wired.
package app

import (
	"context"

	"github.com/chainsafe/faceauth-middleware/pkg/reconciler"
)

// Runner represents a long running application component.
type Runner interface {
	Run() error
}

// Reconciler runs a single ledger and similarity index reconciliation scan.
// usernames are checked for missing similarity records in addition to the
// ones the ledger can enumerate.
type Reconciler interface {
	ReconcileOnce(ctx context.Context, usernames ...string) (*reconciler.Report, error)
}

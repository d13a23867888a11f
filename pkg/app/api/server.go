// Package api implements app.Runner for the API server process.
package api

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/faceauth-middleware/pkg/app"
	apphttp "github.com/chainsafe/faceauth-middleware/pkg/app/http"
	"github.com/chainsafe/faceauth-middleware/pkg/biometric"
	"github.com/chainsafe/faceauth-middleware/pkg/config"
	"github.com/chainsafe/faceauth-middleware/pkg/credential/service"
	"github.com/chainsafe/faceauth-middleware/pkg/ethereum"
	"github.com/chainsafe/faceauth-middleware/pkg/extractor"
	"github.com/chainsafe/faceauth-middleware/pkg/health"
	"github.com/chainsafe/faceauth-middleware/pkg/identity"
	"github.com/chainsafe/faceauth-middleware/pkg/ledger"
	"github.com/chainsafe/faceauth-middleware/pkg/pgutil"
	reconcilerpkg "github.com/chainsafe/faceauth-middleware/pkg/reconciler"
	"github.com/chainsafe/faceauth-middleware/pkg/session"
	"github.com/chainsafe/faceauth-middleware/pkg/simindex"
)

const (
	healthTTL     = 5 * time.Second
	healthTimeout = 3 * time.Second
)

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.APIServerConfig
}

var (
	_ app.Runner     = (*Server)(nil)
	_ app.Reconciler = (*Server)(nil)
)

// NewServer initializes new api server.
func NewServer(cfg *config.APIServerConfig) *Server {
	return &Server{cfg: cfg}
}

// stores are the opened backends plus their readiness checkers.
type stores struct {
	ledger    service.Ledger
	index     simindex.Index
	extractor service.Extractor
	checkers  map[string]health.Checker
	closers   []func()
}

func (st *stores) close() {
	for i := len(st.closers) - 1; i >= 0; i-- {
		st.closers[i]()
	}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting FaceAuth API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("ledger", cfg.Ledger.Driver),
		zap.String("index", cfg.Index.Driver),
	)

	st := &stores{checkers: make(map[string]health.Checker)}
	defer st.close()

	if err := s.openLedger(st, logger); err != nil {
		return err
	}
	if err := s.openIndex(ctx, st, logger); err != nil {
		return err
	}
	s.openExtractor(st, logger)

	watchlist := reconcilerpkg.NewWatchlist(cfg.Reconciliation.WatchlistSize)
	tombstones := reconcilerpkg.NewTombstones(cfg.Reconciliation.WatchlistSize)

	credentialService := service.NewService(
		st.ledger,
		st.index,
		st.extractor,
		biometric.NewEngine(cfg.Verification.Tolerance),
		watchlist,
		tombstones,
		service.Options{
			RecheckTimeout: cfg.Ledger.RecheckTimeout,
			Visibility:     cfg.Ledger.Visibility,
		},
		logger,
	)

	rec := reconcilerpkg.New(st.ledger, st.index, watchlist, tombstones, &cfg.Reconciliation, logger)
	stopReconcile := func() {}
	if cfg.Reconciliation.Enabled {
		s.runInitialReconcile(ctx, rec, logger)
		stopReconcile = s.startPeriodicReconcile(rec, logger)
	}
	// We will call stopReconcile explicitly after ServeAndWait returns for deterministic shutdown order.
	// Keep this defer as a safety net.
	defer stopReconcile()

	var sessions *session.Issuer
	if cfg.Session.Enabled {
		sessions = session.NewIssuer(&cfg.Session)
	}

	router := newRouter(cfg, routerDeps{
		service:    service.NewLog(credentialService, logger),
		sessions:   sessions,
		reconciler: rec,
		checkers:   st.checkers,
	}, logger)

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)

	// Stop background work before deferred store closes kick in.
	stopReconcile()

	return err
}

func (s *Server) openLedger(st *stores, logger *zap.Logger) error {
	switch s.cfg.Ledger.Driver {
	case config.LedgerDriverMemory:
		logger.Warn("Using in-memory ledger, identities are lost on restart")
		st.ledger = ledger.NewMemory(s.cfg.Ledger.VisibilityLag)
		return nil
	default:
		client, err := ethereum.NewClient(&s.cfg.Ledger, logger)
		if err != nil {
			return fmt.Errorf("create ethereum client: %w", err)
		}
		st.closers = append(st.closers, client.Close)
		st.ledger = client
		st.checkers["ledger"] = health.NewCache(client.Healthy, healthTTL, healthTimeout).Check
		logger.Info("Connected to Ethereum",
			zap.String("rpc_url", s.cfg.Ledger.Ethereum.RPCURL),
			zap.String("contract", s.cfg.Ledger.Ethereum.ContractAddress))
		return nil
	}
}

func (s *Server) openIndex(ctx context.Context, st *stores, logger *zap.Logger) error {
	dims := s.cfg.Index.Dimensions

	switch s.cfg.Index.Driver {
	case config.IndexDriverMemory:
		logger.Warn("Using in-memory similarity index, embeddings are lost on restart")
		st.index = simindex.NewMemory(dims)

	case config.IndexDriverQdrant:
		store, err := simindex.NewQdrantStore(&s.cfg.Index.Qdrant, dims, logger)
		if err != nil {
			return err
		}
		st.closers = append(st.closers, func() { _ = store.Close() })
		if err := store.EnsureCollection(ctx); err != nil {
			return fmt.Errorf("prepare qdrant collection: %w", err)
		}
		st.index = store
		st.checkers["index"] = store.Healthy

	default:
		db, err := pgutil.ConnectDB(ctx, &s.cfg.Index.Database, logger)
		if err != nil {
			return err
		}
		st.closers = append(st.closers, func() { _ = db.Close() })
		store := simindex.NewPGStore(db, dims)
		st.index = store
		st.checkers["index"] = health.NewCache(store.Healthy, healthTTL, healthTimeout).Check
	}
	return nil
}

func (s *Server) openExtractor(st *stores, logger *zap.Logger) {
	client := extractor.NewHTTPClient(&s.cfg.Extractor, s.cfg.Index.Dimensions, logger)
	st.extractor = client
	st.checkers["extractor"] = client.Healthy
}

func (s *Server) runInitialReconcile(
	ctx context.Context,
	reconciler *reconcilerpkg.Reconciler,
	logger *zap.Logger,
) {
	logger.Info("Running initial reconciliation",
		zap.Duration("timeout", s.cfg.Reconciliation.InitialTimeout),
	)

	startupCtx, cancel := context.WithTimeout(ctx, s.cfg.Reconciliation.InitialTimeout)
	defer cancel()

	if _, err := reconciler.ReconcileAll(startupCtx); err != nil {
		logger.Warn("Initial reconciliation failed (will retry periodically)", zap.Error(err))
	}
}

func (s *Server) startPeriodicReconcile(
	reconciler *reconcilerpkg.Reconciler,
	logger *zap.Logger,
) func() {
	if s.cfg.Reconciliation.Interval <= 0 {
		return func() {}
	}

	logger.Info("Starting periodic reconciliation", zap.Duration("interval", s.cfg.Reconciliation.Interval))
	reconciler.StartPeriodicReconciliation(s.cfg.Reconciliation.Interval, s.cfg.Reconciliation.ScanTimeout)

	return reconciler.Stop
}

// ReconcileOnce opens the configured ledger and similarity index, runs one
// reconciliation scan with ledger discovery enabled and closes both stores.
func (s *Server) ReconcileOnce(ctx context.Context, usernames ...string) (*reconcilerpkg.Report, error) {
	if s.cfg == nil {
		return nil, fmt.Errorf("api server config is nil")
	}

	logger, err := config.NewLogger(s.cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	st := &stores{checkers: make(map[string]health.Checker)}
	defer st.close()

	if err := s.openLedger(st, logger); err != nil {
		return nil, err
	}
	if err := s.openIndex(ctx, st, logger); err != nil {
		return nil, err
	}

	rcfg := s.cfg.Reconciliation
	rcfg.DiscoverFromLedger = true
	watchlist := reconcilerpkg.NewWatchlist(max(rcfg.WatchlistSize, len(usernames)))
	for _, name := range usernames {
		watchlist.Watch(identity.NormalizeUsername(name))
	}

	rec := reconcilerpkg.New(st.ledger, st.index, watchlist, nil, &rcfg, logger)
	return rec.ReconcileAll(ctx)
}

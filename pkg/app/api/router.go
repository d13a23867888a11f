package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/faceauth-middleware/pkg/app/errors"
	apphttp "github.com/chainsafe/faceauth-middleware/pkg/app/http"
	"github.com/chainsafe/faceauth-middleware/pkg/config"
	"github.com/chainsafe/faceauth-middleware/pkg/credential/service"
	"github.com/chainsafe/faceauth-middleware/pkg/health"
	reconcilerpkg "github.com/chainsafe/faceauth-middleware/pkg/reconciler"
	"github.com/chainsafe/faceauth-middleware/pkg/session"
)

type routerDeps struct {
	service    service.Service
	sessions   *session.Issuer
	reconciler *reconcilerpkg.Reconciler
	checkers   map[string]health.Checker
}

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func newRouter(cfg *config.APIServerConfig, deps routerDeps, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/ready", readyHandler(deps.checkers))

	if cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Credential endpoints
	r.Group(func(r chi.Router) {
		if cfg.Server.RateLimit.Enabled {
			limiter := apphttp.NewRateLimiter(cfg.Server.RateLimit.RequestsPerMinute, cfg.Server.RateLimit.Burst)
			r.Use(limiter.Middleware)
		}
		service.RegisterRoutes(r, deps.service, deps.sessions, cfg.Server.MaxBodyBytes, logger)
	})

	if deps.reconciler != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Post("/reconcile", apphttp.HandleError(reconcileHandler(deps.reconciler, cfg.Reconciliation.ScanTimeout)))
			r.Get("/reconcile", apphttp.HandleError(lastReportHandler(deps.reconciler)))
		})
	}

	return r
}

// readyHandler runs every checker concurrently and reports 503 if any fails.
func readyHandler(checkers map[string]health.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := make([]string, 0, len(checkers))
		for name := range checkers {
			names = append(names, name)
		}
		sort.Strings(names)

		results := make([]error, len(names))
		var wg sync.WaitGroup
		for i, name := range names {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = checkers[name](r.Context())
			}()
		}
		wg.Wait()

		out := readiness{Status: "ready", Checks: make(map[string]string, len(names))}
		status := http.StatusOK
		for i, name := range names {
			if results[i] != nil {
				out.Checks[name] = results[i].Error()
				out.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			out.Checks[name] = "ok"
		}
		apphttp.WriteJSON(w, status, out)
	}
}

func reconcileHandler(rec *reconcilerpkg.Reconciler, timeout time.Duration) apphttp.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		// a client disconnect does not abort the scan, the timeout does
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
		defer cancel()

		report, err := rec.ReconcileAll(ctx)
		if err != nil {
			if errors.Is(err, reconcilerpkg.ErrScanInProgress) {
				return apperrors.ConflictError(err, "reconciliation already running")
			}
			return apperrors.New(apperrors.CategoryDependencyFailure, "", "reconciliation failed", err)
		}
		apphttp.WriteJSON(w, http.StatusOK, report)
		return nil
	}
}

func lastReportHandler(rec *reconcilerpkg.Reconciler) apphttp.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) error {
		report := rec.LastReport()
		if report == nil {
			return apperrors.ResourceNotFoundError(nil, "no reconciliation has completed yet")
		}
		apphttp.WriteJSON(w, http.StatusOK, report)
		return nil
	}
}

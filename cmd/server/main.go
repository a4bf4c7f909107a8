// Command server runs a demo platform service wired with the authorization
// and correlation core: request ids, claims-based authorization, per-tenant
// rate limiting, correlation-tagged logging, and health aggregation.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"rfq-platform/internal/config"
	"rfq-platform/internal/correlation"
	"rfq-platform/internal/domain"
	"rfq-platform/internal/health"
	"rfq-platform/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := slog.New(correlation.NewLogHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}),
	))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	aggregator := health.NewAggregator(2*time.Second, health.Check{
		Name:  "self",
		Probe: func(context.Context) health.Status { return health.Healthy },
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(cfg, logger, aggregator),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("listening", "service", cfg.ServiceName, "addr", cfg.ListenAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// newRouter assembles the middleware chain and routes. Health is served
// outside the authorization chain so probes need no credentials.
func newRouter(cfg *config.Config, logger *slog.Logger, aggregator *health.Aggregator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/v1/healthz", func(w http.ResponseWriter, req *http.Request) {
		report := aggregator.Run(req.Context())
		status := http.StatusOK
		if report.Status == health.Unhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, report)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authorization(logger))
		r.Use(middleware.TenantRateLimiter(middleware.RateLimitConfig{
			DefaultRPS: cfg.DefaultRPS,
			Burst:      cfg.BurstSize,
		}))

		r.Get("/v1/whoami", func(w http.ResponseWriter, req *http.Request) {
			ac, _ := domain.AuthorizationFromContext(req.Context())
			logger.InfoContext(req.Context(), "whoami served")
			writeJSON(w, http.StatusOK, map[string]any{
				"user_id":        ac.Identity.UserID,
				"tenant_id":      ac.Tenant.TenantID,
				"tenant_tier":    ac.Tenant.Tier,
				"roles":          ac.Roles,
				"correlation_id": ac.CorrelationID,
			})
		})

		r.Post("/v1/check/instrument", checkInstrument(logger))
	})

	return r
}

type instrumentCheckRequest struct {
	TenantID   string  `json:"tenant_id"`
	Instrument string  `json:"instrument"`
	AssetClass string  `json:"asset_class"`
	Venue      string  `json:"venue"`
	Notional   float64 `json:"notional"`
}

// checkInstrument demonstrates the guard-before-access pattern: tenant
// isolation is enforced before any entitlement is consulted.
func checkInstrument(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ac, _ := domain.AuthorizationFromContext(req.Context())

		var body instrumentCheckRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"code": http.StatusBadRequest, "message": "malformed request body",
			})
			return
		}

		if err := domain.EnforceTenant(ac, body.TenantID); err != nil {
			var mismatch *domain.TenantMismatchError
			if errors.As(err, &mismatch) {
				logger.WarnContext(req.Context(), "tenant isolation violation",
					"context_tenant", mismatch.ContextTenantID,
					"resource_tenant", mismatch.ResourceTenantID)
			}
			writeJSON(w, http.StatusForbidden, map[string]any{
				"code": http.StatusForbidden, "message": err.Error(),
			})
			return
		}

		ents := ac.Entitlements
		verdict := map[string]any{
			"can_trade_instrument":  ents.CanTradeInstrument(body.Instrument),
			"can_trade_asset_class": ents.CanTradeAssetClass(body.AssetClass),
			"can_access_venue":      ents.CanAccessVenue(body.Venue),
			"within_notional_limit": ents.WithinNotionalLimit(body.Notional),
			"has_trader_role":       ac.HasRole(domain.RoleTrader),
		}
		logger.InfoContext(req.Context(), "instrument check served", "instrument", body.Instrument)
		writeJSON(w, http.StatusOK, verdict)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

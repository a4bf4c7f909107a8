package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"rfq-platform/internal/domain"
)

// RateLimitConfig holds fallback limits for requests whose entitlements do
// not specify a rate, and the shared burst sizing rule.
type RateLimitConfig struct {
	// DefaultRPS applies when the caller's entitlements carry no RFQ rate.
	DefaultRPS float64
	// Burst is the token-bucket burst capacity for every tenant.
	Burst int
}

type tenantLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TenantRateLimiter enforces a per-tenant token-bucket rate limit sized from
// the authenticated caller's entitlements (TradingLimits.RFQRateLimit). It
// must run after Authorization; requests without an authorization context
// fall back to a single shared bucket keyed by the empty tenant id.
func TenantRateLimiter(cfg RateLimitConfig) func(http.Handler) http.Handler {
	var tenants sync.Map // map[string]*tenantLimiter

	// Drop buckets for tenants not seen in a while.
	go func() {
		for {
			time.Sleep(5 * time.Minute)
			tenants.Range(func(key, value any) bool {
				tl := value.(*tenantLimiter)
				if time.Since(tl.lastSeen) > 10*time.Minute {
					tenants.Delete(key)
				}
				return true
			})
		}
	}()

	getLimiter := func(tenantID string, rps float64) *rate.Limiter {
		if v, ok := tenants.Load(tenantID); ok {
			tl := v.(*tenantLimiter)
			tl.lastSeen = time.Now()
			return tl.limiter
		}
		limiter := rate.NewLimiter(rate.Limit(rps), cfg.Burst)
		tenants.Store(tenantID, &tenantLimiter{limiter: limiter, lastSeen: time.Now()})
		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := ""
			rps := cfg.DefaultRPS
			if ac, ok := domain.AuthorizationFromContext(r.Context()); ok {
				tenantID = ac.Tenant.TenantID
				if ac.Entitlements != nil && ac.Entitlements.Limits.RFQRateLimit > 0 {
					rps = ac.Entitlements.Limits.RFQRateLimit
				}
			}
			limiter := getLimiter(tenantID, rps)

			reservation := limiter.Reserve()
			if !reservation.OK() {
				writeTooManyRequests(w, 0)
				return
			}
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				writeTooManyRequests(w, int(delay.Seconds())+1)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

func writeTooManyRequests(w http.ResponseWriter, retryAfter int) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]any{
		"code":    http.StatusTooManyRequests,
		"message": "rate limit exceeded for tenant",
	})
}

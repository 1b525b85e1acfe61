package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api/presenter"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/audit"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/metrics"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/policy"
)

// Authorize enforces table on every request. Denied requests without a principal are
// answered with presenter.Unauthenticated, denied requests with a principal with
// presenter.AccessDenied. It must run after an Authenticator.
func Authorize(table *policy.Table, auditor core.Auditor, m *metrics.Metrics) func(http.Handler) http.Handler {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := core.SecurityContextFrom(r.Context())

			if allowed(table, r, sc) {
				m.ObserveDecision(metrics.DecisionAllow)
				next.ServeHTTP(w, r)
				return
			}

			status := http.StatusUnauthorized
			if sc.IsAuthenticated() {
				status = http.StatusForbidden
			}

			logger := log.Ctx(r.Context())
			logger.Debug().Int("status", status).Msg("auth.denied")
			if err := auditor.Log(core.AuditEntry{
				ID:       CorrelationCtx(r.Context()),
				Time:     time.Now(),
				Action:   core.AuditActionDenied,
				Username: sc.Username(),
				Method:   r.Method,
				Path:     r.URL.Path,
				Status:   status,
			}); err != nil {
				logger.Error().Err(err).Msg("failed to write audit log entry for denied request")
			}

			if status == http.StatusForbidden {
				m.ObserveDecision(metrics.DecisionForbidden)
				presenter.AccessDenied(w, r)
				return
			}
			m.ObserveDecision(metrics.DecisionUnauthenticated)
			presenter.Unauthenticated(w, r)
		})
	}
}

// allowed requires the table to allow both the routing path and the decoded path,
// which differ when the request escapes a slash.
func allowed(table *policy.Table, r *http.Request, sc core.SecurityContext) bool {
	routing := RoutingPath(r)
	if table.Evaluate(routing, sc) != policy.Allow {
		return false
	}
	return routing == r.URL.Path || table.Evaluate(r.URL.Path, sc) == policy.Allow
}

// RoutingPath returns the path the router dispatches r on: the route path set by
// chi's CleanPath, otherwise the raw (still escaped) path if the request has one.
func RoutingPath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePath != "" {
		return rctx.RoutePath
	}
	if r.URL.RawPath != "" {
		return r.URL.RawPath
	}
	return r.URL.Path
}

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api/middleware"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api/presenter"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/audit"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/catalog"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/config"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/metrics"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/policy"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/service"
)

const timeoutMessage = `{"statusCode": 503, "message": "request timed out"}`

// Options are the collaborators of a Server. Authenticator, Policy, Login and Catalog are required.
type Options struct {
	Authenticator *middleware.Authenticator
	Policy        *policy.Table
	Login         *service.LoginService
	Catalog       *catalog.Catalog
	Auditor       core.Auditor
	Metrics       *metrics.Metrics

	CORS           config.CORSConfig
	LoginRateLimit config.RateLimitConfig
	RequestTimeout time.Duration
}

type Server struct {
	authenticator  *middleware.Authenticator
	policy         *policy.Table
	login          *service.LoginService
	catalog        *catalog.Catalog
	auditor        core.Auditor
	metrics        *metrics.Metrics
	cors           config.CORSConfig
	loginRateLimit config.RateLimitConfig
	requestTimeout time.Duration
}

func NewServer(opts Options) *Server {
	if opts.Auditor == nil {
		opts.Auditor = audit.NewNoopAuditor()
	}
	return &Server{
		authenticator:  opts.Authenticator,
		policy:         opts.Policy,
		login:          opts.Login,
		catalog:        opts.Catalog,
		auditor:        opts.Auditor,
		metrics:        opts.Metrics,
		cors:           opts.CORS,
		loginRateLimit: opts.LoginRateLimit,
		requestTimeout: opts.RequestTimeout,
	}
}

// Routes returns the API handler. Every request passes the authenticator and then the
// route policy before it is routed, so unknown paths are denied rather than reported missing.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoverMiddleware)
	r.Use(middleware.CorrelationIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(chimiddleware.CleanPath)
	r.Use(s.corsHandler()) // answers preflight requests before authorization
	r.Use(s.authenticator.Middleware)
	r.Use(middleware.Authorize(s.policy, s.auditor, s.metrics))

	r.With(s.loginLimiter()).Post(LoginRoute, s.handleLogin)

	r.Get(ListPokemonRoute, s.handleListPokemon)
	r.Get(GetPokemonRoute, s.handleGetPokemon)
	r.Get(ListReviewsRoute, s.handleListReviews)
	r.Get(GetReviewRoute, s.handleGetReview)

	r.Get(WhoamiRoute, s.handleWhoami)
	r.Get(ListAuditsRoute, s.handleAdminAudit)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		presenter.Error(w, r, "resource not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		presenter.Error(w, r, "method not allowed", http.StatusMethodNotAllowed)
	})

	if s.requestTimeout <= 0 {
		return r
	}
	return http.TimeoutHandler(r, s.requestTimeout, timeoutMessage)
}

// OpsRoutes returns the handler of the operations listener. It is not subject to the route
// policy and must not be exposed publicly.
func (s *Server) OpsRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoverMiddleware)
	r.Use(middleware.CorrelationIDMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Get(HealthCheckRoute, s.handleHealth)
	r.Get(AboutRoute, s.handleAbout)
	if s.metrics != nil {
		r.Method(http.MethodGet, MetricsRoute, s.metrics.Handler())
	}
	return r
}

func (s *Server) corsHandler() func(http.Handler) http.Handler {
	origins := s.cors.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.CorrelationIDHeader},
		ExposedHeaders: []string{middleware.CorrelationIDHeader},
		MaxAge:         s.cors.MaxAge,
	})
}

func (s *Server) loginLimiter() func(http.Handler) http.Handler {
	if s.loginRateLimit.Requests <= 0 || s.loginRateLimit.Window <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(
		s.loginRateLimit.Requests,
		s.loginRateLimit.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			presenter.Error(w, r, "too many login attempts", http.StatusTooManyRequests)
		}),
	)
}

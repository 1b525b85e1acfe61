package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/metrics"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/security/token"
)

const bearerPrefix = "Bearer "

// BearerToken extracts the token from an Authorization header value of the form "Bearer <token>".
func BearerToken(header string) (string, bool) {
	tok, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || tok == "" {
		return "", false
	}
	return tok, true
}

// Authenticator resolves the bearer token of each request into a core.SecurityContext.
// It never rejects a request; the authorization stage decides what an unauthenticated
// request may reach.
type Authenticator struct {
	codec   *token.Codec
	store   core.PrincipalStore
	metrics *metrics.Metrics
}

func NewAuthenticator(codec *token.Codec, store core.PrincipalStore, m *metrics.Metrics) *Authenticator {
	return &Authenticator{
		codec:   codec,
		store:   store,
		metrics: m,
	}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc := a.authenticate(r)

		// the client is gone or the deadline passed; the server owns the response now
		if r.Context().Err() != nil {
			log.Ctx(r.Context()).Debug().Err(r.Context().Err()).Msg("auth.aborted")
			return
		}

		next.ServeHTTP(w, r.WithContext(core.WithSecurityContext(r.Context(), sc)))
	})
}

func (a *Authenticator) authenticate(r *http.Request) core.SecurityContext {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	raw, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		a.metrics.ObserveAuthentication(metrics.AuthAnonymous)
		return core.Anonymous()
	}

	claims, err := a.codec.Decode(raw)
	if err != nil {
		reason := token.Reason(err)
		logger.Debug().Str("reason", reason).Msg("auth.token_rejected")
		a.metrics.ObserveAuthentication(metrics.AuthTokenPrefix + reason)
		return core.Anonymous()
	}

	cred, err := a.store.LoadByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, core.ErrPrincipalNotFound) {
			logger.Debug().Str("subject", claims.Subject).Msg("auth.principal_not_found")
			a.metrics.ObserveAuthentication(metrics.AuthPrincipalNotFound)
		} else {
			logger.Error().Err(err).Str("subject", claims.Subject).Msg("auth.store_error")
			a.metrics.ObserveAuthentication(metrics.AuthStoreError)
		}
		return core.Anonymous()
	}

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("username", cred.Username)
	})
	a.metrics.ObserveAuthentication(metrics.AuthAuthenticated)
	return core.Authenticated(*cred)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/audit"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/metrics"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/security/token"
)

// LoginService exchanges username and password for a bearer token.
type LoginService struct {
	store   core.PrincipalStore
	hasher  core.PasswordHasher
	codec   *token.Codec
	ttl     time.Duration
	auditor core.Auditor
	metrics *metrics.Metrics
	now     func() time.Time

	// dummyHash is verified against for unknown users, so they cost the same hashing
	// work as wrong passwords.
	dummyOnce sync.Once
	dummyHash string
}

func NewLoginService(
	store core.PrincipalStore,
	hasher core.PasswordHasher,
	codec *token.Codec,
	ttl time.Duration,
	auditor core.Auditor,
	m *metrics.Metrics,
) *LoginService {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}
	return &LoginService{
		store:   store,
		hasher:  hasher,
		codec:   codec,
		ttl:     ttl,
		auditor: auditor,
		metrics: m,
		now:     time.Now,
	}
}

// Login verifies the password of req.Username and issues a token for it.
// Wrong credentials yield an HTTPError with status 401 wrapping ErrInvalidCredentials.
func (s *LoginService) Login(ctx context.Context, correlationID string, req LoginRequest) (*LoginResponse, error) {
	logger := log.Ctx(ctx)

	auditEntry := core.AuditEntry{
		ID:       correlationID,
		Time:     s.now(),
		Action:   core.AuditActionLogin,
		Username: req.Username,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for login")
		}
	}()

	if req.Username == "" || req.Password == "" {
		auditEntry.Error = "missing credentials"
		auditEntry.Status = http.StatusBadRequest
		s.metrics.ObserveLogin(metrics.LoginInvalidCredentials)
		return nil, httpError(http.StatusBadRequest, fmt.Errorf("username and password are required"))
	}

	cred, err := s.store.LoadByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, core.ErrPrincipalNotFound) {
			auditEntry.Error = "principal store error"
			auditEntry.Status = http.StatusInternalServerError
			s.metrics.ObserveLogin(metrics.LoginError)
			return nil, httpError(http.StatusInternalServerError, fmt.Errorf("loading principal: %w", err))
		}
		_ = s.hasher.Verify(req.Password, s.getDummyHash())
		auditEntry.Error = "unknown user"
		auditEntry.Status = http.StatusUnauthorized
		s.metrics.ObserveLogin(metrics.LoginInvalidCredentials)
		return nil, httpError(http.StatusUnauthorized, ErrInvalidCredentials)
	}

	if !s.hasher.Verify(req.Password, cred.PasswordHash) {
		auditEntry.Error = "wrong password"
		auditEntry.Status = http.StatusUnauthorized
		s.metrics.ObserveLogin(metrics.LoginInvalidCredentials)
		return nil, httpError(http.StatusUnauthorized, ErrInvalidCredentials)
	}

	issuedAt := s.now()
	accessToken, err := s.codec.Encode(cred.Username, issuedAt, s.ttl)
	if err != nil {
		auditEntry.Error = "encoding failed"
		auditEntry.Status = http.StatusInternalServerError
		s.metrics.ObserveLogin(metrics.LoginError)
		return nil, httpError(http.StatusInternalServerError, fmt.Errorf("encoding token: %w", err))
	}

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("username", cred.Username)
	})

	auditEntry.Granted = true
	auditEntry.Status = http.StatusOK
	auditEntry.TokenFingerprint = audit.Fingerprint(accessToken)
	s.metrics.ObserveLogin(metrics.LoginSuccess)

	return &LoginResponse{
		AccessToken: accessToken,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   issuedAt.Truncate(time.Second).Add(s.ttl),
	}, nil
}

func (s *LoginService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("pokereview-dummy-password")
		if err != nil {
			log.Warn().Err(err).Msg("failed to compute dummy password hash")
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api/middleware"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api/presenter"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/buildinfo"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/service"
)

const maxPayloadBytes = 1 << 16

// handleHealth responds with a simple OK status to indicate the server is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleAbout responds with service information including version and commit hash.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, buildinfo.GetBuildInfo(), http.StatusOK)
}

func DecodePayload(w http.ResponseWriter, r *http.Request, dest any, allowEmpty bool) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return errors.New("unsupported content type")
		}
	}

	// strict encoding for JSON
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		if !errors.Is(err, io.EOF) || !allowEmpty {
			return err
		}
	}
	// ensure there's no extra data
	if dec.More() {
		return errors.New("extra data in request body")
	}
	return nil
}

// handleLogin exchanges username and password for a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload service.LoginRequest
	if err := DecodePayload(w, r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode login request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	resp, err := s.login.Login(ctx, middleware.CorrelationCtx(ctx), payload)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logger.Info().Str("username", payload.Username).Msg("auth.login_failed")
			presenter.Unauthenticated(w, r)
			return
		}
		presenter.Err(w, r, err, "login failed")
		return
	}

	logger.Info().Msg("auth.login")
	presenter.JSON(w, r, resp, http.StatusOK)
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("invalid " + name + " parameter")
	}
	return n, nil
}

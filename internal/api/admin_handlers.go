package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api/presenter"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
)

const defaultAuditLimit = 50

type WhoamiResponse struct {
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
}

// handleWhoami reports the principal the request was authenticated as.
func (s *Server) handleWhoami(w http.ResponseWriter, r *http.Request) {
	principal, ok := core.SecurityContextFrom(r.Context()).Principal()
	if !ok {
		// unreachable behind the route policy
		presenter.Unauthenticated(w, r)
		return
	}
	authorities := principal.Authorities
	if authorities == nil {
		authorities = []string{}
	}
	presenter.JSON(w, r, WhoamiResponse{
		Username:    principal.Username,
		Authorities: authorities,
	}, http.StatusOK)
}

// handleAdminAudit processes requests to retrieve audit log entries.
func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	reader, ok := s.auditor.(core.AuditReader)
	if !ok {
		presenter.Error(w, r, "audit log is not queryable", http.StatusNotImplemented)
		return
	}

	// filters
	q := r.URL.Query()
	filterCorrelationID := q.Get("correlation_id")
	filterUsername := q.Get("username")
	filterAction := q.Get("action")

	limit, err := queryInt(r, "limit", defaultAuditLimit)
	if err != nil || limit < 0 {
		logger.Warn().Str("limit", q.Get("limit")).Msg("invalid limit parameter")
		presenter.Error(w, r, "invalid limit parameter", http.StatusBadRequest)
		return
	}

	var entries []core.AuditEntry
	if filterCorrelationID != "" || filterUsername != "" || filterAction != "" {
		entries, err = reader.Find(func(entry core.AuditEntry) bool {
			if filterCorrelationID != "" && entry.ID != filterCorrelationID {
				return false
			}
			if filterUsername != "" && entry.Username != filterUsername {
				return false
			}
			if filterAction != "" && entry.Action != filterAction {
				return false
			}
			return true
		}, limit)
	} else {
		entries, err = reader.GetRecent(limit)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve audit logs")
		presenter.Error(w, r, "failed to retrieve audit logs", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}

	presenter.JSON(w, r, entries, http.StatusOK)
}

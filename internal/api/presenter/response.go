package presenter

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/service"
)

const ContentTypeJSON = "application/json;charset=UTF-8"

// ErrorObject is the body of every error response.
type ErrorObject struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

// Error writes an indented ErrorObject.
func Error(w http.ResponseWriter, r *http.Request, msg string, status int) {
	body, err := json.MarshalIndent(ErrorObject{StatusCode: status, Message: msg}, "", "  ")
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to encode error object")
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", ContentTypeJSON)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Ctx(r.Context()).Debug().Err(err).Msg("failed to write error object")
	}
}

// Err writes err with the status of a wrapped service.HTTPError, or 400.
func Err(w http.ResponseWriter, r *http.Request, err error, short string) {
	status := http.StatusBadRequest // generic default status
	var httpError *service.HTTPError
	if errors.As(err, &httpError) {
		status = httpError.StatusCode
	}
	if status >= http.StatusInternalServerError {
		// internal failures are logged, never echoed
		log.Ctx(r.Context()).Error().Err(err).Msg(short)
		Error(w, r, short, status)
		return
	}
	Error(w, r, short+": "+err.Error(), status)
}

package service

import "errors"

// ErrInvalidCredentials is returned by Login for an unknown user or a wrong password.
// Both cases share the error so callers cannot probe for usernames.
var ErrInvalidCredentials = errors.New("invalid username or password")

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	StatusCode int
	Wrapped    error
}

func (e HTTPError) Error() string {
	return e.Wrapped.Error()
}

func (e HTTPError) Unwrap() error {
	return e.Wrapped
}

func httpError(statusCode int, err error) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Wrapped:    err,
	}
}

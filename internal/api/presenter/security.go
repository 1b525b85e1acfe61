package presenter

import "net/http"

// Fixed messages of the security failure responses. They never vary with the cause of the
// failure, so clients cannot tell a forged token from an expired one.
const (
	MessageUnauthenticated = "Valid authentication credentials are required to access the requested resource."
	MessageAccessDenied    = "Access to the requested resource is denied."
)

// Unauthenticated answers a request that carries no resolved principal.
func Unauthenticated(w http.ResponseWriter, r *http.Request) {
	Error(w, r, MessageUnauthenticated, http.StatusUnauthorized)
}

// AccessDenied answers a request whose principal lacks the privilege required by the route.
func AccessDenied(w http.ResponseWriter, r *http.Request) {
	Error(w, r, MessageAccessDenied, http.StatusForbidden)
}

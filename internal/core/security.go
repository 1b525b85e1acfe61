package core

import "context"

// SecurityContext is the per-request authentication state.
// It is either fully unauthenticated or authenticated with a resolved Credential;
// the zero value is the unauthenticated context.
type SecurityContext struct {
	principal     *Credential
	authenticated bool
}

// Anonymous returns an unauthenticated SecurityContext.
func Anonymous() SecurityContext {
	return SecurityContext{}
}

// Authenticated returns a SecurityContext for the given credential.
// The credential is copied, later changes to cred are not visible through the context.
func Authenticated(cred Credential) SecurityContext {
	c := cred.Clone()
	return SecurityContext{
		principal:     &c,
		authenticated: true,
	}
}

// IsAuthenticated reports whether a principal was resolved for the request.
func (s SecurityContext) IsAuthenticated() bool {
	return s.authenticated
}

// Principal returns a copy of the resolved credential.
func (s SecurityContext) Principal() (Credential, bool) {
	if !s.authenticated || s.principal == nil {
		return Credential{}, false
	}
	return s.principal.Clone(), true
}

// Username returns the principal's username, or an empty string for anonymous requests.
func (s SecurityContext) Username() string {
	if s.principal == nil {
		return ""
	}
	return s.principal.Username
}

type securityContextKey struct{}

// WithSecurityContext returns a copy of ctx carrying sc.
func WithSecurityContext(ctx context.Context, sc SecurityContext) context.Context {
	return context.WithValue(ctx, securityContextKey{}, sc)
}

// SecurityContextFrom returns the SecurityContext attached to ctx.
// If none was attached, the request is treated as anonymous.
func SecurityContextFrom(ctx context.Context) SecurityContext {
	sc, _ := ctx.Value(securityContextKey{}).(SecurityContext)
	return sc
}

package core

import (
	"context"
	"errors"
	"slices"
)

// ErrPrincipalNotFound is returned by a PrincipalStore when no credential exists for a username.
var ErrPrincipalNotFound = errors.New("principal not found")

// Credential is the stored record of a user that may authenticate against the API.
// It is owned by the user-management collaborator; the security layer only reads it.
type Credential struct {
	// Username is the unique login name and the subject of issued tokens.
	Username string `json:"username" db:"username"`

	// PasswordHash is the self-describing (bcrypt) hash of the user's password.
	PasswordHash string `json:"-" db:"password_hash"`

	// Authorities are the roles or privileges granted to the user (e.g. "ROLE_ADMIN").
	Authorities []string `json:"authorities" db:"-"`
}

// Clone returns a deep copy, so callers cannot mutate a stored record through a shared slice.
func (c Credential) Clone() Credential {
	c.Authorities = slices.Clone(c.Authorities)
	return c
}

// HasAuthority reports whether the credential carries the given authority.
func (c Credential) HasAuthority(authority string) bool {
	return slices.Contains(c.Authorities, authority)
}

// PrincipalStore resolves credentials by username.
// Implementations must be safe for concurrent use and must not mutate state on lookup.
type PrincipalStore interface {
	// LoadByUsername returns the credential for username, or ErrPrincipalNotFound.
	LoadByUsername(ctx context.Context, username string) (*Credential, error)
}

// PrincipalLister is implemented by stores that can enumerate their principals.
type PrincipalLister interface {
	List(ctx context.Context) ([]Credential, error)
}

// PasswordHasher hashes secrets for storage and verifies plaintexts against stored hashes.
type PasswordHasher interface {
	// Hash returns a salted, self-describing hash of plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches hash.
	Verify(plaintext, hash string) bool
}

// Package token encodes and verifies the signed session tokens handed out on login.
//
// Tokens are HS256 JWTs carrying only the subject, issue time and expiry (plus the issuer,
// when one is configured). Nothing about issued tokens is stored server-side: a token is
// valid as long as its signature verifies and its expiry lies in the future.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the minimum length of the signing key in bytes.
const MinKeyLength = 32

var (
	ErrMalformed    = errors.New("token is malformed")
	ErrBadSignature = errors.New("token signature is invalid")
	ErrExpired      = errors.New("token is expired")
)

// Claims are the verified contents of a token.
type Claims struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec issues and verifies tokens with a single process-wide key.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	key    []byte
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

type Option func(*Codec)

// WithIssuer sets the "iss" claim written on Encode and required on Decode.
func WithIssuer(issuer string) Option {
	return func(c *Codec) {
		c.issuer = issuer
	}
}

// WithClock replaces the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec creates a codec signing with key.
func NewCodec(key []byte, opts ...Option) (*Codec, error) {
	if len(key) < MinKeyLength {
		return nil, fmt.Errorf("signing key must be at least %d bytes, got %d", MinKeyLength, len(key))
	}
	c := &Codec{
		key: append([]byte(nil), key...),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}
	c.parser = jwt.NewParser(parserOpts...)
	return c, nil
}

// ValidateTTL checks that ttl is a positive whole number of seconds. Token timestamps have
// second precision, so any other ttl would put exp before issuedAt+ttl.
func ValidateTTL(ttl time.Duration) error {
	if ttl < time.Second {
		return fmt.Errorf("ttl must be at least 1s, got %s", ttl)
	}
	if ttl%time.Second != 0 {
		return fmt.Errorf("ttl must be a whole number of seconds, got %s", ttl)
	}
	return nil
}

// Encode returns a signed token for subject, valid from issuedAt for ttl.
// issuedAt is truncated to whole seconds, the precision of the encoded timestamps.
func (c *Codec) Encode(subject string, issuedAt time.Time, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("subject must not be empty")
	}
	if err := ValidateTTL(ttl); err != nil {
		return "", err
	}

	iat := issuedAt.Truncate(time.Second)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(iat.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Decode verifies tokenString and returns its claims.
// The returned error wraps exactly one of ErrMalformed, ErrBadSignature or ErrExpired.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	// the signature covers everything before the last dot and is checked before any
	// part of the token is decoded.
	idx := strings.LastIndexByte(tokenString, '.')
	if idx <= 0 {
		return nil, ErrMalformed
	}
	signingInput, encodedSig := tokenString[:idx], tokenString[idx+1:]

	sig, err := c.parser.DecodeSegment(encodedSig)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding signature: %v", ErrBadSignature, err)
	}
	if err := jwt.SigningMethodHS256.Verify(signingInput, sig, c.key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	var claims jwt.RegisteredClaims
	_, err = c.parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.key, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrMalformed)
	}

	out := &Claims{
		Subject:   claims.Subject,
		Issuer:    claims.Issuer,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// classify maps a jwt parse error to one of the package's sentinel errors.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

// Reason returns a short label for a Decode error, used for logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrBadSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}

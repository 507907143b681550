package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/evcraddock/realty-crm/internal/clock"
)

// DefaultTokenTTL is used when no TTL is configured.
const DefaultTokenTTL = 30 * time.Minute

// ErrUnauthenticated is the parent of every authentication failure.
var ErrUnauthenticated = errors.New("authentication failed")

var (
	ErrInvalidSignature   = fmt.Errorf("%w: invalid token signature", ErrUnauthenticated)
	ErrExpired            = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrMalformed          = fmt.Errorf("%w: malformed token", ErrUnauthenticated)
	ErrInvalidCredentials = fmt.Errorf("%w: incorrect username or password", ErrUnauthenticated)
	ErrInactiveUser       = fmt.Errorf("%w: user is inactive", ErrUnauthenticated)
)

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokenIssuer creates an issuer. A zero ttl selects DefaultTokenTTL.
func NewTokenIssuer(secret string, ttl time.Duration, clk clock.Clock) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, clock: clk}
}

// Issue returns a signed token for subject and its expiry.
func (i *TokenIssuer) Issue(subject string) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, fmt.Errorf("issuing token: empty subject")
	}

	now := i.clock.Now()
	expiresAt := now.Add(i.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of token and returns its subject.
// Errors are ErrInvalidSignature, ErrExpired or ErrMalformed.
func (i *TokenIssuer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", ErrInvalidSignature
	default:
		return "", fmt.Errorf("%w (%v)", ErrMalformed, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w (missing subject)", ErrMalformed)
	}

	return claims.Subject, nil
}

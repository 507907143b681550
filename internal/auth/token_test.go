package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/evcraddock/realty-crm/internal/clock"
)

var tokenEpoch = time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)

func TestTokenIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("secret", 30*time.Minute, clock.NewFixed(tokenEpoch))

	token, expiresAt, err := issuer.Issue("admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if !expiresAt.Equal(tokenEpoch.Add(30 * time.Minute)) {
		t.Errorf("expiresAt = %v", expiresAt)
	}

	subject, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "admin" {
		t.Errorf("subject = %q, want %q", subject, "admin")
	}
}

func TestTokenExpired(t *testing.T) {
	clk := clock.NewFixed(tokenEpoch)
	issuer := NewTokenIssuer("secret", 30*time.Minute, clk)

	token, _, err := issuer.Issue("admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clk.Advance(29 * time.Minute)
	if _, err := issuer.Verify(token); err != nil {
		t.Fatalf("verify before expiry: %v", err)
	}

	clk.Advance(2 * time.Minute)
	_, err = issuer.Verify(token)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
	if !errors.Is(err, ErrUnauthenticated) {
		t.Error("expired error should be an authentication failure")
	}
}

func TestTokenWrongKey(t *testing.T) {
	clk := clock.NewFixed(tokenEpoch)
	token, _, err := NewTokenIssuer("secret-a", 0, clk).Issue("admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = NewTokenIssuer("secret-b", 0, clk).Verify(token)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}
}

func TestTokenTampered(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0, clock.NewFixed(tokenEpoch))
	token, _, err := issuer.Issue("admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	forged, _, err := NewTokenIssuer("other", 0, clock.NewFixed(tokenEpoch)).Issue("root")
	if err != nil {
		t.Fatalf("issue forged: %v", err)
	}
	// Swap in the payload of a different token, keep the original signature.
	parts[1] = strings.Split(forged, ".")[1]

	_, err = issuer.Verify(strings.Join(parts, "."))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}
}

func TestTokenUnexpectedAlgorithm(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0, clock.NewFixed(tokenEpoch))

	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(tokenEpoch.Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}
}

func TestTokenMalformed(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0, clock.NewFixed(tokenEpoch))

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := issuer.Verify(token)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("Verify(%q) err = %v, want ErrMalformed", token, err)
		}
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("Verify(%q) should be an authentication failure", token)
		}
	}
}

func TestTokenMissingSubject(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0, clock.NewFixed(tokenEpoch))

	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(tokenEpoch.Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := issuer.Verify(token); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestTokenIssueEmptySubject(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0, nil)
	if _, _, err := issuer.Issue(""); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

package identity

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, secret string, subject, tokenID string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        tokenID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

type staticRevocations map[string]bool

func (s staticRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s[tokenID], nil
}

func TestVerifyValidToken(t *testing.T) {
	t.Parallel()

	v := NewJWTVerifier(testSecret, nil)
	token := mintToken(t, testSecret, "user-1", "", time.Now().Add(time.Hour))

	subject, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != "user-1" {
		t.Errorf("subject = %q, want %q", subject, "user-1")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	t.Parallel()

	v := NewJWTVerifier(testSecret, nil)
	token := mintToken(t, testSecret, "user-1", "", time.Now().Add(-time.Hour))

	_, err := v.Verify(context.Background(), token)
	if err == nil {
		t.Fatal("expected error for expired token")
	}
	if got := ReasonOf(err); got != ReasonExpired {
		t.Errorf("reason = %q, want %q", got, ReasonExpired)
	}
}

func TestVerifyMalformedToken(t *testing.T) {
	t.Parallel()

	v := NewJWTVerifier(testSecret, nil)
	_, err := v.Verify(context.Background(), "not-a-token")
	if err == nil {
		t.Fatal("expected error for malformed token")
	}
	if got := ReasonOf(err); got != ReasonMalformed {
		t.Errorf("reason = %q, want %q", got, ReasonMalformed)
	}
}

func TestVerifyWrongSignature(t *testing.T) {
	t.Parallel()

	v := NewJWTVerifier(testSecret, nil)
	token := mintToken(t, "other-secret", "user-1", "", time.Now().Add(time.Hour))

	_, err := v.Verify(context.Background(), token)
	if err == nil {
		t.Fatal("expected error for token signed with wrong secret")
	}
	if got := ReasonOf(err); got != ReasonOther {
		t.Errorf("reason = %q, want %q", got, ReasonOther)
	}
}

func TestVerifyRevokedToken(t *testing.T) {
	t.Parallel()

	v := NewJWTVerifier(testSecret, staticRevocations{"tok-1": true})
	token := mintToken(t, testSecret, "user-1", "tok-1", time.Now().Add(time.Hour))

	_, err := v.Verify(context.Background(), token)
	if err == nil {
		t.Fatal("expected error for revoked token")
	}
	if got := ReasonOf(err); got != ReasonRevoked {
		t.Errorf("reason = %q, want %q", got, ReasonRevoked)
	}
}

package identity

import (
	"context"
	"errors"
	"fmt"

	jwt "github.com/golang-jwt/jwt/v5"
)

// FailureReason classifies why token verification failed. The HTTP layer
// maps reasons to 401 or 403.
type FailureReason string

const (
	ReasonMissing   FailureReason = "missing"
	ReasonMalformed FailureReason = "malformed"
	ReasonExpired   FailureReason = "expired"
	ReasonRevoked   FailureReason = "revoked"
	ReasonOther     FailureReason = "other"
)

// VerifyError carries the classified failure reason alongside the cause.
type VerifyError struct {
	Reason FailureReason
	Err    error
}

func (e *VerifyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Reason, e.Err)
	}
	return "token " + string(e.Reason)
}

func (e *VerifyError) Unwrap() error { return e.Err }

// ReasonOf extracts the failure reason from an error, defaulting to other.
func ReasonOf(err error) FailureReason {
	var verr *VerifyError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return ReasonOther
}

// TokenVerifier is the boundary to the external identity provider:
// it resolves a bearer token to a subject id or fails with a reason.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// RevocationStore answers whether a token id has been revoked since issue.
type RevocationStore interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type claims struct {
	SubjectID string `json:"sub"`
	jwt.RegisteredClaims
}

type jwtVerifier struct {
	secret      []byte
	revocations RevocationStore
}

// NewJWTVerifier validates HS256 tokens signed by the identity provider.
// revocations may be nil when no revocation list is configured.
func NewJWTVerifier(secret string, revocations RevocationStore) TokenVerifier {
	return &jwtVerifier{secret: []byte(secret), revocations: revocations}
}

func (v *jwtVerifier) Verify(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", &VerifyError{Reason: ReasonExpired, Err: err}
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return "", &VerifyError{Reason: ReasonMalformed, Err: err}
		}
		return "", &VerifyError{Reason: ReasonOther, Err: err}
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return "", &VerifyError{Reason: ReasonMalformed, Err: errors.New("invalid token claims")}
	}
	if c.SubjectID == "" {
		c.SubjectID = c.Subject
	}
	if c.SubjectID == "" {
		return "", &VerifyError{Reason: ReasonMalformed, Err: errors.New("token carries no subject")}
	}

	if v.revocations != nil && c.ID != "" {
		revoked, err := v.revocations.IsRevoked(ctx, c.ID)
		if err != nil {
			return "", &VerifyError{Reason: ReasonOther, Err: err}
		}
		if revoked {
			return "", &VerifyError{Reason: ReasonRevoked}
		}
	}

	return c.SubjectID, nil
}

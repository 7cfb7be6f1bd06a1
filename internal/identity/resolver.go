package identity

import (
	"context"

	"go.uber.org/zap"
)

// Identity is the outcome of resolving a request's credentials.
type Identity struct {
	SubjectID       string
	IsAuthenticated bool
}

// Anonymous is the identity of an unauthenticated visitor.
var Anonymous = Identity{}

// Resolver turns request credentials into an Identity.
type Resolver struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewResolver constructs a resolver.
func NewResolver(verifier TokenVerifier, logger *zap.Logger) *Resolver {
	return &Resolver{verifier: verifier, logger: logger}
}

// ResolveSubmission resolves identity for ticket submission, the one
// operation open to anonymous visitors. A body-supplied user id is
// trusted as-is and takes precedence over the token; otherwise a present
// token is verified, and verification failure degrades to anonymous
// rather than rejecting the submission.
func (r *Resolver) ResolveSubmission(ctx context.Context, bodyUserID, token string) Identity {
	if bodyUserID != "" {
		return Identity{SubjectID: bodyUserID, IsAuthenticated: true}
	}
	if token == "" {
		return Anonymous
	}
	subjectID, err := r.verifier.Verify(ctx, token)
	if err != nil {
		r.logger.Warn("submission token rejected, continuing anonymous",
			zap.String("reason", string(ReasonOf(err))), zap.Error(err))
		return Anonymous
	}
	return Identity{SubjectID: subjectID, IsAuthenticated: true}
}

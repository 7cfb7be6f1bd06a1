package identity

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/koruflicks/support-service/pkg/util"
)

const subjectKey = "auth_subject"

// Middleware gates routes that require an authenticated caller.
type Middleware struct {
	verifier TokenVerifier
	header   string
}

// NewMiddleware constructs the authentication gate reading tokens from
// the given request header.
func NewMiddleware(verifier TokenVerifier, header string) *Middleware {
	return &Middleware{verifier: verifier, header: header}
}

// Require rejects the request before any ticket logic runs unless a
// valid token is presented. Missing, malformed or expired tokens get a
// 401; revoked tokens get a 403.
func (m *Middleware) Require(c *fiber.Ctx) error {
	var subjectID string
	var err error
	if token := c.Get(m.header); token == "" {
		err = &VerifyError{Reason: ReasonMissing}
	} else {
		subjectID, err = m.verifier.Verify(c.UserContext(), token)
	}
	if err != nil {
		switch ReasonOf(err) {
		case ReasonMissing:
			return apperrors.NewUnauthorized("authentication required")
		case ReasonExpired:
			return apperrors.NewUnauthorized("token expired")
		case ReasonRevoked:
			return apperrors.NewForbidden("token revoked")
		case ReasonMalformed:
			return apperrors.NewUnauthorized("malformed token")
		default:
			return apperrors.NewUnauthorized("invalid token")
		}
	}

	c.Locals(subjectKey, subjectID)
	return c.Next()
}

// SubjectFromContext retrieves the authenticated subject id.
func SubjectFromContext(c *fiber.Ctx) (string, bool) {
	val := c.Locals(subjectKey)
	if val == nil {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}

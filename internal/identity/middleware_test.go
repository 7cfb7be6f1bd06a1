package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/koruflicks/support-service/pkg/util"
)

func newGatedApp(verifier TokenVerifier) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"message": domainErr.Message})
		},
	})
	m := NewMiddleware(verifier, "X-Auth-Token")
	app.Get("/protected", m.Require, func(c *fiber.Ctx) error {
		subject, _ := SubjectFromContext(c)
		return c.SendString(subject)
	})
	return app
}

func gateStatus(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("X-Auth-Token", token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestRequireMissingToken(t *testing.T) {
	t.Parallel()

	app := newGatedApp(NewJWTVerifier(testSecret, nil))
	if got := gateStatus(t, app, ""); got != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", got)
	}
}

func TestRequireExpiredToken(t *testing.T) {
	t.Parallel()

	app := newGatedApp(NewJWTVerifier(testSecret, nil))
	expired := mintToken(t, testSecret, "user-1", "", time.Now().Add(-time.Hour))
	if got := gateStatus(t, app, expired); got != http.StatusUnauthorized {
		t.Errorf("expired token: status = %d, want 401", got)
	}
}

func TestRequireRevokedTokenForbidden(t *testing.T) {
	t.Parallel()

	// Revocation is the one failure that means "we know who you are and
	// you may not proceed", so it gets a 403 rather than a 401.
	verifier := NewJWTVerifier(testSecret, staticRevocations{"tok-9": true})
	app := newGatedApp(verifier)

	revoked := mintToken(t, testSecret, "user-1", "tok-9", time.Now().Add(time.Hour))
	if got := gateStatus(t, app, revoked); got != http.StatusForbidden {
		t.Errorf("revoked token: status = %d, want 403", got)
	}

	live := mintToken(t, testSecret, "user-1", "tok-1", time.Now().Add(time.Hour))
	if got := gateStatus(t, app, live); got != http.StatusOK {
		t.Errorf("unrevoked token: status = %d, want 200", got)
	}
}

func TestRequireValidTokenSetsSubject(t *testing.T) {
	t.Parallel()

	app := newGatedApp(NewJWTVerifier(testSecret, nil))
	token := mintToken(t, testSecret, "user-7", "", time.Now().Add(time.Hour))

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set("X-Auth-Token", token)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := make([]byte, 32)
	n, _ := resp.Body.Read(body)
	if got := string(body[:n]); got != "user-7" {
		t.Errorf("subject in context = %q, want user-7", got)
	}
}

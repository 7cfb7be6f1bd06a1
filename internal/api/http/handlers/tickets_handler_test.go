package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/koruflicks/support-service/internal/access"
	httptransport "github.com/koruflicks/support-service/internal/api/http"
	"github.com/koruflicks/support-service/internal/api/http/handlers"
	"github.com/koruflicks/support-service/internal/domain"
	"github.com/koruflicks/support-service/internal/identity"
	"github.com/koruflicks/support-service/internal/observability"
	"github.com/koruflicks/support-service/internal/repository"
	"github.com/koruflicks/support-service/internal/service"
)

const (
	testSecret  = "handler-test-secret"
	tokenHeader = "X-Auth-Token"
)

type silentNotifier struct {
	fail bool
}

func (n *silentNotifier) TicketCreated(ctx context.Context, ticket *domain.Ticket) error {
	if n.fail {
		return errors.New("smtp: connection refused")
	}
	return nil
}

func (n *silentNotifier) StatusChanged(ctx context.Context, ticket *domain.Ticket, newStatus domain.TicketStatus, adminNotes string) error {
	return nil
}

func (n *silentNotifier) StaffReplied(ctx context.Context, ticket *domain.Ticket, reply *domain.Reply) error {
	return nil
}

func (n *silentNotifier) UserReplied(ctx context.Context, ticket *domain.Ticket, reply *domain.Reply) error {
	return nil
}

type testApp struct {
	app      *fiber.App
	notifier *silentNotifier
}

func newTestApp(t *testing.T, users ...domain.User) *testApp {
	t.Helper()
	logger := zap.NewNop()
	notifier := &silentNotifier{}

	verifier := identity.NewJWTVerifier(testSecret, nil)
	evaluator := access.NewEvaluator(repository.NewMemoryUserRepository(users...), nil, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repository.NewMemoryTicketRepository(),
		ReplyRepo:  repository.NewMemoryReplyRepository(),
		Access:     evaluator,
		Notifier:   notifier,
		Logger:     logger,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Tickets: handlers.NewTicketsHandler(ticketService, identity.NewResolver(verifier, logger), tokenHeader),
		Auth:    identity.NewMiddleware(verifier, tokenHeader),
		Health:  handlers.NewHealthHandler("test", "test", nil, nil),
	})
	return &testApp{app: app, notifier: notifier}
}

func mintToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func (ta *testApp) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(tokenHeader, token)
	}

	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	decoded := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("%s %s: decode response %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func submission() map[string]any {
	return map[string]any{
		"name":        "Alice Example",
		"email":       "alice@example.com",
		"category":    "billing",
		"subject":     "Charged twice",
		"description": "My card was charged twice this month.",
	}
}

func TestSubmitAnonymous(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	status, body := ta.do(t, fiber.MethodPost, "/tickets/submit", "", submission())
	if status != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %v)", status, body)
	}
	number, _ := body["ticketNumber"].(string)
	if !regexp.MustCompile(`^TKT-\d{9}$`).MatchString(number) {
		t.Errorf("ticketNumber = %q, want TKT-\\d{9}", number)
	}
	if id, _ := body["id"].(string); id == "" {
		t.Error("response carries no store id")
	}
	if _, ok := body["message"]; !ok {
		t.Error("response carries no message field")
	}
}

func TestSubmitMissingFieldRejected(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	payload := submission()
	delete(payload, "description")
	status, _ := ta.do(t, fiber.MethodPost, "/tickets/submit", "", payload)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestSubmitNotificationFailureReportsError(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.notifier.fail = true
	status, body := ta.do(t, fiber.MethodPost, "/tickets/submit", "", submission())
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if detail, _ := body["error"].(string); detail == "" {
		t.Error("500 response carries no error detail")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	for _, route := range []struct {
		method string
		path   string
	}{
		{fiber.MethodGet, "/tickets/"},
		{fiber.MethodGet, "/tickets/user/user-1"},
		{fiber.MethodGet, "/tickets/some-id"},
		{fiber.MethodPatch, "/tickets/some-id/status"},
		{fiber.MethodPost, "/tickets/some-id/reply"},
		{fiber.MethodDelete, "/tickets/some-id"},
	} {
		status, _ := ta.do(t, route.method, route.path, "", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want 401", route.method, route.path, status)
		}
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	expired := mintToken(t, "user-1", time.Now().Add(-time.Hour))
	status, _ := ta.do(t, fiber.MethodGet, "/tickets/user/user-1", expired, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
}

func TestListByUserAccessControl(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t,
		domain.User{ID: "user-2", IsAdmin: false},
		domain.User{ID: "staff-1", IsAdmin: true},
	)
	payload := submission()
	payload["userId"] = "user-1"
	if status, _ := ta.do(t, fiber.MethodPost, "/tickets/submit", "", payload); status != http.StatusCreated {
		t.Fatalf("seed submit: status = %d", status)
	}

	stranger := mintToken(t, "user-2", time.Now().Add(time.Hour))
	status, _ := ta.do(t, fiber.MethodGet, "/tickets/user/user-1", stranger, nil)
	if status != http.StatusForbidden {
		t.Errorf("stranger: status = %d, want 403", status)
	}

	admin := mintToken(t, "staff-1", time.Now().Add(time.Hour))
	status, body := ta.do(t, fiber.MethodGet, "/tickets/user/user-1", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", status)
	}
	tickets, _ := body["tickets"].([]any)
	if len(tickets) != 1 {
		t.Errorf("admin sees %d tickets, want 1", len(tickets))
	}
}

func TestStatusTransitionAndReplyFlow(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, domain.User{ID: "staff-1", IsAdmin: true})
	payload := submission()
	payload["userId"] = "user-1"
	_, created := ta.do(t, fiber.MethodPost, "/tickets/submit", "", payload)
	ticketID, _ := created["id"].(string)

	owner := mintToken(t, "user-1", time.Now().Add(time.Hour))
	staff := mintToken(t, "staff-1", time.Now().Add(time.Hour))

	status, body := ta.do(t, fiber.MethodPatch, "/tickets/"+ticketID+"/status", staff, map[string]any{
		"status":     "resolved",
		"adminNotes": "refund issued",
	})
	if status != http.StatusOK {
		t.Fatalf("transition: status = %d (body: %v)", status, body)
	}
	if got, _ := body["status"].(string); got != "resolved" {
		t.Errorf("transition response status = %q, want resolved", got)
	}

	status, _ = ta.do(t, fiber.MethodPatch, "/tickets/"+ticketID+"/status", staff, map[string]any{
		"status": "archived",
	})
	if status != http.StatusBadRequest {
		t.Errorf("unknown status value: status = %d, want 400", status)
	}

	status, body = ta.do(t, fiber.MethodPost, "/tickets/"+ticketID+"/reply", owner, map[string]any{
		"message": "thanks, confirmed",
	})
	if status != http.StatusOK {
		t.Fatalf("reply: status = %d (body: %v)", status, body)
	}
	reply, _ := body["reply"].(map[string]any)
	if got, _ := reply["userId"].(string); got != "user-1" {
		t.Errorf("reply userId = %q, want user-1", got)
	}

	status, body = ta.do(t, fiber.MethodGet, "/tickets/"+ticketID, owner, nil)
	if status != http.StatusOK {
		t.Fatalf("get: status = %d", status)
	}
	ticket, _ := body["ticket"].(map[string]any)
	replies, _ := ticket["replies"].([]any)
	if len(replies) != 1 {
		t.Errorf("ticket has %d replies, want 1", len(replies))
	}
	if got, _ := ticket["adminNotes"].(string); got != "refund issued" {
		t.Errorf("adminNotes = %q, want %q", got, "refund issued")
	}
}

func TestDeleteAccessControl(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t,
		domain.User{ID: "user-1", IsAdmin: false},
		domain.User{ID: "staff-1", IsAdmin: true},
	)
	payload := submission()
	payload["userId"] = "user-1"
	_, created := ta.do(t, fiber.MethodPost, "/tickets/submit", "", payload)
	ticketID, _ := created["id"].(string)

	owner := mintToken(t, "user-1", time.Now().Add(time.Hour))
	admin := mintToken(t, "staff-1", time.Now().Add(time.Hour))

	status, _ := ta.do(t, fiber.MethodDelete, "/tickets/"+ticketID, owner, nil)
	if status != http.StatusForbidden {
		t.Errorf("owner delete: status = %d, want 403", status)
	}

	status, _ = ta.do(t, fiber.MethodDelete, "/tickets/missing-id", admin, nil)
	if status != http.StatusNotFound {
		t.Errorf("admin delete of unknown id: status = %d, want 404", status)
	}

	status, _ = ta.do(t, fiber.MethodDelete, "/tickets/"+ticketID, admin, nil)
	if status != http.StatusOK {
		t.Errorf("admin delete: status = %d, want 200", status)
	}

	status, _ = ta.do(t, fiber.MethodGet, "/tickets/"+ticketID, admin, nil)
	if status != http.StatusNotFound {
		t.Errorf("fetch after delete: status = %d, want 404", status)
	}
}

func TestListAllRequiresAdmin(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t,
		domain.User{ID: "user-1", IsAdmin: false},
		domain.User{ID: "staff-1", IsAdmin: true},
	)
	ta.do(t, fiber.MethodPost, "/tickets/submit", "", submission())

	user := mintToken(t, "user-1", time.Now().Add(time.Hour))
	status, _ := ta.do(t, fiber.MethodGet, "/tickets/", user, nil)
	if status != http.StatusForbidden {
		t.Errorf("non-admin list-all: status = %d, want 403", status)
	}

	admin := mintToken(t, "staff-1", time.Now().Add(time.Hour))
	status, body := ta.do(t, fiber.MethodGet, "/tickets/", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("admin list-all: status = %d", status)
	}
	tickets, _ := body["tickets"].([]any)
	if len(tickets) != 1 {
		t.Errorf("list-all = %d tickets, want 1", len(tickets))
	}
}

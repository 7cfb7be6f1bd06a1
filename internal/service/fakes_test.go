package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/koruflicks/support-service/internal/access"
	"github.com/koruflicks/support-service/internal/domain"
	"github.com/koruflicks/support-service/internal/identity"
	"github.com/koruflicks/support-service/internal/repository"
	apperrors "github.com/koruflicks/support-service/pkg/util"
)

// notifierRecorder captures dispatched notifications instead of sending
// mail, and can be told to fail every send.
type notifierRecorder struct {
	created       []*domain.Ticket
	statusChanges []domain.TicketStatus
	staffReplies  []*domain.Reply
	userReplies   []*domain.Reply
	failAll       bool
}

var errSendFailed = errors.New("smtp: connection refused")

func (n *notifierRecorder) TicketCreated(ctx context.Context, ticket *domain.Ticket) error {
	if n.failAll {
		return errSendFailed
	}
	n.created = append(n.created, ticket)
	return nil
}

func (n *notifierRecorder) StatusChanged(ctx context.Context, ticket *domain.Ticket, newStatus domain.TicketStatus, adminNotes string) error {
	if n.failAll {
		return errSendFailed
	}
	n.statusChanges = append(n.statusChanges, newStatus)
	return nil
}

func (n *notifierRecorder) StaffReplied(ctx context.Context, ticket *domain.Ticket, reply *domain.Reply) error {
	if n.failAll {
		return errSendFailed
	}
	n.staffReplies = append(n.staffReplies, reply)
	return nil
}

func (n *notifierRecorder) UserReplied(ctx context.Context, ticket *domain.Ticket, reply *domain.Reply) error {
	if n.failAll {
		return errSendFailed
	}
	n.userReplies = append(n.userReplies, reply)
	return nil
}

// testEnv wires the lifecycle engine against in-memory stores.
type testEnv struct {
	service  *TicketService
	tickets  repository.TicketRepository
	replies  repository.ReplyRepository
	notifier *notifierRecorder
}

func newTestEnv(users ...domain.User) *testEnv {
	tickets := repository.NewMemoryTicketRepository()
	replies := repository.NewMemoryReplyRepository()
	notifier := &notifierRecorder{}
	evaluator := access.NewEvaluator(repository.NewMemoryUserRepository(users...), nil, zap.NewNop())

	return &testEnv{
		service: NewTicketService(TicketDependencies{
			TicketRepo: tickets,
			ReplyRepo:  replies,
			Access:     evaluator,
			Notifier:   notifier,
			Logger:     zap.NewNop(),
		}),
		tickets:  tickets,
		replies:  replies,
		notifier: notifier,
	}
}

func validSubmission() SubmitInput {
	return SubmitInput{
		Name:        "Alice Example",
		Email:       "alice@example.com",
		Category:    "general",
		Subject:     "Playback keeps buffering",
		Description: "The stream stops every few minutes.",
	}
}

func asUser(id string) identity.Identity {
	return identity.Identity{SubjectID: id, IsAuthenticated: true}
}

func httpStatusOf(err error) int {
	if err == nil {
		return 0
	}
	return apperrors.ToDomainError(err).HTTPStatus
}

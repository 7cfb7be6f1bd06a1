package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/koruflicks/support-service/internal/access"
	"github.com/koruflicks/support-service/internal/domain"
	"github.com/koruflicks/support-service/internal/identity"
	"github.com/koruflicks/support-service/internal/repository"
	apperrors "github.com/koruflicks/support-service/pkg/util"
)

// Notifier is the slice of the notification dispatcher the lifecycle
// engine drives.
type Notifier interface {
	TicketCreated(ctx context.Context, ticket *domain.Ticket) error
	StatusChanged(ctx context.Context, ticket *domain.Ticket, newStatus domain.TicketStatus, adminNotes string) error
	StaffReplied(ctx context.Context, ticket *domain.Ticket, reply *domain.Reply) error
	UserReplied(ctx context.Context, ticket *domain.Ticket, reply *domain.Reply) error
}

// TicketService owns the ticket lifecycle: creation, status transitions,
// reply threading and the notification fan-out on designated events.
type TicketService struct {
	tickets  repository.TicketRepository
	replies  repository.ReplyRepository
	acl      *access.Evaluator
	notifier Notifier
	logger   *zap.Logger
}

// TicketDependencies bundles collaborators for the lifecycle engine.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	ReplyRepo  repository.ReplyRepository
	Access     *access.Evaluator
	Notifier   Notifier
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:  deps.TicketRepo,
		replies:  deps.ReplyRepo,
		acl:      deps.Access,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}
}

// SubmitInput describes a ticket submission payload.
type SubmitInput struct {
	Name        string
	Email       string
	Category    string
	Subject     string
	Description string
	Attachments []string
}

// SubmitResult reports the two outcomes of a submission separately: the
// ticket is committed before notifications are attempted, so a send
// failure does not undo the write.
type SubmitResult struct {
	Ticket          *domain.Ticket
	NotificationErr error
}

// Submit validates and persists a new ticket, then sends the submitter
// confirmation and the staff notice.
func (s *TicketService) Submit(ctx context.Context, who identity.Identity, input SubmitInput) (*SubmitResult, error) {
	if field, ok := missingField(input); ok {
		return nil, apperrors.NewValidationError(field + " is required")
	}

	ticket := &domain.Ticket{
		TicketNumber: domain.NewTicketNumber(time.Now()),
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		Category:     strings.TrimSpace(input.Category),
		Subject:      strings.TrimSpace(input.Subject),
		Description:  input.Description,
		Status:       domain.TicketStatusOpen,
		Priority:     domain.PriorityForCategory(strings.TrimSpace(input.Category)),
		IsLoggedIn:   who.IsAuthenticated,
		Attachments:  input.Attachments,
	}
	if who.IsAuthenticated {
		subjectID := who.SubjectID
		ticket.UserID = &subjectID
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError("failed to create ticket", err)
	}
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("priority", string(ticket.Priority)))

	return &SubmitResult{
		Ticket:          ticket,
		NotificationErr: s.notifier.TicketCreated(ctx, ticket),
	}, nil
}

// TransitionResult reports a committed status change and, separately,
// whether the submitter notice went out.
type TransitionResult struct {
	Status          domain.TicketStatus
	NotificationErr error
}

// Transition overwrites the ticket's status. Any current status may be
// overwritten, including moving a closed ticket back to open; staff use
// this for corrections. Transitions to resolved or closed notify the
// submitter when an email is on file.
func (s *TicketService) Transition(ctx context.Context, actorID, ticketID string, newStatus domain.TicketStatus, adminNotes *string) (*TransitionResult, error) {
	if newStatus == "" {
		return nil, apperrors.NewValidationError("status is required")
	}
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown status value")
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	update := repository.TicketUpdate{
		Status:     &newStatus,
		AdminNotes: adminNotes,
		UpdatedAt:  &now,
		UpdatedBy:  &actorID,
	}
	if err := s.tickets.Update(ctx, ticketID, update); err != nil {
		return nil, apperrors.NewInternalError("failed to update ticket status", err)
	}

	result := &TransitionResult{Status: newStatus}
	if (newStatus == domain.TicketStatusResolved || newStatus == domain.TicketStatusClosed) && ticket.Email != "" {
		notes := ""
		if adminNotes != nil {
			notes = *adminNotes
		}
		result.NotificationErr = s.notifier.StatusChanged(ctx, ticket, newStatus, notes)
	}
	return result, nil
}

// ReplyResult reports an appended reply and, separately, whether the
// counterpart notification went out.
type ReplyResult struct {
	Reply           *domain.Reply
	NotificationErr error
}

// Reply appends to the ticket's thread. The first reply ever moves the
// ticket to in-progress; later staff replies do too, while later
// submitter replies leave the status alone. Staff replies notify the
// submitter; submitter replies notify the staff address.
func (s *TicketService) Reply(ctx context.Context, actorID, ticketID, message string, isStaff bool) (*ReplyResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperrors.NewValidationError("message is required")
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	existing, err := s.replies.CountByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read ticket thread", err)
	}

	reply := &domain.Reply{
		TicketID: ticketID,
		Message:  message,
		UserID:   actorID,
		IsStaff:  isStaff,
	}
	if err := s.replies.Append(ctx, reply); err != nil {
		return nil, apperrors.NewInternalError("failed to append reply", err)
	}

	now := time.Now()
	update := repository.TicketUpdate{UpdatedAt: &now, UpdatedBy: &actorID}
	if existing == 0 || isStaff {
		inProgress := domain.TicketStatusInProgress
		update.Status = &inProgress
	}
	if err := s.tickets.Update(ctx, ticketID, update); err != nil {
		return nil, apperrors.NewInternalError("failed to update ticket", err)
	}

	result := &ReplyResult{Reply: reply}
	if isStaff {
		if ticket.Email != "" {
			result.NotificationErr = s.notifier.StaffReplied(ctx, ticket, reply)
		}
	} else {
		result.NotificationErr = s.notifier.UserReplied(ctx, ticket, reply)
	}
	return result, nil
}

// Delete hard-deletes a ticket. Only admins may delete; the submitter
// cannot remove their own ticket.
func (s *TicketService) Delete(ctx context.Context, actorID, ticketID string) error {
	isAdmin, err := s.acl.IsAdmin(ctx, actorID)
	if err != nil {
		return apperrors.NewInternalError("failed to check permissions", err)
	}
	if !isAdmin {
		return apperrors.NewForbidden("admin access required")
	}

	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket")
		}
		return apperrors.NewInternalError("failed to delete ticket", err)
	}
	s.logger.Info("ticket deleted", zap.String("ticket_id", ticketID), zap.String("deleted_by", actorID))
	return nil
}

// Get fetches one ticket with its thread, enforcing owner-or-admin.
// Anonymous submissions have no owner, so only admins can fetch them.
func (s *TicketService) Get(ctx context.Context, actorID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.acl.CanAccess(ctx, actorID, ticket.OwnerID())
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check permissions", err)
	}
	if !allowed {
		return nil, apperrors.NewForbidden("access denied")
	}

	replies, err := s.replies.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load ticket thread", err)
	}
	ticket.Replies = replies
	return ticket, nil
}

// ListAll returns every ticket, newest first. Admin only.
func (s *TicketService) ListAll(ctx context.Context, actorID string) ([]domain.Ticket, error) {
	isAdmin, err := s.acl.IsAdmin(ctx, actorID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check permissions", err)
	}
	if !isAdmin {
		return nil, apperrors.NewForbidden("admin access required")
	}

	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list tickets", err)
	}
	return tickets, nil
}

// ListByOwner returns the tickets owned by ownerID, newest first,
// enforcing owner-or-admin before querying.
func (s *TicketService) ListByOwner(ctx context.Context, actorID, ownerID string) ([]domain.Ticket, error) {
	allowed, err := s.acl.CanAccess(ctx, actorID, ownerID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check permissions", err)
	}
	if !allowed {
		return nil, apperrors.NewForbidden("access denied")
	}

	tickets, err := s.tickets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list tickets", err)
	}
	return tickets, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, apperrors.NewInternalError("failed to load ticket", err)
	}
	return ticket, nil
}

func missingField(input SubmitInput) (string, bool) {
	fields := []struct {
		name  string
		value string
	}{
		{"name", input.Name},
		{"email", input.Email},
		{"category", input.Category},
		{"subject", input.Subject},
		{"description", input.Description},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return f.name, true
		}
	}
	return "", false
}

package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/koruflicks/support-service/internal/config"
	"github.com/koruflicks/support-service/internal/domain"
	"github.com/koruflicks/support-service/internal/mail"
)

// NotificationService composes and sends the transactional emails tied
// to ticket lifecycle events. Send failures are returned to the caller;
// the lifecycle engine decides how they surface.
type NotificationService struct {
	mailer mail.Mailer
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(mailer mail.Mailer, cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{mailer: mailer, cfg: cfg, logger: logger}
}

// TicketCreated sends the submitter confirmation and the staff notice
// for a freshly created ticket. The staff notice sets reply-to to the
// submitter so staff can answer directly. Both sends are always
// attempted; a failed confirmation must not starve the staff queue.
func (n *NotificationService) TicketCreated(ctx context.Context, ticket *domain.Ticket) error {
	return errors.Join(
		n.sendSubmitterConfirmation(ctx, ticket),
		n.sendStaffNotice(ctx, ticket),
	)
}

func (n *NotificationService) sendSubmitterConfirmation(ctx context.Context, ticket *domain.Ticket) error {
	body, err := mail.RenderNotice(mail.Notice{
		Heading:  "We received your support request",
		Greeting: fmt.Sprintf("Hi %s,", ticket.Name),
		Intro:    "Thanks for getting in touch. Our team will look at your request and get back to you as soon as we can.",
		Details:  ticketDetails(ticket),
		Outro:    "Keep this email for your records; quote the ticket number in any follow-up.",
	})
	if err != nil {
		return fmt.Errorf("render submitter confirmation: %w", err)
	}
	return n.mailer.Send(ctx, mail.Message{
		To:       ticket.Email,
		Subject:  fmt.Sprintf("Support ticket %s received", ticket.TicketNumber),
		HTMLBody: body,
	})
}

func (n *NotificationService) sendStaffNotice(ctx context.Context, ticket *domain.Ticket) error {
	body, err := mail.RenderNotice(mail.Notice{
		Heading: "New support ticket",
		Intro:   fmt.Sprintf("%s (%s) filed a new %s-priority ticket.", ticket.Name, ticket.Email, ticket.Priority),
		Details: ticketDetails(ticket),
		Outro:   "Reply to this email to respond to the submitter directly.",
	})
	if err != nil {
		return fmt.Errorf("render staff notice: %w", err)
	}
	return n.mailer.Send(ctx, mail.Message{
		To:       n.cfg.StaffEmail,
		Subject:  fmt.Sprintf("[%s] New ticket %s: %s", ticket.Priority, ticket.TicketNumber, ticket.Subject),
		HTMLBody: body,
		ReplyTo:  ticket.Email,
	})
}

// StatusChanged notifies the submitter that staff moved their ticket to
// a new status, including any admin notes supplied with the transition.
func (n *NotificationService) StatusChanged(ctx context.Context, ticket *domain.Ticket, newStatus domain.TicketStatus, adminNotes string) error {
	details := []mail.Detail{
		{Label: "Ticket", Value: mail.Plain(ticket.TicketNumber)},
		{Label: "Subject", Value: mail.Plain(ticket.Subject)},
		{Label: "New status", Value: mail.Plain(string(newStatus))},
	}
	if adminNotes != "" {
		details = append(details, mail.Detail{Label: "Notes from our team", Value: mail.Multiline(adminNotes)})
	}
	body, err := mail.RenderNotice(mail.Notice{
		Heading:  "Your support ticket was updated",
		Greeting: fmt.Sprintf("Hi %s,", ticket.Name),
		Intro:    fmt.Sprintf("Your ticket %s is now %s.", ticket.TicketNumber, newStatus),
		Details:  details,
	})
	if err != nil {
		return fmt.Errorf("render status notice: %w", err)
	}
	return n.mailer.Send(ctx, mail.Message{
		To:       ticket.Email,
		Subject:  fmt.Sprintf("Ticket %s is now %s", ticket.TicketNumber, newStatus),
		HTMLBody: body,
	})
}

// StaffReplied notifies the submitter of a new staff reply.
func (n *NotificationService) StaffReplied(ctx context.Context, ticket *domain.Ticket, reply *domain.Reply) error {
	body, err := mail.RenderNotice(mail.Notice{
		Heading:  "New reply on your support ticket",
		Greeting: fmt.Sprintf("Hi %s,", ticket.Name),
		Intro:    fmt.Sprintf("Our support team replied to ticket %s.", ticket.TicketNumber),
		Details: []mail.Detail{
			{Label: "Subject", Value: mail.Plain(ticket.Subject)},
			{Label: "Reply", Value: mail.Multiline(reply.Message)},
		},
	})
	if err != nil {
		return fmt.Errorf("render staff reply notice: %w", err)
	}
	return n.mailer.Send(ctx, mail.Message{
		To:       ticket.Email,
		Subject:  fmt.Sprintf("New reply on ticket %s", ticket.TicketNumber),
		HTMLBody: body,
	})
}

// UserReplied notifies the staff address of a new submitter reply,
// reply-to set to the submitter.
func (n *NotificationService) UserReplied(ctx context.Context, ticket *domain.Ticket, reply *domain.Reply) error {
	body, err := mail.RenderNotice(mail.Notice{
		Heading: "Ticket reply from submitter",
		Intro:   fmt.Sprintf("%s (%s) replied on ticket %s.", ticket.Name, ticket.Email, ticket.TicketNumber),
		Details: []mail.Detail{
			{Label: "Subject", Value: mail.Plain(ticket.Subject)},
			{Label: "Reply", Value: mail.Multiline(reply.Message)},
		},
		Outro: "Reply to this email to respond to the submitter directly.",
	})
	if err != nil {
		return fmt.Errorf("render user reply notice: %w", err)
	}
	return n.mailer.Send(ctx, mail.Message{
		To:       n.cfg.StaffEmail,
		Subject:  fmt.Sprintf("Reply on ticket %s: %s", ticket.TicketNumber, ticket.Subject),
		HTMLBody: body,
		ReplyTo:  ticket.Email,
	})
}

func ticketDetails(ticket *domain.Ticket) []mail.Detail {
	return []mail.Detail{
		{Label: "Ticket", Value: mail.Plain(ticket.TicketNumber)},
		{Label: "Category", Value: mail.Plain(ticket.Category)},
		{Label: "Priority", Value: mail.Plain(string(ticket.Priority))},
		{Label: "Subject", Value: mail.Plain(ticket.Subject)},
		{Label: "Description", Value: mail.Multiline(ticket.Description)},
	}
}

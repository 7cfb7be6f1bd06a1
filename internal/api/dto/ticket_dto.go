package dto

import (
	"time"

	"github.com/koruflicks/support-service/internal/domain"
)

// SubmitTicketRequest payload. UserID, when supplied, is trusted as the
// submitter's identity.
type SubmitTicketRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Category    string   `json:"category"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	UserID      string   `json:"userId"`
	Attachments []string `json:"attachments"`
}

// UpdateStatusRequest payload for the transition endpoint.
type UpdateStatusRequest struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"adminNotes"`
}

// AddReplyRequest payload.
type AddReplyRequest struct {
	Message string `json:"message"`
	IsStaff bool   `json:"isStaff"`
}

// TicketResponse is the wire shape of a ticket. Timestamps render as
// ISO-8601 strings, null when unset.
type TicketResponse struct {
	ID           string          `json:"id"`
	TicketNumber string          `json:"ticketNumber"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Category     string          `json:"category"`
	Subject      string          `json:"subject"`
	Description  string          `json:"description"`
	Status       string          `json:"status"`
	Priority     string          `json:"priority"`
	UserID       *string         `json:"userId"`
	IsLoggedIn   bool            `json:"isLoggedIn"`
	Attachments  []string        `json:"attachments"`
	AdminNotes   *string         `json:"adminNotes,omitempty"`
	Replies      []ReplyResponse `json:"replies,omitempty"`
	CreatedAt    *string         `json:"createdAt"`
	UpdatedAt    *string         `json:"updatedAt"`
	UpdatedBy    *string         `json:"updatedBy,omitempty"`
}

// ReplyResponse is the wire shape of one thread entry.
type ReplyResponse struct {
	Message   string  `json:"message"`
	UserID    string  `json:"userId"`
	IsStaff   bool    `json:"isStaff"`
	CreatedAt *string `json:"createdAt"`
}

// FromTicket maps a domain ticket onto the wire shape.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	replies := make([]ReplyResponse, 0, len(ticket.Replies))
	for i := range ticket.Replies {
		replies = append(replies, FromReply(&ticket.Replies[i]))
	}
	attachments := ticket.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return TicketResponse{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Name:         ticket.Name,
		Email:        ticket.Email,
		Category:     ticket.Category,
		Subject:      ticket.Subject,
		Description:  ticket.Description,
		Status:       string(ticket.Status),
		Priority:     string(ticket.Priority),
		UserID:       ticket.UserID,
		IsLoggedIn:   ticket.IsLoggedIn,
		Attachments:  attachments,
		AdminNotes:   ticket.AdminNotes,
		Replies:      replies,
		CreatedAt:    isoTime(&ticket.CreatedAt),
		UpdatedAt:    isoTime(ticket.UpdatedAt),
		UpdatedBy:    ticket.UpdatedBy,
	}
}

// FromReply maps a domain reply onto the wire shape.
func FromReply(reply *domain.Reply) ReplyResponse {
	return ReplyResponse{
		Message:   reply.Message,
		UserID:    reply.UserID,
		IsStaff:   reply.IsStaff,
		CreatedAt: isoTime(&reply.CreatedAt),
	}
}

// isoTime renders a timestamp as an ISO-8601 string, null when unset.
func isoTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

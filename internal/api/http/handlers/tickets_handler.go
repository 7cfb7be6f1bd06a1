package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/koruflicks/support-service/internal/api/dto"
	"github.com/koruflicks/support-service/internal/domain"
	"github.com/koruflicks/support-service/internal/identity"
	"github.com/koruflicks/support-service/internal/service"
	apperrors "github.com/koruflicks/support-service/pkg/util"
)

// TicketsHandler exposes the ticket HTTP surface.
type TicketsHandler struct {
	service     *service.TicketService
	resolver    *identity.Resolver
	tokenHeader string
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, resolver *identity.Resolver, tokenHeader string) *TicketsHandler {
	return &TicketsHandler{service: ticketService, resolver: resolver, tokenHeader: tokenHeader}
}

// Submit POST /tickets/submit. Open to anonymous visitors.
func (h *TicketsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	who := h.resolver.ResolveSubmission(c.UserContext(), req.UserID, c.Get(h.tokenHeader))
	result, err := h.service.Submit(c.UserContext(), who, service.SubmitInput{
		Name:        req.Name,
		Email:       req.Email,
		Category:    req.Category,
		Subject:     req.Subject,
		Description: req.Description,
		Attachments: req.Attachments,
	})
	if err != nil {
		return err
	}
	if result.NotificationErr != nil {
		// The ticket row is already committed; the caller sees a 500 but
		// must not assume the write rolled back.
		return apperrors.NewInternalError(
			fmt.Sprintf("ticket %s was created but notification delivery failed", result.Ticket.TicketNumber),
			result.NotificationErr)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":      "Ticket submitted successfully",
		"ticketNumber": result.Ticket.TicketNumber,
		"id":           result.Ticket.ID,
	})
}

// ListAll GET /tickets/.
func (h *TicketsHandler) ListAll(c *fiber.Ctx) error {
	actorID, ok := identity.SubjectFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.service.ListAll(c.UserContext(), actorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Tickets retrieved successfully",
		"tickets": ticketResponses(tickets),
	})
}

// ListByUser GET /tickets/user/:userId.
func (h *TicketsHandler) ListByUser(c *fiber.Ctx) error {
	actorID, ok := identity.SubjectFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.service.ListByOwner(c.UserContext(), actorID, c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Tickets retrieved successfully",
		"tickets": ticketResponses(tickets),
	})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	actorID, ok := identity.SubjectFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.service.Get(c.UserContext(), actorID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Ticket retrieved successfully",
		"ticket":  dto.FromTicket(ticket),
	})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actorID, ok := identity.SubjectFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	result, err := h.service.Transition(c.UserContext(), actorID, c.Params("id"), domain.TicketStatus(req.Status), req.AdminNotes)
	if err != nil {
		return err
	}
	if result.NotificationErr != nil {
		return apperrors.NewInternalError(
			"ticket status was updated but notification delivery failed",
			result.NotificationErr)
	}

	return c.JSON(fiber.Map{
		"message": "Ticket status updated successfully",
		"status":  string(result.Status),
	})
}

// AddReply POST /tickets/:id/reply.
func (h *TicketsHandler) AddReply(c *fiber.Ctx) error {
	actorID, ok := identity.SubjectFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AddReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	result, err := h.service.Reply(c.UserContext(), actorID, c.Params("id"), req.Message, req.IsStaff)
	if err != nil {
		return err
	}
	if result.NotificationErr != nil {
		return apperrors.NewInternalError(
			"reply was added but notification delivery failed",
			result.NotificationErr)
	}

	return c.JSON(fiber.Map{
		"message": "Reply added successfully",
		"reply":   dto.FromReply(result.Reply),
	})
}

// Delete DELETE /tickets/:id. Admin only.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	actorID, ok := identity.SubjectFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.UserContext(), actorID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Ticket deleted successfully",
	})
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return items
}

package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates handling urgency.
type TicketPriority string

const (
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityNormal TicketPriority = "normal"
)

// PriorityForCategory derives a ticket's priority from its category.
// Account and billing issues jump the queue; playback and content issues
// sit in the middle; everything else is normal.
func PriorityForCategory(category string) TicketPriority {
	switch category {
	case "account", "billing":
		return TicketPriorityHigh
	case "playback", "content":
		return TicketPriorityMedium
	default:
		return TicketPriorityNormal
	}
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           string
	TicketNumber string
	Name         string
	Email        string
	Category     string
	Subject      string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	UserID       *string
	IsLoggedIn   bool
	Attachments  []string
	AdminNotes   *string
	Replies      []Reply
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	UpdatedBy    *string
}

// OwnerID returns the owning subject id, or empty when the ticket was
// submitted anonymously.
func (t *Ticket) OwnerID() string {
	if t.UserID == nil {
		return ""
	}
	return *t.UserID
}

// NewTicketNumber builds a human-facing ticket identifier from the
// creation time: TKT- followed by the trailing six digits of the epoch
// milliseconds and a zero-padded three digit random suffix. Assigned once
// at creation and never recomputed; uniqueness is not guaranteed (the
// store id is the durable key).
func NewTicketNumber(now time.Time) string {
	millis := now.UnixMilli() % 1_000_000
	return fmt.Sprintf("TKT-%06d%03d", millis, rand.Intn(1000))
}

package domain

import "time"

// Reply is one entry in a ticket's append-only conversation thread.
// Replies always carry an authenticated author; IsStaff distinguishes
// support personnel from the submitter.
type Reply struct {
	ID        string
	TicketID  string
	Sequence  int64
	Message   string
	UserID    string
	IsStaff   bool
	CreatedAt time.Time
}

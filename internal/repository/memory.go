package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/koruflicks/support-service/internal/domain"
)

// Memory implementations of the store adapters. They back tests and
// local development without a database; behavior mirrors the Postgres
// implementations, including pgx.ErrNoRows on missing rows.

type memoryTicketRepository struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
}

// NewMemoryTicketRepository returns an in-memory TicketRepository.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{tickets: make(map[string]domain.Ticket)}
}

func (r *memoryTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memoryTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *memoryTicketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		result = append(result, ticket)
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *memoryTicketRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.UserID != nil && *ticket.UserID == ownerID {
			result = append(result, ticket)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *memoryTicketRepository) Update(ctx context.Context, id string, update TicketUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.Status != nil {
		ticket.Status = *update.Status
	}
	if update.AdminNotes != nil {
		notes := *update.AdminNotes
		ticket.AdminNotes = &notes
	}
	if update.UpdatedAt != nil {
		at := *update.UpdatedAt
		ticket.UpdatedAt = &at
	}
	if update.UpdatedBy != nil {
		by := *update.UpdatedBy
		ticket.UpdatedBy = &by
	}
	r.tickets[id] = ticket
	return nil
}

func (r *memoryTicketRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func sortNewestFirst(tickets []domain.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
}

type memoryReplyRepository struct {
	mu      sync.Mutex
	nextSeq int64
	replies map[string][]domain.Reply
}

// NewMemoryReplyRepository returns an in-memory ReplyRepository.
func NewMemoryReplyRepository() ReplyRepository {
	return &memoryReplyRepository{replies: make(map[string][]domain.Reply)}
}

func (r *memoryReplyRepository) Append(ctx context.Context, reply *domain.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSeq++
	reply.ID = uuid.NewString()
	reply.Sequence = r.nextSeq
	reply.CreatedAt = time.Now()
	r.replies[reply.TicketID] = append(r.replies[reply.TicketID], *reply)
	return nil
}

func (r *memoryReplyRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Reply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Reply(nil), r.replies[ticketID]...), nil
}

func (r *memoryReplyRepository) CountByTicket(ctx context.Context, ticketID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.replies[ticketID])), nil
}

type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User
}

// NewMemoryUserRepository returns an in-memory UserRepository seeded
// with the given users.
func NewMemoryUserRepository(users ...domain.User) UserRepository {
	repo := &memoryUserRepository{users: make(map[string]domain.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

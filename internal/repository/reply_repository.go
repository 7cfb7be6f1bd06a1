package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koruflicks/support-service/internal/domain"
)

// ReplyRepository manages the append-only conversation thread of a
// ticket. Appends are single atomic inserts with a server-assigned
// sequence, so concurrent replies to the same ticket cannot lose updates.
type ReplyRepository interface {
	Append(ctx context.Context, reply *domain.Reply) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Reply, error)
	CountByTicket(ctx context.Context, ticketID string) (int64, error)
}

type replyRepository struct {
	pool *pgxpool.Pool
}

// NewReplyRepository builds repository.
func NewReplyRepository(pool *pgxpool.Pool) ReplyRepository {
	return &replyRepository{pool: pool}
}

func (r *replyRepository) Append(ctx context.Context, reply *domain.Reply) error {
	const query = `
        INSERT INTO ticket_replies (ticket_id, message, user_id, is_staff)
        VALUES ($1,$2,$3,$4)
        RETURNING id, seq, created_at`
	return r.pool.QueryRow(ctx, query,
		reply.TicketID,
		reply.Message,
		reply.UserID,
		reply.IsStaff,
	).Scan(&reply.ID, &reply.Sequence, &reply.CreatedAt)
}

func (r *replyRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Reply, error) {
	const query = `
        SELECT id, seq, ticket_id, message, user_id, is_staff, created_at
        FROM ticket_replies WHERE ticket_id=$1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Reply
	for rows.Next() {
		var reply domain.Reply
		if err := rows.Scan(
			&reply.ID,
			&reply.Sequence,
			&reply.TicketID,
			&reply.Message,
			&reply.UserID,
			&reply.IsStaff,
			&reply.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, reply)
	}
	return result, rows.Err()
}

func (r *replyRepository) CountByTicket(ctx context.Context, ticketID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ticket_replies WHERE ticket_id=$1`, ticketID).Scan(&count)
	return count, err
}

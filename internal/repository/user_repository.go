package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koruflicks/support-service/internal/domain"
)

// UserRepository reads user records owned by the identity component.
// This service only consumes them; it never writes.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, is_admin, created_at
        FROM users WHERE id=$1`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.IsAdmin,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

package identity

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "revoked-token:"

type redisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore reads the revocation list the identity provider
// maintains in Redis. A token id is revoked when its key exists.
func NewRedisRevocationStore(client *redis.Client) RevocationStore {
	return &redisRevocationStore{client: client}
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.client == nil {
		return false, errors.New("redis client not configured")
	}
	n, err := s.client.Exists(ctx, revocationKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

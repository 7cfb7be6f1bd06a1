package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/koruflicks/support-service/internal/repository"
)

const (
	adminFlagKeyPrefix = "admin-flag:"
	adminFlagTTL       = 5 * time.Minute
)

// Evaluator applies the owner-or-privileged rule: an actor may touch a
// resource it owns, or anything when its user record carries the admin
// flag. It is shared by every path that reads another subject's data.
type Evaluator struct {
	users  repository.UserRepository
	cache  *redis.Client
	logger *zap.Logger
}

// NewEvaluator constructs the evaluator. cache may be nil; admin-flag
// lookups then always hit the user store.
func NewEvaluator(users repository.UserRepository, cache *redis.Client, logger *zap.Logger) *Evaluator {
	return &Evaluator{users: users, cache: cache, logger: logger}
}

// CanAccess reports whether actorID may act on a resource owned by
// ownerID. A denied actor gets (false, nil); an unreachable user store
// returns an error so callers can tell "denied" from "couldn't check".
func (e *Evaluator) CanAccess(ctx context.Context, actorID, ownerID string) (bool, error) {
	if actorID != "" && actorID == ownerID {
		return true, nil
	}
	return e.IsAdmin(ctx, actorID)
}

// IsAdmin reports whether the actor's user record carries the admin
// flag. A missing record means not admin.
func (e *Evaluator) IsAdmin(ctx context.Context, actorID string) (bool, error) {
	if actorID == "" {
		return false, nil
	}

	if flag, ok := e.cachedFlag(ctx, actorID); ok {
		return flag, nil
	}

	user, err := e.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			e.storeFlag(ctx, actorID, false)
			return false, nil
		}
		return false, fmt.Errorf("look up user %s: %w", actorID, err)
	}

	e.storeFlag(ctx, actorID, user.IsAdmin)
	return user.IsAdmin, nil
}

// cachedFlag reads the admin flag from Redis. Cache trouble only logs;
// the caller falls through to the user store.
func (e *Evaluator) cachedFlag(ctx context.Context, actorID string) (bool, bool) {
	if e.cache == nil {
		return false, false
	}
	val, err := e.cache.Get(ctx, adminFlagKeyPrefix+actorID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			e.logger.Warn("admin-flag cache read failed", zap.Error(err))
		}
		return false, false
	}
	return val == "1", true
}

func (e *Evaluator) storeFlag(ctx context.Context, actorID string, isAdmin bool) {
	if e.cache == nil {
		return
	}
	val := "0"
	if isAdmin {
		val = "1"
	}
	if err := e.cache.Set(ctx, adminFlagKeyPrefix+actorID, val, adminFlagTTL).Err(); err != nil {
		e.logger.Warn("admin-flag cache write failed", zap.Error(err))
	}
}

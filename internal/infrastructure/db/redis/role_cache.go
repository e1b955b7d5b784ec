package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
	"github.com/hydrochain/hydrochain-api/internal/core/ports"
)

const roleTTL = 5 * time.Minute

// RoleCache fronts a RoleResolver with a Redis cache so the per-request role
// lookup does not hit the user store every time. Roles change rarely; a stale
// entry self-heals within roleTTL.
// Key format: role:<user_id>
type RoleCache struct {
	client *redis.Client
	next   ports.RoleResolver
}

// NewRoleCache wraps next with a Redis-backed cache.
func NewRoleCache(client *redis.Client, next ports.RoleResolver) *RoleCache {
	return &RoleCache{client: client, next: next}
}

// RoleByUserID returns the cached role, falling through to the underlying
// resolver on a miss or any Redis error. Cache write failures are ignored:
// the authoritative answer already came from the store.
func (c *RoleCache) RoleByUserID(ctx context.Context, userID string) (domain.Role, error) {
	key := c.key(userID)

	// A miss, a parse failure, or Redis being down all fall through to the
	// store; Redis must never break auth.
	if cached, err := c.client.Get(ctx, key).Result(); err == nil {
		if role, perr := domain.ParseRole(cached); perr == nil {
			return role, nil
		}
	}

	role, err := c.next.RoleByUserID(ctx, userID)
	if err != nil {
		return "", err
	}

	_ = c.client.Set(ctx, key, string(role), roleTTL).Err()
	return role, nil
}

func (c *RoleCache) key(userID string) string {
	return fmt.Sprintf("role:%s", userID)
}

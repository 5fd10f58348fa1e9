package auth

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"oaresponse/internal/domain/services"
)

// CachedGate remembers granted (user, matter) pairs. Denials are never cached
// so a matter created after a failed lookup is visible immediately. Ownership
// never changes, so a grant cannot go stale.
type CachedGate struct {
	next  services.AuthorizationGate
	cache *cache.Cache
}

// NewCachedGate wraps next with a grant cache of the given lifetime
func NewCachedGate(next services.AuthorizationGate, ttl time.Duration) *CachedGate {
	return &CachedGate{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

var _ services.AuthorizationGate = (*CachedGate)(nil)

// CanAccessMatter consults the cache before delegating
func (g *CachedGate) CanAccessMatter(ctx context.Context, userID, matterID string) error {
	key := userID + ":" + matterID
	if _, ok := g.cache.Get(key); ok {
		return nil
	}
	if err := g.next.CanAccessMatter(ctx, userID, matterID); err != nil {
		return err
	}
	g.cache.SetDefault(key, struct{}{})
	return nil
}

package usecase

import (
	"sync"
	"time"

	"github.com/secmon-lab/vatracker/pkg/domain/model/auth"
)

const (
	authCacheTTL = 5 * time.Minute
)

type cachedIdentity struct {
	identity  *auth.Identity
	expiresAt time.Time
}

// authCache keeps verified assertions so that every request does not pay for
// signature verification
type authCache struct {
	cache sync.Map
}

func newAuthCache() *authCache {
	return &authCache{}
}

func (c *authCache) get(assertion string) (*auth.Identity, bool) {
	val, ok := c.cache.Load(assertion)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedIdentity)
	if time.Now().After(cached.expiresAt) {
		c.cache.Delete(assertion)
		return nil, false
	}

	return cached.identity, true
}

// set caches id until the token expires or for authCacheTTL, whichever is sooner
func (c *authCache) set(assertion string, id *auth.Identity, tokenExpiry time.Time) {
	expiresAt := time.Now().Add(authCacheTTL)
	if !tokenExpiry.IsZero() && tokenExpiry.Before(expiresAt) {
		expiresAt = tokenExpiry
	}
	c.cache.Store(assertion, &cachedIdentity{
		identity:  id,
		expiresAt: expiresAt,
	})
}

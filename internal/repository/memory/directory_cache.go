package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DirectoryCache remembers recent user-existence lookups so the HTTP boundary
// does not hit the users table on every send.
type DirectoryCache struct {
	cache *cache.Cache
}

func NewDirectoryCache() *DirectoryCache {
	// Entries expire after 5 minutes; expired items are purged every minute.
	c := cache.New(5*time.Minute, 1*time.Minute)
	return &DirectoryCache{
		cache: c,
	}
}

func (r *DirectoryCache) Set(userId uuid.UUID, exists bool) {
	r.cache.Set(userId.String(), exists, cache.DefaultExpiration)
}

func (r *DirectoryCache) Get(userId uuid.UUID) (exists bool, found bool) {
	if x, ok := r.cache.Get(userId.String()); ok {
		return x.(bool), true
	}
	return false, false
}

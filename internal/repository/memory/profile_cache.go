package memory

import (
	"time"

	"askalma-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// ProfileCache keeps recently loaded user profiles in memory so the chat
// path does not hit the database on every turn.
type ProfileCache struct {
	cache *cache.Cache
}

func NewProfileCache(ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := cache.New(ttl, 10*time.Minute)
	return &ProfileCache{
		cache: c,
	}
}

func (r *ProfileCache) Save(profile *entity.UserProfile) {
	r.cache.Set(profile.UserId, profile, cache.DefaultExpiration)
}

func (r *ProfileCache) Get(userId string) (*entity.UserProfile, bool) {
	if x, found := r.cache.Get(userId); found {
		return x.(*entity.UserProfile), true
	}
	return nil, false
}

func (r *ProfileCache) Delete(userId string) {
	r.cache.Delete(userId)
}

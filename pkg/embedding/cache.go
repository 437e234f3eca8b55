package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedProvider wraps another provider with a redis cache keyed on model
// and text hash. Questions repeat often enough across sessions that this
// saves a noticeable amount of embedding calls. Cache failures are never
// fatal; the wrapped provider is always the fallback.
type CachedProvider struct {
	inner EmbeddingProvider
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedProvider(inner EmbeddingProvider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedProvider{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
	}
}

func (p *CachedProvider) Model() string {
	return p.inner.Model()
}

func (p *CachedProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	key := p.cacheKey(text)

	if data, err := p.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached []float32
		if err := json.Unmarshal(data, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	vector, err := p.inner.Generate(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vector); err == nil {
		p.rdb.Set(ctx, key, data, p.ttl)
	}
	return vector, nil
}

func (p *CachedProvider) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("emb:%s:%s", p.inner.Model(), hex.EncodeToString(sum[:]))
}

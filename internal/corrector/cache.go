package corrector

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// resultCache memoizes corrections keyed by the raw input text. With greedy
// decoding a repeated sentence yields the same correction, so a hit skips the
// model entirely.
type resultCache struct {
	cache *ttlcache.Cache[string, string]
}

func newResultCache(ttl time.Duration) *resultCache {
	c := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go c.Start()
	return &resultCache{cache: c}
}

func (rc *resultCache) get(text string) (string, bool) {
	item := rc.cache.Get(text)
	if item == nil {
		return "", false
	}
	return item.Value(), true
}

func (rc *resultCache) put(text, corrected string) {
	rc.cache.Set(text, corrected, ttlcache.DefaultTTL)
}

func (rc *resultCache) stop() {
	rc.cache.Stop()
}

// WithCache enables result memoization with the given TTL. A non-positive TTL
// leaves caching disabled.
func WithCache(ttl time.Duration) Option {
	return func(c *Corrector) {
		if ttl <= 0 {
			return
		}
		c.cache = newResultCache(ttl)
	}
}

// Close stops the cache expiration loop if caching is enabled.
func (c *Corrector) Close() {
	if c.cache != nil {
		c.cache.stop()
	}
}

package services

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/metrics"
)

// ReferenceCache holds recently resolved divisions and foremen with a TTL.
// Each server instance has its own cache; deletes through ReferenceService
// invalidate it.
type ReferenceCache struct {
	divisions *expirable.LRU[string, groundcheck.Division]
	foremen   *expirable.LRU[string, groundcheck.Foreman]
}

func NewReferenceCache(maxSize int, ttl time.Duration) *ReferenceCache {
	return &ReferenceCache{
		divisions: expirable.NewLRU[string, groundcheck.Division](maxSize, nil, ttl),
		foremen:   expirable.NewLRU[string, groundcheck.Foreman](maxSize, nil, ttl),
	}
}

func (c *ReferenceCache) Division(id string) (groundcheck.Division, bool) {
	return hitOrMiss(c.divisions.Get(id))
}

func (c *ReferenceCache) Foreman(id string) (groundcheck.Foreman, bool) {
	return hitOrMiss(c.foremen.Get(id))
}

func (c *ReferenceCache) SetDivision(d groundcheck.Division) { c.divisions.Add(d.ID, d) }
func (c *ReferenceCache) SetForeman(f groundcheck.Foreman)   { c.foremen.Add(f.ID, f) }

// RemoveDivision drops the division and every cached foreman under it.
func (c *ReferenceCache) RemoveDivision(id string) {
	c.divisions.Remove(id)
	for _, f := range c.foremen.Values() {
		if f.DivisionID == id {
			c.foremen.Remove(f.ID)
		}
	}
}

func (c *ReferenceCache) RemoveForeman(id string) { c.foremen.Remove(id) }

// Purge empties the cache.
func (c *ReferenceCache) Purge() {
	c.divisions.Purge()
	c.foremen.Purge()
}

func hitOrMiss[V any](v V, ok bool) (V, bool) {
	if ok {
		metrics.CacheHits.Inc()
	} else {
		metrics.CacheMisses.Inc()
	}
	return v, ok
}

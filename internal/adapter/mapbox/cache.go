package mapbox

import (
	"container/list"
	"context"
	"strings"
	"sync"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
	"github.com/couchcryptid/city-pulse-service/internal/observability"
)

// CachedGeocoder remembers successful address lookups so repeated reports
// from the same place do not hit the API again.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lru[domain.GeocodingResult]
	metrics *observability.Metrics
}

// NewCachedGeocoder wraps inner with an LRU of at most maxEntries addresses.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   newLRU[domain.GeocodingResult](maxEntries),
		metrics: metrics,
	}
}

// ForwardGeocode answers from the cache when the normalized address was
// resolved before. Misses and errors are never cached.
func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, query string) (domain.GeocodingResult, error) {
	key := normalizeAddress(query)
	if result, ok := c.cache.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.ForwardGeocode(ctx, query)
	if err == nil && result.Found() {
		c.cache.put(key, result)
	}
	return result, err
}

// normalizeAddress folds case and runs of whitespace.
func normalizeAddress(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// lru is a mutex-guarded least-recently-used map. The front of order is the
// most recently used entry.
type lru[V any] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

type lruItem[V any] struct {
	key   string
	value V
}

func newLRU[V any](capacity int) *lru[V] {
	return &lru[V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

func (c *lru[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruItem[V]).value, true
}

func (c *lru[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*lruItem[V]).value = value
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&lruItem[V]{key: key, value: value})

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruItem[V]).key)
	}
}

func (c *lru[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

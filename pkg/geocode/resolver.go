package geocode

import "context"

type reverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*Place, error)
}

// Resolver fronts the reverse geocode client with the LRU cache. Lookups that
// round to the same coordinate key are served from memory without touching the
// upstream API.
type Resolver struct {
	client reverseGeocoder
	cache  *Cache
}

// NewResolver builds a caching resolver. A nil cache gets the default bound.
func NewResolver(client reverseGeocoder, cache *Cache) *Resolver {
	if cache == nil {
		cache = NewCache(defaultCacheSize)
	}
	return &Resolver{client: client, cache: cache}
}

// Resolve returns the place for the coordinates, consulting the cache first.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64) (*Place, error) {
	if place, ok := r.cache.Get(lat, lon); ok {
		return place, nil
	}

	place, err := r.client.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	r.cache.Put(lat, lon, place)
	return place, nil
}

// ClearCache drops every cached place.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
}

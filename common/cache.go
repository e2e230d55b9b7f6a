package common

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is an abstract cache layer
type Cache interface {
	Get(key []byte) (value interface{}, ok bool)
	Set(key []byte, value interface{}) error
	SetWithExpiration(key []byte, value interface{}, expiration time.Duration) error
	GetOrAdd(key []byte, newValue func() interface{}) interface{}
	Delete(key []byte) error
	Len() int
}

// GoCache is the caching layer implemented by go-cache.
type GoCache struct {
	*gocache.Cache
}

// NewGoCache creates a go-cache cache with a given default expiration duration
// and cleanup interval.
func NewGoCache(defaultExpiration, cleanupInterval time.Duration) *GoCache {
	return &GoCache{
		Cache: gocache.New(defaultExpiration, cleanupInterval),
	}
}

// Get gets an item from the cache. Returns the item or nil, and a bool
// indicating whether the key was found.
func (gc *GoCache) Get(key []byte) (interface{}, bool) {
	return gc.Cache.Get(string(key))
}

// Set adds an item to the cache, replacing any existing item, using the default
// expiration.
func (gc *GoCache) Set(key []byte, value interface{}) error {
	gc.Cache.SetDefault(string(key), value)
	return nil
}

// SetWithExpiration adds an item to the cache, replacing any existing item,
// with a given expiration.
func (gc *GoCache) SetWithExpiration(key []byte, value interface{}, expiration time.Duration) error {
	gc.Cache.Set(string(key), value, expiration)
	return nil
}

// GetOrAdd returns the cached item for key. If there is none, newValue is
// called and its result is stored with the default expiration. Callers that
// race on the same key must serialize themselves.
func (gc *GoCache) GetOrAdd(key []byte, newValue func() interface{}) interface{} {
	if v, ok := gc.Cache.Get(string(key)); ok {
		return v
	}
	v := newValue()
	gc.Cache.SetDefault(string(key), v)
	return v
}

// Delete deletes an item from the cache. Does nothing if the key is not in the
// cache.
func (gc *GoCache) Delete(key []byte) error {
	gc.Cache.Delete(string(key))
	return nil
}

// Len returns the number of items in the cache, including expired items that
// have not been cleaned up yet.
func (gc *GoCache) Len() int {
	return gc.Cache.ItemCount()
}

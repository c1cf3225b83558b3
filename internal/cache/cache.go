// Package cache defines the key-value collaborator the engines memoize
// into. Values persist until explicitly invalidated; there are no TTLs.
// Callers treat an unavailable cache as a permanent miss and recompute.
package cache

// Cache is a string key-value store with explicit invalidation.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
	DeleteMany(keys []string)
}

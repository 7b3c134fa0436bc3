package cache

import "time"

// Cache is a byte-oriented TTL store. The catalog proxy keeps upstream
// responses here so repeated browses do not burn through the TMDB rate
// limit.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

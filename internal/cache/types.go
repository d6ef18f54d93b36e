package cache

import "time"

// CachedOutcome is the cached result of scanning one payload. The cache key
// is derived from the payload text, so identical payloads on different
// records share an entry.
type CachedOutcome struct {
	Redacted string    `json:"redacted"`
	IsPII    bool      `json:"is_pii"`
	Source   string    `json:"source"`
	CachedAt time.Time `json:"cached_at"`
	TTL      int64     `json:"ttl_seconds"`
}

// CacheStats contains cache performance statistics
type CacheStats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	HitRate     float64 `json:"hit_rate"`
	TotalKeys   int64   `json:"total_keys"`
	MemoryUsage int64   `json:"memory_usage"`
}

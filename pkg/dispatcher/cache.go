package dispatcher

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// defaultCacheSize bounds how many distinct normalized queries are cached
// per verdict kind before the LRU evicts the least recently used entry.
const defaultCacheSize = 512

// defaultCacheTTL is the spec's default verdict cache lifetime; callers may
// override it via NewPolicy's cacheTTL (a non-positive value keeps the
// default).
const defaultCacheTTL = time.Hour

// verdict is a cached selection outcome: the chosen agent name (empty if
// none) and the confidence that produced it.
type verdict struct {
	Agent      string
	Confidence float64
}

// verdictCache memoizes scorer and arbiter verdicts by normalized query, so
// repeated or near-identical requests don't re-run keyword scoring or pay
// for another LLM round trip.
type verdictCache struct {
	scorer  *lru.LRU[string, verdict]
	arbiter *lru.LRU[string, verdict]
	ttl     time.Duration
}

func newVerdictCache(ttl time.Duration) *verdictCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &verdictCache{
		scorer:  lru.NewLRU[string, verdict](defaultCacheSize, nil, ttl),
		arbiter: lru.NewLRU[string, verdict](defaultCacheSize, nil, ttl),
		ttl:     ttl,
	}
}

// normalizeQuery lowercases and collapses whitespace so that trivially
// different phrasings of the same request share a cache entry.
func normalizeQuery(query string) string {
	fields := strings.Fields(strings.ToLower(query))
	return strings.Join(fields, " ")
}

// CacheInfo reports the live occupancy of both verdict caches, for the
// diagnostics surface grounded on the original implementation's
// QueryCache.info()/cache_info() admin tooling.
type CacheInfo struct {
	ScorerEntries  int
	ArbiterEntries int
	TTL            time.Duration
}

func (c *verdictCache) Info() CacheInfo {
	return CacheInfo{
		ScorerEntries:  c.scorer.Len(),
		ArbiterEntries: c.arbiter.Len(),
		TTL:            c.ttl,
	}
}

// Clear empties both verdict caches, grounded on the original
// implementation's manage_cache("clear") admin action.
func (c *verdictCache) Clear() {
	c.scorer.Purge()
	c.arbiter.Purge()
}

package sales

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type cachedValues struct {
	values  [][]string
	fetched time.Time
}

// CachedReader is a read-through cache over a ValueReader, keyed by
// spreadsheet and range. Entries expire after ttl; a zero ttl keeps them
// until evicted or purged.
type CachedReader struct {
	next  ValueReader
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewCachedReader wraps next with an LRU cache holding up to size ranges.
func NewCachedReader(next ValueReader, size int, ttl time.Duration) (*CachedReader, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CachedReader{next: next, cache: c, ttl: ttl, now: time.Now}, nil
}

// GetValues returns cached values when fresh and reads through otherwise.
// Errors are not cached.
func (c *CachedReader) GetValues(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	key := spreadsheetID + "\x00" + rng
	if v, ok := c.cache.Get(key); ok {
		entry := v.(cachedValues)
		if c.ttl <= 0 || c.now().Sub(entry.fetched) < c.ttl {
			return entry.values, nil
		}
		c.cache.Remove(key)
	}
	values, err := c.next.GetValues(ctx, spreadsheetID, rng)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cachedValues{values: values, fetched: c.now()})
	return values, nil
}

// Purge drops every cached range.
func (c *CachedReader) Purge() {
	c.cache.Purge()
}

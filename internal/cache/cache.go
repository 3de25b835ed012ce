package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/DeafChair/XOSS-Database-Browser/pkg/autoindex"
)

const (
	// DefaultKey is the blob key the cache document is persisted under.
	DefaultKey = "directory_cache.json"

	// DefaultTTL is how long a cached listing stays fresh.
	DefaultTTL = 24 * time.Hour

	// TimeLayout is the persisted fetch-time format.
	TimeLayout = "2006-01-02 15:04:05"
)

// listing is one cached directory and its fetch time.
type listing struct {
	Entries   []autoindex.Entry `json:"dir_items"`
	FetchedAt string            `json:"cache_time"`
}

// UnmarshalJSON tolerates the legacy persisted shape, which kept entries
// under "content" instead of "dir_items". Writes always use "dir_items".
func (l *listing) UnmarshalJSON(data []byte) error {
	var raw struct {
		DirItems  []autoindex.Entry `json:"dir_items"`
		Content   []autoindex.Entry `json:"content"`
		CacheTime string            `json:"cache_time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.Entries = raw.DirItems
	if l.Entries == nil {
		l.Entries = raw.Content
	}
	l.FetchedAt = raw.CacheTime
	return nil
}

// Options configures a Cache.
type Options struct {
	// Key is the blob key state persists under. Default: DefaultKey.
	Key string

	// TTL is the freshness window. Default: DefaultTTL.
	TTL time.Duration

	// Logger receives persistence warnings. Default: zap.NewNop().
	Logger *zap.Logger

	// Now is the clock used for freshness checks. Default: time.Now.
	Now func() time.Time
}

// Cache maps listing URLs to entries with time-based invalidation. Expired
// listings stay in place, invisible to Get, until SweepExpired removes
// them. The whole document is persisted into a blob bucket on every
// mutation; persistence failures are logged and never fail the operation
// that triggered them.
type Cache struct {
	mu       sync.RWMutex
	listings map[string]listing

	bucket *blob.Bucket
	key    string
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

// New returns a cache backed by bucket, loading any persisted state. A
// missing or unreadable document starts the cache empty.
func New(ctx context.Context, bucket *blob.Bucket, opts Options) *Cache {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Cache{
		listings: map[string]listing{},
		bucket:   bucket,
		key:      opts.Key,
		ttl:      opts.TTL,
		log:      opts.Logger,
		now:      opts.Now,
	}

	data, err := bucket.ReadAll(ctx, c.key)
	if err != nil {
		if gcerrors.Code(err) != gcerrors.NotFound {
			c.log.Warn("load directory cache", zap.Error(err))
		}
		return c
	}
	if err := json.Unmarshal(data, &c.listings); err != nil {
		c.log.Warn("decode directory cache", zap.Error(err))
		c.listings = map[string]listing{}
	}
	return c
}

// Get returns the cached entries for url. A listing counts as a hit only
// while its age is strictly below the TTL; at or past the boundary it is a
// miss, though the entry itself stays until swept.
func (c *Cache) Get(url string) ([]autoindex.Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l, ok := c.listings[url]
	if !ok || !c.fresh(l) {
		return nil, false
	}
	return append([]autoindex.Entry(nil), l.Entries...), true
}

// Put stores entries for url as fetched at fetchedAt and persists the
// cache.
func (c *Cache) Put(ctx context.Context, url string, entries []autoindex.Entry, fetchedAt time.Time) {
	c.mu.Lock()
	c.listings[url] = listing{
		Entries:   append([]autoindex.Entry(nil), entries...),
		FetchedAt: fetchedAt.Format(TimeLayout),
	}
	c.mu.Unlock()

	c.persist(ctx)
}

// SweepExpired drops every listing past its TTL, persists when anything
// was dropped, and returns the number removed. Runs at shutdown.
func (c *Cache) SweepExpired(ctx context.Context) int {
	c.mu.Lock()
	removed := 0
	for url, l := range c.listings {
		if !c.fresh(l) {
			delete(c.listings, url)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.persist(ctx)
	}
	return removed
}

// Clear drops all listings and persists the empty cache.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.listings = map[string]listing{}
	c.mu.Unlock()

	c.persist(ctx)
}

// Len returns the number of stored listings, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.listings)
}

// fresh reports whether a listing is within its TTL. Unparsable fetch
// times never count as fresh.
func (c *Cache) fresh(l listing) bool {
	t, err := time.ParseInLocation(TimeLayout, l.FetchedAt, time.Local)
	if err != nil {
		return false
	}
	return c.now().Sub(t) < c.ttl
}

func (c *Cache) persist(ctx context.Context) {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.listings, "", "  ")
	c.mu.RUnlock()
	if err == nil {
		err = c.bucket.WriteAll(ctx, c.key, data, nil)
	}
	if err != nil {
		c.log.Warn("persist directory cache", zap.Error(err))
	}
}

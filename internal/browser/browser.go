// Package browser resolves a listing URL into parsed directory entries,
// going through the directory cache first and the retry transport on a
// miss.
package browser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DeafChair/XOSS-Database-Browser/internal/cache"
	xhttp "github.com/DeafChair/XOSS-Database-Browser/internal/http"
	"github.com/DeafChair/XOSS-Database-Browser/pkg/autoindex"
)

// Options configures a Browser.
type Options struct {
	// Client performs listing fetches. Default: a client with
	// DefaultOptions.
	Client *xhttp.Client

	// Cache holds fetched listings. Optional; without it every call
	// fetches live.
	Cache *cache.Cache

	// Logger receives fetch events. Default: zap.NewNop().
	Logger *zap.Logger
}

// Browser serves directory listings.
type Browser struct {
	client *xhttp.Client
	cache  *cache.Cache
	log    *zap.Logger
}

// New creates a Browser.
func New(opts Options) *Browser {
	if opts.Client == nil {
		opts.Client = xhttp.NewClient(xhttp.DefaultOptions())
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Browser{
		client: opts.Client,
		cache:  opts.Cache,
		log:    opts.Logger,
	}
}

// Listing returns the entries of the directory at rawURL and whether
// they came from the cache. The cache is consulted under the URL exactly
// as given; on a miss the URL is normalized to end with "/" before the
// fetch, and the listing is cached under the normalized form. force
// skips the consultation and overwrites the cached listing on success.
// A page without a listing block is an error and is never cached.
func (b *Browser) Listing(ctx context.Context, rawURL string, force bool) ([]autoindex.Entry, bool, error) {
	if !force && b.cache != nil {
		if entries, ok := b.cache.Get(rawURL); ok {
			b.log.Debug("listing from cache", zap.String("url", rawURL), zap.Int("entries", len(entries)))
			return entries, true, nil
		}
	}

	if !strings.HasSuffix(rawURL, "/") {
		rawURL += "/"
	}

	body, err := b.client.Get(ctx, rawURL)
	if err != nil {
		return nil, false, fmt.Errorf("fetch listing %s: %w", rawURL, err)
	}
	entries, err := autoindex.Parse(bytes.NewReader(body), rawURL)
	if err != nil {
		return nil, false, fmt.Errorf("parse listing %s: %w", rawURL, err)
	}

	b.log.Info("fetched listing", zap.String("url", rawURL), zap.Int("entries", len(entries)))
	if b.cache != nil {
		b.cache.Put(ctx, rawURL, entries, time.Now())
	}
	return entries, false, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/DeafChair/XOSS-Database-Browser/internal/browser"
	"github.com/DeafChair/XOSS-Database-Browser/internal/cache"
	"github.com/DeafChair/XOSS-Database-Browser/internal/catalog"
	"github.com/DeafChair/XOSS-Database-Browser/pkg/autoindex"
)

func runBrowse(args []string) int {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)

	db := fs.String("db", "", "Database name or listing URL (defaults to the last browsed)")
	refresh := fs.Bool("refresh", false, "Bypass the cache and fetch live")
	up := fs.Bool("up", false, "Browse one level above the target")
	sortKey := fs.String("sort", "", "Sort by name, date, or size")
	desc := fs.Bool("desc", false, "Sort descending")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: xossdb browse [options] [database-or-url]

Print the directory listing of a built-in database or any autoindex URL.
Listings are cached for 24 hours; -refresh fetches live and rewrites the
cached copy. The browsed target is remembered and used when the next
browse names none.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	switch *sortKey {
	case "", "name", "date", "size":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown sort key %q\n", *sortKey)
		fs.Usage()
		return ExitInvalidArgs
	}

	target := *db
	if fs.NArg() > 0 {
		target = fs.Arg(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	if target == "" {
		target = cfg.LastDatabase
	}
	if target == "" {
		fmt.Fprintln(os.Stderr, "Error: no database given and none browsed before")
		fs.Usage()
		return ExitInvalidArgs
	}

	url, err := catalog.Resolve(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	if *up {
		url = autoindex.ParentURL(url)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	defer logger.Sync()

	ctx := context.Background()

	bucket, err := openStateBucket(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	defer bucket.Close()

	dirCache := cache.New(ctx, bucket, cache.Options{Logger: logger})
	b := browser.New(browser.Options{
		Client: newClient(cfg),
		Cache:  dirCache,
		Logger: logger,
	})

	entries, fromCache, err := b.Listing(ctx, url, *refresh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	if *sortKey != "" {
		autoindex.SortEntries(entries, autoindex.SortKey(*sortKey), *desc)
	}
	printListing(os.Stdout, url, entries, fromCache)

	// Remember the selection and drop expired listings on the way out.
	cfg.LastDatabase = target
	if err := cfg.Save(cfg.Path()); err != nil {
		logger.Warn("save config", zap.Error(err))
	}
	dirCache.SweepExpired(ctx)

	return ExitSuccess
}

func printListing(w io.Writer, url string, entries []autoindex.Entry, fromCache bool) {
	source := "live"
	if fromCache {
		source = "cached"
	}
	fmt.Fprintf(w, "%s (%s, %d entries)\n\n", url, source, len(entries))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMODIFIED\tSIZE\tKIND")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Modified, e.Size, e.Kind)
	}
	tw.Flush()
}

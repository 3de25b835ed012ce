package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/DeafChair/XOSS-Database-Browser/internal/cache"
)

func runCache(args []string) int {
	fs := flag.NewFlagSet("cache", flag.ExitOnError)

	sweep := fs.Bool("sweep", false, "Remove expired listings")
	clearAll := fs.Bool("clear", false, "Remove every cached listing")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: xossdb cache [options]

Without options, print the number of cached listings. Listings expire
24 hours after they were fetched; expired ones stay on disk until
swept.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
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

	switch {
	case *clearAll:
		dirCache.Clear(ctx)
		fmt.Println("cache cleared")
	case *sweep:
		removed := dirCache.SweepExpired(ctx)
		fmt.Printf("removed %d expired listings\n", removed)
	default:
		fmt.Printf("%d cached listings\n", dirCache.Len())
	}

	return ExitSuccess
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"

	"github.com/DeafChair/XOSS-Database-Browser/internal/config"
	xhttp "github.com/DeafChair/XOSS-Database-Browser/internal/http"
	"github.com/DeafChair/XOSS-Database-Browser/internal/logging"
)

// loadConfig layers the config file (when present) and environment
// variables over the defaults.
func loadConfig() (config.Config, error) {
	cfg := config.Default()

	path := cfg.Path()
	if _, err := os.Stat(path); err == nil {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}

func newClient(cfg config.Config) *xhttp.Client {
	opts := xhttp.DefaultOptions()
	opts.Timeout = cfg.HTTP.Timeout
	opts.HeadTimeout = cfg.HTTP.HeadTimeout
	opts.RetryAttempts = cfg.HTTP.RetryAttempts
	opts.RetryBackoff = cfg.HTTP.RetryBackoff
	return xhttp.NewClient(opts)
}

// openStateBucket opens the state directory as a blob bucket. The cache
// and history documents live there as plain JSON files, so metadata
// sidecars are turned off.
func openStateBucket(cfg config.Config) (*blob.Bucket, error) {
	bucket, err := fileblob.OpenBucket(cfg.StateDir, &fileblob.Options{
		CreateDir: true,
		Metadata:  fileblob.MetadataDontWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("open state dir %s: %w", cfg.StateDir, err)
	}
	return bucket, nil
}

// interruptContext returns a context cancelled by SIGINT or SIGTERM.
// Cancelling it is how a running batch gets told to stop.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[xossdb] Received interrupt, shutting down...")
		cancel()
	}()

	return ctx, cancel
}

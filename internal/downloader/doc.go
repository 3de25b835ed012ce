// Package downloader moves remote files and directory trees to local
// disk.
//
// The engine downloads one file with byte-range resume: an existing
// local file continues from its current size, and a HEAD probe before
// and after the transfer decides whether the file is already, or has
// become, complete. The tree downloader walks a remote directory
// recursively, re-listing every level live. The batch orchestrator fans
// a set of selected tasks into a bounded worker pool sharing one
// cancellation context and one progress gauge.
//
// # Usage
//
//	dl := downloader.New(downloader.Options{
//	    Client:  client,
//	    History: ledger,
//	    Gauge:   &gauge,
//	})
//
//	summary := dl.RunBatch(ctx, tasks, cfg.DownloadDir, cfg.MaxConcurrentTasks)
//
// # Cancellation
//
// Cancellation is the context passed in, typically bound to SIGINT.
// It is polled before each task submission, before each streamed chunk,
// and before each directory entry. A cancelled download keeps its
// partial file for a later resume and is not recorded in history.
package downloader

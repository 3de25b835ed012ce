package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/DeafChair/XOSS-Database-Browser/internal/catalog"
	"github.com/DeafChair/XOSS-Database-Browser/internal/downloader"
	"github.com/DeafChair/XOSS-Database-Browser/internal/history"
	"github.com/DeafChair/XOSS-Database-Browser/internal/progress"
	"github.com/DeafChair/XOSS-Database-Browser/pkg/autoindex"
)

func runGet(args []string) int {
	fs := flag.NewFlagSet("get", flag.ExitOnError)

	dir := fs.String("dir", "", "Download directory (defaults from config)")
	workers := fs.Int("n", 0, "Maximum concurrent downloads (defaults from config)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: xossdb get [options] <url-or-database>...

Download files and directories. Arguments ending in / and database
names download recursively. Already-complete files are skipped and
partial files resume where they left off. Ctrl-C cancels the batch;
partial files stay on disk for the next run.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one URL or database name is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	if *dir != "" {
		cfg.DownloadDir = *dir
	}
	if *workers > 0 {
		cfg.MaxConcurrentTasks = *workers
	}

	tasks := make([]downloader.Task, 0, fs.NArg())
	for _, arg := range fs.Args() {
		task, err := taskFor(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
		tasks = append(tasks, task)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	defer logger.Sync()

	ctx, cancel := interruptContext()
	defer cancel()

	bucket, err := openStateBucket(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	defer bucket.Close()

	ledger := history.New(ctx, bucket, history.Options{Logger: logger})

	gauge := &progress.Gauge{}
	reporter := progress.NewReporter(gauge, progress.Options{})
	reporter.Start()

	d := downloader.New(downloader.Options{
		Client:   newClient(cfg),
		History:  ledger,
		Gauge:    gauge,
		Reporter: reporter,
		Logger:   logger,
	})

	summary := d.RunBatch(ctx, tasks, cfg.DownloadDir, cfg.MaxConcurrentTasks)
	reporter.Stop()

	fmt.Println(summary.String())

	if summary.Failed > 0 || summary.Cancelled > 0 {
		return ExitGeneralError
	}
	return ExitSuccess
}

// taskFor turns one command-line argument into a batch task. Database
// names and URLs ending in / become directory tasks.
func taskFor(arg string) (downloader.Task, error) {
	url, err := catalog.Resolve(arg)
	if err != nil {
		return downloader.Task{}, err
	}

	if strings.HasSuffix(url, "/") {
		name, err := autoindex.DirName(url)
		if err != nil {
			return downloader.Task{}, err
		}
		return downloader.Task{URL: url, Kind: autoindex.KindDirectory, Name: name}, nil
	}

	return downloader.Task{URL: url, Kind: autoindex.KindFile, Name: autoindex.FileName(url)}, nil
}

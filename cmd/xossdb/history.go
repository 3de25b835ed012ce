package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/DeafChair/XOSS-Database-Browser/internal/config"
	"github.com/DeafChair/XOSS-Database-Browser/internal/downloader"
	"github.com/DeafChair/XOSS-Database-Browser/internal/history"
	"github.com/DeafChair/XOSS-Database-Browser/internal/progress"
)

func runHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ExitOnError)

	clearAll := fs.Bool("clear", false, "Remove every record")
	deleteID := fs.String("delete", "", "Remove the record with this id")
	redoID := fs.String("redownload", "", "Download the record's URL again")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: xossdb history [options]

Without options, print the download history, newest first. The history
keeps the last 1000 downloads.

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

	ledger := history.New(ctx, bucket, history.Options{Logger: logger})

	switch {
	case *clearAll:
		ledger.Clear(ctx)
		fmt.Println("history cleared")
		return ExitSuccess
	case *deleteID != "":
		if !ledger.Delete(ctx, *deleteID) {
			fmt.Fprintf(os.Stderr, "Error: no record with id %s\n", *deleteID)
			return ExitGeneralError
		}
		fmt.Println("record deleted")
		return ExitSuccess
	case *redoID != "":
		return redownload(cfg, logger, ledger, *redoID)
	}

	printHistory(os.Stdout, ledger.Records())
	return ExitSuccess
}

// redownload fetches a past record's URL again, straight into the
// download directory.
func redownload(cfg config.Config, logger *zap.Logger, ledger *history.Ledger, id string) int {
	rec, ok := ledger.Get(id)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no record with id %s\n", id)
		return ExitGeneralError
	}

	ctx, cancel := interruptContext()
	defer cancel()

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

	path, err := d.Download(ctx, rec.URL, cfg.DownloadDir)
	reporter.Stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	fmt.Printf("downloaded %s\n", path)
	return ExitSuccess
}

func printHistory(w io.Writer, records []history.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "history is empty")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tOUTCOME\tNAME")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Timestamp, r.Outcome, r.Name)
	}
	tw.Flush()
}

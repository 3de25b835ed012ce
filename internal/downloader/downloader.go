package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	xhttp "github.com/DeafChair/XOSS-Database-Browser/internal/http"
	"github.com/DeafChair/XOSS-Database-Browser/internal/history"
	"github.com/DeafChair/XOSS-Database-Browser/internal/progress"
	"github.com/DeafChair/XOSS-Database-Browser/pkg/autoindex"
)

const (
	// DefaultChunkSize is the streaming read size.
	DefaultChunkSize = 1 << 20

	// DefaultMaxConcurrency is the batch worker pool size when the
	// configuration does not say otherwise.
	DefaultMaxConcurrency = 3

	// sizeTolerance is the slack allowed between local and remote sizes
	// when deciding whether a file is already complete.
	sizeTolerance = 1024
)

// ErrIncompleteTransfer is returned when a download streamed to the end
// but the local size still does not account for the remote size. The
// partial file is left in place for a later resume.
var ErrIncompleteTransfer = errors.New("incomplete transfer")

// Options configures a Downloader.
type Options struct {
	// Client performs all remote calls. Default: a client with
	// DefaultOptions.
	Client *xhttp.Client

	// Fs is the filesystem downloads are written to. Default: the OS
	// filesystem.
	Fs afero.Fs

	// History receives a record per terminal outcome, except
	// cancellation. Optional.
	History *history.Ledger

	// Gauge receives shared progress percentages. Optional.
	Gauge *progress.Gauge

	// Reporter, when set, is told which file is currently transferring.
	Reporter *progress.Reporter

	// Logger receives download lifecycle events. Default: zap.NewNop().
	Logger *zap.Logger

	// ChunkSize is the streaming read size. Default: DefaultChunkSize.
	ChunkSize int64
}

// Downloader transfers remote files to the local filesystem with
// byte-range resume and completeness verification.
type Downloader struct {
	client  *xhttp.Client
	fs      afero.Fs
	history *history.Ledger
	gauge   *progress.Gauge
	rep     *progress.Reporter
	log     *zap.Logger
	chunk   int64
}

// New creates a Downloader.
func New(opts Options) *Downloader {
	if opts.Client == nil {
		opts.Client = xhttp.NewClient(xhttp.DefaultOptions())
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}

	return &Downloader{
		client:  opts.Client,
		fs:      opts.Fs,
		history: opts.History,
		gauge:   opts.Gauge,
		rep:     opts.Reporter,
		log:     opts.Logger,
		chunk:   opts.ChunkSize,
	}
}

// Download transfers the file at rawURL into destDir and returns the
// local path. An existing local file resumes from its current size, and
// a file the remote already accounts for is recorded as a success with
// no bytes transferred. Cancellation through ctx keeps the partial file
// and leaves no history record; every other terminal outcome is
// recorded.
func (d *Downloader) Download(ctx context.Context, rawURL, destDir string) (string, error) {
	name := autoindex.FileName(rawURL)
	if name == "" {
		err := fmt.Errorf("no file name in %q", rawURL)
		d.record(ctx, rawURL, "", name, history.OutcomeFailure)
		return "", err
	}
	d.setLabel(name)

	if err := d.fs.MkdirAll(destDir, 0o755); err != nil {
		d.record(ctx, rawURL, "", name, history.OutcomeFailure)
		return "", fmt.Errorf("create %s: %w", destDir, err)
	}
	destPath := filepath.Join(destDir, name)

	var resumeOffset int64
	if fi, err := d.fs.Stat(destPath); err == nil {
		resumeOffset = fi.Size()
		if d.verifyComplete(ctx, rawURL, resumeOffset) {
			d.log.Info("file already complete",
				zap.String("name", name),
				zap.String("path", destPath),
			)
			d.record(ctx, rawURL, destPath, name, history.OutcomeSuccess)
			return destPath, nil
		}
		if resumeOffset > 0 {
			d.log.Info("resuming download",
				zap.String("name", name),
				zap.Int64("offset", resumeOffset),
			)
		}
	}

	written, err := d.transfer(ctx, rawURL, destPath, resumeOffset)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			// Cancelled: keep the partial file, write no record.
			return "", err
		}
		d.record(ctx, rawURL, "", name, history.OutcomeFailure)
		d.log.Error("download failed", zap.String("url", rawURL), zap.Error(err))
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}

	if !d.verifyComplete(ctx, rawURL, resumeOffset+written) {
		d.record(ctx, rawURL, "", name, history.OutcomeFailure)
		d.log.Error("download failed", zap.String("url", rawURL), zap.Error(ErrIncompleteTransfer))
		return "", fmt.Errorf("download %s: %w", rawURL, ErrIncompleteTransfer)
	}

	d.log.Info("downloaded",
		zap.String("name", name),
		zap.String("path", destPath),
		zap.String("size", progress.FormatBytes(written)),
	)
	d.record(ctx, rawURL, destPath, name, history.OutcomeSuccess)
	return destPath, nil
}

// transfer streams the remote body into destPath, resuming at offset,
// and returns the bytes written. The cancellation token is polled before
// every chunk read.
func (d *Downloader) transfer(ctx context.Context, rawURL, destPath string, offset int64) (int64, error) {
	resp, err := d.client.GetStream(ctx, rawURL, offset)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if offset > 0 {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := d.fs.OpenFile(destPath, flag, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", destPath, err)
	}
	defer f.Close()

	// Total size for progress is the remote body plus what we already
	// hold. An unknown Content-Length makes progress indeterminate.
	total := int64(-1)
	if resp.ContentLength >= 0 {
		total = resp.ContentLength + offset
	}
	if total <= 0 {
		d.setIndeterminate()
	}

	buf := make([]byte, d.chunk)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, rerr := io.ReadFull(resp.Body, buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("write %s: %w", destPath, werr)
			}
			written += int64(n)
			if total > 0 {
				pct := (offset + written) * 100 / total
				if pct > 100 {
					pct = 100
				}
				d.setProgress(float64(pct))
			}
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			return written, nil
		}
		if rerr != nil {
			return written, fmt.Errorf("read body: %w", rerr)
		}
	}
}

// verifyComplete probes the remote size over HEAD and reports whether
// localSize accounts for it within the tolerance. A failed probe reports
// false; a missing Content-Length counts as size zero, which any local
// file satisfies.
func (d *Downloader) verifyComplete(ctx context.Context, rawURL string, localSize int64) bool {
	remote, err := d.client.Head(ctx, rawURL)
	if err != nil {
		return false
	}
	if remote < 0 {
		remote = 0
	}
	return localSize >= remote-sizeTolerance
}

// record appends a ledger entry. The write is detached from ctx
// cancellation so outcomes persist while a batch is being torn down.
func (d *Downloader) record(ctx context.Context, url, localPath, name string, outcome history.Outcome) {
	if d.history == nil {
		return
	}
	d.history.Append(context.WithoutCancel(ctx), history.Record{
		URL:       url,
		LocalPath: localPath,
		Name:      name,
		Outcome:   outcome,
	})
}

func (d *Downloader) setProgress(pct float64) {
	if d.gauge != nil {
		d.gauge.Set(pct)
	}
}

func (d *Downloader) setIndeterminate() {
	if d.gauge != nil {
		d.gauge.SetIndeterminate()
	}
}

func (d *Downloader) setLabel(name string) {
	if d.rep != nil {
		d.rep.SetLabel(name)
	}
}

func (d *Downloader) resetProgress() {
	if d.gauge != nil {
		d.gauge.Reset()
	}
}

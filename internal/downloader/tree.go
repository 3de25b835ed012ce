package downloader

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/DeafChair/XOSS-Database-Browser/pkg/autoindex"
)

// DownloadTree mirrors the remote directory at rawURL beneath parentDir
// and returns the created local root. The directory's own local name is
// derived from its URL, so a tree rooted at ".../NGC%203372/" lands in
// "parentDir/NGC 3372" with subdirectories nested below it.
//
// Every directory visited is listed with a live fetch; the directory
// cache is never consulted, so a bulk download cannot act on stale
// structure. The first failing entry aborts the whole subtree.
// Cancellation is polled before each entry.
func (d *Downloader) DownloadTree(ctx context.Context, rawURL, parentDir string) (string, error) {
	dirURL := autoindex.NormalizeDirURL(rawURL)

	name, err := autoindex.DirName(dirURL)
	if err != nil {
		return "", fmt.Errorf("download directory %s: %w", rawURL, err)
	}
	target := filepath.Join(parentDir, name)
	if err := d.fs.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("download directory %s: %w", dirURL, err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := d.client.Get(ctx, dirURL)
	if err != nil {
		return "", fmt.Errorf("download directory %s: %w", dirURL, err)
	}
	entries, err := autoindex.Parse(bytes.NewReader(body), dirURL)
	if err != nil {
		return "", fmt.Errorf("download directory %s: %w", dirURL, err)
	}

	d.log.Info("downloading directory",
		zap.String("url", dirURL),
		zap.String("target", target),
		zap.Int("entries", len(entries)),
	)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if entry.IsDir() {
			if _, err := d.DownloadTree(ctx, entry.URL, target); err != nil {
				return "", err
			}
			continue
		}
		if _, err := d.Download(ctx, entry.URL, target); err != nil {
			return "", fmt.Errorf("download directory %s: %w", dirURL, err)
		}
	}

	return target, nil
}

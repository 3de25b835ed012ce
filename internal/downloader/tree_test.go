package downloader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/spf13/afero"

	xhttp "github.com/DeafChair/XOSS-Database-Browser/internal/http"
	"github.com/DeafChair/XOSS-Database-Browser/pkg/autoindex"
)

// newSiteServer serves autoindex pages and plain files by decoded path.
func newSiteServer(pages map[string]string, files map[string]string, log *requestLog) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if log != nil {
			log.add(r)
		}
		if page, ok := pages[r.URL.Path]; ok {
			w.Write([]byte(page))
			return
		}
		if data, ok := files[r.URL.Path]; ok {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			if r.Method == http.MethodHead {
				return
			}
			w.Write([]byte(data))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
}

func TestDownloadTreeNested(t *testing.T) {
	pages := map[string]string{
		"/data/": listingHTML(
			row("NGC%203372/", "NGC 3372/", "-"),
			row("a.txt", "a.txt", "5"),
		),
		"/data/NGC 3372/": listingHTML(
			row("b.txt", "b.txt", "7"),
		),
	}
	files := map[string]string{
		"/data/a.txt":          "alpha",
		"/data/NGC 3372/b.txt": "beta-01",
	}
	server := newSiteServer(pages, files, nil)
	defer server.Close()

	dl, fs, ledger := newTestDownloader(t, Options{})

	root, err := dl.DownloadTree(context.Background(), server.URL+"/data", "/dl")
	if err != nil {
		t.Fatalf("DownloadTree: %v", err)
	}
	if root != "/dl/data" {
		t.Errorf("root = %q, want %q", root, "/dl/data")
	}

	got, err := afero.ReadFile(fs, "/dl/data/a.txt")
	if err != nil {
		t.Fatalf("ReadFile a.txt: %v", err)
	}
	if string(got) != "alpha" {
		t.Errorf("a.txt = %q", got)
	}

	// The encoded subdirectory nests under its decoded name.
	got, err = afero.ReadFile(fs, "/dl/data/NGC 3372/b.txt")
	if err != nil {
		t.Fatalf("ReadFile b.txt: %v", err)
	}
	if string(got) != "beta-01" {
		t.Errorf("b.txt = %q", got)
	}

	if n := ledger.Len(); n != 2 {
		t.Errorf("expected 2 history records, got %d", n)
	}
}

func TestDownloadTreeAbortsOnFailure(t *testing.T) {
	pages := map[string]string{
		"/data/": listingHTML(
			row("ok.txt", "ok.txt", "2"),
			row("missing.txt", "missing.txt", "2"),
			row("never.txt", "never.txt", "2"),
		),
	}
	files := map[string]string{
		"/data/ok.txt":    "ok",
		"/data/never.txt": "no",
	}
	var log requestLog
	server := newSiteServer(pages, files, &log)
	defer server.Close()

	dl, _, ledger := newTestDownloader(t, Options{})

	_, err := dl.DownloadTree(context.Background(), server.URL+"/data/", "/dl")
	if !errors.Is(err, xhttp.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Traversal stops at the first failure.
	if n := log.count("GET /data/never.txt"); n != 0 {
		t.Errorf("never.txt should not have been fetched, got %d requests", n)
	}

	recs := ledger.Records()
	if len(recs) != 2 {
		t.Fatalf("expected 2 history records, got %d", len(recs))
	}
}

func TestDownloadTreeNoListing(t *testing.T) {
	pages := map[string]string{
		"/data/": "<html><body>no preformatted block here</body></html>",
	}
	server := newSiteServer(pages, nil, nil)
	defer server.Close()

	dl, _, _ := newTestDownloader(t, Options{})

	_, err := dl.DownloadTree(context.Background(), server.URL+"/data/", "/dl")
	if !errors.Is(err, autoindex.ErrNoListing) {
		t.Fatalf("expected ErrNoListing, got %v", err)
	}
}

func TestDownloadTreeCancelled(t *testing.T) {
	var log requestLog
	server := newSiteServer(nil, nil, &log)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dl, _, _ := newTestDownloader(t, Options{})

	_, err := dl.DownloadTree(ctx, server.URL+"/data/", "/dl")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n := log.count(""); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestDownloadTreeNormalizesURL(t *testing.T) {
	pages := map[string]string{
		"/data/": listingHTML(row("a.txt", "a.txt", "5")),
	}
	files := map[string]string{
		"/data/a.txt": "alpha",
	}
	var log requestLog
	server := newSiteServer(pages, files, &log)
	defer server.Close()

	dl, fs, _ := newTestDownloader(t, Options{})

	// Doubled slashes collapse and the trailing slash is restored.
	_, err := dl.DownloadTree(context.Background(), server.URL+"//data", "/dl")
	if err != nil {
		t.Fatalf("DownloadTree: %v", err)
	}
	if _, err := fs.Stat("/dl/data/a.txt"); err != nil {
		t.Fatalf("expected downloaded file: %v", err)
	}
}

// Package http provides the retrying HTTP client behind listing fetches and
// file downloads.
//
// This package handles:
//   - Connection pooling for concurrent transfers
//   - Bounded retries with backoff on 429/500/502/503/504 and connection errors
//   - Separate timeouts for listing GETs and completeness HEAD probes
//   - Range requests for resumed downloads
//
// # Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	// Fetch a listing page
//	body, err := client.Get(ctx, url)
//
//	// Probe remote size
//	size, err := client.Head(ctx, url)
//
//	// Open a resuming download stream
//	resp, err := client.GetStream(ctx, url, offset)
//	defer resp.Body.Close()
package http

// Package autoindex parses HTTP autoindex directory listings into entries.
//
// It understands the classic server-generated listing shape: a single <pre>
// block with one anchor per entry, each anchor followed by sibling text
// carrying the modification timestamp and size columns. Links to the current or
// parent directory are filtered out. No other listing dialect is supported.
//
// # Parsing
//
// Use [Parse] with the page body and the listing's own URL. Entries come
// back in listing order; each carries the resolved absolute [Entry.URL],
// the [Kind] derived from a trailing slash, and the display strings for
// date and size ([Unknown] when the listing printed none, or a "-" size).
//
//	entries, err := autoindex.Parse(bytes.NewReader(body), listingURL)
//
// A page without a <pre> block is not autoindex output and yields
// [ErrNoListing].
//
// # Sorting
//
// [SortEntries] orders entries by name, date, or size. [ParseSize] and
// [ParseModTime] turn the display strings into sortable values; both
// forgive unknown and malformed input.
//
// # Names
//
// The URL helpers derive local names from remote URLs the way the listing
// columns show them: [FileName] for files, [DirName] for directories
// (illegal characters replaced), [ParentSegment] for the grouping folder a
// file lands in when downloaded on its own, [NormalizeDirURL] and
// [ParentURL] for directory navigation.
package autoindex

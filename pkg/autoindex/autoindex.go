package autoindex

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Common errors.
var (
	// ErrNoListing means the page had no preformatted listing block. Pages
	// like this are not autoindex output and must not be cached.
	ErrNoListing = errors.New("autoindex: no directory listing found")
)

// Unknown is the placeholder for a date or size the listing did not carry.
const Unknown = "unknown"

// Kind classifies a listing entry.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// Entry is one file or subdirectory of a remote listing. Name and Href are
// as served; URL is Href resolved against the listing's own URL and is the
// entry's identity. Modified and Size keep the listing's display strings,
// with Unknown standing in when the server printed nothing usable.
type Entry struct {
	Name     string `json:"name"`
	Href     string `json:"href"`
	URL      string `json:"url"`
	Kind     Kind   `json:"kind"`
	Modified string `json:"modified"`
	Size     string `json:"size"`
}

// IsDir reports whether the entry is a subdirectory.
func (e Entry) IsDir() bool { return e.Kind == KindDirectory }

// Parse reads one autoindex HTML page and returns its entries in listing
// order. The expected shape is a single <pre> block with one <a> per entry,
// each anchor followed by sibling text "<DD>-<Mon>-<YYYY> <HH:MM> <size|->".
// Entries pointing at the current or parent directory are dropped. A page
// without a <pre> block yields ErrNoListing.
func Parse(r io.Reader, baseURL string) ([]Entry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	pre := findPre(doc)
	if pre == nil {
		return nil, ErrNoListing
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}

	var entries []Entry
	eachAnchor(pre, func(a *html.Node) {
		name := strings.TrimSpace(nodeText(a))
		href := attrVal(a, "href")

		if shouldSkip(name, href) {
			return
		}
		if href == "" {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		full := base.ResolveReference(ref).String()

		modified, size := siblingInfo(a)

		kind := KindFile
		if strings.HasSuffix(name, "/") || strings.HasSuffix(href, "/") {
			kind = KindDirectory
		}

		entries = append(entries, Entry{
			Name:     name,
			Href:     href,
			URL:      full,
			Kind:     kind,
			Modified: modified,
			Size:     size,
		})
	})

	return entries, nil
}

// shouldSkip filters the self and parent links autoindex pages carry.
func shouldSkip(name, href string) bool {
	switch name {
	case ".", "..":
		return true
	}
	switch href {
	case "../", "..", "./", ".":
		return true
	}
	if strings.HasPrefix(href, "../") && len(href) > 3 {
		return true
	}
	if strings.Contains(strings.ToLower(name), "parent directory") {
		return true
	}
	return strings.Contains(name, "上级目录")
}

// siblingInfo reads the text node directly after an anchor and splits it
// into the modified timestamp and size column. Fewer than three fields, or
// a bare "-" size, leave the respective value Unknown.
func siblingInfo(a *html.Node) (modified, size string) {
	modified, size = Unknown, Unknown

	sib := a.NextSibling
	if sib == nil || sib.Type != html.TextNode {
		return modified, size
	}
	parts := strings.Fields(sib.Data)
	if len(parts) < 3 {
		return modified, size
	}
	modified = parts[0] + " " + parts[1]
	if parts[2] != "-" {
		size = parts[2]
	}
	return modified, size
}

// findPre returns the first <pre> element in document order.
func findPre(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Pre {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if pre := findPre(c); pre != nil {
			return pre
		}
	}
	return nil
}

// eachAnchor calls fn for every <a> element under n, in document order.
func eachAnchor(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.A {
			fn(c)
			continue
		}
		eachAnchor(c, fn)
	}
}

// nodeText concatenates all text beneath n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// attrVal returns the value of the named attribute, or "".
func attrVal(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

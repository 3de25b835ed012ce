package autoindex

import (
	"fmt"
	"net/url"
	"strings"
)

// invalidNameChars cannot appear in a local file or directory name.
const invalidNameChars = `/\:*?"<>|`

// SanitizeName replaces characters that are illegal in local names with "_".
func SanitizeName(name string) string {
	for _, c := range invalidNameChars {
		name = strings.ReplaceAll(name, string(c), "_")
	}
	return name
}

// FileName derives a local file name from a URL: the percent-decoded text
// after the last slash.
func FileName(rawURL string) string {
	last := rawURL
	if i := strings.LastIndex(rawURL, "/"); i >= 0 {
		last = rawURL[i+1:]
	}
	if dec, err := url.PathUnescape(last); err == nil {
		return dec
	}
	return last
}

// DirName derives a local directory name from a directory URL: the
// percent-decoded last path segment with illegal characters replaced. It
// fails when the URL has no segments at all.
func DirName(rawURL string) (string, error) {
	parts := pathSegments(rawURL)
	if len(parts) == 0 {
		return "", fmt.Errorf("autoindex: no path segments in %q", rawURL)
	}
	name := parts[len(parts)-1]
	if dec, err := url.PathUnescape(name); err == nil {
		name = dec
	}
	return SanitizeName(name), nil
}

// ParentSegment returns the second-to-last segment of the raw URL string,
// percent-decoded and sanitized, or "" when the URL has fewer than two
// segments. The split is over the raw string, so the scheme and host count
// as segments. Files downloaded individually are grouped locally under this
// name, the same value shown one level up in the remote tree.
func ParentSegment(rawURL string) string {
	parts := pathSegments(rawURL)
	if len(parts) < 2 {
		return ""
	}
	seg := parts[len(parts)-2]
	if dec, err := url.PathUnescape(seg); err == nil {
		seg = dec
	}
	return SanitizeName(seg)
}

// NormalizeDirURL makes rawURL end with exactly one slash and collapses
// doubled slashes everywhere except the scheme separator.
func NormalizeDirURL(rawURL string) string {
	if !strings.HasSuffix(rawURL, "/") {
		rawURL = strings.TrimRight(rawURL, "/") + "/"
	}
	if i := strings.Index(rawURL, "://"); i >= 0 {
		return rawURL[:i] + "://" + strings.ReplaceAll(rawURL[i+3:], "//", "/")
	}
	return strings.ReplaceAll(rawURL, "//", "/")
}

// ParentURL returns the listing one level above rawURL, or rawURL itself
// when already at the root or unparsable.
func ParentURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	p := strings.TrimSuffix(u.Path, "/")
	if p == "" {
		return rawURL
	}
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return rawURL
	}
	u.Path = p[:i+1]
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// pathSegments splits a raw URL on "/" and drops empty pieces, mirroring
// how local names are derived from remote paths.
func pathSegments(rawURL string) []string {
	var parts []string
	for _, p := range strings.Split(strings.TrimRight(rawURL, "/"), "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

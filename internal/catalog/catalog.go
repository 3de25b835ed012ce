// Package catalog holds the built-in Xingming Observatory survey
// databases and their listing roots.
package catalog

import (
	"fmt"
	"strings"
)

// Database is one built-in survey archive.
type Database struct {
	Name string
	URL  string
}

// databases in menu order. HMT（PSP） keeps its fullwidth parentheses;
// that is the name the archive uses.
var databases = []Database{
	{Name: "PSP", URL: "http://psp.china-vo.org/pspdata/"},
	{Name: "HMT（PSP）", URL: "https://nadc.china-vo.org/psp/hmt/PSP-HMT-DATA/data/"},
	{Name: "NEXT", URL: "http://psp.china-vo.org/next/"},
	{Name: "HMT", URL: "http://psp.china-vo.org/hmt/"},
	{Name: "CSP", URL: "http://psp.china-vo.org/csp/"},
	{Name: "PAT", URL: "https://nadc.china-vo.org/psp/pat/"},
}

// Databases returns the built-in databases in display order.
func Databases() []Database {
	return append([]Database(nil), databases...)
}

// Resolve maps a database name to its listing root. Anything that
// already looks like a URL passes through unchanged, so callers can
// accept either form.
func Resolve(name string) (string, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return name, nil
	}
	for _, db := range databases {
		if db.Name == name {
			return db.URL, nil
		}
	}
	return "", fmt.Errorf("unknown database %q", name)
}

// IsKnown reports whether name is a built-in database name.
func IsKnown(name string) bool {
	for _, db := range databases {
		if db.Name == name {
			return true
		}
	}
	return false
}

package autoindex

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// ModTimeLayout is the timestamp format autoindex listings print.
const ModTimeLayout = "02-Jan-2006 15:04"

// SortKey selects the column SortEntries orders by.
type SortKey string

const (
	SortByName     SortKey = "name"
	SortByModified SortKey = "date"
	SortBySize     SortKey = "size"
)

// ParseSize converts a listing size column into a byte count usable as a
// sort key. "2K" is 2048, "1.5M" is 1572864, "1G" is 1073741824; a bare
// number passes through. Unknown, "-", and anything unparsable are 0. It
// never fails.
func ParseSize(s string) float64 {
	if s == "" || s == "-" || s == Unknown {
		return 0
	}

	mult := 1.0
	num := s
	switch {
	case strings.HasSuffix(s, "K"):
		mult, num = 1024, s[:len(s)-1]
	case strings.HasSuffix(s, "M"):
		mult, num = 1024*1024, s[:len(s)-1]
	case strings.HasSuffix(s, "G"):
		mult, num = 1024*1024*1024, s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	return v * mult
}

// ParseModTime converts a listing timestamp into a time.Time sort key. The
// zero time stands in for Unknown or unparsable values.
func ParseModTime(s string) time.Time {
	t, err := time.Parse(ModTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SortEntries orders entries in place by the given key. The sort is stable,
// so rows that compare equal keep their listing order. An empty key leaves
// the slice untouched.
func SortEntries(entries []Entry, key SortKey, desc bool) {
	var less func(a, b Entry) bool
	switch key {
	case SortByName:
		less = func(a, b Entry) bool { return a.Name < b.Name }
	case SortByModified:
		less = func(a, b Entry) bool { return ParseModTime(a.Modified).Before(ParseModTime(b.Modified)) }
	case SortBySize:
		less = func(a, b Entry) bool { return ParseSize(a.Size) < ParseSize(b.Size) }
	default:
		return
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if desc {
			return less(entries[j], entries[i])
		}
		return less(entries[i], entries[j])
	})
}

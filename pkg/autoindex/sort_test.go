package autoindex

import (
	"testing"
	"time"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"-", 0},
		{Unknown, 0},
		{"", 0},
		{"2K", 2048},
		{"1.5M", 1572864.0},
		{"1G", 1073741824.0},
		{"12K", 12288},
		{"512", 512},
		{"0.5K", 512},
		{"garbage", 0},
		{"K", 0},
		{"1.2.3M", 0},
	}

	for _, tt := range tests {
		if got := ParseSize(tt.in); got != tt.want {
			t.Errorf("ParseSize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseModTime(t *testing.T) {
	got := ParseModTime("02-Jan-2024 10:30")
	want := time.Date(2024, time.January, 2, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseModTime = %v, want %v", got, want)
	}

	if !ParseModTime(Unknown).IsZero() {
		t.Error("unknown timestamp must parse to the zero time")
	}
	if !ParseModTime("2024-01-02 10:30").IsZero() {
		t.Error("wrong layout must parse to the zero time")
	}
}

func TestSortEntries(t *testing.T) {
	base := []Entry{
		{Name: "c.fits", Modified: "03-Jan-2024 10:00", Size: "1G"},
		{Name: "a.fits", Modified: "01-Jan-2024 10:00", Size: "2K"},
		{Name: "b.fits", Modified: Unknown, Size: Unknown},
	}

	entries := append([]Entry(nil), base...)
	SortEntries(entries, SortByName, false)
	if entries[0].Name != "a.fits" || entries[2].Name != "c.fits" {
		t.Errorf("sort by name: %+v", entries)
	}

	entries = append([]Entry(nil), base...)
	SortEntries(entries, SortBySize, false)
	if entries[0].Name != "b.fits" || entries[2].Name != "c.fits" {
		t.Errorf("sort by size: unknown first, largest last: %+v", entries)
	}

	entries = append([]Entry(nil), base...)
	SortEntries(entries, SortBySize, true)
	if entries[0].Name != "c.fits" {
		t.Errorf("descending sort by size: %+v", entries)
	}

	entries = append([]Entry(nil), base...)
	SortEntries(entries, SortByModified, false)
	if entries[0].Name != "b.fits" || entries[2].Name != "c.fits" {
		t.Errorf("sort by date: unknown first, newest last: %+v", entries)
	}

	entries = append([]Entry(nil), base...)
	SortEntries(entries, "", false)
	if entries[0].Name != "c.fits" {
		t.Errorf("empty key must keep listing order: %+v", entries)
	}
}

func TestSortEntriesStable(t *testing.T) {
	entries := []Entry{
		{Name: "z", Size: "1K"},
		{Name: "a", Size: "1K"},
		{Name: "m", Size: "1K"},
	}
	SortEntries(entries, SortBySize, false)
	if entries[0].Name != "z" || entries[1].Name != "a" || entries[2].Name != "m" {
		t.Errorf("equal keys must keep listing order: %+v", entries)
	}
}

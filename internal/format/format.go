// Package format renders match fields for display.
package format

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const (
	// DefaultPreviewWidth is the preview column width in cells.
	DefaultPreviewWidth = 120
	// Ellipsis marks a truncated preview.
	Ellipsis = "..."
	// TimeLayout is used for modification times.
	TimeLayout = "2006-01-02 15:04"
)

// Preview fits a line into width terminal cells, replacing the tail with
// an ellipsis when it does not fit. Control characters other than tab are
// dropped so they cannot corrupt the table.
func Preview(text string, width int) string {
	if width <= 0 {
		width = DefaultPreviewWidth
	}
	text = strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
	return runewidth.Truncate(text, width, Ellipsis)
}

// Size renders a byte count in IEC units.
func Size(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// Modified renders a modification time in local time.
func Modified(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimeLayout)
}

// RelPath returns path relative to root, or path itself when it is not
// below root.
func RelPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

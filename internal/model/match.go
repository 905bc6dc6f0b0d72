package model

import (
	"fmt"
	"time"
)

// Match is one line in one file that contains the search pattern.
type Match struct {
	Path    string    // absolute path
	Line    int       // 1-based
	Text    string    // newline stripped, tabs expanded
	ModTime time.Time
	Size    int64
}

// Location renders the match as path:line.
func (m Match) Location() string {
	return fmt.Sprintf("%s:%d", m.Path, m.Line)
}

// Progress is a snapshot of a running search.
type Progress struct {
	Scanned      int // files visited
	Total        int // progress denominator
	Used         int // files opened and scanned
	Matches      int
	SkippedLarge int
}

// Percent returns completion in the range [0, 100].
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 100
	}
	pct := float64(p.Scanned) / float64(p.Total) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Summary is the terminal state of one search generation.
type Summary struct {
	Progress
	Truncated bool
	// Incomplete is set when the worker exited before reporting
	// completion or the session closed mid-scan.
	Incomplete bool
}

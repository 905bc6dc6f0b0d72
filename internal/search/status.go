package search

import (
	"fmt"
	"strings"
)

// Status summarises the session in one line for the status bar.
func (s *Session) Status() string {
	switch s.state {
	case Idle:
		return "Enter pattern to search."
	case Scanning:
		p := s.progress
		msg := fmt.Sprintf("Searching '%s'… %d matches in %d/%d files", s.pattern, p.Matches, p.Scanned, p.Total)
		if p.SkippedLarge > 0 {
			msg += fmt.Sprintf(", %d large files skipped", p.SkippedLarge)
		}
		return msg
	}

	sum := s.summary
	if sum.Matches == 0 && s.results.Len() == 0 {
		msg := fmt.Sprintf("No matches for: '%s'", s.pattern)
		if sum.Incomplete {
			msg += " (search incomplete)"
		}
		return msg
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pattern '%s': %d matches in %d/%d files", s.pattern, s.results.Len(), sum.Used, sum.Total)
	if sum.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", s.filter.MaxMatches)
	}
	if sum.SkippedLarge > 0 {
		fmt.Fprintf(&b, ", %d large files skipped", sum.SkippedLarge)
	}
	if sum.Incomplete {
		b.WriteString(" (search incomplete)")
	}
	return b.String()
}

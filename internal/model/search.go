package model

import (
	"sort"
	"strconv"
	"strings"
)

// Filter is an immutable snapshot of everything that decides which files a
// search looks at. Build one per request; never mutate a Filter that has
// been handed to a search.
type Filter struct {
	Root          string
	SourceOnly    bool
	IncludeBinary bool
	IgnoreDirs    []string
	SourceExts    []string
	TextExts      []string
	MaxFileSize   int64 // applied only when scanning everything
	MaxMatches    int
	MaxCandidates int
}

// Fingerprint identifies the eligibility rule of the filter. Two filters
// with the same fingerprint select exactly the same candidate files, so a
// cached candidate list may be reused between them. MaxMatches is
// deliberately not part of it.
func (f Filter) Fingerprint() string {
	var b strings.Builder
	b.WriteString(f.Root)
	b.WriteByte(0)
	if f.SourceOnly {
		b.WriteString("src")
	}
	b.WriteByte(0)
	if f.IncludeBinary {
		b.WriteString("bin")
	}
	b.WriteByte(0)
	for _, set := range [][]string{f.IgnoreDirs, f.SourceExts, f.TextExts} {
		b.WriteString(strings.Join(sortedCopy(set), "\x01"))
		b.WriteByte(0)
	}
	b.WriteString(strconv.FormatInt(f.MaxFileSize, 10))
	b.WriteByte(0)
	b.WriteString(strconv.Itoa(f.MaxCandidates))
	return b.String()
}

// Equal reports whether two filters are the same snapshot.
func (f Filter) Equal(o Filter) bool {
	return f.MaxMatches == o.MaxMatches && f.Fingerprint() == o.Fingerprint()
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

package model

import "strings"

// SortKey selects the order of the result collection.
type SortKey int

const (
	SortByName SortKey = iota
	SortByDate
	SortBySize
)

func (k SortKey) String() string {
	switch k {
	case SortByDate:
		return "date"
	case SortBySize:
		return "size"
	default:
		return "name"
	}
}

// Label is the toolbar rendering of the key.
func (k SortKey) Label() string {
	return strings.ToUpper(k.String())
}

// ParseSortKey maps "name", "date" or "size" to a key. Unknown values
// fall back to name.
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date":
		return SortByDate
	case "size":
		return SortBySize
	default:
		return SortByName
	}
}

// Compare orders two matches under the key. The order is total: matches
// that compare equal are the same location.
//
//	name: path asc, line asc
//	date: mtime desc, path asc, line asc
//	size: size desc, path asc, line asc
func (k SortKey) Compare(a, b Match) int {
	switch k {
	case SortByDate:
		if !a.ModTime.Equal(b.ModTime) {
			if a.ModTime.After(b.ModTime) {
				return -1
			}
			return 1
		}
	case SortBySize:
		if a.Size != b.Size {
			if a.Size > b.Size {
				return -1
			}
			return 1
		}
	}
	if c := strings.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	switch {
	case a.Line < b.Line:
		return -1
	case a.Line > b.Line:
		return 1
	}
	return 0
}

// Less reports whether a sorts before b under the key.
func (k SortKey) Less(a, b Match) bool {
	return k.Compare(a, b) < 0
}

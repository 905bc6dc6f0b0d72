package search

import (
	"slices"

	"github.com/altinukshini/scopefind/internal/model"
)

// Results is the ordered match collection shown to the user. It is owned
// by the control loop and is not safe for concurrent use.
type Results struct {
	items []model.Match
	key   model.SortKey
}

// NewResults returns an empty collection ordered by key.
func NewResults(key model.SortKey) *Results {
	return &Results{key: key}
}

// Key returns the active sort key.
func (r *Results) Key() model.SortKey { return r.key }

// Len returns the number of matches.
func (r *Results) Len() int { return len(r.items) }

// Items returns the ordered matches. The slice is shared; do not modify it.
func (r *Results) Items() []model.Match { return r.items }

// At returns the i-th match.
func (r *Results) At(i int) (model.Match, bool) {
	if i < 0 || i >= len(r.items) {
		return model.Match{}, false
	}
	return r.items[i], true
}

// Reset empties the collection, keeping the sort key.
func (r *Results) Reset() {
	r.items = nil
}

// SetKey re-sorts the collection in place under key.
func (r *Results) SetKey(key model.SortKey) {
	r.key = key
	slices.SortStableFunc(r.items, key.Compare)
}

// Append merges a batch into the collection. The batch is sorted on its
// own and merged, so appending stays linear in the collection size.
func (r *Results) Append(batch []model.Match) {
	if len(batch) == 0 {
		return
	}
	incoming := slices.Clone(batch)
	slices.SortStableFunc(incoming, r.key.Compare)

	if len(r.items) == 0 {
		r.items = incoming
		return
	}
	merged := make([]model.Match, 0, len(r.items)+len(incoming))
	i, j := 0, 0
	for i < len(r.items) && j < len(incoming) {
		if r.key.Compare(incoming[j], r.items[i]) < 0 {
			merged = append(merged, incoming[j])
			j++
		} else {
			merged = append(merged, r.items[i])
			i++
		}
	}
	merged = append(merged, r.items[i:]...)
	merged = append(merged, incoming[j:]...)
	r.items = merged
}

// Package cache keeps classified candidate lists between searches so that
// editing the pattern does not re-walk the tree on every keystroke.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/altinukshini/scopefind/internal/classify"
)

// DefaultMaxEntries is how many distinct filter fingerprints are kept.
const DefaultMaxEntries = 4

// Candidate is one walked file and its classification.
type Candidate struct {
	Path     string
	Decision classify.Decision
}

// Listing is a cached walk result for one fingerprint.
type Listing struct {
	Candidates []Candidate
	Total      int
	Capped     bool
	StoredAt   time.Time
}

// Candidates is a fingerprint-keyed cache safe for use from several
// worker goroutines. Listings are shared read-only; callers must not
// modify the returned slices.
type Candidates struct {
	mu         sync.Mutex
	entries    map[string]Listing
	epoch      uint64
	maxEntries int
	now        func() time.Time
}

// NewCandidates returns an empty cache holding at most maxEntries listings
// (DefaultMaxEntries when maxEntries <= 0).
func NewCandidates(maxEntries int) *Candidates {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Candidates{
		entries:    make(map[string]Listing),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Epoch returns the invalidation counter. Pass it back to Store so that a
// listing built before an Invalidate is not stored.
func (c *Candidates) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Get returns the listing for fingerprint if present.
func (c *Candidates) Get(fingerprint string) (Listing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.entries[fingerprint]
	return l, ok
}

// Store saves a listing built during epoch. It reports false and drops the
// listing when the cache was invalidated in the meantime.
func (c *Candidates) Store(fingerprint string, epoch uint64, l Listing) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return false
	}
	l.StoredAt = c.now()
	c.entries[fingerprint] = l
	c.evictLocked()
	return true
}

// Invalidate drops every listing, for example after the tree changed.
func (c *Candidates) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.entries = make(map[string]Listing)
}

// Len returns the number of cached listings.
func (c *Candidates) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked removes the oldest listings beyond maxEntries.
func (c *Candidates) evictLocked() {
	if len(c.entries) <= c.maxEntries {
		return
	}
	type aged struct {
		key string
		at  time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for k, l := range c.entries {
		all = append(all, aged{k, l.StoredAt})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].at.Equal(all[j].at) {
			return all[i].key < all[j].key
		}
		return all[i].at.Before(all[j].at)
	})
	for _, a := range all[:len(all)-c.maxEntries] {
		delete(c.entries, a.key)
	}
}

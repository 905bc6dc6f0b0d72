// Package debounce coalesces bursts of pattern edits into one search
// request.
//
// Gate is a single-slot timer: each edit re-arms the slot with a new
// ticket, and only the most recent ticket may fire. The timer itself is a
// tea.Tick; the gate only decides whether a fired tick still counts.
package debounce

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/altinukshini/scopefind/internal/ui"
)

// DefaultDelay is the quiet period after the last edit.
const DefaultDelay = 300 * time.Millisecond

// Ticket identifies one armed slot. Zero is never issued.
type Ticket uint64

// Gate holds the latest pattern and the currently armed ticket. It is
// owned by the control loop and not safe for concurrent use.
type Gate struct {
	delay time.Duration
	value string
	next  Ticket
	armed Ticket
}

// New returns a gate with the given quiet period; non-positive means
// DefaultDelay.
func New(delay time.Duration) *Gate {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Gate{delay: delay}
}

// Delay returns the quiet period.
func (g *Gate) Delay() time.Duration { return g.delay }

// Value returns the most recent edit.
func (g *Gate) Value() string { return g.value }

// Pending reports whether a ticket is armed.
func (g *Gate) Pending() bool { return g.armed != 0 }

// Edit records pattern as the latest value and arms a new slot,
// invalidating every earlier ticket.
func (g *Gate) Edit(pattern string) Ticket {
	g.value = pattern
	g.next++
	g.armed = g.next
	return g.armed
}

// Fire returns the latest value if t is the armed ticket. A ticket fires
// at most once; stale tickets return false.
func (g *Gate) Fire(t Ticket) (string, bool) {
	if t == 0 || t != g.armed {
		return "", false
	}
	g.armed = 0
	return g.value, true
}

// Now disarms any pending slot and returns the latest value for an
// immediate request. It returns false when nothing was ever edited.
func (g *Gate) Now() (string, bool) {
	g.armed = 0
	if g.next == 0 {
		return "", false
	}
	return g.value, true
}

// Cancel disarms the pending slot without producing a value.
func (g *Gate) Cancel() {
	g.armed = 0
}

// Cmd schedules the firing of t after the quiet period.
func (g *Gate) Cmd(t Ticket) tea.Cmd {
	return tea.Tick(g.delay, func(time.Time) tea.Msg {
		return ui.DebounceMsg{Ticket: uint64(t)}
	})
}

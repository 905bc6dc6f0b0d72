package search

import "github.com/altinukshini/scopefind/internal/model"

// Event is a message from a worker to the session. The set of events is
// closed: ProgressEvent, MatchBatch and Done.
type Event interface {
	// Generation identifies the search that produced the event.
	Generation() uint64
	event()
}

// ProgressEvent reports counters of a running search.
type ProgressEvent struct {
	Gen      uint64
	Progress model.Progress
}

// MatchBatch carries a bounded group of new matches.
type MatchBatch struct {
	Gen     uint64
	Matches []model.Match
}

// Done is the single terminal event of a generation.
type Done struct {
	Gen     uint64
	Summary model.Summary
}

func (e ProgressEvent) Generation() uint64 { return e.Gen }
func (e MatchBatch) Generation() uint64    { return e.Gen }
func (e Done) Generation() uint64          { return e.Gen }

func (ProgressEvent) event() {}
func (MatchBatch) event()    {}
func (Done) event()          {}

// Package search runs incremental searches over a file tree.
//
// A Session owns at most one active generation. Each non-empty Request
// cancels the previous worker and starts a new generation; workers report
// through a single FIFO channel of generation-tagged events, and Poll,
// called from the control loop, applies only events of the active
// generation. The tag is what makes cancellation safe: an old worker may
// keep running for a while, its events are simply discarded.
package search

import (
	"context"
	"time"

	"github.com/altinukshini/scopefind/internal/cache"
	"github.com/altinukshini/scopefind/internal/classify"
	"github.com/altinukshini/scopefind/internal/logger"
	"github.com/altinukshini/scopefind/internal/model"
	"github.com/altinukshini/scopefind/internal/scan"
)

// Defaults for Options fields left zero.
const (
	DefaultBatchSize        = 10
	DefaultProgressEvery    = 20
	DefaultMaxEventsPerPoll = 256
	DefaultBuffer           = 64
	DefaultStallTimeout     = 30 * time.Second
	DefaultHeartbeat        = 250 * time.Millisecond
	closeWait               = 200 * time.Millisecond
)

// State is the session's lifecycle state.
type State int

const (
	Idle State = iota
	Scanning
	Completed
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

// Options configures a Session. Zero fields take defaults.
type Options struct {
	Scanner    scan.Scanner
	Classifier *classify.Classifier
	Cache      *cache.Candidates
	SortKey    model.SortKey

	BatchSize        int
	ProgressEvery    int
	MaxEventsPerPoll int
	Buffer           int
	// StallTimeout logs a warning when a live worker has produced no event
	// for this long. It never ends the generation; only a worker that
	// exits without Done does. Negative disables the warning.
	StallTimeout time.Duration
	// Heartbeat is the longest a busy worker stays silent between
	// progress events. Negative disables heartbeats.
	Heartbeat time.Duration

	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Scanner == nil {
		o.Scanner = scan.New()
	}
	if o.Classifier == nil {
		o.Classifier = classify.New()
	}
	if o.Cache == nil {
		o.Cache = cache.NewCandidates(0)
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = DefaultProgressEvery
	}
	if o.MaxEventsPerPoll <= 0 {
		o.MaxEventsPerPoll = DefaultMaxEventsPerPoll
	}
	if o.Buffer <= 0 {
		o.Buffer = DefaultBuffer
	}
	if o.StallTimeout == 0 {
		o.StallTimeout = DefaultStallTimeout
	}
	if o.Heartbeat == 0 {
		o.Heartbeat = DefaultHeartbeat
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Session is the search state machine. All methods must be called from
// the same goroutine (the UI loop); workers never touch its fields.
type Session struct {
	opts Options

	events chan Event

	gen     uint64
	state   State
	pattern string
	filter  model.Filter

	cancel    context.CancelFunc
	exited    <-chan struct{}
	lastEvent time.Time
	quiet     bool

	results  *Results
	progress model.Progress
	summary  model.Summary
}

// New returns an idle session.
func New(opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		opts:    opts,
		events:  make(chan Event, opts.Buffer),
		results: NewResults(opts.SortKey),
	}
}

// Request starts a search for pattern under filter and returns its
// generation. Results and progress are cleared before it returns. An
// empty pattern stops any search and returns the session to Idle
// (generation 0).
func (s *Session) Request(pattern string, f model.Filter) uint64 {
	s.stopWorker()
	s.results.Reset()
	s.progress = model.Progress{}
	s.summary = model.Summary{}
	s.pattern = pattern
	s.filter = f

	if pattern == "" {
		s.state = Idle
		return 0
	}

	s.gen++
	ctx, cancel := context.WithCancel(context.Background())
	exited := make(chan struct{})
	s.cancel = cancel
	s.exited = exited
	s.state = Scanning
	s.lastEvent = s.opts.Now()
	s.quiet = false

	w := &worker{
		gen:           s.gen,
		pattern:       pattern,
		filter:        f,
		scanner:       s.opts.Scanner,
		classifier:    s.opts.Classifier,
		cache:         s.opts.Cache,
		batchSize:     s.opts.BatchSize,
		progressEvery: s.opts.ProgressEvery,
		heartbeat:     s.opts.Heartbeat,
		now:           s.opts.Now,
		out:           s.events,
	}
	go w.run(ctx, exited)
	return s.gen
}

// Poll applies pending worker events without blocking and reports whether
// anything visible changed. It also finalises a generation whose worker
// exited without reporting Done.
func (s *Session) Poll() bool {
	changed := false
	for i := 0; i < s.opts.MaxEventsPerPoll; i++ {
		select {
		case ev := <-s.events:
			if s.apply(ev) {
				changed = true
			}
			continue
		default:
		}
		return s.checkWorker() || changed
	}
	// Per-tick limit reached; the rest waits for the next tick.
	return changed
}

// checkWorker runs once the channel is empty.
func (s *Session) checkWorker() bool {
	if s.state != Scanning {
		return false
	}
	select {
	case <-s.exited:
		// Everything the worker sent is already queued.
		changed := s.drain()
		if s.state == Scanning {
			logger.Warn("search worker exited without completing", "generation", s.gen)
			s.finish(true)
			changed = true
		}
		return changed
	default:
	}
	// A busy worker is still alive; a long silence is only logged.
	if !s.quiet && s.opts.StallTimeout > 0 && s.opts.Now().Sub(s.lastEvent) > s.opts.StallTimeout {
		logger.Warn("search worker quiet", "generation", s.gen, "timeout", s.opts.StallTimeout)
		s.quiet = true
	}
	return false
}

func (s *Session) drain() bool {
	changed := false
	for {
		select {
		case ev := <-s.events:
			if s.apply(ev) {
				changed = true
			}
		default:
			return changed
		}
	}
}

// apply mutates visible state for events of the active generation and
// discards everything else.
func (s *Session) apply(ev Event) bool {
	if ev.Generation() != s.gen || s.state != Scanning {
		return false
	}
	s.lastEvent = s.opts.Now()
	s.quiet = false

	switch e := ev.(type) {
	case ProgressEvent:
		s.progress = e.Progress
	case MatchBatch:
		s.results.Append(e.Matches)
		s.progress.Matches += len(e.Matches)
	case Done:
		s.summary = e.Summary
		s.progress = e.Summary.Progress
		s.state = Completed
		s.release()
	}
	return true
}

// finish completes the active generation with what has been received.
func (s *Session) finish(incomplete bool) {
	s.summary = model.Summary{Progress: s.progress, Incomplete: incomplete}
	s.state = Completed
	s.release()
}

func (s *Session) release() {
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = nil
	s.exited = nil
}

// stopWorker retires the active worker. It does not wait for it.
func (s *Session) stopWorker() {
	if s.cancel != nil {
		s.cancel()
		logger.Debug("search canceled", "generation", s.gen)
	}
	s.cancel = nil
	s.exited = nil
}

// SetSort re-sorts the collection in place.
func (s *Session) SetSort(key model.SortKey) {
	s.results.SetKey(key)
}

// Invalidate drops cached candidate lists; the next request walks again.
func (s *Session) Invalidate() {
	s.opts.Cache.Invalidate()
}

// Close terminates any active worker, waiting briefly for it to exit.
func (s *Session) Close() {
	exited := s.exited
	s.stopWorker()
	if exited != nil {
		select {
		case <-exited:
		case <-time.After(closeWait):
			logger.Warn("search worker did not exit before close", "generation", s.gen)
		}
	}
	if s.state == Scanning {
		s.finish(true)
	}
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Generation returns the most recently started generation.
func (s *Session) Generation() uint64 { return s.gen }

// Pattern returns the pattern of the last request.
func (s *Session) Pattern() string { return s.pattern }

// Filter returns the filter of the last request.
func (s *Session) Filter() model.Filter { return s.filter }

// Results returns the ordered result collection.
func (s *Session) Results() *Results { return s.results }

// Progress returns the current progress snapshot.
func (s *Session) Progress() model.Progress { return s.progress }

// Summary returns the terminal summary; meaningful once Completed.
func (s *Session) Summary() model.Summary { return s.summary }

package search

import (
	"context"
	"fmt"
	"time"

	"github.com/altinukshini/scopefind/internal/cache"
	"github.com/altinukshini/scopefind/internal/classify"
	"github.com/altinukshini/scopefind/internal/logger"
	"github.com/altinukshini/scopefind/internal/model"
	"github.com/altinukshini/scopefind/internal/scan"
	"github.com/altinukshini/scopefind/internal/walk"
)

// classifyCheckEvery is how often candidate classification looks at ctx.
const classifyCheckEvery = 256

// worker runs one generation: a straight walk, classify and scan loop
// whose only output is the event channel.
type worker struct {
	gen           uint64
	pattern       string
	filter        model.Filter
	scanner       scan.Scanner
	classifier    *classify.Classifier
	cache         *cache.Candidates
	batchSize     int
	progressEvery int
	heartbeat     time.Duration
	now           func() time.Time
	out           chan<- Event

	lastSent time.Time
}

func (w *worker) run(ctx context.Context, exited chan<- struct{}) {
	defer close(exited)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("search worker panicked", "generation", w.gen, "panic", fmt.Sprint(r))
		}
	}()

	logger.Debug("search started", "generation", w.gen, "pattern", w.pattern, "root", w.filter.Root)
	if w.now != nil {
		w.lastSent = w.now()
	}

	listing, err := w.candidates(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		// An unreadable root completes as an empty search.
		logger.Warn("search root unreadable", "generation", w.gen, "root", w.filter.Root, "err", err)
		w.send(ctx, Done{Gen: w.gen})
		return
	}

	p := model.Progress{Total: listing.Total}
	if !w.send(ctx, ProgressEvent{Gen: w.gen, Progress: p}) {
		return
	}

	batch := make([]model.Match, 0, w.batchSize)
	flush := func() bool {
		if len(batch) == 0 {
			return true
		}
		ok := w.send(ctx, MatchBatch{Gen: w.gen, Matches: batch})
		batch = make([]model.Match, 0, w.batchSize)
		return ok
	}

	truncated := false
	for _, c := range listing.Candidates {
		if ctx.Err() != nil {
			return
		}
		p.Scanned++

		switch {
		case c.Decision.Reason == classify.ReasonSkippedLarge:
			p.SkippedLarge++
		case c.Decision.Eligible:
			canceled := false
			err := w.scanner.Scan(c.Path, w.pattern, func(l scan.Line) bool {
				batch = append(batch, model.Match{
					Path:    c.Path,
					Line:    l.Number,
					Text:    l.Text,
					ModTime: c.Decision.ModTime,
					Size:    c.Decision.Size,
				})
				p.Matches++
				if len(batch) >= w.batchSize && !flush() {
					canceled = true
					return false
				}
				if w.filter.MaxMatches > 0 && p.Matches >= w.filter.MaxMatches {
					truncated = true
					return false
				}
				if w.due() && (!flush() || !w.send(ctx, ProgressEvent{Gen: w.gen, Progress: p})) {
					canceled = true
					return false
				}
				return true
			})
			if canceled {
				return
			}
			if err != nil {
				logger.Debug("skipping file", "path", c.Path, "err", err)
			} else {
				p.Used++
			}
		}

		if truncated {
			break
		}
		if p.Scanned%w.progressEvery == 0 || w.due() {
			if !flush() || !w.send(ctx, ProgressEvent{Gen: w.gen, Progress: p}) {
				return
			}
		}
	}

	if !flush() {
		return
	}
	if truncated {
		// Reaching the cap counts as 100% of what was looked at.
		p.Total = p.Scanned
	}
	w.send(ctx, Done{Gen: w.gen, Summary: model.Summary{Progress: p, Truncated: truncated}})
	logger.Debug("search finished", "generation", w.gen, "matches", p.Matches,
		"scanned", p.Scanned, "total", p.Total, "truncated", truncated)
}

// send delivers ev unless the generation was canceled first.
func (w *worker) send(ctx context.Context, ev Event) bool {
	select {
	case w.out <- ev:
		if w.now != nil {
			w.lastSent = w.now()
		}
		return true
	case <-ctx.Done():
		return false
	}
}

// due reports whether the worker has been silent for a heartbeat interval.
func (w *worker) due() bool {
	return w.heartbeat > 0 && w.now != nil && w.now().Sub(w.lastSent) >= w.heartbeat
}

// candidates returns the classified file list, from the cache when the
// eligibility rule is unchanged.
func (w *worker) candidates(ctx context.Context) (cache.Listing, error) {
	fp := w.filter.Fingerprint()
	if w.cache != nil {
		if l, ok := w.cache.Get(fp); ok {
			logger.Debug("candidate cache hit", "generation", w.gen, "candidates", len(l.Candidates))
			return l, nil
		}
	}

	var epoch uint64
	if w.cache != nil {
		epoch = w.cache.Epoch()
	}

	walker := walk.New(w.filter.IgnoreDirs, w.filter.MaxCandidates)
	walker.Visit = func(total int) {
		if w.due() {
			w.send(ctx, ProgressEvent{Gen: w.gen, Progress: model.Progress{Total: total}})
		}
	}
	walked, err := walker.List(ctx, w.filter.Root)
	if err != nil {
		return cache.Listing{}, err
	}
	// Classification stats every file; show the total while it runs.
	total := model.Progress{Total: walked.Total}
	if !w.send(ctx, ProgressEvent{Gen: w.gen, Progress: total}) {
		return cache.Listing{}, ctx.Err()
	}

	out := cache.Listing{
		Candidates: make([]cache.Candidate, 0, len(walked.Files)),
		Total:      walked.Total,
		Capped:     walked.Capped,
	}
	for i, path := range walked.Files {
		if i%classifyCheckEvery == 0 && ctx.Err() != nil {
			return cache.Listing{}, ctx.Err()
		}
		if w.due() && !w.send(ctx, ProgressEvent{Gen: w.gen, Progress: total}) {
			return cache.Listing{}, ctx.Err()
		}
		out.Candidates = append(out.Candidates, cache.Candidate{
			Path:     path,
			Decision: w.classifier.Classify(path, w.filter),
		})
	}

	if w.cache != nil && !w.cache.Store(fp, epoch, out) {
		logger.Debug("candidate cache invalidated during walk", "generation", w.gen)
	}
	return out, nil
}

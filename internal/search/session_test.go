package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altinukshini/scopefind/internal/classify"
	"github.com/altinukshini/scopefind/internal/model"
	"github.com/altinukshini/scopefind/internal/scan"
)

func testFilter(root string) model.Filter {
	return model.Filter{
		Root:        root,
		SourceOnly:  true,
		IgnoreDirs:  []string{".git"},
		SourceExts:  []string{".py"},
		TextExts:    []string{".py", ".txt", ".md"},
		MaxFileSize: 2 << 20,
		MaxMatches:  1000,
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for s.State() != Completed {
		if time.Now().After(deadline) {
			require.FailNow(t, "search did not complete", "state=%s progress=%+v", s.State(), s.Progress())
		}
		s.Poll()
		time.Sleep(time.Millisecond)
	}
}

// blockingScanner blocks every Scan until release is closed.
type blockingScanner struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func newBlockingScanner() *blockingScanner {
	return &blockingScanner{release: make(chan struct{}), started: make(chan struct{})}
}

func (b *blockingScanner) Scan(string, string, func(scan.Line) bool) error {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return nil
}

// steppedScanner yields one "foo" line after release, then blocks until
// hold is closed.
type steppedScanner struct {
	started chan struct{}
	release chan struct{}
	hold    chan struct{}
	once    sync.Once
}

func newSteppedScanner() *steppedScanner {
	return &steppedScanner{
		started: make(chan struct{}),
		release: make(chan struct{}),
		hold:    make(chan struct{}),
	}
}

func (st *steppedScanner) Scan(_, _ string, yield func(scan.Line) bool) error {
	st.once.Do(func() { close(st.started) })
	<-st.release
	if !yield(scan.Line{Number: 1, Text: "foo"}) {
		return nil
	}
	<-st.hold
	return nil
}

type panicScanner struct{}

func (panicScanner) Scan(string, string, func(scan.Line) bool) error {
	panic("boom")
}

func TestEmptyRootCompletes(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	gen := s.Request("x", testFilter(t.TempDir()))
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, Scanning, s.State())

	waitDone(t, s)
	sum := s.Summary()
	assert.Zero(t, sum.Used)
	assert.Zero(t, sum.Total)
	assert.Zero(t, sum.Matches)
	assert.False(t, sum.Truncated)
	assert.False(t, sum.Incomplete)
	assert.Equal(t, "No matches for: 'x'", s.Status())
}

func TestSingleSourceFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.py", "foo\nfoobar\nbaz\n")

	s := New(Options{})
	defer s.Close()
	s.Request("foo", testFilter(dir))
	waitDone(t, s)

	items := s.Results().Items()
	require.Len(t, items, 2)
	assert.Equal(t, path, items[0].Path)
	assert.Equal(t, 1, items[0].Line)
	assert.Equal(t, "foo", items[0].Text)
	assert.Equal(t, 2, items[1].Line)
	assert.Equal(t, "foobar", items[1].Text)

	sum := s.Summary()
	assert.Equal(t, 1, sum.Used)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 2, sum.Matches)
	assert.False(t, sum.Truncated)
	assert.Equal(t, "Pattern 'foo': 2 matches in 1/1 files", s.Status())
}

func TestTruncationRevisesTotal(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2000; i++ {
		writeFile(t, dir, fmt.Sprintf("f%04d.py", i), "has matches here\n")
	}
	f := testFilter(dir)
	f.MaxMatches = 300

	s := New(Options{})
	defer s.Close()
	s.Request("matches", f)
	waitDone(t, s)

	sum := s.Summary()
	assert.True(t, sum.Truncated)
	assert.Equal(t, 300, s.Results().Len())
	assert.Equal(t, 300, sum.Matches)
	assert.Equal(t, sum.Scanned, sum.Total)
	assert.Equal(t, 300, sum.Scanned)
	assert.Equal(t, 100.0, sum.Percent())
	assert.Contains(t, s.Status(), "(truncated to 300)")
}

func TestLargeFilesSkippedWhenScanningEverything(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.dat", strings.Repeat("needle\n", 5<<20/7+1))
	writeFile(t, dir, "small.dat", "a needle\n")

	f := testFilter(dir)
	f.SourceOnly = false
	f.IncludeBinary = true

	s := New(Options{})
	defer s.Close()
	s.Request("needle", f)
	waitDone(t, s)

	sum := s.Summary()
	assert.Equal(t, 1, sum.SkippedLarge)
	assert.Equal(t, 1, sum.Used)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, s.Results().Len())
	assert.True(t, strings.HasSuffix(s.Status(), ", 1 large files skipped"), s.Status())
}

func TestIgnoredDirectoriesArePruned(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".git/hooks/x.py", "needle\n")
	writeFile(t, dir, "src/y.py", "needle\n")

	s := New(Options{})
	defer s.Close()
	s.Request("needle", testFilter(dir))
	waitDone(t, s)

	require.Equal(t, 1, s.Results().Len())
	m, _ := s.Results().At(0)
	assert.Equal(t, filepath.Join(dir, "src", "y.py"), m.Path)
}

func TestEmptyPatternGoesIdle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "foo\n")

	s := New(Options{})
	defer s.Close()
	s.Request("foo", testFilter(dir))
	waitDone(t, s)
	require.Equal(t, 1, s.Results().Len())

	gen := s.Request("", testFilter(dir))
	assert.Zero(t, gen)
	assert.Equal(t, Idle, s.State())
	assert.Zero(t, s.Results().Len())
	assert.Equal(t, model.Progress{}, s.Progress())
	assert.Equal(t, "Enter pattern to search.", s.Status())
	assert.False(t, s.Poll())
}

func TestStaleEventsAreDiscarded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "foo\n")
	bs := newBlockingScanner()
	defer close(bs.release)

	s := New(Options{Scanner: bs, StallTimeout: -1})
	defer s.Close()

	first := s.Request("foo", testFilter(dir))
	second := s.Request("fo", testFilter(dir))
	require.Greater(t, second, first)
	assert.Equal(t, Scanning, s.State())
	assert.Zero(t, s.Results().Len())

	stale := model.Match{Path: filepath.Join(dir, "a.py"), Line: 1, Text: "foo"}
	s.events <- MatchBatch{Gen: first, Matches: []model.Match{stale}}
	s.events <- Done{Gen: first, Summary: model.Summary{Progress: model.Progress{Matches: 1}}}

	<-bs.started
	s.Poll()
	assert.Equal(t, Scanning, s.State())
	assert.Zero(t, s.Results().Len())
	assert.Zero(t, s.Progress().Matches)
	assert.Equal(t, second, s.Generation())
	assert.Equal(t, "fo", s.Pattern())
}

func TestPanickingWorkerCompletesIncomplete(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "foo\n")

	s := New(Options{Scanner: panicScanner{}})
	defer s.Close()
	s.Request("foo", testFilter(dir))
	waitDone(t, s)

	assert.True(t, s.Summary().Incomplete)
	assert.Contains(t, s.Status(), "(search incomplete)")
}

func TestQuietWorkerIsNotFinalised(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "foo\n")
	st := newSteppedScanner()

	var clock atomic.Int64
	clock.Store(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).UnixNano())
	s := New(Options{
		Scanner:      st,
		StallTimeout: time.Minute,
		Heartbeat:    -1,
		Now:          func() time.Time { return time.Unix(0, clock.Load()) },
	})
	defer s.Close()

	s.Request("foo", testFilter(dir))
	<-st.started
	s.Poll()
	require.Equal(t, Scanning, s.State())

	clock.Add(int64(2 * time.Minute))
	assert.False(t, s.Poll())
	assert.Equal(t, Scanning, s.State(), "a silent live worker keeps its generation")

	close(st.release)
	close(st.hold)
	waitDone(t, s)
	assert.False(t, s.Summary().Incomplete)
	assert.Equal(t, 1, s.Results().Len())
	assert.Equal(t, "Pattern 'foo': 1 matches in 1/1 files", s.Status())
}

func TestSlowClassificationStillCompletes(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 4; i++ {
		writeFile(t, dir, fmt.Sprintf("m%d.py", i), "foo\n")
	}
	c := classify.New()
	c.Binary = func(string) bool {
		time.Sleep(30 * time.Millisecond)
		return false
	}
	s := New(Options{Classifier: c, StallTimeout: 20 * time.Millisecond, Heartbeat: 5 * time.Millisecond})
	defer s.Close()
	s.Request("foo", testFilter(dir))

	sawTotal := false
	deadline := time.Now().Add(5 * time.Second)
	for s.State() != Completed {
		require.False(t, time.Now().After(deadline), "search did not complete")
		s.Poll()
		if s.State() == Scanning && s.Progress().Total == 4 && s.Progress().Scanned == 0 {
			sawTotal = true
		}
		time.Sleep(time.Millisecond)
	}
	assert.True(t, sawTotal, "total is reported while candidates are classified")
	assert.False(t, s.Summary().Incomplete)
	assert.Equal(t, 4, s.Results().Len())
}

func TestHeartbeatDeliversMatchesMidFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "foo\n")
	st := newSteppedScanner()

	var clock atomic.Int64
	s := New(Options{
		Scanner:   st,
		Heartbeat: time.Second,
		Now:       func() time.Time { return time.Unix(0, clock.Load()) },
	})
	defer s.Close()

	s.Request("foo", testFilter(dir))
	<-st.started
	clock.Add(int64(2 * time.Second))
	close(st.release)

	deadline := time.Now().Add(5 * time.Second)
	for s.Results().Len() == 0 {
		require.False(t, time.Now().After(deadline), "no heartbeat delivered the pending match")
		s.Poll()
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, Scanning, s.State())
	assert.Equal(t, 1, s.Progress().Matches)
	assert.Equal(t, "Searching 'foo'… 1 matches in 1/1 files", s.Status())

	close(st.hold)
	waitDone(t, s)
	assert.Equal(t, 1, s.Results().Len())
}

func TestCloseStopsActiveWorker(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "foo\n")
	bs := newBlockingScanner()
	defer close(bs.release)

	s := New(Options{Scanner: bs})
	s.Request("foo", testFilter(dir))
	<-bs.started

	s.Close()
	assert.Equal(t, Completed, s.State())
	assert.True(t, s.Summary().Incomplete)
}

func TestCandidateListIsCachedPerFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "foo\n")
	writeFile(t, dir, "b.py", "bar\n")

	var stats atomic.Int32
	c := classify.New()
	c.Stat = func(path string) (os.FileInfo, error) {
		stats.Add(1)
		return os.Stat(path)
	}

	s := New(Options{Classifier: c})
	defer s.Close()

	s.Request("foo", testFilter(dir))
	waitDone(t, s)
	assert.Equal(t, int32(2), stats.Load())

	s.Request("bar", testFilter(dir))
	waitDone(t, s)
	assert.Equal(t, int32(2), stats.Load(), "same filter reuses the candidate list")
	assert.Equal(t, 1, s.Results().Len())

	f := testFilter(dir)
	f.MaxMatches = 5
	s.Request("bar", f)
	waitDone(t, s)
	assert.Equal(t, int32(2), stats.Load(), "the match cap does not affect eligibility")

	s.Invalidate()
	s.Request("bar", testFilter(dir))
	waitDone(t, s)
	assert.Equal(t, int32(4), stats.Load())

	f = testFilter(dir)
	f.SourceOnly = false
	s.Request("bar", f)
	waitDone(t, s)
	assert.Equal(t, int32(6), stats.Load())
}

func TestSetSortReordersInPlace(t *testing.T) {
	dir := t.TempDir()
	small := writeFile(t, dir, "a.py", "hit\n")
	big := writeFile(t, dir, "b.py", "hit\n"+strings.Repeat("x", 100)+"\nhit again\n")

	s := New(Options{})
	defer s.Close()
	gen := s.Request("hit", testFilter(dir))
	waitDone(t, s)

	paths := func() []string {
		var out []string
		for _, m := range s.Results().Items() {
			out = append(out, fmt.Sprintf("%s:%d", filepath.Base(m.Path), m.Line))
		}
		return out
	}
	assert.Equal(t, []string{"a.py:1", "b.py:1", "b.py:3"}, paths())

	s.SetSort(model.SortBySize)
	assert.Equal(t, []string{"b.py:1", "b.py:3", "a.py:1"}, paths())
	assert.Equal(t, gen, s.Generation(), "re-sorting does not start a search")

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(big, past, past))
	require.NoError(t, os.Chtimes(small, time.Now(), time.Now()))
	s.Invalidate()
	s.Request("hit", testFilter(dir))
	s.SetSort(model.SortByDate)
	waitDone(t, s)
	assert.Equal(t, []string{"a.py:1", "b.py:1", "b.py:3"}, paths())
}

func TestProgressReachesTotal(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 45; i++ {
		writeFile(t, dir, fmt.Sprintf("m%02d.py", i), "line\n")
	}
	s := New(Options{})
	defer s.Close()
	s.Request("line", testFilter(dir))
	waitDone(t, s)

	p := s.Progress()
	assert.Equal(t, 45, p.Scanned)
	assert.Equal(t, 45, p.Total)
	assert.Equal(t, 45, p.Matches)
	assert.Equal(t, 45, s.Results().Len())
}

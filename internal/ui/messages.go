package ui

import "time"

// Control loop messages
type PollTickMsg struct {
	At time.Time
}

type DebounceMsg struct {
	Ticket uint64
}

// TreeChangedMsg is sent by the file watcher after the tree changed on
// disk. Err is set when the watcher stopped.
type TreeChangedMsg struct {
	Path string
	Err  error
}

type PreviewLoadedMsg struct {
	Path      string
	Line      int
	Content   string
	Truncated bool
	Err       error
}

type ClipboardMsg struct {
	Text string
	Err  error
}

type StatusMsg struct {
	Text string
}

// Package classify decides whether a file is eligible for scanning under a
// filter snapshot.
package classify

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/altinukshini/scopefind/internal/model"
)

// sniffSize is how much of a file IsBinary looks at.
const sniffSize = 1024

// Reason explains a Decision.
type Reason string

const (
	ReasonSource       Reason = "source"
	ReasonText         Reason = "text"
	ReasonSized        Reason = "within-size"
	ReasonSkippedLarge Reason = "skipped-large"
	ReasonBinary       Reason = "binary"
	ReasonExtension    Reason = "extension"
	ReasonUnreadable   Reason = "unreadable"
)

// Decision is the outcome of classifying one path.
type Decision struct {
	Eligible bool
	Reason   Reason
	Size     int64
	ModTime  time.Time
}

// Classifier applies the eligibility rules. The zero value uses os.Stat
// and IsBinary.
type Classifier struct {
	// Binary reports whether a file should be treated as binary.
	Binary func(path string) bool
	// Stat returns file metadata.
	Stat func(path string) (os.FileInfo, error)
}

// New returns a Classifier backed by the filesystem.
func New() *Classifier {
	return &Classifier{Binary: IsBinary, Stat: os.Stat}
}

// Classify returns exactly one decision for path. It never panics on
// filesystem errors; unreadable files are not eligible.
//
// Rules, first match wins:
//  1. source extension with SourceOnly on: eligible, unless binary sniffing
//     is active and finds a NUL byte
//  2. SourceOnly off, IncludeBinary off: eligible iff text extension
//  3. SourceOnly off, IncludeBinary on: eligible iff size fits the ceiling,
//     otherwise skipped-large
//  4. not eligible
func (c *Classifier) Classify(path string, f model.Filter) Decision {
	stat := c.Stat
	if stat == nil {
		stat = os.Stat
	}
	info, err := stat(path)
	if err != nil || info.IsDir() {
		return Decision{Reason: ReasonUnreadable}
	}
	d := Decision{Size: info.Size(), ModTime: info.ModTime()}
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case f.SourceOnly && hasExt(f.SourceExts, ext):
		if !f.IncludeBinary && c.isBinary(path) {
			d.Reason = ReasonBinary
			return d
		}
		d.Eligible, d.Reason = true, ReasonSource
	case !f.SourceOnly && !f.IncludeBinary:
		if hasExt(f.TextExts, ext) {
			d.Eligible, d.Reason = true, ReasonText
		} else {
			d.Reason = ReasonExtension
		}
	case !f.SourceOnly && f.IncludeBinary:
		if f.MaxFileSize > 0 && d.Size > f.MaxFileSize {
			d.Reason = ReasonSkippedLarge
		} else {
			d.Eligible, d.Reason = true, ReasonSized
		}
	default:
		d.Reason = ReasonExtension
	}
	return d
}

func (c *Classifier) isBinary(path string) bool {
	if c.Binary == nil {
		return IsBinary(path)
	}
	return c.Binary(path)
}

func hasExt(exts []string, ext string) bool {
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// IsBinary reads at most the first 1024 bytes of path and reports whether
// they contain a NUL byte. Any failure to open or read counts as binary so
// unreadable files are excluded. Empty files are text.
func IsBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return true
	}
	return bytes.IndexByte(buf[:n], 0) >= 0
}

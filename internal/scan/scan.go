// Package scan streams the lines of a file that contain a literal pattern.
package scan

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// tabWidth is the number of spaces a tab expands to in Line.Text.
const tabWidth = 4

var tabReplacer = strings.NewReplacer("\t", strings.Repeat(" ", tabWidth))

// Line is one matching line.
type Line struct {
	Number int    // 1-based
	Text   string // decoded, newline stripped, tabs expanded
}

// Scanner finds literal, case-sensitive substring matches.
type Scanner interface {
	// Scan opens path afresh and calls yield for every line containing
	// pattern, stopping early when yield returns false.
	Scan(path, pattern string, yield func(Line) bool) error
}

// FileScanner is the filesystem-backed Scanner.
type FileScanner struct{}

// New returns a FileScanner.
func New() FileScanner { return FileScanner{} }

// Scan implements Scanner. Undecodable bytes are replaced with U+FFFD and
// scanning continues; there is no limit on line length.
func (FileScanner) Scan(path, pattern string, yield func(Line) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Lines(f, pattern, yield)
}

// Lines scans r the way Scan scans a file.
func Lines(r io.Reader, pattern string, yield func(Line) bool) error {
	if pattern == "" {
		return nil
	}
	br := bufio.NewReaderSize(r, 64*1024)
	lineNo := 0
	for {
		raw, err := br.ReadString('\n')
		if len(raw) > 0 {
			lineNo++
			text := decode(raw)
			if strings.Contains(text, pattern) {
				if !yield(Line{Number: lineNo, Text: tabReplacer.Replace(text)}) {
					return nil
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func decode(raw string) string {
	raw = strings.TrimSuffix(raw, "\n")
	raw = strings.TrimSuffix(raw, "\r")
	if !utf8.ValidString(raw) {
		raw = strings.ToValidUTF8(raw, string(utf8.RuneError))
	}
	return raw
}

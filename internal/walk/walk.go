// Package walk enumerates the files under a search root.
package walk

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/altinukshini/scopefind/internal/logger"
)

// errCapped stops WalkDir once the candidate ceiling is reached.
var errCapped = errors.New("walk: candidate limit reached")

// Listing is the result of one walk.
type Listing struct {
	Files []string
	// Total is the first-pass file count, ignoring eligibility.
	Total int
	// Capped is set when the walk stopped at the candidate ceiling.
	Capped bool
	// SkippedDirs counts directories that could not be read.
	SkippedDirs int
}

// Walker lists regular files below a root, pruning ignored directory names.
type Walker struct {
	ignore map[string]struct{}
	limit  int

	// Visit, when set, is called with the running file count after each
	// listed file.
	Visit func(total int)
}

// New returns a walker that prunes directories whose base name is in
// ignoreDirs and stops after limit files (0 means unlimited).
func New(ignoreDirs []string, limit int) *Walker {
	ignore := make(map[string]struct{}, len(ignoreDirs))
	for _, d := range ignoreDirs {
		if d != "" {
			ignore[d] = struct{}{}
		}
	}
	return &Walker{ignore: ignore, limit: limit}
}

// Ignored reports whether a directory with this base name is pruned.
func (w *Walker) Ignored(name string) bool {
	_, ok := w.ignore[name]
	return ok
}

// List walks root in lexical order. Unreadable subtrees are skipped; only
// a failure to read root itself or cancellation of ctx is returned.
func (w *Walker) List(ctx context.Context, root string) (Listing, error) {
	var out Listing
	root = filepath.Clean(root)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			logger.Debug("walk: skipping unreadable entry", "path", path, "err", err)
			if d != nil && d.IsDir() {
				out.SkippedDirs++
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && w.Ignored(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if w.limit > 0 && out.Total >= w.limit {
			out.Capped = true
			return errCapped
		}
		out.Files = append(out.Files, path)
		out.Total++
		if w.Visit != nil {
			w.Visit(out.Total)
		}
		return nil
	})
	if errors.Is(err, errCapped) {
		err = nil
	}
	if err != nil {
		return out, err
	}
	return out, nil
}

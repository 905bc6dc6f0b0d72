package walk

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		path := filepath.Join(root, r)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))
	}
}

func relFiles(t *testing.T, root string, l Listing) []string {
	t.Helper()
	out := make([]string, 0, len(l.Files))
	for _, f := range l.Files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestListPrunesIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"a.py",
		"pkg/b.py",
		".git/config",
		"pkg/__pycache__/b.pyc",
		"pkg/.gitkeep",
		"vendor.git/c.py", // not an exact name match
	)

	l, err := New([]string{".git", "__pycache__"}, 0).List(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "pkg/.gitkeep", "pkg/b.py", "vendor.git/c.py"}, relFiles(t, root, l))
	assert.Equal(t, 4, l.Total)
	assert.False(t, l.Capped)
}

func TestListRootIsNeverPruned(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, ".git")
	touch(t, root, "HEAD")

	l, err := New([]string{".git"}, 0).List(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Total)
}

func TestListEmptyRoot(t *testing.T) {
	l, err := New(nil, 0).List(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, l.Total)
	assert.Empty(t, l.Files)
}

func TestListHonoursLimit(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "1.txt", "2.txt", "3.txt", "4.txt")

	l, err := New(nil, 2).List(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Total)
	assert.True(t, l.Capped)
	assert.Equal(t, []string{"1.txt", "2.txt"}, relFiles(t, root, l))
}

func TestListReportsRunningCount(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.txt", "b/c.txt", ".git/x")

	var seen []int
	w := New([]string{".git"}, 0)
	w.Visit = func(total int) { seen = append(seen, total) }
	l, err := w.List(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seen)
	assert.Equal(t, 2, l.Total)
}

func TestListSkipsUnreadableSubtree(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := t.TempDir()
	touch(t, root, "ok/a.txt", "locked/b.txt", "z.txt")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	l, err := New(nil, 0).List(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok/a.txt", "z.txt"}, relFiles(t, root, l))
	assert.Equal(t, 1, l.SkippedDirs)
}

func TestListMissingRoot(t *testing.T) {
	_, err := New(nil, 0).List(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestListCanceled(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.txt")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil, 0).List(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	for name, fsys := range map[string]FileSystem{
		"os":     OSFileSystem{},
		"memory": NewMemoryFileSystem(),
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "parameters.json")

			require.NoError(t, WriteFileAtomic(fsys, path, []byte("first"), 0o644))
			require.NoError(t, WriteFileAtomic(fsys, path, []byte("second"), 0o644))

			data, err := fsys.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "second", string(data))
			assert.False(t, fsys.Exists(path+".tmp"))
		})
	}
}

func TestWriteFileAtomic_RenameFailureKeepsOld(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/cfg/p.json", []byte("old"), 0o644))

	mfs.FailRename = errors.New("disk full")
	err := WriteFileAtomic(mfs, "/cfg/p.json", []byte("new"), 0o644)
	require.Error(t, err)

	data, err := mfs.ReadFile("/cfg/p.json")
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	assert.Equal(t, []string{"/cfg/p.json"}, mfs.Files("/cfg"))
}

func TestMemoryFileSystem(t *testing.T) {
	mfs := NewMemoryFileSystem()

	_, err := mfs.ReadFile("/missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	w, err := mfs.Create("/out/chart.html")
	require.NoError(t, err)
	_, err = w.Write([]byte("<html>"))
	require.NoError(t, err)
	assert.False(t, mfs.Exists("/out/chart.html"), "content appears on Close")
	require.NoError(t, w.Close())

	info, err := mfs.Stat("/out/chart.html")
	require.NoError(t, err)
	assert.Equal(t, int64(6), info.Size())
	assert.Equal(t, "chart.html", info.Name())

	require.NoError(t, mfs.MkdirAll("/a/b/c", 0o755))
	assert.True(t, mfs.Exists("/a/b"))
	info, err = mfs.Stat("/a/b/c")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, mfs.Remove("/out/chart.html"))
	assert.ErrorIs(t, mfs.Remove("/out/chart.html"), fs.ErrNotExist)
	assert.ErrorIs(t, mfs.Rename("/nope", "/x"), fs.ErrNotExist)
}

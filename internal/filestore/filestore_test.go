package filestore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>home</html>"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1);"), 0644))
	return dir
}

func TestNew_Validation(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = New(file)
	assert.ErrorContains(t, err, "not a directory")
}

func TestNew_ResolvesRelativeRoot(t *testing.T) {
	dir := newStoreDir(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	s, err := New(".")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(s.Root()))
}

func TestOpenAndStat(t *testing.T) {
	dir := newStoreDir(t)
	s, err := New(dir)
	require.NoError(t, err)

	f, err := s.Open(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "<html>home</html>", string(data))

	fi, err := s.Stat(filepath.Join(dir, "assets", "app.js"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("console.log(1);")), fi.Size())

	_, err = s.Open(filepath.Join(dir, "missing.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestOpen_RejectsOutsideRoot(t *testing.T) {
	dir := newStoreDir(t)
	s, err := New(dir)
	require.NoError(t, err)

	_, err = s.Open("/etc/passwd")
	assert.True(t, errors.Is(err, ErrOutsideRoot))

	_, err = s.Stat(dir + "-sibling/file")
	assert.True(t, errors.Is(err, ErrOutsideRoot))
}

func TestUsage(t *testing.T) {
	dir := newStoreDir(t)
	s, err := New(dir)
	require.NoError(t, err)

	u, err := s.Usage()
	require.NoError(t, err)
	assert.Equal(t, 2, u.Files)
	assert.Equal(t, uint64(len("<html>home</html>")+len("console.log(1);")), u.TotalBytes)
	assert.Contains(t, u.String(), "2 files")
}

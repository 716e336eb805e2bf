package filestore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// FileStore is a read-only capability over a mounted asset tree. The serving
// core never touches the filesystem directly; everything goes through a
// FileStore rooted at the document root. Mount lifecycle (the directory
// existing and staying readable) belongs to the caller.
type FileStore struct {
	root string
}

// ErrOutsideRoot is returned for any access whose path does not sit under the
// store root. The sanitizer guarantees this cannot happen for request-derived
// paths; the check guards direct callers.
var ErrOutsideRoot = fmt.Errorf("path escapes store root")

// New opens a FileStore over root, which must name a readable directory.
// Relative roots are resolved to absolute ones.
func New(root string) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("store root cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store root %q: %w", root, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("store root %s is not accessible: %w", abs, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("store root %s is not a directory", abs)
	}
	return &FileStore{root: abs}, nil
}

// Root returns the absolute mount prefix. Sanitized paths are rooted here.
func (s *FileStore) Root() string { return s.root }

func (s *FileStore) contains(path string) bool {
	return path == s.root || strings.HasPrefix(path, s.root+string(filepath.Separator))
}

// Open opens the file at path for reading. path must be an absolute path
// under the store root.
func (s *FileStore) Open(path string) (*os.File, error) {
	if !s.contains(path) {
		return nil, fmt.Errorf("open %s: %w", path, ErrOutsideRoot)
	}
	return os.Open(path)
}

// Stat reports on the entry at path without opening it.
func (s *FileStore) Stat(path string) (os.FileInfo, error) {
	if !s.contains(path) {
		return nil, fmt.Errorf("stat %s: %w", path, ErrOutsideRoot)
	}
	return os.Stat(path)
}

// Usage summarises the mounted tree: regular file count and total bytes.
type Usage struct {
	Files      int
	TotalBytes uint64
}

// String renders the usage with humanized sizes, for the mount report.
func (u Usage) String() string {
	return fmt.Sprintf("%d files, %s", u.Files, humanize.Bytes(u.TotalBytes))
}

// Usage walks the store and totals its regular files. Unreadable entries are
// skipped rather than failing the walk.
func (s *FileStore) Usage() (Usage, error) {
	var u Usage
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		u.Files++
		u.TotalBytes += uint64(fi.Size())
		return nil
	})
	if err != nil {
		return Usage{}, fmt.Errorf("failed to walk store root %s: %w", s.root, err)
	}
	return u, nil
}

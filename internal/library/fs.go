package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Entry is one child of a scanned directory.
type Entry struct {
	Name   string
	IsFile bool
	IsDir  bool
}

// FS is the filesystem surface the pipelines depend on.
type FS interface {
	ScanDirectory(path string) ([]Entry, error)
	Move(oldPath, newPath string) error
	MakeDirectory(path string, existOK bool) error
}

// OSFS implements FS on the local disk.
type OSFS struct{}

// ScanDirectory lists path in name order. Symlinks are classified by their
// target.
func (OSFS) ScanDirectory(path string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		mode := d.Type()
		if mode&fs.ModeSymlink != 0 {
			info, err := os.Stat(filepath.Join(path, d.Name()))
			if err != nil {
				continue
			}
			mode = info.Mode().Type()
		}
		entries = append(entries, Entry{
			Name:   d.Name(),
			IsFile: mode.IsRegular(),
			IsDir:  mode.IsDir(),
		})
	}
	return entries, nil
}

// Move renames oldPath to newPath. It refuses to replace an existing entry
// unless both paths name the same file, which happens for case-only renames
// on case-insensitive volumes.
func (OSFS) Move(oldPath, newPath string) error {
	if oldPath == newPath {
		return nil
	}
	dst, err := os.Lstat(newPath)
	switch {
	case err == nil:
		src, serr := os.Lstat(oldPath)
		if serr != nil {
			return serr
		}
		if !os.SameFile(src, dst) {
			return fmt.Errorf("%s: %w", newPath, ErrDestinationExists)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}
	return os.Rename(oldPath, newPath)
}

func (OSFS) MakeDirectory(path string, existOK bool) error {
	if existOK {
		return os.MkdirAll(path, 0755)
	}
	return os.Mkdir(path, 0755)
}

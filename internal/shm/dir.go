//go:build unix

package shm

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultDir is the RAM-backed directory that holds POSIX shared memory on Linux.
const DefaultDir = "/dev/shm"

// segmentPerm is the mode of newly created segments.
const segmentPerm = 0o600

// Entry describes one file in the segment directory.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Dir is a directory of named segments.
type Dir struct {
	root string
}

// NewDir returns a Dir rooted at root, creating it if needed.
// An empty root selects DefaultDir.
func NewDir(root string) (*Dir, error) {
	if root == "" {
		root = DefaultDir
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &OpError{Op: "mkdir", Name: root, Err: err}
	}
	return &Dir{root: root}, nil
}

// Root returns the directory path.
func (d *Dir) Root() string {
	return d.root
}

// Path returns the file path backing a segment name.
func (d *Dir) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(d.root, name[1:]), nil
}

// OpenRead maps an existing segment read-only.
func (d *Dir) OpenRead(name string) (*Segment, error) {
	path, err := d.Path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, &OpError{Op: "open", Name: name, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, &OpError{Op: "stat", Name: name, Err: err}
	}
	return mapFile(f, name, fi.Size(), false)
}

// OpenWrite creates or truncates a segment, resizes it to exactly length
// bytes and maps it read-write. New bytes read as zero.
func (d *Dir) OpenWrite(name string, length int64) (*Segment, error) {
	if length < 0 {
		return nil, &OpError{Op: "truncate", Name: name, Err: fmt.Errorf("negative length %d", length)}
	}
	path, err := d.Path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, segmentPerm)
	if err != nil {
		return nil, &OpError{Op: "open", Name: name, Err: err}
	}
	defer f.Close()

	if err := f.Truncate(length); err != nil {
		return nil, &OpError{Op: "truncate", Name: name, Err: err}
	}
	return mapFile(f, name, length, true)
}

// ReadAll copies the contents of a segment into process memory.
func (d *Dir) ReadAll(name string) (data []byte, err error) {
	seg, err := d.OpenRead(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := seg.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	buf := make([]byte, seg.Len())
	if _, err := copyMapped(buf, seg.Bytes()); err != nil {
		return nil, &OpError{Op: "read", Name: name, Err: err}
	}
	return buf, nil
}

// Write replaces the contents of a segment with data and verifies that every
// byte was copied.
func (d *Dir) Write(name string, data []byte) (err error) {
	seg, err := d.OpenWrite(name, int64(len(data)))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := seg.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	n, err := copyMapped(seg.Bytes(), data)
	if err != nil {
		return &OpError{Op: "write", Name: name, Err: err}
	}
	if n != len(data) {
		return &OpError{Op: "write", Name: name, Err: fmt.Errorf("%w: copied %d of %d bytes", ErrShortWrite, n, len(data))}
	}
	return nil
}

// Unlink removes a segment. Removing an absent segment is not an error.
func (d *Dir) Unlink(name string) error {
	path, err := d.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &OpError{Op: "unlink", Name: name, Err: err}
	}
	return nil
}

// Stat describes a single segment.
func (d *Dir) Stat(name string) (Entry, error) {
	path, err := d.Path(name)
	if err != nil {
		return Entry{}, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, &OpError{Op: "stat", Name: name, Err: err}
	}
	return Entry{Name: name[1:], Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

// List returns a snapshot of the regular files in the directory. Entries
// removed while listing are skipped. Names carry no leading slash.
func (d *Dir) List() ([]Entry, error) {
	des, err := os.ReadDir(d.root)
	if err != nil {
		return nil, &OpError{Op: "list", Name: d.root, Err: err}
	}

	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		if !de.Type().IsRegular() {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	return entries, nil
}

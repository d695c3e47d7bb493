package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrExists   = errors.New("store: destination already exists")
	ErrBadName  = errors.New("store: file name must not contain a path")
	ErrFinished = errors.New("store: sink already committed or aborted")
)

// FileMode is the mode of committed files.
const FileMode os.FileMode = 0o644

// FileSink is an io.Writer that becomes dir/name on Commit.
type FileSink struct {
	path  string
	force bool

	f   *os.File
	tmp string
}

// Create opens a sink for dir/name.
func Create(dir, name string, force bool) (*FileSink, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, fmt.Errorf("%w: %q", ErrBadName, name)
	}
	path := filepath.Join(dir, name)
	if !force {
		if err := refuseExisting(path); err != nil {
			return nil, err
		}
	}

	f, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return nil, err
	}
	return &FileSink{path: path, force: force, f: f, tmp: f.Name()}, nil
}

func refuseExisting(path string) error {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrExists, path)
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

// Path is the final destination.
func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Write(p []byte) (int, error) {
	if s.f == nil {
		return 0, ErrFinished
	}
	return s.f.Write(p)
}

// Commit flushes the temporary file and renames it into place.
func (s *FileSink) Commit() error {
	if s.f == nil {
		return ErrFinished
	}
	f := s.f
	s.f = nil

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(s.tmp) }()

	if err := f.Chmod(FileMode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if !s.force {
		if err := refuseExisting(s.path); err != nil {
			return err
		}
	}
	return os.Rename(s.tmp, s.path)
}

// Abort discards everything written. It is safe to call after Commit.
func (s *FileSink) Abort() error {
	if s.f == nil {
		return nil
	}
	f := s.f
	s.f = nil
	err := f.Close()
	if rerr := os.Remove(s.tmp); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
		return rerr
	}
	return err
}

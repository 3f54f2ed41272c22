package mediaart

import (
	"errors"
	"io"
	"io/fs"
	"time"

	"github.com/pborman/uuid"
	"github.com/spf13/afero"
)

// Store is the thin filesystem facade the processor mutates the cache
// through. All operations go through the injected afero filesystem so
// tests can run against scratch roots.
type Store struct {
	fs afero.Fs
}

// NewStore returns a store operating on the given filesystem.
func NewStore(fsys afero.Fs) *Store {
	return &Store{fs: fsys}
}

// Exists reports whether path exists.
func (s *Store) Exists(path string) bool {
	_, err := s.fs.Stat(path)
	return err == nil
}

// Mtime returns the modification time of path. Returns ErrNotFound for a
// missing file.
func (s *Store) Mtime(path string) (time.Time, error) {
	st, err := s.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, &FSError{Op: "stat", Path: path, Err: err}
	}

	return st.ModTime(), nil
}

// SetMtime stamps path with the given modification time.
func (s *Store) SetMtime(path string, mtime time.Time) error {
	if err := s.fs.Chtimes(path, mtime, mtime); err != nil {
		return &FSError{Op: "chtimes", Path: path, Err: err}
	}

	return nil
}

// Rename moves a finished temp file into its final place.
func (s *Store) Rename(oldPath, newPath string) error {
	if err := s.fs.Rename(oldPath, newPath); err != nil {
		return &FSError{Op: "rename", Path: oldPath, Err: err}
	}

	return nil
}

// Symlink makes target a symbolic link pointing at source. On
// filesystems without symlink support it degrades to a plain copy so
// that the artifact is still readable at target, trading the
// deduplication for correctness.
func (s *Store) Symlink(source, target string) error {
	linker, ok := s.fs.(afero.Linker)
	if !ok {
		return s.Copy(source, target)
	}

	// symlink(2) refuses to replace an existing file. A stale artifact
	// at target is exactly what is being replaced here.
	if err := s.Remove(target); err != nil {
		return err
	}

	err := linker.SymlinkIfPossible(source, target)
	if err == nil {
		return nil
	}
	if errors.Is(err, afero.ErrNoSymlink) {
		return s.Copy(source, target)
	}

	return &FSError{Op: "symlink", Path: target, Err: err}
}

// Copy duplicates the file at source into target, replacing whatever is
// there. The target is removed first: were it a symlink into the shared
// album artifact, a plain truncating write would follow the link and
// clobber the shared file.
func (s *Store) Copy(source, target string) error {
	in, err := s.fs.Open(source)
	if err != nil {
		return &FSError{Op: "open", Path: source, Err: err}
	}
	defer in.Close()

	if err := s.Remove(target); err != nil {
		return err
	}

	out, err := s.fs.Create(target)
	if err != nil {
		return &FSError{Op: "create", Path: target, Err: err}
	}

	_, err = io.Copy(out, in)
	cerr := out.Close()
	if err != nil {
		return &FSError{Op: "write", Path: target, Err: err}
	}
	if cerr != nil {
		return &FSError{Op: "close", Path: target, Err: cerr}
	}

	return nil
}

// Remove deletes path. A missing file is not an error.
func (s *Store) Remove(path string) error {
	err := s.fs.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &FSError{Op: "remove", Path: path, Err: err}
	}

	return nil
}

// TempName returns a name for an in-progress conversion next to target.
// The name is unique per invocation so concurrent reconciliations of the
// same key cannot clobber each other's temp files.
func (s *Store) TempName(target string) string {
	return target + "-" + uuid.New() + "-tmp"
}

package mediaart

import (
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

// cacheDirName is the fixed subdirectory under the user cache directory
// where all artifacts live.
const cacheDirName = "media-art"

// localDirName is the hidden directory next to a media file in which a
// sidecar copy of its art is placed when the file lives on removable
// storage. The art then travels with the device.
const localDirName = ".mediaartlocal"

// Paths maps derived identities to locations on disk.
type Paths struct {
	fs  afero.Fs
	dir string

	mkdirOnce sync.Once
	mkdirErr  error
}

// NewPaths returns a resolver storing artifacts in dir. When dir is empty
// the standard user-level cache location is used. The directory is
// created with private permissions the first time a cache path is
// resolved.
func NewPaths(fsys afero.Fs, dir string) *Paths {
	if dir == "" {
		dir = filepath.Join(xdg.CacheHome, cacheDirName)
	}

	return &Paths{fs: fsys, dir: dir}
}

// Dir returns the cache directory.
func (p *Paths) Dir() string {
	return p.dir
}

// ArtPath resolves the cache artifact path for the given metadata.
// Returns ErrNoIdentity when both artist and title are nil.
func (p *Paths) ArtPath(artist, title *string, typ Type) (string, error) {
	key, ok := DeriveKey(artist, title)
	if !ok {
		return "", ErrNoIdentity
	}

	p.mkdirOnce.Do(func() {
		p.mkdirErr = p.fs.MkdirAll(p.dir, 0770)
	})
	if p.mkdirErr != nil {
		return "", &FSError{Op: "mkdir", Path: p.dir, Err: p.mkdirErr}
	}

	return filepath.Join(p.dir, key.Filename(typ.String())), nil
}

// LocalPath resolves the sidecar location for the art of the media file
// at related. The computation is purely lexical, no filesystem access is
// made and the path may well not exist. Returns the empty string when no
// identity can be derived or related is empty.
func (p *Paths) LocalPath(artist, title *string, typ Type, related string) string {
	key, ok := DeriveKey(artist, title)
	if !ok || related == "" {
		return ""
	}

	return filepath.Join(
		filepath.Dir(related),
		localDirName,
		key.Filename(typ.String()),
	)
}

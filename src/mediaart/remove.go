package mediaart

import "fmt"

// Remove deletes the cache artifacts derived from the given metadata:
// the artist-specific artifact and, for albums, the shared album
// artifact other artists may point at. Missing artifacts are not an
// error.
func (p *Processor) Remove(artist, title *string, typ Type) error {
	if !typ.Valid() {
		return fmt.Errorf("media art type %d is not processable", typ)
	}

	artPath, err := p.paths.ArtPath(artist, title, typ)
	if err != nil {
		return err
	}
	if err := p.store.Remove(artPath); err != nil {
		return err
	}

	if typ != TypeAlbum || artist == nil {
		return nil
	}

	albumPath, err := p.paths.ArtPath(nil, title, typ)
	if err != nil {
		return err
	}

	return p.store.Remove(albumPath)
}

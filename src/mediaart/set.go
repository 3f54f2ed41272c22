package mediaart

import (
	"context"
	"fmt"
	"log"
)

// SetFromBuffer stores image data for the given metadata directly,
// without a media file to reconcile against. It is how downloaded
// artwork enters the cache. A title is required; without one
// ErrNoTitle is returned and nothing is written.
func (p *Processor) SetFromBuffer(
	ctx context.Context,
	artist, title *string,
	typ Type,
	data []byte,
	mime string,
) error {
	if !typ.Valid() {
		return fmt.Errorf("media art type %d is not processable", typ)
	}

	artPath, err := p.paths.ArtPath(artist, title, typ)
	if err != nil {
		return err
	}

	req := Request{
		Buffer: data,
		MIME:   mime,
		Type:   typ,
		Artist: artist,
		Title:  title,
	}

	return p.setArt(ctx, req, artPath)
}

// setArt stores the image data from req.Buffer as the cache artifact at
// artPath. For album art with a known artist the data is first stored
// under the artist-agnostic album key and the artist-specific artifact
// becomes a symlink to it, so every album sharer points at one file.
//
// The sharing is an optimization: when any of its filesystem steps fail
// the artifact is written out fresh instead and the error only logged.
func (p *Processor) setArt(ctx context.Context, req Request, artPath string) error {
	if req.Title == nil {
		return ErrNoTitle
	}

	if req.Type != TypeAlbum || blankArtist(req.Artist) {
		return p.writeBuffer(ctx, req, artPath)
	}

	albumPath, err := p.paths.ArtPath(nil, req.Title, req.Type)
	if err != nil {
		return err
	}

	if !p.store.Exists(albumPath) {
		if err := p.converter.BufferToJPEG(ctx, req.Buffer, req.MIME, albumPath); err != nil {
			return err
		}
		if err := p.store.Symlink(albumPath, artPath); err != nil {
			log.Printf("linking %s to %s: %s", artPath, albumPath, err)
			return p.writeBuffer(ctx, req, artPath)
		}
		return nil
	}

	albumDigest, _, err := p.fileChecksum(albumPath, false)
	if err != nil {
		// The artifact exists but cannot be read. Nothing sensible can
		// be compared against, leave the cache as it is.
		log.Printf("reading album artifact %s: %s", albumPath, err)
		return nil
	}

	if isBufferJPEG(req.MIME, req.Buffer) {
		bufferDigest := checksum(req.Buffer)
		if bufferDigest == albumDigest {
			if err := p.store.Symlink(albumPath, artPath); err != nil {
				log.Printf("linking %s to %s: %s", artPath, albumPath, err)
				return p.writeBuffer(ctx, req, artPath)
			}
			return nil
		}

		return p.writeBuffer(ctx, req, artPath)
	}

	// The buffer needs conversion before its bytes can be compared with
	// the album artifact's. Convert into a temporary first, then either
	// link or promote the temporary depending on the comparison.
	temp := p.store.TempName(artPath)
	if err := p.converter.BufferToJPEG(ctx, req.Buffer, req.MIME, temp); err != nil {
		return fmt.Errorf("converting buffer for %s: %w", artPath, err)
	}

	tempDigest, _, err := p.fileChecksum(temp, false)
	if err != nil {
		p.store.Remove(temp)
		return fmt.Errorf("reading converted buffer for %s: %w", artPath, err)
	}

	if tempDigest == albumDigest {
		if err := p.store.Symlink(albumPath, artPath); err != nil {
			log.Printf("linking %s to %s: %s", artPath, albumPath, err)
			return p.store.Rename(temp, artPath)
		}
		p.store.Remove(temp)
		return nil
	}

	return p.store.Rename(temp, artPath)
}

// writeBuffer replaces the artifact at target with the converted
// buffer. The target may currently be a symlink into a shared album
// artifact which a plain write would follow, so it is removed first.
func (p *Processor) writeBuffer(ctx context.Context, req Request, target string) error {
	if err := p.store.Remove(target); err != nil {
		return err
	}
	return p.converter.BufferToJPEG(ctx, req.Buffer, req.MIME, target)
}

func (p *Processor) fileChecksum(path string, checkJPEG bool) (string, bool, error) {
	return fileChecksum(p.fs, path, checkJPEG)
}

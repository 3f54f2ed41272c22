package mediaart

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
)

// heuristic searches the media file's directory for likely artwork and
// installs the best candidate as the cache artifact at artPath. When a
// sidecar copy from an earlier run sits next to the media file it wins
// outright and no directory scan happens.
func (p *Processor) heuristic(ctx context.Context, req Request, artPath, localPath string) error {
	if req.Title == nil {
		return ErrNoTitle
	}

	if localPath != "" && p.store.Exists(localPath) {
		log.Printf("using sidecar art %s for %s", localPath, req.Path)
		return p.store.Copy(localPath, artPath)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	found := findByArtistAndTitle(p.fs, req.Path, req.Type, req.Artist, req.Title)
	if found == "" {
		return ErrNoCandidate
	}

	log.Printf("found artwork %s for %s", found, req.Path)

	ext := strings.ToLower(filepath.Ext(found))
	if ext == ".jpg" || ext == ".jpeg" {
		return p.installJPEGCandidate(ctx, req, found, artPath)
	}

	return p.convertFromOtherFormat(ctx, req, found, artPath)
}

// installJPEGCandidate places a candidate which already claims to be a
// JPEG into the cache. The magic bytes are checked anyway: mislabeled
// files go through conversion like any other format.
func (p *Processor) installJPEGCandidate(
	ctx context.Context, req Request, found, artPath string,
) error {
	foundDigest, isJPEG, err := p.fileChecksum(found, true)
	if err != nil {
		return err
	}
	if !isJPEG {
		return p.convertFromOtherFormat(ctx, req, found, artPath)
	}

	if req.Type != TypeAlbum || blankArtist(req.Artist) {
		return p.store.Copy(found, artPath)
	}

	albumPath, err := p.paths.ArtPath(nil, req.Title, req.Type)
	if err != nil {
		return err
	}

	if !p.store.Exists(albumPath) {
		if err := p.store.Copy(found, albumPath); err != nil {
			return err
		}
		if err := p.store.Symlink(albumPath, artPath); err != nil {
			log.Printf("linking %s to %s: %s", artPath, albumPath, err)
			return p.store.Copy(found, artPath)
		}
		return nil
	}

	albumDigest, _, err := p.fileChecksum(albumPath, false)
	if err != nil {
		log.Printf("reading album artifact %s: %s", albumPath, err)
		return nil
	}

	if foundDigest == albumDigest {
		if err := p.store.Symlink(albumPath, artPath); err != nil {
			log.Printf("linking %s to %s: %s", artPath, albumPath, err)
			return p.store.Copy(found, artPath)
		}
		return nil
	}

	return p.store.Copy(found, artPath)
}

// convertFromOtherFormat converts a non-JPEG candidate into a temporary
// file and promotes the result into the cache, applying the same album
// sharing as the JPEG path but on the converted bytes.
func (p *Processor) convertFromOtherFormat(
	ctx context.Context, req Request, found, artPath string,
) error {
	temp := p.store.TempName(artPath)
	if err := p.converter.FileToJPEG(ctx, found, temp); err != nil {
		return fmt.Errorf("converting %s: %w", found, err)
	}

	if req.Type != TypeAlbum || blankArtist(req.Artist) {
		return p.store.Rename(temp, artPath)
	}

	albumPath, err := p.paths.ArtPath(nil, req.Title, req.Type)
	if err != nil {
		p.store.Remove(temp)
		return err
	}

	if !p.store.Exists(albumPath) {
		if err := p.store.Copy(temp, albumPath); err != nil {
			p.store.Remove(temp)
			return err
		}
		if err := p.store.Symlink(albumPath, artPath); err != nil {
			log.Printf("linking %s to %s: %s", artPath, albumPath, err)
			return p.store.Rename(temp, artPath)
		}
		p.store.Remove(temp)
		return nil
	}

	albumDigest, _, err := p.fileChecksum(albumPath, false)
	if err != nil {
		log.Printf("reading album artifact %s: %s", albumPath, err)
		p.store.Remove(temp)
		return nil
	}

	tempDigest, _, err := p.fileChecksum(temp, false)
	if err != nil {
		p.store.Remove(temp)
		return fmt.Errorf("reading converted candidate for %s: %w", artPath, err)
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

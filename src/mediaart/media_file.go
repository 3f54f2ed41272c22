package mediaart

import (
	"context"
	"fmt"
	"log"

	"github.com/dhowden/tag"
)

// ProcessMediaFile reads the metadata and embedded artwork out of the
// media file itself and runs a reconciliation with them. Files whose
// tags cannot be parsed are still processed, with no metadata, so the
// directory heuristic gets a chance for videos.
func (p *Processor) ProcessMediaFile(
	ctx context.Context,
	path string,
	typ Type,
	force bool,
) error {
	req, err := p.mediaFileRequest(path, typ, force)
	if err != nil {
		return err
	}

	if err := p.Process(ctx, req); err != nil {
		return fmt.Errorf("processing %s: %w", path, err)
	}

	return nil
}

// QueueMediaFile is ProcessMediaFile dispatched onto the worker pool.
// The tags are still read synchronously, only the reconciliation is
// deferred.
func (p *Processor) QueueMediaFile(
	ctx context.Context,
	path string,
	typ Type,
	force bool,
) <-chan error {
	req, err := p.mediaFileRequest(path, typ, force)
	if err != nil {
		result := make(chan error, 1)
		result <- err
		return result
	}

	return p.Queue(ctx, req)
}

// mediaFileRequest builds the reconciliation request for one media file
// from its tags.
func (p *Processor) mediaFileRequest(path string, typ Type, force bool) (Request, error) {
	fh, err := p.fs.Open(path)
	if err != nil {
		return Request{}, &FSError{Op: "open", Path: path, Err: err}
	}
	defer fh.Close()

	req := Request{
		Type:  typ,
		Path:  path,
		Force: force,
	}

	meta, err := tag.ReadFrom(fh)
	if err != nil {
		log.Printf("reading tags from %s: %s", path, err)
		return req, nil
	}

	if artist := firstNonEmpty(meta.AlbumArtist(), meta.Artist()); artist != "" {
		req.Artist = String(artist)
	}
	if album := meta.Album(); album != "" {
		req.Title = String(album)
	}
	if pic := meta.Picture(); pic != nil && len(pic.Data) > 0 {
		req.Buffer = pic.Data
		req.MIME = pic.MIMEType
	}

	return req, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}

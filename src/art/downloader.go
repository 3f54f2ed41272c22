package art

import (
	"context"
	"log"
)

// StoreFunc receives a downloaded image for an album so it can be placed
// into the cache.
type StoreFunc func(ctx context.Context, kind, artist, album string, image []byte)

// Downloader satisfies the processor's download collaborator with an
// in-process Finder instead of an external service. A found image is
// handed to the store callback, misses and errors are only logged.
type Downloader struct {
	finder Finder
	store  StoreFunc
}

// NewDownloader returns a Downloader fetching through finder and storing
// through store.
func NewDownloader(finder Finder, store StoreFunc) *Downloader {
	return &Downloader{finder: finder, store: store}
}

// RequestDownload fetches the album's front image and stores it.
func (d *Downloader) RequestDownload(ctx context.Context, kind, artist, album string) {
	img, err := d.finder.GetFrontImage(ctx, artist, album)
	if err != nil {
		log.Printf("downloading artwork for %s/%s: %s", artist, album, err)
		return
	}

	d.store(ctx, kind, artist, album, img)
}

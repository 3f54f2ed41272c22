package art_test

import (
	"context"
	"testing"

	"github.com/ironsmile/mediaart/src/art"
)

type fakeFinder struct {
	image []byte
	err   error
}

func (f *fakeFinder) GetFrontImage(
	ctx context.Context, artist, album string,
) ([]byte, error) {
	return f.image, f.err
}

func TestDownloaderStoresFoundImage(t *testing.T) {
	var (
		storedArtist string
		storedAlbum  string
		storedImage  []byte
	)

	d := art.NewDownloader(
		&fakeFinder{image: []byte("front image")},
		func(ctx context.Context, kind, artist, album string, image []byte) {
			storedArtist = artist
			storedAlbum = album
			storedImage = image
		},
	)

	d.RequestDownload(context.Background(), "album", "Iron Maiden", "Killers")

	if storedArtist != "Iron Maiden" || storedAlbum != "Killers" {
		t.Errorf("stored wrong metadata: %s/%s", storedArtist, storedAlbum)
	}
	if string(storedImage) != "front image" {
		t.Errorf("stored wrong image: %q", storedImage)
	}
}

func TestDownloaderSkipsStoreOnMiss(t *testing.T) {
	stored := false

	d := art.NewDownloader(
		&fakeFinder{err: art.ErrImageNotFound},
		func(ctx context.Context, kind, artist, album string, image []byte) {
			stored = true
		},
	)

	d.RequestDownload(context.Background(), "album", "Nobody", "Nothing")

	if stored {
		t.Error("expected nothing to be stored on a miss")
	}
}

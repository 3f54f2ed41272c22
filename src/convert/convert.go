// Package convert re-encodes images of various formats into the JPEG
// files the media art cache stores. Alpha channels are flattened onto a
// white background and overly wide images are scaled down to a
// configurable maximum width.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	// Registered decoders for the formats embedded artwork and cover
	// files come in.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spf13/afero"
	"golang.org/x/image/draw"
)

// jpegQuality is used for every encode. The cache stores thumbnails and
// covers, not archival masters.
const jpegQuality = 90

var jpegMagic = []byte{0xff, 0xd8, 0xff}

// Converter implements the image codec on top of an afero filesystem.
type Converter struct {
	fs afero.Fs

	// maxWidth caps the width of stored artwork. Zero means no cap.
	maxWidth int
}

// New returns a Converter writing through fsys. Images wider than
// maxWidth pixels are scaled down proportionally; zero disables
// scaling.
func New(fsys afero.Fs, maxWidth int) *Converter {
	return &Converter{fs: fsys, maxWidth: maxWidth}
}

// BufferToJPEG stores data as a JPEG at target. Data which already is
// JPEG and needs no scaling is written through untouched, anything else
// is decoded and re-encoded.
func (c *Converter) BufferToJPEG(
	ctx context.Context,
	data []byte,
	mime string,
	target string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no image data for %s", target)
	}

	if c.maxWidth == 0 && bytes.HasPrefix(data, jpegMagic) {
		if err := afero.WriteFile(c.fs, target, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		return nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding image data (%s): %w", mime, err)
	}

	// A JPEG already within the width cap needs no re-encode round
	// trip, its bytes are good as they are.
	if format == "jpeg" && c.withinCap(img) {
		if err := afero.WriteFile(c.fs, target, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		return nil
	}

	return c.encode(ctx, img, target)
}

// FileToJPEG re-encodes the image file at source into a JPEG at target.
func (c *Converter) FileToJPEG(ctx context.Context, source, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fh, err := c.fs.Open(source)
	if err != nil {
		return fmt.Errorf("opening %s: %w", source, err)
	}
	defer fh.Close()

	img, _, err := image.Decode(fh)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", source, err)
	}

	return c.encode(ctx, img, target)
}

func (c *Converter) withinCap(img image.Image) bool {
	return c.maxWidth == 0 || img.Bounds().Dx() <= c.maxWidth
}

// encode flattens, scales and writes one decoded image.
func (c *Converter) encode(ctx context.Context, img image.Image, target string) error {
	bounds := img.Bounds()

	width := bounds.Dx()
	height := bounds.Dy()
	if !c.withinCap(img) {
		height = height * c.maxWidth / width
		if height < 1 {
			height = 1
		}
		width = c.maxWidth
	}

	// JPEG has no alpha channel. Draw onto white first so transparent
	// regions do not come out black.
	flat := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	if width == bounds.Dx() && height == bounds.Dy() {
		draw.Draw(flat, flat.Bounds(), img, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(flat, flat.Bounds(), img, bounds, draw.Over, nil)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := c.fs.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}

	if err := jpeg.Encode(out, flat, &jpeg.Options{Quality: jpegQuality}); err != nil {
		out.Close()
		return fmt.Errorf("encoding %s: %w", target, err)
	}

	return out.Close()
}

package convert

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/spf13/afero"
)

func pngFixture(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture: %s", err)
	}

	return buf.Bytes()
}

func jpegFixture(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding fixture: %s", err)
	}

	return buf.Bytes()
}

func decodeTarget(t *testing.T, fs afero.Fs, path string) image.Image {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("reading %s: %s", path, err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding %s: %s", path, err)
	}
	if format != "jpeg" {
		t.Errorf("expected a JPEG at %s but found %s", path, format)
	}

	return img
}

func TestBufferToJPEGPassthrough(t *testing.T) {
	fs := afero.NewMemMapFs()
	conv := New(fs, 0)

	data := jpegFixture(t, 10, 10)
	if err := conv.BufferToJPEG(context.Background(), data, "image/jpeg", "/out.jpeg"); err != nil {
		t.Fatalf("converting: %s", err)
	}

	found, err := afero.ReadFile(fs, "/out.jpeg")
	if err != nil {
		t.Fatalf("reading output: %s", err)
	}
	if !bytes.Equal(found, data) {
		t.Error("expected JPEG data to pass through byte for byte")
	}
}

func TestBufferToJPEGConvertsPNG(t *testing.T) {
	fs := afero.NewMemMapFs()
	conv := New(fs, 0)

	data := pngFixture(t, 8, 8, color.RGBA{R: 255, A: 255})
	if err := conv.BufferToJPEG(context.Background(), data, "image/png", "/out.jpeg"); err != nil {
		t.Fatalf("converting: %s", err)
	}

	img := decodeTarget(t, fs, "/out.jpeg")
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Errorf("expected an 8x8 output but got %v", img.Bounds())
	}
}

func TestBufferToJPEGFlattensAlpha(t *testing.T) {
	fs := afero.NewMemMapFs()
	conv := New(fs, 0)

	// Fully transparent input must come out white, not black.
	data := pngFixture(t, 4, 4, color.RGBA{})
	if err := conv.BufferToJPEG(context.Background(), data, "image/png", "/out.jpeg"); err != nil {
		t.Fatalf("converting: %s", err)
	}

	img := decodeTarget(t, fs, "/out.jpeg")
	r, g, b, _ := img.At(2, 2).RGBA()
	if r < 0xf000 || g < 0xf000 || b < 0xf000 {
		t.Errorf("expected a white background, got r=%x g=%x b=%x", r, g, b)
	}
}

func TestBufferToJPEGScalesDown(t *testing.T) {
	fs := afero.NewMemMapFs()
	conv := New(fs, 32)

	data := pngFixture(t, 64, 32, color.RGBA{B: 255, A: 255})
	if err := conv.BufferToJPEG(context.Background(), data, "image/png", "/out.jpeg"); err != nil {
		t.Fatalf("converting: %s", err)
	}

	img := decodeTarget(t, fs, "/out.jpeg")
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Errorf("expected a 32x16 output but got %v", img.Bounds())
	}
}

func TestBufferToJPEGKeepsSmallJPEGs(t *testing.T) {
	fs := afero.NewMemMapFs()
	conv := New(fs, 128)

	data := jpegFixture(t, 16, 16)
	if err := conv.BufferToJPEG(context.Background(), data, "image/jpeg", "/out.jpeg"); err != nil {
		t.Fatalf("converting: %s", err)
	}

	found, err := afero.ReadFile(fs, "/out.jpeg")
	if err != nil {
		t.Fatalf("reading output: %s", err)
	}
	if !bytes.Equal(found, data) {
		t.Error("expected a JPEG within the width cap to pass through")
	}
}

func TestBufferToJPEGRejectsGarbage(t *testing.T) {
	conv := New(afero.NewMemMapFs(), 0)

	err := conv.BufferToJPEG(context.Background(), []byte("not an image"), "", "/out.jpeg")
	if err == nil {
		t.Error("expected an error for undecodable data")
	}

	err = conv.BufferToJPEG(context.Background(), nil, "", "/out.jpeg")
	if err == nil {
		t.Error("expected an error for empty data")
	}
}

func TestFileToJPEG(t *testing.T) {
	fs := afero.NewMemMapFs()
	conv := New(fs, 0)

	data := pngFixture(t, 6, 6, color.RGBA{G: 255, A: 255})
	if err := afero.WriteFile(fs, "/cover.png", data, 0644); err != nil {
		t.Fatalf("writing fixture: %s", err)
	}

	if err := conv.FileToJPEG(context.Background(), "/cover.png", "/out.jpeg"); err != nil {
		t.Fatalf("converting: %s", err)
	}

	img := decodeTarget(t, fs, "/out.jpeg")
	if img.Bounds().Dx() != 6 {
		t.Errorf("expected a 6 pixel wide output but got %v", img.Bounds())
	}
}

func TestConvertCancelledContext(t *testing.T) {
	conv := New(afero.NewMemMapFs(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := conv.BufferToJPEG(ctx, jpegFixture(t, 4, 4), "image/jpeg", "/out.jpeg")
	if err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 40), B: 200, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, level png.CompressionLevel) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: level}
	if err := enc.Encode(&buf, testImage()); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestCanonicalizeNormalizesPNGEncodings(t *testing.T) {
	fast := encodePNG(t, png.NoCompression)
	small := encodePNG(t, png.BestCompression)
	if bytes.Equal(fast, small) {
		t.Fatal("fixture expects different encodings of the same pixels")
	}

	a, err := Canonicalize(fast)
	if err != nil {
		t.Fatalf("Canonicalize returned error: %v", err)
	}
	b, err := Canonicalize(small)
	if err != nil {
		t.Fatalf("Canonicalize returned error: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("expected identical canonical bytes for identical pixels")
	}

	again, err := Canonicalize(a)
	if err != nil {
		t.Fatalf("Canonicalize returned error: %v", err)
	}
	if !bytes.Equal(a, again) {
		t.Fatal("expected canonical form to be a fixed point")
	}
}

func TestCanonicalizeJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	out, err := Canonicalize(buf.Bytes())
	if err != nil {
		t.Fatalf("Canonicalize returned error: %v", err)
	}
	info, err := Inspect(out)
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if info.Format != "png" || info.Width != 8 || info.Height != 6 {
		t.Fatalf("unexpected canonical info: %+v", info)
	}
}

func TestCanonicalizeRejectsNonImages(t *testing.T) {
	for _, input := range [][]byte{nil, []byte("not a picture")} {
		if _, err := Canonicalize(input); !errors.Is(err, ErrUnsupportedImage) {
			t.Fatalf("expected ErrUnsupportedImage, got %v", err)
		}
	}
}

func TestInspect(t *testing.T) {
	info, err := Inspect(encodePNG(t, png.DefaultCompression))
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if info != (Info{Format: "png", Width: 8, Height: 6}) {
		t.Fatalf("unexpected info: %+v", info)
	}
	if _, err := Inspect([]byte("plain text")); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
}

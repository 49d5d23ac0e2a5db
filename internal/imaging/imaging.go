package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned when the bytes are not a decodable image.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Info describes an encoded image without decoding its pixels.
type Info struct {
	Format string `json:"format" yaml:"format"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Inspect reports the format and dimensions of data.
func Inspect(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, fmt.Errorf("inspect image: %w", ErrUnsupportedImage)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Info{}, fmt.Errorf("inspect image: %w", ErrUnsupportedImage)
		}
		return Info{}, fmt.Errorf("inspect image: %w", err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

var encoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// Canonicalize decodes data and re-encodes it as PNG. The output depends only
// on the decoded pixels, so repeated calls over the same input are identical.
func Canonicalize(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("canonicalize image: %w", ErrUnsupportedImage)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("canonicalize image: %w", ErrUnsupportedImage)
		}
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

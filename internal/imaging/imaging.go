// Package imaging normalizes photos attached to lost/found reports and
// volunteer registrations. Every accepted upload leaves as a bounded JPEG,
// so the object store never holds oversized or exotic formats.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension bounds the longer side of a stored photo. The portal renders
// photos as cards at half that width at most, so 1024 stays sharp on
// high-density screens without keeping full camera output.
const MaxDimension = 1024

// JPEGQuality is the re-encode quality for stored photos.
const JPEGQuality = 85

// MaxPixels caps the decoded size of an upload. The bound is checked from
// the image header, before decoding, so a declared absurd width or height
// never allocates.
const MaxPixels = 20 << 20

// AllowedMIME lists the accepted upload types, matched against sniffed
// bytes rather than client headers.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Photo is a normalized, storage-ready photo.
type Photo struct {
	Data []byte
	MIME string
}

// Process validates an uploaded photo and normalizes it: the format is
// sniffed from bytes, the declared dimensions are bounded before decode,
// and the result is scaled to MaxDimension and re-encoded as JPEG.
func Process(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}

	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("unsupported photo format %s, want JPEG or PNG", detected)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading photo header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 ||
		int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("photo dimensions %dx%d out of bounds", cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding photo: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, shrink(img), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding photo: %w", err)
	}

	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// shrink scales a photo down so its longer side is at most MaxDimension,
// preserving aspect ratio with Catmull-Rom resampling. Photos already
// within bounds pass through untouched.
func shrink(img image.Image) image.Image {
	b := img.Bounds()
	longer := b.Dx()
	if b.Dy() > longer {
		longer = b.Dy()
	}
	if longer <= MaxDimension {
		return img
	}

	scale := float64(MaxDimension) / float64(longer)
	w := int(float64(b.Dx())*scale + 0.5)
	h := int(float64(b.Dy())*scale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

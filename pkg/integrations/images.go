package integrations

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// Normalizer bounds page images for e-reader export. Pages already
// within bounds are re-encoded only when they are not JPEG.
type Normalizer struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

func NewNormalizer() *Normalizer {
	return &Normalizer{MaxWidth: 1264, MaxHeight: 1680, Quality: 85}
}

// Normalize decodes a page image, downscales it to fit the configured
// bounds keeping aspect ratio, and re-encodes it as JPEG.
func (n *Normalizer) Normalize(input []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("decoding page image: %w", err)
	}

	bounds := img.Bounds()
	width, height := n.fit(bounds.Dx(), bounds.Dy())
	if width != bounds.Dx() || height != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: n.Quality}); err != nil {
		return nil, fmt.Errorf("encoding page image: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales (width, height) down to the configured bounds, keeping
// aspect ratio. Images already within bounds keep their size.
func (n *Normalizer) fit(width, height int) (int, int) {
	if width <= n.MaxWidth && height <= n.MaxHeight {
		return width, height
	}
	scale := float64(n.MaxWidth) / float64(width)
	if s := float64(n.MaxHeight) / float64(height); s < scale {
		scale = s
	}
	return int(float64(width) * scale), int(float64(height) * scale)
}

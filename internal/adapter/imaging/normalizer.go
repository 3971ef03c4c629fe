// Package imaging prepares raster images for OCR.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

const (
	defaultTargetWidth = 2000
	defaultThreshold   = 140
)

// Normalizer performs the fixed preprocessing chain: scale to the target
// width (upscaling permitted), grayscale, min-max contrast stretch,
// fixed-threshold binarization. The chain is fully deterministic: the same
// input bytes always produce the same output bytes, which the downstream
// dimension parser depends on.
type Normalizer struct {
	targetWidth int
	threshold   uint8
}

func NewNormalizer() *Normalizer {
	return &Normalizer{targetWidth: defaultTargetWidth, threshold: defaultThreshold}
}

// Normalize reads the image at srcPath and writes the prepared PNG to
// dstPath. The source file is never modified.
func (n *Normalizer) Normalize(srcPath, dstPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	src, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode source: %w", err)
	}

	gray := toGray(n.resize(src))
	stretchContrast(gray)
	binarize(gray, n.threshold)

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, gray); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func (n *Normalizer) resize(src image.Image) image.Image {
	b := src.Bounds()
	if b.Dx() == n.targetWidth || b.Dx() == 0 || b.Dy() == 0 {
		return src
	}
	h := b.Dy() * n.targetWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, n.targetWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(src.At(x, y)))
		}
	}
	return dst
}

// stretchContrast maps the pixel range linearly onto [0, 255]. A flat image
// is left untouched.
func stretchContrast(img *image.Gray) {
	lo, hi := uint8(255), uint8(0)
	for _, p := range img.Pix {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if hi <= lo {
		return
	}
	scale := 255.0 / float64(hi-lo)
	for i, p := range img.Pix {
		img.Pix[i] = uint8(float64(p-lo)*scale + 0.5)
	}
}

func binarize(img *image.Gray, threshold uint8) {
	for i, p := range img.Pix {
		if p >= threshold {
			img.Pix[i] = 255
		} else {
			img.Pix[i] = 0
		}
	}
}

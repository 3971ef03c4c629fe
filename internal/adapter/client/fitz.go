package client

import (
	"context"
	"fmt"
	"image/png"
	"os"

	"github.com/gen2brain/go-fitz"

	"starkspan-backend/internal/domain/entity"
)

// FitzRasterizer renders PDF documents with MuPDF via go-fitz. Only the
// first page is rendered; technical drawings carry the title block there.
type FitzRasterizer struct {
	dpi float64
}

// NewFitzRasterizer returns a rasterizer targeting the given render DPI.
// Values below 300 are raised to 300 so OCR sees enough detail.
func NewFitzRasterizer(dpi float64) *FitzRasterizer {
	if dpi < 300 {
		dpi = 300
	}
	return &FitzRasterizer{dpi: dpi}
}

func (r *FitzRasterizer) Rasterize(ctx context.Context, pdfPath, outPath string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrRasterization, err)
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return fmt.Errorf("%w: open document: %v", entity.ErrRasterization, err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return fmt.Errorf("%w: document has no pages", entity.ErrRasterization)
	}

	img, err := doc.ImageDPI(0, r.dpi)
	if err != nil {
		return fmt.Errorf("%w: render page 1: %v", entity.ErrRasterization, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("%w: create output: %v", entity.ErrRasterization, err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("%w: encode page image: %v", entity.ErrRasterization, err)
	}
	return nil
}

package repository

import (
	"context"

	"starkspan-backend/internal/domain/entity"
)

// Rasterizer renders page one of a PDF document to a raster image at outPath.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outPath string) error
}

// TextExtractor runs OCR over a raster image. An empty string is a valid
// result meaning nothing was recognized.
type TextExtractor interface {
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

// ImageNormalizer prepares a raster image for text extraction. It writes a
// new artifact to dstPath and never modifies the source; the same input
// bytes must always produce the same output bytes.
type ImageNormalizer interface {
	Normalize(srcPath, dstPath string) error
}

// QuoteCache stores finished quotes under a content-derived key. A miss is
// (nil, nil), not an error.
type QuoteCache interface {
	Get(ctx context.Context, key string) (*entity.QuoteResult, error)
	Save(ctx context.Context, key string, res *entity.QuoteResult) error
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"starkspan-backend/internal/domain/entity"
	"starkspan-backend/internal/domain/repository"
)

// The external tools (MuPDF, Tesseract) run as blocking in-process calls
// with no cancellation of their own. These wrappers cap their wall-clock
// time so a wedged tool surfaces as a typed stage failure instead of a hang.

type boundedRasterizer struct {
	inner   repository.Rasterizer
	timeout time.Duration
}

// BoundRasterizer wraps r with a fixed wall-clock timeout.
func BoundRasterizer(r repository.Rasterizer, timeout time.Duration) repository.Rasterizer {
	return &boundedRasterizer{inner: r, timeout: timeout}
}

func (b *boundedRasterizer) Rasterize(ctx context.Context, pdfPath, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- b.inner.Rasterize(ctx, pdfPath, outPath) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: gave up after %s (%v)", entity.ErrRasterization, b.timeout, ctx.Err())
	}
}

type boundedExtractor struct {
	inner   repository.TextExtractor
	timeout time.Duration
}

// BoundExtractor wraps e with a fixed wall-clock timeout.
func BoundExtractor(e repository.TextExtractor, timeout time.Duration) repository.TextExtractor {
	return &boundedExtractor{inner: e, timeout: timeout}
}

func (b *boundedExtractor) ExtractText(ctx context.Context, imagePath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := b.inner.ExtractText(ctx, imagePath)
		done <- result{text, err}
	}()
	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("%w: gave up after %s (%v)", entity.ErrExtraction, b.timeout, ctx.Err())
	}
}

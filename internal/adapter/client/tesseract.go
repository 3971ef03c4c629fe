package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"starkspan-backend/internal/domain/entity"
)

// Whitelist is the fixed recognition alphabet: digits, decimal separators,
// the dimension separators, diameter markers and the mm unit. Restricting
// Tesseract to the characters dimension callouts are written in keeps stray
// glyphs from corrupting the parser downstream.
const Whitelist = "0123456789.,xX×ØømM "

// TesseractExtractor runs OCR through gosseract. A fresh client is created
// per call; the underlying API is not safe for concurrent reuse.
type TesseractExtractor struct {
	languages []string
}

func NewTesseractExtractor(languages ...string) *TesseractExtractor {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractExtractor{languages: languages}
}

func (e *TesseractExtractor) ExtractText(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrExtraction, err)
	}

	c := gosseract.NewClient()
	defer c.Close()

	if err := c.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("%w: set language: %v", entity.ErrExtraction, err)
	}
	if err := c.SetWhitelist(Whitelist); err != nil {
		return "", fmt.Errorf("%w: set whitelist: %v", entity.ErrExtraction, err)
	}
	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("%w: set image: %v", entity.ErrExtraction, err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("%w: recognize: %v", entity.ErrExtraction, err)
	}
	// An empty recognition is a valid result, not a failure.
	return strings.TrimSpace(text), nil
}

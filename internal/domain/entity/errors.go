package entity

import "errors"

// Pipeline failure taxonomy. Only these four kinds ever reach the caller as
// failures; an unknown material or a degenerate geometry is absorbed into a
// still-successful quote with the needsManual flag set.
var (
	ErrUnsupportedInput         = errors.New("unsupported input format")
	ErrRasterizationUnavailable = errors.New("pdf rasterizer unavailable")
	ErrRasterization            = errors.New("pdf rasterization failed")
	ErrNormalization            = errors.New("image normalization failed")
	ErrExtraction               = errors.New("text extraction failed")
)

package usecase

import (
	"fmt"
	"path/filepath"
	"strings"

	"starkspan-backend/internal/domain/entity"
)

// ClassifyInput decides which pipeline route an artifact takes, based on the
// declared media type and the file extension. Pure classification, no side
// effects.
func ClassifyInput(filename, contentType string, hasData bool) (entity.InputKind, error) {
	if !hasData {
		if strings.TrimSpace(filename) == "" {
			return 0, fmt.Errorf("%w: no file and no filename submitted", entity.ErrUnsupportedInput)
		}
		return entity.InputFilenameOnly, nil
	}

	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "application/pdf":
		return entity.InputPDFDocument, nil
	case "image/png", "image/jpeg":
		return entity.InputRasterImage, nil
	}

	// Browsers often send octet-stream; fall back to the extension.
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return entity.InputPDFDocument, nil
	case ".png", ".jpg", ".jpeg":
		return entity.InputRasterImage, nil
	}

	return 0, fmt.Errorf("%w: %q (media type %q)", entity.ErrUnsupportedInput, filename, contentType)
}

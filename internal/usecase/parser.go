package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"starkspan-backend/internal/domain/entity"
)

// num captures one dimension token. Decimal commas are normalized to dots
// before any pattern runs.
const num = `(\d+(?:\.\d+)?)`

var (
	spaceRe = regexp.MustCompile(`\s+`)

	// Filename mode. Names pack dimensions densely ("Ø20x100", "Platte_100x50x10mm"),
	// so all whitespace is stripped before matching.
	cylNameRe    = regexp.MustCompile(`(?i)(?:ø|dia|d)` + num + `[xX×]` + num)
	diaMarkerRe  = regexp.MustCompile(`(?i)ø|\bdia|\bd`)
	tripleNameRe = regexp.MustCompile(num + `[xX×]` + num + `[xX×]` + num + `(?:mm)?`)
	doubleNameRe = regexp.MustCompile(num + `[xX×]` + num + `(?:mm)?`)

	// OCR mode. Extracted text is lowercased with whitespace runs collapsed
	// to single spaces, so tokens may be separated by at most one space.
	cylTextRe    = regexp.MustCompile(`(?:ø|dia|d) ?` + num + ` ?[x×] ?` + num)
	tripleTextRe = regexp.MustCompile(num + ` ?[x×] ?` + num + ` ?[x×] ?` + num + ` ?(?:mm)?`)
	doubleTextRe = regexp.MustCompile(num + ` ?[x×] ?` + num + ` ?(?:mm)?`)
	diaTextRe    = regexp.MustCompile(`ø|\bdia\b|\bd\b`)
)

// ParseFilename recognizes dimensions packed into a file name or drawing
// title. Precedence: explicit cylinder marker, loose cylinder (marker
// anywhere plus a bare DxL), triple dimension block. A pattern whose numbers
// do not parse to positive finite values is skipped and the next rule tried.
func ParseFilename(name string) entity.Hypothesis {
	safe := spaceRe.ReplaceAllString(strings.ReplaceAll(name, ",", "."), "")

	if m := cylNameRe.FindStringSubmatch(safe); m != nil {
		if d, l, ok := twoDims(m[1], m[2]); ok {
			return entity.Hypothesis{
				Shape:  entity.Cylinder{DiameterMM: d, LengthMM: l},
				Source: entity.SourceFilenameStrict,
			}
		}
	}

	// Some drawings write "20x100" with the Ø somewhere else in the title.
	// This rule is deliberately limited to filename input; OCR text is too
	// noisy for it.
	if diaMarkerRe.MatchString(safe) {
		if m := doubleNameRe.FindStringSubmatch(safe); m != nil {
			if d, l, ok := twoDims(m[1], m[2]); ok {
				return entity.Hypothesis{
					Shape:  entity.Cylinder{DiameterMM: d, LengthMM: l},
					Source: entity.SourceFilenameLoose,
				}
			}
		}
	}

	if m := tripleNameRe.FindStringSubmatch(safe); m != nil {
		if l, b, ok := twoDims(m[1], m[2]); ok {
			if h, hok := oneDim(m[3]); hok {
				return entity.Hypothesis{
					Shape:  entity.Block{LengthMM: l, WidthMM: b, HeightMM: h},
					Source: entity.SourceFilenameStrict,
				}
			}
		}
	}

	return entity.UnknownHypothesis()
}

// ParseOCRText recognizes dimensions in extracted drawing text. Precedence:
// explicit cylinder marker, triple dimension block, double dimension plate
// (only when no diameter marker appears anywhere in the text). The plate
// outcome has no height and therefore no volume.
func ParseOCRText(text string) entity.Hypothesis {
	clean := strings.ToLower(strings.ReplaceAll(text, ",", "."))
	clean = strings.TrimSpace(spaceRe.ReplaceAllString(clean, " "))
	if clean == "" {
		return entity.UnknownHypothesis()
	}

	if m := cylTextRe.FindStringSubmatch(clean); m != nil {
		if d, l, ok := twoDims(m[1], m[2]); ok {
			return entity.Hypothesis{
				Shape:  entity.Cylinder{DiameterMM: d, LengthMM: l},
				Source: entity.SourceOCR,
			}
		}
	}

	if m := tripleTextRe.FindStringSubmatch(clean); m != nil {
		if l, b, ok := twoDims(m[1], m[2]); ok {
			if h, hok := oneDim(m[3]); hok {
				return entity.Hypothesis{
					Shape:  entity.Block{LengthMM: l, WidthMM: b, HeightMM: h},
					Source: entity.SourceOCR,
				}
			}
		}
	}

	if !diaTextRe.MatchString(clean) {
		if m := doubleTextRe.FindStringSubmatch(clean); m != nil {
			if l, b, ok := twoDims(m[1], m[2]); ok {
				return entity.Hypothesis{
					Shape:  entity.Plate{LengthMM: l, WidthMM: b},
					Source: entity.SourceOCR,
				}
			}
		}
	}

	return entity.UnknownHypothesis()
}

func oneDim(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

func twoDims(a, b string) (float64, float64, bool) {
	x, ok := oneDim(a)
	if !ok {
		return 0, 0, false
	}
	y, ok := oneDim(b)
	if !ok {
		return 0, 0, false
	}
	return x, y, true
}

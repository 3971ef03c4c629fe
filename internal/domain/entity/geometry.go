package entity

import "math"

// Source records which recognition strategy produced a hypothesis. It is
// reported for diagnostics only and never feeds into a calculation.
type Source string

const (
	SourceFilenameStrict Source = "filename-strict"
	SourceFilenameLoose  Source = "filename-loose"
	SourceOCR            Source = "ocr"
)

// Kind names the recognized shape family.
type Kind string

const (
	KindCylinder Kind = "cylinder"
	KindBlock    Kind = "block"
	KindPlate    Kind = "plate"
	KindUnknown  Kind = "unknown"
)

// Shape is the closed set of geometry variants the parser can produce. A
// Plate has no height and an Unknown has no dimensions at all; both are
// enforced structurally rather than by convention.
type Shape interface {
	Kind() Kind
	// VolumeCm3 reports the enclosed volume in cm³. ok is false for shapes
	// that cannot yield a volume and for degenerate (non-finite or
	// non-positive) results.
	VolumeCm3() (v float64, ok bool)
}

// Cylinder is a turned part: diameter and length in millimetres.
type Cylinder struct {
	DiameterMM float64
	LengthMM   float64
}

// Block is a milled rectangular part: length, width and height in millimetres.
type Block struct {
	LengthMM float64
	WidthMM  float64
	HeightMM float64
}

// Plate is a two-dimensional outline with unknown thickness.
type Plate struct {
	LengthMM float64
	WidthMM  float64
}

// Unknown means no recognizable dimensions were found.
type Unknown struct{}

func (Cylinder) Kind() Kind { return KindCylinder }
func (Block) Kind() Kind    { return KindBlock }
func (Plate) Kind() Kind    { return KindPlate }
func (Unknown) Kind() Kind  { return KindUnknown }

func (c Cylinder) VolumeCm3() (float64, bool) {
	r := c.DiameterMM / 2
	return cm3(math.Pi * r * r * c.LengthMM)
}

func (b Block) VolumeCm3() (float64, bool) {
	return cm3(b.LengthMM * b.WidthMM * b.HeightMM)
}

func (Plate) VolumeCm3() (float64, bool)   { return 0, false }
func (Unknown) VolumeCm3() (float64, bool) { return 0, false }

// cm3 converts mm³ to cm³ and rejects degenerate results so a NaN or a zero
// dimension can never leak downstream as a valid volume.
func cm3(mm3 float64) (float64, bool) {
	v := mm3 / 1000
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// Hypothesis pairs a recognized shape with the strategy that produced it.
type Hypothesis struct {
	Shape  Shape
	Source Source
}

// UnknownHypothesis is the parser's worst-case, never-fails outcome.
func UnknownHypothesis() Hypothesis {
	return Hypothesis{Shape: Unknown{}}
}
